package main

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	logLevelFlag  = "loglevel"
	logFormatFlag = "logformat"
	logFileFlag   = "logfile"

	consoleTimeFormat = time.RFC3339
)

func init() {
	zerolog.TimeFieldFormat = time.RFC3339Nano
	zerolog.TimestampFunc = utcNow
}

func utcNow() time.Time {
	return time.Now().UTC()
}

func logFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    logLevelFlag,
			Value:   "info",
			Usage:   "Minimum log level: trace, debug, info, warn, error",
			EnvVars: []string{"THETACHAIN_LOGLEVEL"},
		},
		&cli.StringFlag{
			Name:    logFormatFlag,
			Value:   "console",
			Usage:   "Log output format on stderr: console or json",
			EnvVars: []string{"THETACHAIN_LOGFORMAT"},
		},
		&cli.StringFlag{
			Name:    logFileFlag,
			Usage:   "Also write JSON logs to this file, rotated at 10MB",
			EnvVars: []string{"THETACHAIN_LOGFILE"},
		},
	}
}

// newLogger builds the process logger from the log flags. Unknown levels
// fall back to info.
func newLogger(c *cli.Context) zerolog.Logger {
	var writers []io.Writer
	if c.String(logFormatFlag) == "json" {
		writers = append(writers, os.Stderr)
	} else {
		writers = append(writers, zerolog.ConsoleWriter{
			Out:        os.Stderr,
			TimeFormat: consoleTimeFormat,
		})
	}
	if name := c.String(logFileFlag); name != "" {
		writers = append(writers, &lumberjack.Logger{
			Filename:   name,
			MaxSize:    10,
			MaxBackups: 3,
			MaxAge:     28,
		})
	}

	level, levelErr := zerolog.ParseLevel(c.String(logLevelFlag))
	if levelErr != nil {
		level = zerolog.InfoLevel
	}
	log := zerolog.New(zerolog.MultiLevelWriter(writers...)).Level(level).With().Timestamp().Logger()
	if levelErr != nil {
		log.Error().Msgf("Failed to parse log level %q, using %q instead", c.String(logLevelFlag), level)
	}
	return log
}
