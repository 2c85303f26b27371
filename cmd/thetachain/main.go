package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
	"go.uber.org/automaxprocs/maxprocs"
)

var (
	Version   = "DEV"
	BuildTime = "unknown"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	app := &cli.App{}
	app.Name = "thetachain"
	app.Usage = "Evaluate (2,2)-isogeny chains between elliptic products"
	app.UsageText = "thetachain [global options] command [command options] [vector files]"
	app.Version = fmt.Sprintf("%s (built %s)", Version, BuildTime)
	app.Flags = logFlags()
	app.Before = func(c *cli.Context) error {
		log := newLogger(c)
		_, err := maxprocs.Set(maxprocs.Logger(func(format string, args ...interface{}) {
			log.Debug().Msgf(format, args...)
		}))
		return err
	}
	app.Commands = commands()
	return app
}

func commands() []*cli.Command {
	return []*cli.Command{
		{
			Name:      "run",
			Usage:     "Evaluate the chains described by vector files and print the codomains and images",
			ArgsUsage: "VECTOR...",
			Flags:     runFlags(),
			Action:    runCommand,
		},
		{
			Name:      "verify",
			Usage:     "Evaluate vector files and compare with their expected results",
			ArgsUsage: "VECTOR...",
			Flags:     runFlags(),
			Action:    verifyCommand,
		},
		{
			Name:   "strategy",
			Usage:  "Print the optimal strategy and formula choices for a chain length",
			Flags:  strategyFlags(),
			Action: strategyCommand,
		},
	}
}
