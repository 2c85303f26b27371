package main

import (
	"context"
	"os"
	"os/signal"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"

	"github.com/smallyu/go-theta-isogeny/internal/vector"
	"github.com/smallyu/go-theta-isogeny/pkg/isogeny"
)

const (
	strategyFlag    = "strategy"
	inverseFreeFlag = "inverse-free"
	jobsFlag        = "jobs"
	metricsFlag     = "metrics"
	kernelFlag      = "kernel-images"

	strategyGiven    = "given"
	strategyOptimal  = "optimal"
	strategyBalanced = "balanced"
)

func runFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    strategyFlag,
			Value:   strategyGiven,
			Usage:   "Strategy to evaluate with: given (from the vector), optimal or balanced",
			EnvVars: []string{"THETACHAIN_STRATEGY"},
		},
		&cli.BoolFlag{
			Name:  inverseFreeFlag,
			Usage: "Use the inverse-free codomain formula for every generic step",
		},
		&cli.IntFlag{
			Name:    jobsFlag,
			Aliases: []string{"j"},
			Value:   0,
			Usage:   "Maximum number of chains evaluated concurrently (0 for no limit)",
			EnvVars: []string{"THETACHAIN_JOBS"},
		},
		&cli.StringFlag{
			Name:    metricsFlag,
			Usage:   "Listen address for the Prometheus /metrics endpoint",
			EnvVars: []string{"THETACHAIN_METRICS"},
		},
		&cli.BoolFlag{
			Name:  kernelFlag,
			Usage: "Also print the images of the kernel generators",
		},
	}
}

type job struct {
	c      *vector.Case
	params isogeny.Params
}

// prepare loads every vector named on the command line and applies the
// strategy and formula flags to it.
func prepare(c *cli.Context, log zerolog.Logger, observer isogeny.Observer) ([]job, error) {
	paths := c.Args().Slice()
	if len(paths) == 0 {
		return nil, errors.New("no vector files given")
	}
	mode := c.String(strategyFlag)
	switch mode {
	case strategyGiven, strategyOptimal, strategyBalanced:
	default:
		return nil, errors.Errorf("unknown strategy %q", mode)
	}

	jobs := make([]job, 0, len(paths))
	for _, path := range paths {
		v, err := vector.Load(path)
		if err != nil {
			return nil, err
		}
		vc, err := v.Case()
		if err != nil {
			return nil, errors.Wrap(err, path)
		}

		in := vc.Input
		opts := []isogeny.Option{
			isogeny.WithLogger(log.With().Str("vector", vc.Name).Logger()),
			isogeny.WithKernelImages(c.Bool(kernelFlag)),
		}
		if c.Bool(inverseFreeFlag) {
			opts = append(opts, isogeny.WithInverseFree(true))
		}
		switch mode {
		case strategyOptimal:
			plan, err := isogeny.OptimalStrategy(in.N)
			if err != nil {
				return nil, errors.Wrap(err, path)
			}
			in.Strategy = plan.Doubles
			if !c.IsSet(inverseFreeFlag) {
				opts = append(opts, isogeny.WithInverseFreeSteps(plan.InverseFree))
			}
		case strategyBalanced:
			in.Strategy = isogeny.BalancedStrategy(in.N)
		}
		if observer != nil {
			opts = append(opts, isogeny.WithObserver(observer))
		}

		jobs = append(jobs, job{c: vc, params: isogeny.Params{
			Product:  in.Product,
			K1:       in.K1,
			K2:       in.K2,
			Aux:      in.Aux,
			N:        in.N,
			Strategy: in.Strategy,
			Flags:    in.Flags,
			Options:  opts,
		}})
	}
	return jobs, nil
}

// withMetrics runs fn with an observer that is exported over HTTP when the
// metrics flag is set.
func withMetrics(c *cli.Context, log zerolog.Logger, fn func(isogeny.Observer) error) error {
	addr := c.String(metricsFlag)
	if addr == "" {
		return fn(nil)
	}
	s, err := serveMetrics(addr, log)
	if err != nil {
		return errors.Wrap(err, "metrics server")
	}
	defer s.Close()
	return fn(s.metrics)
}

func signalContext(c *cli.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(c.Context, os.Interrupt)
}

type report struct {
	Name         string         `yaml:"name"`
	A1           string         `yaml:"a1"`
	A2           string         `yaml:"a2"`
	Steps        int            `yaml:"steps"`
	Images       []vector.Image `yaml:"images"`
	KernelImages []vector.Image `yaml:"kernel_images,omitempty"`
}

func newReport(name string, res *isogeny.Result) (*report, error) {
	exp, err := vector.FromResult(res)
	if err != nil {
		return nil, err
	}
	r := &report{Name: name, A1: exp.A1, A2: exp.A2, Steps: res.Steps, Images: exp.Images}
	if len(res.KernelImages) > 0 {
		if r.KernelImages, err = vector.EncodeImages(res.Product, res.KernelImages); err != nil {
			return nil, errors.Wrap(err, "kernel images")
		}
	}
	return r, nil
}

func runCommand(c *cli.Context) error {
	log := newLogger(c)
	ctx, cancel := signalContext(c)
	defer cancel()

	return withMetrics(c, log, func(observer isogeny.Observer) error {
		jobs, err := prepare(c, log, observer)
		if err != nil {
			return err
		}
		params := make([]isogeny.Params, len(jobs))
		for i, j := range jobs {
			params[i] = j.params
		}

		start := time.Now()
		results, err := isogeny.Batch(ctx, params, c.Int(jobsFlag))
		if err != nil {
			return errors.Wrap(err, "evaluate")
		}
		log.Info().Int("chains", len(results)).Dur("elapsed", time.Since(start)).Msg("Evaluation finished")

		enc := yaml.NewEncoder(c.App.Writer)
		defer enc.Close()
		for i, res := range results {
			r, err := newReport(jobs[i].c.Name, res)
			if err != nil {
				return errors.Wrap(err, jobs[i].c.Name)
			}
			if err := enc.Encode(r); err != nil {
				return errors.Wrap(err, "write report")
			}
		}
		return nil
	})
}

func verifyCommand(c *cli.Context) error {
	log := newLogger(c)
	ctx, cancel := signalContext(c)
	defer cancel()

	return withMetrics(c, log, func(observer isogeny.Observer) error {
		jobs, err := prepare(c, log, observer)
		if err != nil {
			return err
		}

		// Vectors expecting a failure are run one by one so that the error
		// can be matched; the rest go through Batch.
		var ok []job
		failed := 0
		for _, j := range jobs {
			if j.c.WantError == nil {
				ok = append(ok, j)
				continue
			}
			p := j.params
			_, err := isogeny.ComputeChainContext(ctx, p.Product, p.K1, p.K2, p.Aux, p.N, p.Strategy, p.Flags, p.Options...)
			if !errors.Is(err, j.c.WantError) {
				failed++
				log.Error().Str("vector", j.c.Name).AnErr("want", j.c.WantError).Err(err).Msg("Unexpected result")
				continue
			}
			log.Info().Str("vector", j.c.Name).Err(err).Msg("Failed as expected")
		}

		params := make([]isogeny.Params, len(ok))
		for i, j := range ok {
			params[i] = j.params
		}
		results, err := isogeny.Batch(ctx, params, c.Int(jobsFlag))
		if err != nil {
			return errors.Wrap(err, "evaluate")
		}
		for i, res := range results {
			name := ok[i].c.Name
			if err := ok[i].c.Check(res); err != nil {
				failed++
				log.Error().Str("vector", name).Err(err).Msg("Mismatch")
				continue
			}
			log.Info().Str("vector", name).Int("steps", res.Steps).Msg("OK")
		}

		if failed > 0 {
			return cli.Exit(errors.Errorf("%d of %d vectors failed", failed, len(jobs)), 1)
		}
		return nil
	})
}
