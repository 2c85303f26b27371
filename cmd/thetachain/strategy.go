package main

import (
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"

	"github.com/smallyu/go-theta-isogeny/internal/crypto/strategy"
)

const (
	lengthFlag = "n"
	mulFlag    = "mul-cost"
	sqrFlag    = "sqr-cost"
	invFlag    = "inv-cost"
	opsFlag    = "ops"
)

func strategyFlags() []cli.Flag {
	return []cli.Flag{
		&cli.IntFlag{
			Name:     lengthFlag,
			Usage:    "Chain length",
			Required: true,
		},
		&cli.Int64Flag{
			Name:  mulFlag,
			Value: strategy.FESTACosts.Mul,
			Usage: "Cost of an Fp2 multiplication",
		},
		&cli.Int64Flag{
			Name:  sqrFlag,
			Value: strategy.FESTACosts.Sqr,
			Usage: "Cost of an Fp2 squaring",
		},
		&cli.Int64Flag{
			Name:  invFlag,
			Value: strategy.FESTACosts.Inv,
			Usage: "Cost of an Fp2 inversion",
		},
		&cli.BoolFlag{
			Name:  opsFlag,
			Usage: "Also print the doubling and step sequence of the optimal strategy",
		},
	}
}

type strategyReport struct {
	N            int      `yaml:"n"`
	Strategy     []int    `yaml:"strategy"`
	InverseFree  []bool   `yaml:"inverse_free"`
	Cost         int64    `yaml:"cost"`
	BalancedCost int64    `yaml:"balanced_cost"`
	Ops          []string `yaml:"ops,omitempty"`
}

func strategyCommand(c *cli.Context) error {
	log := newLogger(c)
	n := c.Int(lengthFlag)
	costs := strategy.Costs{
		Mul: c.Int64(mulFlag),
		Sqr: c.Int64(sqrFlag),
		Inv: c.Int64(invFlag),
	}

	plan, err := strategy.Optimal(n, costs)
	if err != nil {
		return errors.Wrap(err, "optimal strategy")
	}
	balanced, err := strategy.Cost(n, strategy.Balanced(n), costs)
	if err != nil {
		return errors.Wrap(err, "balanced strategy")
	}
	log.Debug().Int("n", n).Int64("cost", plan.Cost).Int64("balanced", balanced).Msg("Strategy computed")

	r := strategyReport{
		N:            n,
		Strategy:     plan.Doubles,
		InverseFree:  plan.InverseFree,
		Cost:         plan.Cost,
		BalancedCost: balanced,
	}
	if c.Bool(opsFlag) {
		ops, err := strategy.Walk(n, plan.Doubles)
		if err != nil {
			return errors.Wrap(err, "walk strategy")
		}
		for _, op := range ops {
			r.Ops = append(r.Ops, op.String())
		}
	}

	enc := yaml.NewEncoder(c.App.Writer)
	defer enc.Close()
	enc.SetIndent(2)
	return enc.Encode(r)
}
