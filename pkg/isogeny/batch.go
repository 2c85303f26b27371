package isogeny

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Params holds the inputs of one chain evaluation.
type Params struct {
	Product  *EllipticProduct
	K1, K2   CouplePoint
	Aux      []CouplePoint
	N        int
	Strategy []int
	Flags    []bool
	Options  []Option
}

// Batch evaluates independent chains concurrently, at most limit at a time
// (no limit when limit <= 0). Results are in input order. The first failure
// cancels the jobs that have not started and is returned.
func Batch(ctx context.Context, jobs []Params, limit int) ([]*Result, error) {
	results := make([]*Result, len(jobs))
	g, ctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}
	for i := range jobs {
		i, p := i, jobs[i]
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			res, err := ComputeChainContext(ctx, p.Product, p.K1, p.K2, p.Aux, p.N, p.Strategy, p.Flags, p.Options...)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
