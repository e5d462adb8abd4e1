package ecdlp

import (
	"context"
	"errors"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/mahdiidarabi/ecdlp-rollback/pkg/curve"
)

// Comparison pairs a configuration with its outcome.
type Comparison struct {
	Config AttackConfig
	Result *AttackResult
	Err    error
}

// Compare attacks the same target with every configuration concurrently, at
// most GOMAXPROCS at a time. Each run has its own statistics and the progress
// callback, if any, is shared by all of them.
//
// A target that fails validation aborts the whole comparison; other per-run
// errors, such as a missing kangaroo bound, are reported in the Comparison.
func (e *Engine) Compare(ctx context.Context, target curve.Point, cfgs []AttackConfig) ([]Comparison, error) {
	if err := e.validateTarget(target); err != nil {
		return nil, err
	}

	out := make([]Comparison, len(cfgs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))

	for i, cfg := range cfgs {
		i, cfg := i, cfg
		g.Go(func() error {
			res, err := e.Attack(gctx, target, cfg)
			out[i] = Comparison{Config: cfg, Result: res, Err: err}
			if err != nil && !errors.Is(err, ErrInvalidInput) {
				return err
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return out, err
	}
	return out, nil
}
