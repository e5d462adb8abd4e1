package ecdlp

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/big"
	"time"

	"github.com/mahdiidarabi/ecdlp-rollback/pkg/curve"
)

// RunOptions configures the execution controller shared by every mechanism.
type RunOptions struct {
	// MaxIterations caps the number of units of work. Zero means unlimited.
	MaxIterations uint64

	// ProgressInterval is the number of iterations between Progress calls.
	// Zero disables progress reporting.
	ProgressInterval uint64

	// Progress receives a snapshot of the statistics. It runs on the search
	// goroutine and may cancel the run's context.
	Progress func(ExecutionStats)

	// Verbose enables log output for run start and finish.
	Verbose bool
}

// DefaultRunOptions returns options with no cap and no progress reporting.
func DefaultRunOptions() RunOptions {
	return RunOptions{}
}

// Run is the state a Strategy sees while searching: the curve, the target,
// the live counters, and the Next gate.
type Run struct {
	Curve  *curve.Curve
	Target curve.Point
	Stats  *ExecutionStats

	opts RunOptions
}

// Next accounts for one unit of work. It returns false, and records the stop
// reason, when ctx has been cancelled or the iteration cap is reached. Once it
// has returned false it keeps returning false.
func (r *Run) Next(ctx context.Context) bool {
	if r.Stats.StopReason != "" {
		return false
	}

	select {
	case <-ctx.Done():
		r.stop(StopInterrupted)
		return false
	default:
	}

	if r.opts.MaxIterations > 0 && r.Stats.Iterations >= r.opts.MaxIterations {
		r.stop(StopMaxIterations)
		return false
	}

	r.Stats.Iterations++
	if r.opts.Progress != nil && r.opts.ProgressInterval > 0 && r.Stats.Iterations%r.opts.ProgressInterval == 0 {
		r.opts.Progress(*r.Stats)
	}
	return true
}

// Stopped reports whether Next has refused further work.
func (r *Run) Stopped() bool {
	return r.Stats.StopReason != ""
}

func (r *Run) stop(reason StopReason) {
	r.Stats.StopReason = reason
	r.Stats.StoppedEarly = true
}

// verify reports whether d·G equals the target.
func (r *Run) verify(d *big.Int) (bool, error) {
	P, err := r.Curve.ScalarBaseMultiply(d)
	if err != nil {
		return false, err
	}
	r.Stats.PointOperations++
	return P.Equal(r.Target), nil
}

// Engine runs attacks against targets on one curve.
type Engine struct {
	curve *curve.Curve
	opts  RunOptions
}

// NewEngine creates an engine for c with default run options.
func NewEngine(c *curve.Curve) *Engine {
	return &Engine{curve: c, opts: DefaultRunOptions()}
}

// WithRunOptions returns a copy of the engine using opts.
func (e *Engine) WithRunOptions(opts RunOptions) *Engine {
	cp := *e
	cp.opts = opts
	return &cp
}

// Curve returns the engine's curve.
func (e *Engine) Curve() *curve.Curve {
	return e.curve
}

// Attack solves target = d·G with the mechanism selected by cfg.
//
// An error is returned only for invalid input (see ErrInvalidInput) or an
// internal arithmetic failure. "Not found", interruption and the iteration
// cap are reported through AttackResult.Stats.StopReason.
func (e *Engine) Attack(ctx context.Context, target curve.Point, cfg AttackConfig) (*AttackResult, error) {
	s, err := NewStrategy(cfg)
	if err != nil {
		return nil, err
	}
	return e.AttackWithStrategy(ctx, target, s)
}

// AttackWithStrategy solves target = d·G with a custom strategy.
func (e *Engine) AttackWithStrategy(ctx context.Context, target curve.Point, s Strategy) (*AttackResult, error) {
	if s == nil {
		return nil, fmt.Errorf("%w: nil strategy", ErrInvalidInput)
	}
	if err := e.validateTarget(target); err != nil {
		return nil, err
	}

	stats := &ExecutionStats{Mechanism: s.Name()}
	run := &Run{Curve: e.curve, Target: target, Stats: stats, opts: e.opts}

	if e.opts.Verbose {
		log.Printf("Starting %s on %s (target %s)", s.Name(), e.curve.Name(), target)
	}

	start := time.Now()
	result, err := e.search(ctx, run, s)
	stats.Elapsed = time.Since(start)
	if err != nil {
		return nil, err
	}
	result.Stats = *stats

	if e.opts.Verbose {
		if result.Success {
			log.Printf("%s recovered d=%s after %d iterations (%v)",
				s.Name(), result.PrivateKey, stats.Iterations, stats.Elapsed)
		} else {
			log.Printf("%s stopped: %s after %d iterations (%v)",
				s.Name(), stats.StopReason, stats.Iterations, stats.Elapsed)
		}
	}
	return result, nil
}

func (e *Engine) search(ctx context.Context, run *Run, s Strategy) (*AttackResult, error) {
	// The identity is 0·G; no mechanism needs to run.
	if run.Target.IsInfinity() {
		run.Stats.StopReason = StopCompleted
		return &AttackResult{Success: true, PrivateKey: new(big.Int)}, nil
	}

	d, err := s.Search(ctx, run)
	if err != nil {
		if errors.Is(err, ErrInvalidInput) {
			return nil, err
		}
		return nil, fmt.Errorf("%s: %w", s.Name(), err)
	}

	if d != nil {
		d = new(big.Int).Mod(d, e.curve.N())
		ok, err := run.verify(d)
		if err != nil {
			return nil, fmt.Errorf("%s: verify: %w", s.Name(), err)
		}
		if ok {
			run.Stats.StopReason = StopCompleted
			run.Stats.StoppedEarly = false
			return &AttackResult{Success: true, PrivateKey: d}, nil
		}
		log.Printf("WARNING: %s proposed d=%s but d*G does not match the target", s.Name(), d)
	}

	if run.Stats.StopReason == "" {
		run.Stats.StopReason = StopExhausted
	}
	return &AttackResult{Success: false}, nil
}

func (e *Engine) validateTarget(target curve.Point) error {
	if !e.curve.IsOnCurve(target) {
		return fmt.Errorf("%w: target %s is not on %s", ErrInvalidInput, target, e.curve.Name())
	}
	ok, err := e.curve.InSubgroup(target)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if !ok {
		return fmt.Errorf("%w: target %s is not in the subgroup generated by G", ErrInvalidInput, target)
	}
	return nil
}
