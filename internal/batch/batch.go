// Package batch attacks many targets concurrently, one engine run per target.
package batch

import (
	"context"
	"log"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/mahdiidarabi/ecdlp-rollback/pkg/ecdlp"
)

// WorkItem is a single target waiting for a worker.
type WorkItem struct {
	Index  int
	Target *ecdlp.Target
}

// Outcome is the result of attacking one target. Outcomes are returned in
// the order of the input targets.
type Outcome struct {
	Index  int
	Label  string
	Result *ecdlp.AttackResult
	Err    error
}

// Config controls the worker pool.
type Config struct {
	// NumWorkers controls parallelization (0 = auto-detect)
	NumWorkers int

	// StopOnFirst cancels the remaining work once any target is solved.
	StopOnFirst bool

	// Verbose logs every finished target.
	Verbose bool
}

// Run attacks every target with cfg. A target carrying its own bound
// overrides cfg.Bound, which lets one file mix kangaroo intervals.
//
// Targets that were never started because ctx was cancelled (or StopOnFirst
// fired) have a nil Result and ctx's error.
func Run(ctx context.Context, engine *ecdlp.Engine, targets []*ecdlp.Target, cfg ecdlp.AttackConfig, bc Config) []Outcome {
	numWorkers := bc.NumWorkers
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}
	if numWorkers > len(targets) {
		numWorkers = len(targets)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	outcomes := make([]Outcome, len(targets))
	for i, t := range targets {
		outcomes[i] = Outcome{Index: i, Label: t.Label}
	}

	workChan := make(chan WorkItem, numWorkers*2)
	var attacked, solved int64

	var wg sync.WaitGroup
	for i := 0; i < numWorkers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			worker(ctx, engine, cfg, bc, workChan, outcomes, &attacked, &solved, cancel)
		}()
	}

	go func() {
		defer close(workChan)
		for i, t := range targets {
			select {
			case <-ctx.Done():
				return
			case workChan <- WorkItem{Index: i, Target: t}:
			}
		}
	}()

	wg.Wait()

	for i := range outcomes {
		if outcomes[i].Result == nil && outcomes[i].Err == nil {
			outcomes[i].Err = ctx.Err()
		}
	}
	if bc.Verbose {
		log.Printf("Attacked %d/%d targets, solved %d", atomic.LoadInt64(&attacked), len(targets), atomic.LoadInt64(&solved))
	}
	return outcomes
}

// worker processes targets from workChan. Each outcome slot is written by
// exactly one worker.
func worker(
	ctx context.Context,
	engine *ecdlp.Engine,
	cfg ecdlp.AttackConfig,
	bc Config,
	workChan <-chan WorkItem,
	outcomes []Outcome,
	attacked, solved *int64,
	cancel context.CancelFunc,
) {
	for {
		select {
		case <-ctx.Done():
			return
		case work, ok := <-workChan:
			if !ok {
				return
			}
			atomic.AddInt64(attacked, 1)

			runCfg := cfg
			if work.Target.Bound != nil {
				runCfg.Bound = work.Target.Bound
			}
			result, err := engine.Attack(ctx, work.Target.Point, runCfg)
			outcomes[work.Index].Result = result
			outcomes[work.Index].Err = err

			if err == nil && result.Success {
				atomic.AddInt64(solved, 1)
				if bc.Verbose {
					log.Printf("[%s] d = %s (%d iterations)", work.Target.Label, result.PrivateKey, result.Stats.Iterations)
				}
				if bc.StopOnFirst {
					cancel()
				}
			} else if bc.Verbose {
				log.Printf("[%s] not solved: %v", work.Target.Label, describe(result, err))
			}
		}
	}
}

func describe(result *ecdlp.AttackResult, err error) interface{} {
	if err != nil {
		return err
	}
	return result.Stats.StopReason
}
