package batch

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"testing"

	"github.com/mahdiidarabi/ecdlp-rollback/pkg/curve"
	"github.com/mahdiidarabi/ecdlp-rollback/pkg/ecdlp"
)

func fourBitTargets(t *testing.T) []*ecdlp.Target {
	t.Helper()
	c := curve.FourBit()
	targets := make([]*ecdlp.Target, 0, 18)
	for d := int64(1); d < 19; d++ {
		Q, err := c.ScalarBaseMultiply(big.NewInt(d))
		if err != nil {
			t.Fatalf("ScalarBaseMultiply failed: %v", err)
		}
		targets = append(targets, &ecdlp.Target{Label: fmt.Sprintf("d%d", d), Point: Q})
	}
	return targets
}

func TestRun_SolvesEveryTarget(t *testing.T) {
	targets := fourBitTargets(t)
	engine := ecdlp.NewEngine(curve.FourBit())

	outcomes := Run(context.Background(), engine, targets,
		ecdlp.DefaultAttackConfig(ecdlp.MechanismBabyStepGiant), Config{NumWorkers: 4})

	if len(outcomes) != len(targets) {
		t.Fatalf("Expected %d outcomes, got %d", len(targets), len(outcomes))
	}
	for i, o := range outcomes {
		if o.Index != i || o.Label != targets[i].Label {
			t.Errorf("outcome %d out of order: %+v", i, o)
		}
		if o.Err != nil {
			t.Errorf("%s: unexpected error %v", o.Label, o.Err)
			continue
		}
		if !o.Result.Success || o.Result.PrivateKey.Int64() != int64(i+1) {
			t.Errorf("%s: expected d=%d, got %+v", o.Label, i+1, o.Result)
		}
	}
}

func TestRun_PerTargetBound(t *testing.T) {
	targets := fourBitTargets(t)
	for i, target := range targets {
		d := int64(i + 1)
		target.Bound = &ecdlp.Bound{Low: big.NewInt(d - 1), High: big.NewInt(d + 2)}
	}

	outcomes := Run(context.Background(), ecdlp.NewEngine(curve.FourBit()), targets,
		ecdlp.DefaultAttackConfig(ecdlp.MechanismKangaroo), Config{NumWorkers: 3})

	for i, o := range outcomes {
		if o.Err != nil {
			t.Fatalf("%s: unexpected error %v", o.Label, o.Err)
		}
		if o.Result.Success && o.Result.PrivateKey.Int64() != int64(i+1) {
			t.Errorf("%s: wrong key %s", o.Label, o.Result.PrivateKey)
		}
	}
}

func TestRun_InvalidTargetDoesNotStopOthers(t *testing.T) {
	targets := fourBitTargets(t)[:3]
	targets = append(targets, &ecdlp.Target{Label: "bad", Point: curve.NewPoint(big.NewInt(1), big.NewInt(1))})

	outcomes := Run(context.Background(), ecdlp.NewEngine(curve.FourBit()), targets,
		ecdlp.DefaultAttackConfig(ecdlp.MechanismBruteForce), Config{NumWorkers: 2})

	if !errors.Is(outcomes[3].Err, ecdlp.ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput for the off-curve target, got %v", outcomes[3].Err)
	}
	for _, o := range outcomes[:3] {
		if o.Err != nil || !o.Result.Success {
			t.Errorf("%s: expected success, got %+v", o.Label, o)
		}
	}
}

func TestRun_StopOnFirst(t *testing.T) {
	targets := fourBitTargets(t)
	outcomes := Run(context.Background(), ecdlp.NewEngine(curve.FourBit()), targets,
		ecdlp.DefaultAttackConfig(ecdlp.MechanismBruteForce), Config{NumWorkers: 1, StopOnFirst: true})

	first := outcomes[0]
	if first.Err != nil || !first.Result.Success {
		t.Fatalf("Expected the first target to be solved, got %+v", first)
	}
	// A single worker cancels right after the first success, so nothing else
	// can have been solved.
	for _, o := range outcomes[1:] {
		if o.Result != nil && o.Result.Success {
			t.Errorf("%s: solved after StopOnFirst", o.Label)
		}
	}
}

func TestRun_Empty(t *testing.T) {
	outcomes := Run(context.Background(), ecdlp.NewEngine(curve.FourBit()), nil,
		ecdlp.DefaultAttackConfig(ecdlp.MechanismBruteForce), Config{})
	if len(outcomes) != 0 {
		t.Errorf("Expected no outcomes, got %d", len(outcomes))
	}
}
