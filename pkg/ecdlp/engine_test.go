package ecdlp

import (
	"context"
	"math/big"
	"testing"

	"github.com/mahdiidarabi/ecdlp-rollback/pkg/curve"
)

func TestEngine_IterationCap(t *testing.T) {
	secp := curve.Secp256k1()
	secpTarget, err := secp.ScalarBaseMultiply(big.NewInt(123456789))
	if err != nil {
		t.Fatalf("ScalarBaseMultiply failed: %v", err)
	}

	tests := []struct {
		name   string
		curve  *curve.Curve
		target curve.Point
		cfg    AttackConfig
	}{
		{"brute force", curve61(t), publicKey(t, curve61(t), 60), DefaultAttackConfig(MechanismBruteForce)},
		{"bsgs", curve7889(t), publicKey(t, curve7889(t), 7888), DefaultAttackConfig(MechanismBabyStepGiant)},
		{"rho", secp, secpTarget, DefaultAttackConfig(MechanismPollardRho)},
		{"kangaroo", curve.FourBit(), publicKey(t, curve.FourBit(), 5),
			DefaultAttackConfig(MechanismKangaroo).WithBound(big.NewInt(1), big.NewInt(18))},
		{"pohlig-hellman", curve7889(t), publicKey(t, curve7889(t), 7888), DefaultAttackConfig(MechanismPohligHellman)},
		{"lookup", curve61(t), publicKey(t, curve61(t), 60), DefaultAttackConfig(MechanismLookupTable)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := NewEngine(tt.curve).WithRunOptions(RunOptions{MaxIterations: 5})
			result, err := engine.Attack(context.Background(), tt.target, tt.cfg)
			if err != nil {
				t.Fatalf("Attack failed: %v", err)
			}
			if result.Success {
				t.Fatalf("Expected no result within 5 iterations, got d=%s", result.PrivateKey)
			}
			if result.PrivateKey != nil {
				t.Error("PrivateKey must be nil when Success is false")
			}
			if result.Stats.Iterations != 5 {
				t.Errorf("Expected 5 iterations, got %d", result.Stats.Iterations)
			}
			if result.Stats.StopReason != StopMaxIterations {
				t.Errorf("Expected stop reason %q, got %q", StopMaxIterations, result.Stats.StopReason)
			}
			if !result.Stats.StoppedEarly {
				t.Error("StoppedEarly should be set")
			}
		})
	}
}

func TestEngine_Cancellation(t *testing.T) {
	c := curve7889(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	const cancelAt = 100
	engine := NewEngine(c).WithRunOptions(RunOptions{
		ProgressInterval: 1,
		Progress: func(s ExecutionStats) {
			if s.Iterations == cancelAt {
				cancel()
			}
		},
	})

	result, err := engine.Attack(ctx, publicKey(t, c, 7888), DefaultAttackConfig(MechanismBruteForce))
	if err != nil {
		t.Fatalf("Attack failed: %v", err)
	}
	if result.Success {
		t.Fatal("Expected the run to be interrupted")
	}
	if result.Stats.StopReason != StopInterrupted {
		t.Errorf("Expected stop reason %q, got %q", StopInterrupted, result.Stats.StopReason)
	}
	if result.Stats.Iterations != cancelAt {
		t.Errorf("Expected %d iterations, got %d", cancelAt, result.Stats.Iterations)
	}
	if !result.Stats.StoppedEarly {
		t.Error("StoppedEarly should be set")
	}
}

func TestEngine_CancelledBeforeStart(t *testing.T) {
	c := curve.FourBit()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	for _, m := range Mechanisms() {
		result, err := NewEngine(c).Attack(ctx, publicKey(t, c, 7), keyConfig(c, m))
		if err != nil {
			t.Fatalf("%s: Attack failed: %v", m, err)
		}
		if result.Success || result.Stats.StopReason != StopInterrupted || result.Stats.Iterations != 0 {
			t.Errorf("%s: got success=%v reason=%q iterations=%d", m,
				result.Success, result.Stats.StopReason, result.Stats.Iterations)
		}
	}
}

func TestEngine_Progress(t *testing.T) {
	c := curve61(t)
	var seen []uint64
	engine := NewEngine(c).WithRunOptions(RunOptions{
		ProgressInterval: 10,
		Progress: func(s ExecutionStats) {
			seen = append(seen, s.Iterations)
			if s.Mechanism != MechanismBruteForce {
				t.Errorf("Unexpected mechanism %q in progress snapshot", s.Mechanism)
			}
		},
	})

	result, err := engine.Attack(context.Background(), publicKey(t, c, 60), DefaultAttackConfig(MechanismBruteForce))
	if err != nil {
		t.Fatalf("Attack failed: %v", err)
	}
	if !result.Success || result.PrivateKey.Int64() != 60 {
		t.Fatalf("Expected d=60, got %+v", result)
	}

	want := []uint64{10, 20, 30, 40, 50, 60}
	if len(seen) != len(want) {
		t.Fatalf("Expected %d progress calls, got %v", len(want), seen)
	}
	for i := range want {
		if seen[i] != want[i] {
			t.Errorf("progress call %d: iterations %d, want %d", i, seen[i], want[i])
		}
	}
}

func TestEngine_IdentityTarget(t *testing.T) {
	c := curve.FourBit()
	for _, m := range Mechanisms() {
		result, err := NewEngine(c).Attack(context.Background(), curve.Infinity(), keyConfig(c, m))
		if err != nil {
			t.Fatalf("%s: Attack failed: %v", m, err)
		}
		if !result.Success || result.PrivateKey.Sign() != 0 {
			t.Errorf("%s: expected d=0, got %+v", m, result)
		}
		if result.Stats.Iterations != 0 {
			t.Errorf("%s: expected no iterations, got %d", m, result.Stats.Iterations)
		}
		if result.Stats.StopReason != StopCompleted {
			t.Errorf("%s: expected stop reason %q, got %q", m, StopCompleted, result.Stats.StopReason)
		}
	}
}

func TestEngine_InvalidInput(t *testing.T) {
	c := curve.FourBit()
	engine := NewEngine(c)
	ctx := context.Background()

	offCurve := curve.NewPoint(big.NewInt(5), big.NewInt(2))
	if _, err := engine.Attack(ctx, offCurve, DefaultAttackConfig(MechanismBruteForce)); !isInvalidInput(err) {
		t.Errorf("off-curve target: expected ErrInvalidInput, got %v", err)
	}

	// G = (0, 1) has order 28 and is outside the order-4 subgroup generated by (11, 3).
	c4 := newTestCurve(t, 23, 1, 1, 11, 3, 4)
	outside := curve.NewPoint(big.NewInt(0), big.NewInt(1))
	if _, err := NewEngine(c4).Attack(ctx, outside, DefaultAttackConfig(MechanismBruteForce)); !isInvalidInput(err) {
		t.Errorf("target outside subgroup: expected ErrInvalidInput, got %v", err)
	}

	if _, err := engine.Attack(ctx, c.G(), AttackConfig{Mechanism: "shor"}); !isInvalidInput(err) {
		t.Errorf("unknown mechanism: expected ErrInvalidInput, got %v", err)
	}

	if _, err := engine.AttackWithStrategy(ctx, c.G(), nil); !isInvalidInput(err) {
		t.Errorf("nil strategy: expected ErrInvalidInput, got %v", err)
	}
}

func TestEngine_SmallSubgroupTarget(t *testing.T) {
	// (4, 0) = 14·G has order 2; brute force still finds the smallest d.
	c := curve28(t)
	result, err := NewEngine(c).Attack(context.Background(),
		curve.NewPoint(big.NewInt(4), big.NewInt(0)), DefaultAttackConfig(MechanismBruteForce))
	if err != nil {
		t.Fatalf("Attack failed: %v", err)
	}
	if !result.Success || result.PrivateKey.Int64() != 14 {
		t.Errorf("Expected d=14, got %+v", result)
	}
}

// wrongAnswer claims every target is 3·G.
type wrongAnswer struct{}

func (s *wrongAnswer) Name() Mechanism { return "wrong_answer" }

func (s *wrongAnswer) Search(ctx context.Context, r *Run) (*big.Int, error) {
	r.Next(ctx)
	return big.NewInt(3), nil
}

func TestEngine_RejectsUnverifiedKey(t *testing.T) {
	c := curve.FourBit()
	result, err := NewEngine(c).AttackWithStrategy(context.Background(), publicKey(t, c, 7), &wrongAnswer{})
	if err != nil {
		t.Fatalf("AttackWithStrategy failed: %v", err)
	}
	if result.Success {
		t.Fatal("A key that does not reproduce the target must not be reported")
	}
	if result.Stats.StopReason != StopExhausted {
		t.Errorf("Expected stop reason %q, got %q", StopExhausted, result.Stats.StopReason)
	}
	if result.Stats.Mechanism != "wrong_answer" {
		t.Errorf("Expected mechanism 'wrong_answer', got %q", result.Stats.Mechanism)
	}
}

// spinner never finds anything and relies on the controller to stop it.
type spinner struct {
	nextAfterStop bool
}

func (s *spinner) Name() Mechanism { return "spinner" }

func (s *spinner) Search(ctx context.Context, r *Run) (*big.Int, error) {
	for r.Next(ctx) {
	}
	s.nextAfterStop = r.Next(ctx)
	return nil, nil
}

func TestRun_NextStaysFalse(t *testing.T) {
	c := curve.FourBit()
	engine := NewEngine(c).WithRunOptions(RunOptions{MaxIterations: 42})
	s := &spinner{}
	result, err := engine.AttackWithStrategy(context.Background(), c.G(), s)
	if err != nil {
		t.Fatalf("AttackWithStrategy failed: %v", err)
	}
	if result.Stats.Iterations != 42 || result.Stats.StopReason != StopMaxIterations {
		t.Errorf("got iterations=%d reason=%q", result.Stats.Iterations, result.Stats.StopReason)
	}
	if s.nextAfterStop {
		t.Error("Next must keep returning false once the run has stopped")
	}
}

func TestParseMechanism(t *testing.T) {
	for _, m := range Mechanisms() {
		got, err := ParseMechanism(string(m))
		if err != nil || got != m {
			t.Errorf("ParseMechanism(%q) = %q, %v", m, got, err)
		}
	}
	if got, _ := ParseMechanism("bsgs"); got != MechanismBabyStepGiant {
		t.Errorf("ParseMechanism(bsgs) = %q", got)
	}
	if _, err := ParseMechanism("shor"); !isInvalidInput(err) {
		t.Errorf("ParseMechanism(shor): expected ErrInvalidInput, got %v", err)
	}
}
