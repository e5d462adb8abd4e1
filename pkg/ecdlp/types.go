package ecdlp

import (
	"errors"
	"fmt"
	"math/big"
	"time"
)

var (
	// ErrInvalidInput marks configuration errors detected before any search
	// iteration: a target off the curve or outside the generator's group, a
	// malformed bound, an unknown mechanism, or a table that cannot be built.
	// These are never retried.
	ErrInvalidInput = errors.New("invalid input")

	// ErrMissingBound is returned when the kangaroo is selected without a
	// search interval. It wraps ErrInvalidInput.
	ErrMissingBound = fmt.Errorf("%w: pollard kangaroo requires a bound [low, high]", ErrInvalidInput)
)

// Mechanism selects one of the search algorithms.
type Mechanism string

const (
	MechanismBruteForce    Mechanism = "brute_force"
	MechanismBabyStepGiant Mechanism = "baby_step_giant_step"
	MechanismPollardRho    Mechanism = "pollard_rho"
	MechanismKangaroo      Mechanism = "pollard_kangaroo"
	MechanismPohligHellman Mechanism = "pohlig_hellman"
	MechanismLookupTable   Mechanism = "lookup_table"
)

// Mechanisms lists every mechanism in a stable order.
func Mechanisms() []Mechanism {
	return []Mechanism{
		MechanismBruteForce,
		MechanismBabyStepGiant,
		MechanismPollardRho,
		MechanismKangaroo,
		MechanismPohligHellman,
		MechanismLookupTable,
	}
}

// ParseMechanism accepts the canonical names plus a few short aliases.
func ParseMechanism(s string) (Mechanism, error) {
	switch s {
	case "brute_force", "brute", "bf":
		return MechanismBruteForce, nil
	case "baby_step_giant_step", "bsgs":
		return MechanismBabyStepGiant, nil
	case "pollard_rho", "rho":
		return MechanismPollardRho, nil
	case "pollard_kangaroo", "kangaroo", "lambda":
		return MechanismKangaroo, nil
	case "pohlig_hellman", "ph":
		return MechanismPohligHellman, nil
	case "lookup_table", "lookup", "table":
		return MechanismLookupTable, nil
	}
	return "", fmt.Errorf("%w: unknown mechanism %q", ErrInvalidInput, s)
}

// StopReason records why a run ended.
type StopReason string

const (
	StopCompleted     StopReason = "completed"
	StopMaxIterations StopReason = "max_iterations"
	StopInterrupted   StopReason = "interrupted"
	StopExhausted     StopReason = "exhausted"
)

// Bound is the closed interval [Low, High] known to contain the private key.
type Bound struct {
	Low  *big.Int
	High *big.Int
}

// Width returns High - Low.
func (b Bound) Width() *big.Int {
	return new(big.Int).Sub(b.High, b.Low)
}

// Contains reports whether Low <= d <= High.
func (b Bound) Contains(d *big.Int) bool {
	return b.Low.Cmp(d) <= 0 && d.Cmp(b.High) <= 0
}

func (b Bound) validate() error {
	if b.Low == nil || b.High == nil {
		return ErrMissingBound
	}
	if b.Low.Sign() < 0 {
		return fmt.Errorf("%w: bound low must be >= 0, got %s", ErrInvalidInput, b.Low)
	}
	if b.Low.Cmp(b.High) > 0 {
		return fmt.Errorf("%w: bound low %s exceeds high %s", ErrInvalidInput, b.Low, b.High)
	}
	return nil
}

// ExecutionStats accumulates counters for a single run. Counters only grow
// while the run is active; the controller owns the value until it is copied
// into the AttackResult.
type ExecutionStats struct {
	Mechanism  Mechanism
	Iterations uint64

	KeysTested      uint64 // brute-force comparisons and table probes
	BabySteps       uint64
	GiantSteps      uint64
	RhoSteps        uint64
	RhoRestarts     uint64
	TameJumps       uint64
	WildJumps       uint64
	Subproblems     uint64 // pohlig-hellman prime powers solved
	PointOperations uint64
	Candidates      uint64 // scalars or points proposed as a possible answer

	StoppedEarly bool
	StopReason   StopReason
	Elapsed      time.Duration
}

// AttackResult is the immutable outcome of one run. PrivateKey is set iff
// Success is true.
type AttackResult struct {
	Success    bool
	PrivateKey *big.Int
	Stats      ExecutionStats
}
