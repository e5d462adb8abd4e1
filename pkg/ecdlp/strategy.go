package ecdlp

import (
	"context"
	"fmt"
	"math/big"
	"time"
)

// Strategy is one search mechanism. Implement this interface to plug a custom
// algorithm into the Engine.
type Strategy interface {
	// Search looks for d with d·G = r.Target. It must call r.Next(ctx) once per
	// unit of work and give up as soon as Next returns false. A nil scalar with
	// a nil error means "not found"; the controller decides whether that was an
	// interruption, the iteration cap, or exhaustion.
	Search(ctx context.Context, r *Run) (*big.Int, error)

	// Name returns the mechanism recorded in ExecutionStats.
	Name() Mechanism
}

// AttackConfig selects a mechanism and its parameters.
type AttackConfig struct {
	Mechanism Mechanism

	// Bound is the interval holding the key. Required by the kangaroo,
	// ignored by every other mechanism.
	Bound *Bound

	// Seed feeds the pollard rho starting points. Zero picks a time-based seed.
	Seed int64

	// MaxRestarts caps the number of rho walks restarted after a degenerate
	// collision.
	MaxRestarts int

	// BudgetFactor scales the per-kangaroo jump budget, which is
	// BudgetFactor·(⌊√(high-low)⌋+1).
	BudgetFactor int64

	// TableLimit caps the number of entries of any precomputed table (baby
	// steps, or the full lookup table). Exceeding it is an input error.
	TableLimit uint64

	// Table is a prebuilt lookup table. When nil the lookup mechanism builds
	// one as part of the run.
	Table *LookupTable
}

const (
	DefaultSeed         int64  = 1
	DefaultMaxRestarts         = 32
	DefaultBudgetFactor int64  = 4
	DefaultTableLimit   uint64 = 1 << 22
)

// DefaultAttackConfig returns a configuration for m with every tunable set
// to its default.
func DefaultAttackConfig(m Mechanism) AttackConfig {
	return AttackConfig{
		Mechanism:    m,
		Seed:         DefaultSeed,
		MaxRestarts:  DefaultMaxRestarts,
		BudgetFactor: DefaultBudgetFactor,
		TableLimit:   DefaultTableLimit,
	}
}

// WithBound returns a copy of the configuration bounded to [low, high].
func (c AttackConfig) WithBound(low, high *big.Int) AttackConfig {
	c.Bound = &Bound{Low: new(big.Int).Set(low), High: new(big.Int).Set(high)}
	return c
}

// WithSeed returns a copy of the configuration using seed.
func (c AttackConfig) WithSeed(seed int64) AttackConfig {
	c.Seed = seed
	return c
}

// NewStrategy builds the Strategy described by cfg. Zero-valued tunables are
// replaced by their defaults.
func NewStrategy(cfg AttackConfig) (Strategy, error) {
	limit := cfg.TableLimit
	if limit == 0 {
		limit = DefaultTableLimit
	}

	switch cfg.Mechanism {
	case MechanismBruteForce:
		return &BruteForce{}, nil

	case MechanismBabyStepGiant:
		return &BabyStepGiantStep{TableLimit: limit}, nil

	case MechanismPollardRho:
		seed := cfg.Seed
		if seed == 0 {
			seed = time.Now().UnixNano()
		}
		restarts := cfg.MaxRestarts
		if restarts <= 0 {
			restarts = DefaultMaxRestarts
		}
		return &PollardRho{Seed: seed, MaxRestarts: restarts}, nil

	case MechanismKangaroo:
		if cfg.Bound == nil {
			return nil, ErrMissingBound
		}
		if err := cfg.Bound.validate(); err != nil {
			return nil, err
		}
		factor := cfg.BudgetFactor
		if factor <= 0 {
			factor = DefaultBudgetFactor
		}
		return &Kangaroo{
			Low:          new(big.Int).Set(cfg.Bound.Low),
			High:         new(big.Int).Set(cfg.Bound.High),
			BudgetFactor: factor,
		}, nil

	case MechanismPohligHellman:
		return &PohligHellman{TableLimit: limit}, nil

	case MechanismLookupTable:
		return &TableLookup{Table: cfg.Table, TableLimit: limit}, nil
	}
	return nil, fmt.Errorf("%w: unknown mechanism %q", ErrInvalidInput, cfg.Mechanism)
}
