package ecdlp

import (
	"context"
	"fmt"
	"math/big"

	"github.com/mahdiidarabi/ecdlp-rollback/pkg/curve"
)

// BabyStepGiantStep stores the baby steps j·G for j < m = ⌈√N⌉ and then
// walks Q - i·m·G for i < m looking for a stored point.
type BabyStepGiantStep struct {
	TableLimit uint64
}

// Name returns MechanismBabyStepGiant.
func (s *BabyStepGiantStep) Name() Mechanism { return MechanismBabyStepGiant }

// Search solves the target over the full group generated by G.
func (s *BabyStepGiantStep) Search(ctx context.Context, r *Run) (*big.Int, error) {
	return babyStepGiantStep(ctx, r, r.Curve.G(), r.Curve.N(), r.Target, s.TableLimit)
}

// babyStepGiantStep finds x in [0, order) with x·g = target, where g has the
// given order. Pohlig-Hellman calls it on prime-power subgroups.
func babyStepGiantStep(ctx context.Context, r *Run, g curve.Point, order *big.Int, target curve.Point, limit uint64) (*big.Int, error) {
	c := r.Curve
	mBig := ceilSqrt(order)
	if !mBig.IsUint64() || (limit > 0 && mBig.Uint64() > limit) {
		return nil, fmt.Errorf("%w: baby-step table of %s entries exceeds limit %d", ErrInvalidInput, mBig, limit)
	}
	m := mBig.Uint64()

	table, err := babySteps(ctx, r, g, m)
	if err != nil || table == nil {
		return nil, err
	}

	mg, err := c.ScalarMultiply(mBig, g)
	if err != nil {
		return nil, err
	}
	stride := c.Negate(mg)
	r.Stats.PointOperations++

	P := target
	for i := uint64(0); i < m; i++ {
		if !r.Next(ctx) {
			return nil, nil
		}
		r.Stats.GiantSteps++
		r.Stats.Candidates++

		if j, ok := table[P.Key()]; ok {
			x := new(big.Int).SetUint64(i)
			x.Mul(x, mBig)
			x.Add(x, new(big.Int).SetUint64(j))
			return x.Mod(x, order), nil
		}

		if P, err = c.Add(P, stride); err != nil {
			return nil, err
		}
		r.Stats.PointOperations++
	}
	return nil, nil
}

// babySteps maps j·g to j for j in [0, m). Each entry costs one iteration.
// A nil table with a nil error means the run was stopped.
func babySteps(ctx context.Context, r *Run, g curve.Point, m uint64) (map[string]uint64, error) {
	table := make(map[string]uint64, m)
	R := curve.Infinity()
	for j := uint64(0); j < m; j++ {
		if !r.Next(ctx) {
			return nil, nil
		}
		if _, seen := table[R.Key()]; !seen {
			table[R.Key()] = j
		}
		r.Stats.BabySteps++

		var err error
		if R, err = r.Curve.Add(R, g); err != nil {
			return nil, err
		}
		r.Stats.PointOperations++
	}
	return table, nil
}

// ceilSqrt returns ⌈√n⌉ for n >= 0.
func ceilSqrt(n *big.Int) *big.Int {
	s := new(big.Int).Sqrt(n)
	if new(big.Int).Mul(s, s).Cmp(n) < 0 {
		s.Add(s, big.NewInt(1))
	}
	return s
}
