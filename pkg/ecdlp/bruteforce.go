package ecdlp

import (
	"context"
	"math/big"

	"github.com/mahdiidarabi/ecdlp-rollback/pkg/curve"
)

// BruteForce tries d = 1, 2, …, N-1 in order, keeping a running sum d·G so
// each candidate costs one point addition.
type BruteForce struct{}

// Name returns MechanismBruteForce.
func (s *BruteForce) Name() Mechanism { return MechanismBruteForce }

// Search walks the multiples of G until the target is hit.
func (s *BruteForce) Search(ctx context.Context, r *Run) (*big.Int, error) {
	c := r.Curve
	G := c.G()
	last := new(big.Int).Sub(c.N(), big.NewInt(1))

	R := curve.Infinity()
	d := new(big.Int)
	for d.Cmp(last) < 0 {
		if !r.Next(ctx) {
			return nil, nil
		}
		d.Add(d, big.NewInt(1))

		var err error
		if R, err = c.Add(R, G); err != nil {
			return nil, err
		}
		r.Stats.PointOperations++
		r.Stats.KeysTested++
		r.Stats.Candidates++

		if R.Equal(r.Target) {
			return d, nil
		}
	}
	return nil, nil
}
