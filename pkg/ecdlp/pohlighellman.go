package ecdlp

import (
	"context"
	"fmt"
	"math/big"

	"github.com/mahdiidarabi/ecdlp-rollback/pkg/grouporder"
)

// PohligHellman factors N = ∏ p_i^e_i, solves d mod p_i^e_i in the subgroup
// of order p_i^e_i with baby-step giant-step, and combines the residues with
// the CRT. It only pays off when N is smooth; for a prime N it degenerates
// into a single BSGS over the whole group.
type PohligHellman struct {
	TableLimit uint64
}

// Name returns MechanismPohligHellman.
func (s *PohligHellman) Name() Mechanism { return MechanismPohligHellman }

// Search solves every prime-power subproblem in order of increasing prime.
func (s *PohligHellman) Search(ctx context.Context, r *Run) (*big.Int, error) {
	c := r.Curve
	n := c.N()

	factors, err := grouporder.Factorize(n)
	if err != nil {
		return nil, err
	}

	residues := make([]grouporder.Residue, 0, len(factors))
	for _, f := range factors {
		pe := f.Power()
		h := new(big.Int).Quo(n, pe)

		gi, err := c.ScalarBaseMultiply(h)
		if err != nil {
			return nil, err
		}
		qi, err := c.ScalarMultiply(h, r.Target)
		if err != nil {
			return nil, err
		}
		r.Stats.PointOperations += 2

		// When the cofactor already kills G this prime power does not
		// constrain d.
		di := new(big.Int)
		if !gi.IsInfinity() {
			di, err = babyStepGiantStep(ctx, r, gi, pe, qi, s.TableLimit)
			if err != nil {
				return nil, fmt.Errorf("subgroup of order %s: %w", f, err)
			}
			if di == nil {
				return nil, nil
			}
		}

		r.Stats.Subproblems++
		r.Stats.Candidates++
		residues = append(residues, grouporder.Residue{Remainder: di, Modulus: pe})
	}

	d, _, err := grouporder.CombineCRT(residues)
	if err != nil {
		return nil, err
	}
	return d.Mod(d, n), nil
}
