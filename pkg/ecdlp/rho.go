package ecdlp

import (
	"context"
	"math/big"
	"math/rand"

	"github.com/mahdiidarabi/ecdlp-rollback/pkg/curve"
)

// PollardRho runs a pseudo-random walk X = a·G + b·Q with Floyd cycle
// detection. A collision between the tortoise and the hare gives
// (a1 - a2)·G = (b2 - b1)·Q, which is solved for d; on a composite N every
// solution of the congruence is tried. Degenerate collisions restart the walk
// from a fresh random point.
type PollardRho struct {
	Seed        int64
	MaxRestarts int
}

// Name returns MechanismPollardRho.
func (s *PollardRho) Name() Mechanism { return MechanismPollardRho }

type rhoState struct {
	X    curve.Point
	A, B *big.Int
}

// Search walks until a usable collision is found, the restarts run out, or
// the run is stopped.
func (s *PollardRho) Search(ctx context.Context, r *Run) (*big.Int, error) {
	rng := rand.New(rand.NewSource(s.Seed))

	for attempt := 0; attempt <= s.MaxRestarts; attempt++ {
		if attempt > 0 {
			r.Stats.RhoRestarts++
		}

		start, err := s.randomState(r, rng)
		if err != nil {
			return nil, err
		}
		tortoise, hare := start, start

		for {
			if !r.Next(ctx) {
				return nil, nil
			}
			if tortoise, err = s.step(r, tortoise); err != nil {
				return nil, err
			}
			if hare, err = s.step(r, hare); err != nil {
				return nil, err
			}
			if hare, err = s.step(r, hare); err != nil {
				return nil, err
			}
			if tortoise.X.Equal(hare.X) {
				break
			}
		}

		r.Stats.Candidates++
		d, err := s.solve(r, tortoise, hare)
		if err != nil {
			return nil, err
		}
		if d != nil {
			return d, nil
		}
	}
	return nil, nil
}

// randomState picks a, b uniformly in [1, N-1] and returns a·G + b·Q.
func (s *PollardRho) randomState(r *Run, rng *rand.Rand) (rhoState, error) {
	c := r.Curve
	span := new(big.Int).Sub(c.N(), big.NewInt(1))
	a := new(big.Int).Rand(rng, span)
	a.Add(a, big.NewInt(1))
	b := new(big.Int).Rand(rng, span)
	b.Add(b, big.NewInt(1))

	aG, err := c.ScalarBaseMultiply(a)
	if err != nil {
		return rhoState{}, err
	}
	bQ, err := c.ScalarMultiply(b, r.Target)
	if err != nil {
		return rhoState{}, err
	}
	X, err := c.Add(aG, bQ)
	if err != nil {
		return rhoState{}, err
	}
	r.Stats.PointOperations += 3
	return rhoState{X: X, A: a, B: b}, nil
}

// step applies the three-way partition on x mod 3: add Q, double, or add G.
// The identity belongs to partition 0.
func (s *PollardRho) step(r *Run, st rhoState) (rhoState, error) {
	c := r.Curve
	n := c.N()

	partition := int64(0)
	if !st.X.IsInfinity() {
		partition = new(big.Int).Mod(st.X.X(), big.NewInt(3)).Int64()
	}

	var (
		next rhoState
		err  error
	)
	switch partition {
	case 0:
		next.X, err = c.Add(st.X, r.Target)
		next.A = st.A
		next.B = new(big.Int).Add(st.B, big.NewInt(1))
	case 1:
		next.X, err = c.Double(st.X)
		next.A = new(big.Int).Lsh(st.A, 1)
		next.B = new(big.Int).Lsh(st.B, 1)
	default:
		next.X, err = c.Add(st.X, c.G())
		next.A = new(big.Int).Add(st.A, big.NewInt(1))
		next.B = st.B
	}
	if err != nil {
		return rhoState{}, err
	}
	next.A = new(big.Int).Mod(next.A, n)
	next.B = new(big.Int).Mod(next.B, n)

	r.Stats.RhoSteps++
	r.Stats.PointOperations++
	return next, nil
}

// maxCollisionCandidates bounds how many solutions of a collision with
// gcd(b2 - b1, N) > 1 are tried before the collision counts as degenerate.
const maxCollisionCandidates = 1 << 16

// solve returns d from a collision, or nil when the collision is degenerate.
//
// The collision gives (a1 - a2) ≡ (b2 - b1)·d (mod N). With g = gcd(b2 - b1, N)
// the congruence has exactly g solutions d0 + k·N/g, one of which is d; they
// are checked in turn. g = N carries no information about d.
func (s *PollardRho) solve(r *Run, t, h rhoState) (*big.Int, error) {
	c := r.Curve
	n := c.N()
	da := new(big.Int).Sub(t.A, h.A)
	da.Mod(da, n)
	db := new(big.Int).Sub(h.B, t.B)
	db.Mod(db, n)

	g := new(big.Int).GCD(nil, nil, db, n)
	if g.Cmp(n) == 0 || g.Cmp(big.NewInt(maxCollisionCandidates)) > 0 {
		return nil, nil
	}
	if new(big.Int).Mod(da, g).Sign() != 0 {
		return nil, nil
	}

	m := new(big.Int).Quo(n, g)
	inv, err := curve.ModInverse(new(big.Int).Quo(db, g), m)
	if err != nil {
		return nil, nil
	}
	d := new(big.Int).Quo(da, g)
	d.Mul(d, inv)
	d.Mod(d, m)

	P, err := c.ScalarBaseMultiply(d)
	if err != nil {
		return nil, err
	}
	stride, err := c.ScalarBaseMultiply(m)
	if err != nil {
		return nil, err
	}
	r.Stats.PointOperations += 2

	for k := int64(0); k < g.Int64(); k++ {
		if k > 0 {
			r.Stats.Candidates++
		}
		if P.Equal(r.Target) {
			return d, nil
		}
		if P, err = c.Add(P, stride); err != nil {
			return nil, err
		}
		d.Add(d, m)
		r.Stats.PointOperations++
	}
	return nil, nil
}
