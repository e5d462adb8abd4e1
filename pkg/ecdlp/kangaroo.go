package ecdlp

import (
	"context"
	"math"
	"math/big"

	"github.com/mahdiidarabi/ecdlp-rollback/pkg/curve"
)

// Kangaroo is Pollard's lambda method for a key known to lie in [Low, High].
//
// The tame kangaroo starts at High·G and leaves a trail of the points it
// lands on. The wild kangaroo starts at the target and uses the same
// deterministic jumps, so once it lands on any point of the trail it follows
// the tame path and d = High + tameDistance - wildDistance. Jumps are powers
// of two up to about √(High-Low), chosen by x mod k.
type Kangaroo struct {
	Low          *big.Int
	High         *big.Int
	BudgetFactor int64
}

// Name returns MechanismKangaroo.
func (s *Kangaroo) Name() Mechanism { return MechanismKangaroo }

type jumpTable struct {
	distances []*big.Int
	points    []curve.Point
}

func (j *jumpTable) index(P curve.Point) int {
	if P.IsInfinity() {
		return 0
	}
	k := big.NewInt(int64(len(j.points)))
	return int(new(big.Int).Mod(P.X(), k).Int64())
}

// Search runs the tame kangaroo for its whole budget, then releases the wild
// one. A key outside the bound is normally reported as exhausted; any
// candidate is verified before it is returned.
func (s *Kangaroo) Search(ctx context.Context, r *Run) (*big.Int, error) {
	c := r.Curve
	width := new(big.Int).Sub(s.High, s.Low)
	root := new(big.Int).Sqrt(width)

	jumps, err := s.jumps(r, root)
	if err != nil {
		return nil, err
	}
	budget := s.budget(root)

	tame, err := c.ScalarBaseMultiply(s.High)
	if err != nil {
		return nil, err
	}
	r.Stats.PointOperations++

	tameDist := new(big.Int)
	trail := map[string]*big.Int{tame.Key(): new(big.Int)}
	for i := uint64(0); i < budget; i++ {
		if !r.Next(ctx) {
			return nil, nil
		}
		idx := jumps.index(tame)
		if tame, err = c.Add(tame, jumps.points[idx]); err != nil {
			return nil, err
		}
		tameDist.Add(tameDist, jumps.distances[idx])
		r.Stats.TameJumps++
		r.Stats.PointOperations++

		if _, seen := trail[tame.Key()]; !seen {
			trail[tame.Key()] = new(big.Int).Set(tameDist)
		}
	}

	wild := r.Target
	wildDist := new(big.Int)
	for i := uint64(0); ; i++ {
		if td, ok := trail[wild.Key()]; ok {
			r.Stats.Candidates++
			d := new(big.Int).Add(s.High, td)
			d.Sub(d, wildDist)
			d.Mod(d, c.N())

			ok, err := r.verify(d)
			if err != nil {
				return nil, err
			}
			if ok {
				return d, nil
			}
		}
		if i == budget {
			break
		}
		if !r.Next(ctx) {
			return nil, nil
		}
		idx := jumps.index(wild)
		if wild, err = c.Add(wild, jumps.points[idx]); err != nil {
			return nil, err
		}
		wildDist.Add(wildDist, jumps.distances[idx])
		r.Stats.WildJumps++
		r.Stats.PointOperations++
	}
	return nil, nil
}

// jumps builds 2^i·G for i < max(2, bitlen(root)+1).
func (s *Kangaroo) jumps(r *Run, root *big.Int) (*jumpTable, error) {
	k := root.BitLen() + 1
	if k < 2 {
		k = 2
	}
	t := &jumpTable{
		distances: make([]*big.Int, k),
		points:    make([]curve.Point, k),
	}
	P := r.Curve.G()
	for i := 0; i < k; i++ {
		t.distances[i] = new(big.Int).Lsh(big.NewInt(1), uint(i))
		t.points[i] = P

		var err error
		if P, err = r.Curve.Double(P); err != nil {
			return nil, err
		}
		r.Stats.PointOperations++
	}
	return t, nil
}

// budget is BudgetFactor·(root+1) jumps per kangaroo, saturating at MaxUint64.
func (s *Kangaroo) budget(root *big.Int) uint64 {
	b := new(big.Int).Add(root, big.NewInt(1))
	b.Mul(b, big.NewInt(s.BudgetFactor))
	if !b.IsUint64() {
		return math.MaxUint64
	}
	return b.Uint64()
}
