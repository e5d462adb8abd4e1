package ecdlp

import (
	"context"
	"fmt"
	"math/big"

	"github.com/mahdiidarabi/ecdlp-rollback/pkg/curve"
)

// LookupTable maps k·G to k for every k in [1, N-1]. It only makes sense for
// toy curves, where it answers any number of targets with one probe each.
// A built table is read-only and safe for concurrent use.
type LookupTable struct {
	curve *curve.Curve
	index map[string]*big.Int
}

// NewLookupTable precomputes the table for c. It fails with ErrInvalidInput
// when N-1 exceeds limit (zero means DefaultTableLimit) and returns ctx.Err()
// if cancelled while building.
func NewLookupTable(ctx context.Context, c *curve.Curve, limit uint64) (*LookupTable, error) {
	if err := checkTableSize(c, limit); err != nil {
		return nil, err
	}
	t, err := buildLookupTable(c, func() bool {
		select {
		case <-ctx.Done():
			return false
		default:
			return true
		}
	}, nil)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, ctx.Err()
	}
	return t, nil
}

// Len returns the number of stored points.
func (t *LookupTable) Len() int {
	return len(t.index)
}

// Curve returns the curve the table was built for.
func (t *LookupTable) Curve() *curve.Curve {
	return t.curve
}

// Lookup returns k with k·G = P. The identity maps to 0.
func (t *LookupTable) Lookup(P curve.Point) (*big.Int, bool) {
	if P.IsInfinity() {
		return new(big.Int), true
	}
	k, ok := t.index[P.Key()]
	if !ok {
		return nil, false
	}
	return new(big.Int).Set(k), true
}

func checkTableSize(c *curve.Curve, limit uint64) error {
	if limit == 0 {
		limit = DefaultTableLimit
	}
	entries := new(big.Int).Sub(c.N(), big.NewInt(1))
	if !entries.IsUint64() || entries.Uint64() > limit {
		return fmt.Errorf("%w: lookup table of %s entries exceeds limit %d", ErrInvalidInput, entries, limit)
	}
	return nil
}

// buildLookupTable stores k·G for k = 1..N-1, calling next before each entry.
// It returns a nil table when next refuses.
func buildLookupTable(c *curve.Curve, next func() bool, stats *ExecutionStats) (*LookupTable, error) {
	n := c.N()
	t := &LookupTable{curve: c, index: make(map[string]*big.Int, n.Uint64())}

	G := c.G()
	R := curve.Infinity()
	for k := big.NewInt(1); k.Cmp(n) < 0; k.Add(k, big.NewInt(1)) {
		if !next() {
			return nil, nil
		}
		var err error
		if R, err = c.Add(R, G); err != nil {
			return nil, err
		}
		t.index[R.Key()] = new(big.Int).Set(k)
		if stats != nil {
			stats.PointOperations++
		}
	}
	return t, nil
}

// TableLookup answers the target from a LookupTable, building one first when
// none was supplied.
type TableLookup struct {
	Table      *LookupTable
	TableLimit uint64
}

// Name returns MechanismLookupTable.
func (s *TableLookup) Name() Mechanism { return MechanismLookupTable }

// Search probes the table once. A table built for another curve is an input
// error.
func (s *TableLookup) Search(ctx context.Context, r *Run) (*big.Int, error) {
	table := s.Table
	if table == nil {
		if err := checkTableSize(r.Curve, s.TableLimit); err != nil {
			return nil, err
		}
		var err error
		table, err = buildLookupTable(r.Curve, func() bool { return r.Next(ctx) }, r.Stats)
		if err != nil || table == nil {
			return nil, err
		}
	} else if !sameCurve(table.curve, r.Curve) {
		return nil, fmt.Errorf("%w: lookup table was built for %s, not %s",
			ErrInvalidInput, table.curve.Name(), r.Curve.Name())
	}

	if !r.Next(ctx) {
		return nil, nil
	}
	r.Stats.KeysTested++
	d, ok := table.Lookup(r.Target)
	if !ok {
		return nil, nil
	}
	r.Stats.Candidates++
	return d, nil
}

func sameCurve(a, b *curve.Curve) bool {
	if a == b {
		return true
	}
	return a.P().Cmp(b.P()) == 0 && a.A().Cmp(b.A()) == 0 && a.B().Cmp(b.B()) == 0 &&
		a.N().Cmp(b.N()) == 0 && a.G().Equal(b.G())
}
