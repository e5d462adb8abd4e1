// Package grouporder factors group orders and recombines residues with the
// Chinese Remainder Theorem for Pohlig-Hellman and for checking that a
// curve's stated order is the exact order of its generator.
package grouporder

import (
	"errors"
	"fmt"
	"math/big"
	"sort"
)

// ErrFactorization is returned when a composite cofactor could not be split
// within the rho iteration budget.
var ErrFactorization = errors.New("factorization failed")

const (
	trialDivisionBound = 1 << 12
	rhoIterationBudget = 1 << 22
	rhoAttempts        = 16
	primalityRounds    = 20
)

var one = big.NewInt(1)

// Factor is one prime power p^e dividing a group order.
type Factor struct {
	Prime    *big.Int
	Exponent int
}

// Power returns p^e.
func (f Factor) Power() *big.Int {
	return new(big.Int).Exp(f.Prime, big.NewInt(int64(f.Exponent)), nil)
}

func (f Factor) String() string {
	if f.Exponent == 1 {
		return f.Prime.String()
	}
	return fmt.Sprintf("%s^%d", f.Prime, f.Exponent)
}

// Factorize returns the prime factorization of n sorted by prime. n = 1 gives
// an empty slice. A prime n gives the single factor n^1.
func Factorize(n *big.Int) ([]Factor, error) {
	if n == nil || n.Sign() <= 0 {
		return nil, fmt.Errorf("%w: n must be positive, got %v", ErrFactorization, n)
	}

	counts := make(map[string]*Factor)
	add := func(p *big.Int) {
		key := p.String()
		if f, ok := counts[key]; ok {
			f.Exponent++
			return
		}
		counts[key] = &Factor{Prime: new(big.Int).Set(p), Exponent: 1}
	}

	rest := new(big.Int).Set(n)
	q, r := new(big.Int), new(big.Int)
	for d := int64(2); d < trialDivisionBound; d++ {
		bd := big.NewInt(d)
		if new(big.Int).Mul(bd, bd).Cmp(rest) > 0 {
			break
		}
		for {
			q.QuoRem(rest, bd, r)
			if r.Sign() != 0 {
				break
			}
			add(bd)
			rest.Set(q)
		}
	}

	if err := split(rest, add); err != nil {
		return nil, err
	}

	factors := make([]Factor, 0, len(counts))
	for _, f := range counts {
		factors = append(factors, *f)
	}
	sort.Slice(factors, func(i, j int) bool {
		return factors[i].Prime.Cmp(factors[j].Prime) < 0
	})
	return factors, nil
}

func split(n *big.Int, add func(*big.Int)) error {
	if n.Cmp(one) == 0 {
		return nil
	}
	if n.ProbablyPrime(primalityRounds) {
		add(n)
		return nil
	}
	for c := int64(1); c <= rhoAttempts; c++ {
		d := pollardRho(n, big.NewInt(c))
		if d == nil {
			continue
		}
		if err := split(d, add); err != nil {
			return err
		}
		return split(new(big.Int).Quo(n, d), add)
	}
	return fmt.Errorf("%w: could not split %s", ErrFactorization, n)
}

// pollardRho looks for a non-trivial divisor of the composite n using the
// map x -> x² + c with Floyd cycle detection. It returns nil on failure.
func pollardRho(n, c *big.Int) *big.Int {
	x, y := big.NewInt(2), big.NewInt(2)
	d := big.NewInt(1)
	diff := new(big.Int)
	f := func(v *big.Int) {
		v.Mul(v, v)
		v.Add(v, c)
		v.Mod(v, n)
	}
	for i := 0; i < rhoIterationBudget && d.Cmp(one) == 0; i++ {
		f(x)
		f(y)
		f(y)
		diff.Sub(x, y)
		d.GCD(nil, nil, diff.Abs(diff), n)
	}
	if d.Cmp(one) == 0 || d.Cmp(n) == 0 {
		return nil
	}
	return d
}
