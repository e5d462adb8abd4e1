package grouporder

import (
	"errors"
	"fmt"
	"math/big"
)

// ErrInconsistentSystem is returned when two congruences contradict each other
// modulo the gcd of their moduli. With the pairwise coprime moduli produced by
// Factorize this cannot happen.
var ErrInconsistentSystem = errors.New("inconsistent congruence system")

// Residue is the congruence x ≡ Remainder (mod Modulus).
type Residue struct {
	Remainder *big.Int
	Modulus   *big.Int
}

// CombineCRT solves the system of congruences and returns (x, M) where M is
// the lcm of the moduli and x is the unique solution in [0, M). An empty
// system gives (0, 1).
func CombineCRT(residues []Residue) (*big.Int, *big.Int, error) {
	x := new(big.Int)
	m := big.NewInt(1)

	for i, res := range residues {
		if res.Modulus == nil || res.Modulus.Sign() <= 0 {
			return nil, nil, fmt.Errorf("residue %d: modulus must be positive", i)
		}
		if res.Remainder == nil {
			return nil, nil, fmt.Errorf("residue %d: missing remainder", i)
		}
		r := new(big.Int).Mod(res.Remainder, res.Modulus)

		g := new(big.Int).GCD(nil, nil, m, res.Modulus)
		diff := new(big.Int).Sub(r, x)
		quo, rem := new(big.Int).QuoRem(diff, g, new(big.Int))
		if rem.Sign() != 0 {
			return nil, nil, fmt.Errorf("%w: x = %s mod %s contradicts x = %s mod %s",
				ErrInconsistentSystem, x, m, r, res.Modulus)
		}

		// Solve (m/g)·t ≡ diff/g (mod modulus/g), then x += m·t.
		mg := new(big.Int).Quo(m, g)
		ng := new(big.Int).Quo(res.Modulus, g)
		t := new(big.Int)
		if ng.Cmp(one) != 0 {
			inv := new(big.Int).ModInverse(new(big.Int).Mod(mg, ng), ng)
			if inv == nil {
				return nil, nil, fmt.Errorf("%w: no inverse of %s mod %s", ErrInconsistentSystem, mg, ng)
			}
			t.Mul(quo, inv)
			t.Mod(t, ng)
		}

		lcm := new(big.Int).Mul(mg, res.Modulus)
		x.Add(x, t.Mul(t, m))
		x.Mod(x, lcm)
		m = lcm
	}
	return x, m, nil
}
