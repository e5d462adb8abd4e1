package curve

import (
	"errors"
	"fmt"
	"math/big"
)

// ErrNoInverse is returned when a modular inverse does not exist.
var ErrNoInverse = errors.New("no modular inverse")

var (
	two   = big.NewInt(2)
	three = big.NewInt(3)
)

func mod(a, p *big.Int) *big.Int {
	// big.Int.Mod is Euclidean, the result is already in [0, p)
	return new(big.Int).Mod(a, p)
}

func addM(a, b, p *big.Int) *big.Int { return mod(new(big.Int).Add(a, b), p) }

func subM(a, b, p *big.Int) *big.Int { return mod(new(big.Int).Sub(a, b), p) }

func mulM(a, b, p *big.Int) *big.Int { return mod(new(big.Int).Mul(a, b), p) }

// ModInverse returns x with a·x ≡ 1 (mod m) using the extended Euclidean
// algorithm. It fails with ErrNoInverse when gcd(a, m) ≠ 1, which includes
// a ≡ 0.
func ModInverse(a, m *big.Int) (*big.Int, error) {
	if m.Sign() <= 0 {
		return nil, fmt.Errorf("%w: modulus must be positive, got %s", ErrNoInverse, m)
	}
	r := mod(a, m)
	if r.Sign() == 0 {
		return nil, fmt.Errorf("%w: %s is 0 mod %s", ErrNoInverse, a, m)
	}
	x := new(big.Int)
	g := new(big.Int).GCD(x, nil, r, m)
	if g.Cmp(big.NewInt(1)) != 0 {
		return nil, fmt.Errorf("%w: gcd(%s, %s) = %s", ErrNoInverse, a, m, g)
	}
	return x.Mod(x, m), nil
}

// Negate returns -P.
func (c *Curve) Negate(P Point) Point {
	if P.IsInfinity() {
		return P
	}
	return Point{x: new(big.Int).Set(P.x), y: subM(new(big.Int), P.y, c.p), finite: true}
}

// Add returns P + Q.
func (c *Curve) Add(P, Q Point) (Point, error) {
	if P.IsInfinity() {
		return Q, nil
	}
	if Q.IsInfinity() {
		return P, nil
	}
	if P.x.Cmp(Q.x) == 0 {
		if P.y.Cmp(Q.y) != 0 {
			// P == -Q
			return Infinity(), nil
		}
		return c.Double(P)
	}

	inv, err := ModInverse(subM(Q.x, P.x, c.p), c.p)
	if err != nil {
		return Point{}, err
	}
	lam := mulM(subM(Q.y, P.y, c.p), inv, c.p)
	return c.chord(lam, P, Q), nil
}

// Double returns 2P using the tangent slope (3x² + a) / 2y.
func (c *Curve) Double(P Point) (Point, error) {
	if P.IsInfinity() || P.y.Sign() == 0 {
		return Infinity(), nil
	}
	num := addM(mulM(three, mulM(P.x, P.x, c.p), c.p), c.a, c.p)
	inv, err := ModInverse(mulM(two, P.y, c.p), c.p)
	if err != nil {
		return Point{}, err
	}
	return c.chord(mulM(num, inv, c.p), P, P), nil
}

// chord completes an addition given the slope through P and Q.
func (c *Curve) chord(lam *big.Int, P, Q Point) Point {
	xr := subM(subM(mulM(lam, lam, c.p), P.x, c.p), Q.x, c.p)
	yr := subM(mulM(lam, subM(P.x, xr, c.p), c.p), P.y, c.p)
	return Point{x: xr, y: yr, finite: true}
}

// Subtract returns P - Q.
func (c *Curve) Subtract(P, Q Point) (Point, error) {
	return c.Add(P, c.Negate(Q))
}

// ScalarMultiply returns k·P. k is reduced modulo N first, so k = 0 and
// multiples of N give the identity.
func (c *Curve) ScalarMultiply(k *big.Int, P Point) (Point, error) {
	return c.multiply(mod(k, c.n), P)
}

// ScalarBaseMultiply returns k·G.
func (c *Curve) ScalarBaseMultiply(k *big.Int) (Point, error) {
	return c.ScalarMultiply(k, c.g)
}

// multiply is double-and-add over the bits of k, most significant first.
// k must be non-negative.
func (c *Curve) multiply(k *big.Int, P Point) (Point, error) {
	R := Infinity()
	for i := k.BitLen() - 1; i >= 0; i-- {
		var err error
		if R, err = c.Double(R); err != nil {
			return Point{}, err
		}
		if k.Bit(i) == 1 {
			if R, err = c.Add(R, P); err != nil {
				return Point{}, err
			}
		}
	}
	return R, nil
}
