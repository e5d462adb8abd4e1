package curve

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/mahdiidarabi/ecdlp-rollback/pkg/grouporder"
)

// ErrInvalidCurve is returned by New when the parameters do not describe a
// usable short Weierstrass curve with a generator of the stated order.
var ErrInvalidCurve = errors.New("invalid curve parameters")

// Curve is y² = x³ + a·x + b over F_p together with a generator G of order N.
// A Curve is immutable once built and safe for concurrent use.
type Curve struct {
	name string
	p    *big.Int
	a    *big.Int
	b    *big.Int
	g    Point
	n    *big.Int
}

// New validates the parameters and returns the curve.
//
// Checks performed:
//   - p > 3 and p is (probably) prime
//   - the curve is non-singular (4a³ + 27b² ≢ 0 mod p)
//   - G lies on the curve
//   - N > 1 and N·G is the point at infinity
//   - (N/q)·G is not the point at infinity for any prime q | N, so N is the
//     exact order of G and not a multiple of it
func New(p, a, b, gx, gy, n *big.Int) (*Curve, error) {
	if p == nil || a == nil || b == nil || gx == nil || gy == nil || n == nil {
		return nil, fmt.Errorf("%w: all parameters are required", ErrInvalidCurve)
	}
	if p.Cmp(big.NewInt(3)) <= 0 {
		return nil, fmt.Errorf("%w: p must be > 3, got %s", ErrInvalidCurve, p)
	}
	if !p.ProbablyPrime(20) {
		return nil, fmt.Errorf("%w: p=%s is not prime", ErrInvalidCurve, p)
	}
	if n.Cmp(big.NewInt(1)) <= 0 {
		return nil, fmt.Errorf("%w: order must be > 1, got %s", ErrInvalidCurve, n)
	}

	c := &Curve{
		p: new(big.Int).Set(p),
		a: mod(a, p),
		b: mod(b, p),
		n: new(big.Int).Set(n),
	}
	if c.isSingular() {
		return nil, fmt.Errorf("%w: singular curve, 4a^3+27b^2 = 0 mod p", ErrInvalidCurve)
	}

	c.g = NewPoint(mod(gx, p), mod(gy, p))
	if !c.IsOnCurve(c.g) {
		return nil, fmt.Errorf("%w: generator %s is not on the curve", ErrInvalidCurve, c.g)
	}

	nG, err := c.multiply(c.n, c.g)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCurve, err)
	}
	if !nG.IsInfinity() {
		return nil, fmt.Errorf("%w: N*G != O for N=%s", ErrInvalidCurve, n)
	}

	factors, err := grouporder.Factorize(c.n)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCurve, err)
	}
	for _, f := range factors {
		h := new(big.Int).Quo(c.n, f.Prime)
		hG, err := c.multiply(h, c.g)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidCurve, err)
		}
		if hG.IsInfinity() {
			return nil, fmt.Errorf("%w: N=%s is a multiple of the order of G (%s*G = O)", ErrInvalidCurve, n, h)
		}
	}
	return c, nil
}

// WithName returns a copy of the curve labelled with name.
func (c *Curve) WithName(name string) *Curve {
	cp := *c
	cp.name = name
	return &cp
}

// Name returns the curve label, or a parameter summary when unnamed.
func (c *Curve) Name() string {
	if c.name != "" {
		return c.name
	}
	return fmt.Sprintf("y^2 = x^3 + %sx + %s mod %s", c.a, c.b, c.p)
}

// P returns the field modulus.
func (c *Curve) P() *big.Int { return new(big.Int).Set(c.p) }

// A returns the linear coefficient.
func (c *Curve) A() *big.Int { return new(big.Int).Set(c.a) }

// B returns the constant coefficient.
func (c *Curve) B() *big.Int { return new(big.Int).Set(c.b) }

// G returns the generator.
func (c *Curve) G() Point { return c.g }

// N returns the order of the generator.
func (c *Curve) N() *big.Int { return new(big.Int).Set(c.n) }

// InSubgroup reports whether P is on the curve and N·P = O, that is, whether
// P can be a multiple of G.
func (c *Curve) InSubgroup(P Point) (bool, error) {
	if !c.IsOnCurve(P) {
		return false, nil
	}
	nP, err := c.multiply(c.n, P)
	if err != nil {
		return false, err
	}
	return nP.IsInfinity(), nil
}

// IsOnCurve reports whether P satisfies the curve equation. The identity is
// always on the curve.
func (c *Curve) IsOnCurve(P Point) bool {
	if P.IsInfinity() {
		return true
	}
	if P.x.Sign() < 0 || P.x.Cmp(c.p) >= 0 || P.y.Sign() < 0 || P.y.Cmp(c.p) >= 0 {
		return false
	}
	return c.rhs(P.x).Cmp(mulM(P.y, P.y, c.p)) == 0
}

// rhs evaluates x³ + a·x + b mod p.
func (c *Curve) rhs(x *big.Int) *big.Int {
	x3 := mulM(x, mulM(x, x, c.p), c.p)
	return addM(addM(x3, mulM(c.a, x, c.p), c.p), c.b, c.p)
}

func (c *Curve) isSingular() bool {
	a3 := mulM(c.a, mulM(c.a, c.a, c.p), c.p)
	b2 := mulM(c.b, c.b, c.p)
	d := addM(mulM(big.NewInt(4), a3, c.p), mulM(big.NewInt(27), b2, c.p), c.p)
	return d.Sign() == 0
}
