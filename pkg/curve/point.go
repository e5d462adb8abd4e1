package curve

import (
	"fmt"
	"math/big"
)

// Point is an affine curve point or the point at infinity. The zero value is
// the point at infinity. Points are values: arithmetic always returns a new
// Point and never modifies its operands.
type Point struct {
	x, y   *big.Int
	finite bool
}

// NewPoint returns the affine point (x, y). It does not check curve
// membership; use Curve.IsOnCurve for that.
func NewPoint(x, y *big.Int) Point {
	return Point{x: new(big.Int).Set(x), y: new(big.Int).Set(y), finite: true}
}

// Infinity returns the identity element.
func Infinity() Point { return Point{} }

// IsInfinity reports whether P is the identity.
func (P Point) IsInfinity() bool { return !P.finite }

// X returns a copy of the x coordinate, or nil for the identity.
func (P Point) X() *big.Int {
	if !P.finite {
		return nil
	}
	return new(big.Int).Set(P.x)
}

// Y returns a copy of the y coordinate, or nil for the identity.
func (P Point) Y() *big.Int {
	if !P.finite {
		return nil
	}
	return new(big.Int).Set(P.y)
}

// Equal reports coordinate equality, or both being the identity.
func (P Point) Equal(Q Point) bool {
	if P.finite != Q.finite {
		return false
	}
	if !P.finite {
		return true
	}
	return P.x.Cmp(Q.x) == 0 && P.y.Cmp(Q.y) == 0
}

// Key returns a string usable as a map key; equal points have equal keys.
func (P Point) Key() string {
	if !P.finite {
		return "inf"
	}
	return P.x.Text(16) + ":" + P.y.Text(16)
}

func (P Point) String() string {
	if !P.finite {
		return "O"
	}
	return fmt.Sprintf("(%s, %s)", P.x, P.y)
}
