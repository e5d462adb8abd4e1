package curve

import (
	"math/big"
	"sync"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
)

var (
	fourBitOnce sync.Once
	fourBit     *Curve

	secpOnce sync.Once
	secp     *Curve
)

// FourBit returns the 19-point curve y² = x³ + 2x + 2 over F_17 with
// generator (5, 1). Every private key fits in 4 bits, so every mechanism can
// be exercised exhaustively on it.
func FourBit() *Curve {
	fourBitOnce.Do(func() {
		c, err := New(big.NewInt(17), big.NewInt(2), big.NewInt(2),
			big.NewInt(5), big.NewInt(1), big.NewInt(19))
		if err != nil {
			panic("curve: four-bit parameters rejected: " + err.Error())
		}
		fourBit = c.WithName("four-bit (p=17, N=19)")
	})
	return fourBit
}

// Secp256k1 returns the Bitcoin curve. Its order is far too large for the
// exhaustive mechanisms; it is meant for bounded searches such as the
// kangaroo.
func Secp256k1() *Curve {
	secpOnce.Do(func() {
		// y² = x³ + 7
		params := secp256k1.Params()
		c, err := New(params.P, big.NewInt(0), big.NewInt(7), params.Gx, params.Gy, params.N)
		if err != nil {
			panic("curve: secp256k1 parameters rejected: " + err.Error())
		}
		secp = c.WithName("secp256k1")
	})
	return secp
}

// ByName resolves a preset name as used in configuration files.
func ByName(name string) (*Curve, bool) {
	switch name {
	case "fourbit", "four-bit", "4bit":
		return FourBit(), true
	case "secp256k1":
		return Secp256k1(), true
	}
	return nil, false
}
