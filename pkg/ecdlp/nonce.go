package ecdlp

import (
	"bytes"
	"errors"
	"fmt"
	"math/big"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"

	"github.com/mahdiidarabi/ecdlp-rollback/pkg/curve"
)

// Signature is an ECDSA signature together with the message hash it signs.
type Signature struct {
	Z *big.Int // message hash, reduced mod N
	R *big.Int
	S *big.Int
}

// Sign produces the ECDSA signature of z under d with nonce k:
//
//	r = (k·G).x mod N
//	s = k⁻¹·(z + r·d) mod N
//
// It exists for building fixtures; k must never be reused in real signing.
func Sign(c *curve.Curve, d, z, k *big.Int) (*Signature, error) {
	n := c.N()
	kG, err := c.ScalarBaseMultiply(k)
	if err != nil {
		return nil, err
	}
	if kG.IsInfinity() {
		return nil, fmt.Errorf("%w: nonce is 0 mod N", ErrInvalidInput)
	}

	r := new(big.Int).Mod(kG.X(), n)
	if r.Sign() == 0 {
		return nil, errors.New("r is zero, pick another nonce")
	}
	kInv, err := curve.ModInverse(k, n)
	if err != nil {
		return nil, err
	}

	s := new(big.Int).Mul(r, d)
	s.Add(s, z)
	s.Mul(s, kInv)
	s.Mod(s, n)
	if s.Sign() == 0 {
		return nil, errors.New("s is zero, pick another nonce")
	}
	return &Signature{Z: new(big.Int).Mod(z, n), R: r, S: s}, nil
}

// RecoverFromKnownNonce returns the private key from one signature whose
// nonce k is known:
//
//	d = r⁻¹·(s·k - z) mod N
func RecoverFromKnownNonce(c *curve.Curve, sig *Signature, k *big.Int) (*big.Int, error) {
	if sig == nil || sig.R == nil || sig.S == nil || sig.Z == nil || k == nil {
		return nil, fmt.Errorf("%w: signature and nonce are required", ErrInvalidInput)
	}
	n := c.N()

	rInv, err := curve.ModInverse(sig.R, n)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	d := new(big.Int).Mul(sig.S, k)
	d.Sub(d, sig.Z)
	d.Mul(d, rInv)
	d.Mod(d, n)
	return d, nil
}

// VerifyCompressedPublicKey reports whether d is the secp256k1 private key
// behind the 33-byte compressed public key pub.
func VerifyCompressedPublicKey(d *big.Int, pub []byte) (bool, error) {
	if len(pub) != secp256k1.PubKeyBytesLenCompressed {
		return false, fmt.Errorf("%w: public key must be %d bytes (compressed format), got %d",
			ErrInvalidInput, secp256k1.PubKeyBytesLenCompressed, len(pub))
	}
	if d == nil || d.Sign() <= 0 || d.Cmp(secp256k1.Params().N) >= 0 {
		return false, fmt.Errorf("%w: private key out of valid range", ErrInvalidInput)
	}

	var buf [32]byte
	d.FillBytes(buf[:])
	got := secp256k1.PrivKeyFromBytes(buf[:]).PubKey().SerializeCompressed()

	return bytes.Equal(got, pub), nil
}
