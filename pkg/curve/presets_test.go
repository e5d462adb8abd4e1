package curve

import (
	"math/big"
	"testing"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/decred/dcrd/dcrec/secp256k1/v4"
)

func TestSecp256k1_MatchesBtcec(t *testing.T) {
	c := Secp256k1()
	if c.Name() != "secp256k1" {
		t.Errorf("Expected name 'secp256k1', got '%s'", c.Name())
	}
	if c.A().Sign() != 0 || c.B().Cmp(big.NewInt(7)) != 0 {
		t.Errorf("Expected y^2 = x^3 + 7, got a=%s b=%s", c.A(), c.B())
	}
	params := secp256k1.Params()
	if c.P().Cmp(params.P) != 0 || c.N().Cmp(params.N) != 0 {
		t.Error("field prime and order should match decred's parameters")
	}

	scalars := []*big.Int{
		big.NewInt(1),
		big.NewInt(7),
		big.NewInt(0xDEADBEEF),
		new(big.Int).Lsh(big.NewInt(1), 130),
		new(big.Int).Sub(c.N(), big.NewInt(1)),
	}
	for _, k := range scalars {
		got, err := c.ScalarBaseMultiply(k)
		if err != nil {
			t.Fatalf("ScalarBaseMultiply(%s) failed: %v", k, err)
		}
		wantX, wantY := btcec.S256().ScalarBaseMult(k.Bytes())
		if got.X().Cmp(wantX) != 0 || got.Y().Cmp(wantY) != 0 {
			t.Errorf("k=%s: got %s, btcec gives (%s, %s)", k.Text(16), got, wantX, wantY)
		}
	}
}

func TestSecp256k1_MatchesDecredPubKey(t *testing.T) {
	c := Secp256k1()
	k := big.NewInt(0x1234567)

	var buf [32]byte
	k.FillBytes(buf[:])
	pub := secp256k1.PrivKeyFromBytes(buf[:]).PubKey()

	got, err := c.ScalarBaseMultiply(k)
	if err != nil {
		t.Fatalf("ScalarBaseMultiply failed: %v", err)
	}
	if got.X().Cmp(pub.X()) != 0 || got.Y().Cmp(pub.Y()) != 0 {
		t.Errorf("got %s, decred gives (%s, %s)", got, pub.X(), pub.Y())
	}
	if !c.IsOnCurve(got) {
		t.Error("public key should be on the curve")
	}
}
