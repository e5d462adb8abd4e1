package ecdlp

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mahdiidarabi/ecdlp-rollback/pkg/curve"
)

// newTestCurve builds a curve from small parameters or fails the test.
func newTestCurve(t *testing.T, p, a, b, gx, gy, n int64) *curve.Curve {
	t.Helper()
	c, err := curve.New(big.NewInt(p), big.NewInt(a), big.NewInt(b), big.NewInt(gx), big.NewInt(gy), big.NewInt(n))
	require.NoError(t, err)
	return c
}

// curve61 has prime order 61, so every mechanism applies.
func curve61(t *testing.T) *curve.Curve {
	return newTestCurve(t, 47, 3, 5, 1, 3, 61)
}

// curve28 has order 28 = 2²·7.
func curve28(t *testing.T) *curve.Curve {
	return newTestCurve(t, 23, 1, 1, 0, 1, 28)
}

// curve39 has order 39 = 3·13.
func curve39(t *testing.T) *curve.Curve {
	return newTestCurve(t, 41, 1, 3, 3, 19, 39)
}

// curve7889 is y² = x³ + 1001x + 75 over F_7919 with order 7889 = 7³·23.
func curve7889(t *testing.T) *curve.Curve {
	return newTestCurve(t, 7919, 1001, 75, 4023, 6036, 7889)
}

// publicKey returns d·G.
func publicKey(t *testing.T, c *curve.Curve, d int64) curve.Point {
	t.Helper()
	Q, err := c.ScalarBaseMultiply(big.NewInt(d))
	require.NoError(t, err)
	return Q
}

// attack runs one mechanism with default options and no cap.
func attack(t *testing.T, c *curve.Curve, Q curve.Point, cfg AttackConfig) *AttackResult {
	t.Helper()
	result, err := NewEngine(c).Attack(context.Background(), Q, cfg)
	require.NoError(t, err)
	require.NotNil(t, result)
	return result
}

// keyConfig returns the configuration for m, bounded to the whole key space
// when m is the kangaroo.
func keyConfig(c *curve.Curve, m Mechanism) AttackConfig {
	cfg := DefaultAttackConfig(m)
	if m == MechanismKangaroo {
		cfg = cfg.WithBound(big.NewInt(1), new(big.Int).Sub(c.N(), big.NewInt(1)))
	}
	return cfg
}

func isInvalidInput(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}
