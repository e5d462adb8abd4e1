package ecdlp

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/mahdiidarabi/ecdlp-rollback/pkg/curve"
)

func TestEngine_Compare(t *testing.T) {
	c := curve61(t)
	Q := publicKey(t, c, 37)

	var cfgs []AttackConfig
	for _, m := range Mechanisms() {
		cfgs = append(cfgs, keyConfig(c, m))
	}
	cfgs = append(cfgs, DefaultAttackConfig(MechanismKangaroo)) // no bound

	results, err := NewEngine(c).Compare(context.Background(), Q, cfgs)
	if err != nil {
		t.Fatalf("Compare failed: %v", err)
	}
	if len(results) != len(cfgs) {
		t.Fatalf("Expected %d results, got %d", len(cfgs), len(results))
	}

	for i, cmp := range results[:len(results)-1] {
		if cmp.Err != nil {
			t.Errorf("%s: unexpected error %v", cfgs[i].Mechanism, cmp.Err)
			continue
		}
		if !cmp.Result.Success || cmp.Result.PrivateKey.Int64() != 37 {
			t.Errorf("%s: expected d=37, got %+v", cfgs[i].Mechanism, cmp.Result)
		}
		if cmp.Result.Stats.Mechanism != cfgs[i].Mechanism {
			t.Errorf("result %d: stats belong to %s", i, cmp.Result.Stats.Mechanism)
		}
	}

	last := results[len(results)-1]
	if !errors.Is(last.Err, ErrMissingBound) || last.Result != nil {
		t.Errorf("unbounded kangaroo: expected ErrMissingBound, got %+v", last)
	}
}

func TestEngine_CompareInvalidTarget(t *testing.T) {
	c := curve.FourBit()
	bad := curve.NewPoint(big.NewInt(1), big.NewInt(1))
	_, err := NewEngine(c).Compare(context.Background(), bad, []AttackConfig{DefaultAttackConfig(MechanismBruteForce)})
	if !isInvalidInput(err) {
		t.Errorf("Expected ErrInvalidInput, got %v", err)
	}
}
