package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mahdiidarabi/ecdlp-rollback/pkg/ecdlp"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "rollback.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadConfigFile_FlagsOverrideFile(t *testing.T) {
	path := writeConfig(t, `
curve: secp256k1
mechanism: pollard_kangaroo
bound: "1000,2000"
max-iterations: 5000
verbose: true
`)
	o := &options{}
	fs := newFlagSet(o)
	require.NoError(t, fs.Parse([]string{"-config", path, "-curve", "fourbit"}))
	require.NoError(t, loadConfigFile(fs, o.configFile))

	assert.Equal(t, "fourbit", o.curveName, "explicit flag must win")
	assert.Equal(t, "pollard_kangaroo", o.mechanism)
	assert.Equal(t, "1000,2000", o.bound)
	assert.Equal(t, uint64(5000), o.maxIterations)
	assert.True(t, o.verbose)

	cfg, err := o.attackConfig()
	require.NoError(t, err)
	assert.Equal(t, ecdlp.MechanismKangaroo, cfg.Mechanism)
	require.NotNil(t, cfg.Bound)
	assert.Equal(t, int64(1000), cfg.Bound.Low.Int64())
	assert.Equal(t, int64(2000), cfg.Bound.High.Int64())
}

func TestLoadConfigFile_Errors(t *testing.T) {
	o := &options{}
	fs := newFlagSet(o)
	require.NoError(t, fs.Parse(nil))

	assert.Error(t, loadConfigFile(fs, filepath.Join(t.TempDir(), "missing.yaml")))
	assert.Error(t, loadConfigFile(fs, writeConfig(t, "no-such-flag: 1\n")))
	assert.Error(t, loadConfigFile(fs, writeConfig(t, "max-iterations: lots\n")))
}

func TestBuildCurve(t *testing.T) {
	o := &options{curveName: "secp256k1"}
	c, err := o.buildCurve()
	require.NoError(t, err)
	assert.Equal(t, "secp256k1", c.Name())

	o = &options{p: "7919", a: "1001", b: "75", gx: "4023", gy: "6036", n: "0x1ed1"}
	c, err = o.buildCurve()
	require.NoError(t, err)
	assert.Equal(t, int64(7889), c.N().Int64())

	_, err = (&options{p: "7919"}).buildCurve()
	assert.Error(t, err, "partial custom curve")

	_, err = (&options{curveName: "p256"}).buildCurve()
	assert.Error(t, err)
}

func TestParseRangeAndSignature(t *testing.T) {
	low, high, err := parseRange("0x10, 99")
	require.NoError(t, err)
	assert.Equal(t, int64(16), low.Int64())
	assert.Equal(t, int64(99), high.Int64())

	_, _, err = parseRange("1")
	assert.Error(t, err)

	sig, err := parseSignature("10,6,5")
	require.NoError(t, err)
	assert.Equal(t, int64(10), sig.R.Int64())
	assert.Equal(t, int64(6), sig.S.Int64())
	assert.Equal(t, int64(5), sig.Z.Int64())

	n, err := parseNumber("010")
	require.NoError(t, err)
	assert.Equal(t, int64(10), n.Int64())
}

func TestExpectedIterations(t *testing.T) {
	o := &options{curveName: "fourbit"}
	c, err := o.buildCurve()
	require.NoError(t, err)

	assert.Equal(t, int64(18), expectedIterations(c, ecdlp.DefaultAttackConfig(ecdlp.MechanismBruteForce), 0))
	assert.Equal(t, int64(5), expectedIterations(c, ecdlp.DefaultAttackConfig(ecdlp.MechanismBruteForce), 5))
	assert.Equal(t, int64(-1), expectedIterations(c, ecdlp.DefaultAttackConfig(ecdlp.MechanismPollardRho), 0))
}
