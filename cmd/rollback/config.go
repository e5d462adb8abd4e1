package main

import (
	"errors"
	"flag"
	"fmt"
	"math/big"
	"strings"

	"github.com/spf13/viper"

	"github.com/mahdiidarabi/ecdlp-rollback/pkg/curve"
	"github.com/mahdiidarabi/ecdlp-rollback/pkg/ecdlp"
)

// options holds every command-line setting. A YAML config file may supply
// any of them under the flag's name; flags given explicitly win.
type options struct {
	configFile string

	curveName     string
	p, a, b       string
	gx, gy, n     string
	target        string
	targetsFile   string
	format        string
	mechanism     string
	bound         string
	signature     string
	nonce         string
	maxIterations uint64
	progressEvery uint64
	seed          int64
	maxRestarts   int
	budgetFactor  int64
	tableLimit    uint64
	workers       int
	compare       bool
	stopOnFirst   bool
	verbose       bool
	noProgress    bool
}

func newFlagSet(o *options) *flag.FlagSet {
	fs := flag.NewFlagSet("rollback", flag.ExitOnError)

	fs.StringVar(&o.configFile, "config", "", "Path to a YAML config file")

	fs.StringVar(&o.curveName, "curve", "fourbit", "Preset curve (fourbit or secp256k1)")
	fs.StringVar(&o.p, "p", "", "Custom curve: field prime")
	fs.StringVar(&o.a, "a", "", "Custom curve: coefficient a")
	fs.StringVar(&o.b, "b", "", "Custom curve: coefficient b")
	fs.StringVar(&o.gx, "gx", "", "Custom curve: generator x")
	fs.StringVar(&o.gy, "gy", "", "Custom curve: generator y")
	fs.StringVar(&o.n, "n", "", "Custom curve: order of the generator")

	fs.StringVar(&o.target, "target", "", "Public key as \"x,y\" or SEC1 hex")
	fs.StringVar(&o.targetsFile, "targets", "", "Path to a targets file (JSON or CSV) for batch mode")
	fs.StringVar(&o.format, "format", "json", "Targets file format (json or csv)")
	fs.StringVar(&o.signature, "signature", "", "Known-nonce mode: signature as \"r,s,z\"")
	fs.StringVar(&o.nonce, "nonce", "", "Known-nonce mode: the nonce k")

	fs.StringVar(&o.mechanism, "mechanism", string(ecdlp.MechanismBabyStepGiant),
		"brute_force, baby_step_giant_step, pollard_rho, pollard_kangaroo, pohlig_hellman or lookup_table")
	fs.StringVar(&o.bound, "bound", "", "Kangaroo interval (format: low,high)")
	fs.Uint64Var(&o.maxIterations, "max-iterations", 0, "Iteration cap (0 = unlimited)")
	fs.Uint64Var(&o.progressEvery, "progress-interval", 1000, "Iterations between progress updates")
	fs.Int64Var(&o.seed, "seed", ecdlp.DefaultSeed, "Pollard rho seed (0 = time based)")
	fs.IntVar(&o.maxRestarts, "max-restarts", ecdlp.DefaultMaxRestarts, "Pollard rho restarts after degenerate collisions")
	fs.Int64Var(&o.budgetFactor, "budget-factor", ecdlp.DefaultBudgetFactor, "Kangaroo jumps per kangaroo, in units of sqrt(high-low)")
	fs.Uint64Var(&o.tableLimit, "table-limit", ecdlp.DefaultTableLimit, "Maximum entries of a precomputed table")

	fs.IntVar(&o.workers, "workers", 0, "Number of parallel workers in batch mode (0 = auto-detect based on CPU cores)")
	fs.BoolVar(&o.compare, "compare", false, "Run every applicable mechanism against the target")
	fs.BoolVar(&o.stopOnFirst, "stop-on-first", false, "Batch mode: stop once any target is solved")
	fs.BoolVar(&o.verbose, "verbose", false, "Log run start and finish")
	fs.BoolVar(&o.noProgress, "no-progress", false, "Disable the progress bar")

	return fs
}

// loadConfigFile reads path with viper and applies every key that was not
// set on the command line through the flag of the same name.
func loadConfigFile(fs *flag.FlagSet, path string) error {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to read config: %w", err)
	}

	explicit := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { explicit[f.Name] = true })

	for _, key := range v.AllKeys() {
		if key == "config" || fs.Lookup(key) == nil {
			return fmt.Errorf("unknown config key %q", key)
		}
		if explicit[key] {
			continue
		}
		if err := fs.Set(key, v.GetString(key)); err != nil {
			return fmt.Errorf("config key %q: %w", key, err)
		}
	}
	return nil
}

func (o *options) buildCurve() (*curve.Curve, error) {
	custom := []string{o.p, o.a, o.b, o.gx, o.gy, o.n}
	given := 0
	for _, s := range custom {
		if s != "" {
			given++
		}
	}
	if given == 0 {
		c, ok := curve.ByName(o.curveName)
		if !ok {
			return nil, fmt.Errorf("unknown curve %q", o.curveName)
		}
		return c, nil
	}
	if given != len(custom) {
		return nil, errors.New("a custom curve needs all of -p, -a, -b, -gx, -gy and -n")
	}

	vals := make([]*big.Int, len(custom))
	for i, s := range custom {
		v, err := parseNumber(s)
		if err != nil {
			return nil, err
		}
		vals[i] = v
	}
	c, err := curve.New(vals[0], vals[1], vals[2], vals[3], vals[4], vals[5])
	if err != nil {
		return nil, err
	}
	return c.WithName(fmt.Sprintf("custom (p=%s, N=%s)", vals[0], vals[5])), nil
}

func (o *options) attackConfig() (ecdlp.AttackConfig, error) {
	m, err := ecdlp.ParseMechanism(o.mechanism)
	if err != nil {
		return ecdlp.AttackConfig{}, err
	}
	cfg := ecdlp.DefaultAttackConfig(m)
	cfg.Seed = o.seed
	cfg.MaxRestarts = o.maxRestarts
	cfg.BudgetFactor = o.budgetFactor
	cfg.TableLimit = o.tableLimit

	if o.bound != "" {
		low, high, err := parseRange(o.bound)
		if err != nil {
			return ecdlp.AttackConfig{}, fmt.Errorf("error parsing bound: %w", err)
		}
		cfg = cfg.WithBound(low, high)
	}
	return cfg, nil
}

func (o *options) runOptions() ecdlp.RunOptions {
	return ecdlp.RunOptions{
		MaxIterations:    o.maxIterations,
		ProgressInterval: o.progressEvery,
		Verbose:          o.verbose,
	}
}

func (o *options) parser(c *curve.Curve) (ecdlp.TargetParser, error) {
	switch strings.ToLower(o.format) {
	case "json":
		return &ecdlp.JSONParser{Curve: c}, nil
	case "csv":
		return &ecdlp.CSVParser{Curve: c}, nil
	}
	return nil, fmt.Errorf("unknown targets format %q", o.format)
}

// parseNumber accepts decimal or 0x-prefixed hex.
func parseNumber(s string) (*big.Int, error) {
	s = strings.TrimSpace(s)
	base := 10
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		s, base = s[2:], 16
	}
	v, ok := new(big.Int).SetString(s, base)
	if !ok {
		return nil, fmt.Errorf("invalid number %q", s)
	}
	return v, nil
}

func parseRange(s string) (*big.Int, *big.Int, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return nil, nil, fmt.Errorf("invalid range format: %s", s)
	}
	low, err := parseNumber(parts[0])
	if err != nil {
		return nil, nil, err
	}
	high, err := parseNumber(parts[1])
	if err != nil {
		return nil, nil, err
	}
	return low, high, nil
}

// parseSignature reads "r,s,z".
func parseSignature(s string) (*ecdlp.Signature, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return nil, fmt.Errorf("invalid signature format %q, want r,s,z", s)
	}
	vals := make([]*big.Int, 3)
	for i, part := range parts {
		v, err := parseNumber(part)
		if err != nil {
			return nil, err
		}
		vals[i] = v
	}
	return &ecdlp.Signature{R: vals[0], S: vals[1], Z: vals[2]}, nil
}
