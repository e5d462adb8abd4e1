package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/mahdiidarabi/ecdlp-rollback/internal/batch"
	"github.com/mahdiidarabi/ecdlp-rollback/pkg/curve"
	"github.com/mahdiidarabi/ecdlp-rollback/pkg/ecdlp"
)

func main() {
	o := &options{}
	fs := newFlagSet(o)
	_ = fs.Parse(os.Args[1:])

	if o.configFile != "" {
		if err := loadConfigFile(fs, o.configFile); err != nil {
			colorError.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}

	if err := run(o); err != nil {
		colorError.Fprintf(os.Stderr, "Error: %v\n", err)
		if errors.Is(err, errUsage) {
			fs.Usage()
		}
		os.Exit(1)
	}
}

var errUsage = errors.New("must specify -target, -targets or -signature")

func run(o *options) error {
	c, err := o.buildCurve()
	if err != nil {
		return err
	}

	// Ctrl+C stops the running search at its next iteration; the partial
	// statistics are still printed.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch {
	case o.signature != "":
		return runKnownNonce(c, o)
	case o.targetsFile != "":
		return runBatch(ctx, c, o)
	case o.target == "":
		return errUsage
	case o.compare:
		return runCompare(ctx, c, o)
	default:
		return runAttack(ctx, c, o)
	}
}

func runAttack(ctx context.Context, c *curve.Curve, o *options) error {
	target, err := ecdlp.ParsePublicKey(c, o.target)
	if err != nil {
		return err
	}
	cfg, err := o.attackConfig()
	if err != nil {
		return err
	}
	printHeader(c, target)

	runOpts := o.runOptions()
	if !o.noProgress && runOpts.ProgressInterval > 0 {
		bar := newProgressBar(string(cfg.Mechanism), expectedIterations(c, cfg, o.maxIterations))
		runOpts.Progress = func(s ecdlp.ExecutionStats) {
			_ = bar.Set64(int64(s.Iterations))
		}
		defer func() { _ = bar.Finish() }()
	}

	result, err := ecdlp.NewEngine(c).WithRunOptions(runOpts).Attack(ctx, target, cfg)
	if err != nil {
		return err
	}
	printResult(target.String(), result)
	return nil
}

func runCompare(ctx context.Context, c *curve.Curve, o *options) error {
	target, err := ecdlp.ParsePublicKey(c, o.target)
	if err != nil {
		return err
	}
	base, err := o.attackConfig()
	if err != nil {
		return err
	}
	printHeader(c, target)

	var cfgs []ecdlp.AttackConfig
	for _, m := range ecdlp.Mechanisms() {
		if m == ecdlp.MechanismKangaroo && base.Bound == nil {
			colorWarn.Println("    skipping pollard_kangaroo: no -bound given")
			continue
		}
		cfg := base
		cfg.Mechanism = m
		cfgs = append(cfgs, cfg)
	}

	runOpts := o.runOptions()
	runOpts.ProgressInterval = 0
	results, err := ecdlp.NewEngine(c).WithRunOptions(runOpts).Compare(ctx, target, cfgs)
	if err != nil {
		return err
	}
	printComparison(results)
	return nil
}

func runBatch(ctx context.Context, c *curve.Curve, o *options) error {
	parser, err := o.parser(c)
	if err != nil {
		return err
	}
	targets, err := parser.ParseTargets(o.targetsFile)
	if err != nil {
		return err
	}
	cfg, err := o.attackConfig()
	if err != nil {
		return err
	}

	colorTitle.Println("ECDLP rollback (batch)")
	colorInfo.Printf("    Curve:     %s\n", c.Name())
	colorInfo.Printf("    Targets:   %d from %s\n", len(targets), o.targetsFile)
	colorInfo.Printf("    Mechanism: %s\n", cfg.Mechanism)

	runOpts := o.runOptions()
	runOpts.ProgressInterval = 0
	engine := ecdlp.NewEngine(c).WithRunOptions(runOpts)

	outcomes := batch.Run(ctx, engine, targets, cfg, batch.Config{
		NumWorkers:  o.workers,
		StopOnFirst: o.stopOnFirst,
		Verbose:     o.verbose,
	})

	solved := 0
	for _, out := range outcomes {
		switch {
		case out.Err != nil:
			colorError.Printf("\n[!] %s: %v\n", out.Label, out.Err)
		default:
			if out.Result.Success {
				solved++
			}
			printResult(out.Label, out.Result)
		}
	}
	colorTitle.Printf("\nSolved %d of %d targets\n", solved, len(outcomes))
	return nil
}

func runKnownNonce(c *curve.Curve, o *options) error {
	sig, err := parseSignature(o.signature)
	if err != nil {
		return err
	}
	if o.nonce == "" {
		return errors.New("-signature requires -nonce")
	}
	k, err := parseNumber(o.nonce)
	if err != nil {
		return err
	}

	d, err := ecdlp.RecoverFromKnownNonce(c, sig, k)
	if err != nil {
		return err
	}
	colorFound.Println("\n[+] Recovered private key from known nonce:")
	fmt.Printf("    Private key: %s (0x%s)\n", d, d.Text(16))

	if o.target == "" {
		return nil
	}
	target, err := ecdlp.ParsePublicKey(c, o.target)
	if err != nil {
		return err
	}
	Q, err := c.ScalarBaseMultiply(d)
	if err != nil {
		return err
	}
	if Q.Equal(target) {
		fmt.Println("    ✓ Verified against public key!")
	} else {
		colorWarn.Println("    ✗ d·G does not match the given public key")
	}
	return nil
}
