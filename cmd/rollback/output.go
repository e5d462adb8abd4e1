package main

import (
	"fmt"
	"math/big"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"

	"github.com/mahdiidarabi/ecdlp-rollback/pkg/curve"
	"github.com/mahdiidarabi/ecdlp-rollback/pkg/ecdlp"
)

var (
	colorTitle = color.New(color.FgCyan, color.Bold)
	colorInfo  = color.New(color.FgBlue)
	colorFound = color.New(color.FgGreen, color.Bold)
	colorWarn  = color.New(color.FgYellow)
	colorError = color.New(color.FgRed)
)

// expectedIterations estimates the work of one run for the progress bar, or
// returns -1 when the mechanism has no useful bound.
func expectedIterations(c *curve.Curve, cfg ecdlp.AttackConfig, capped uint64) int64 {
	n := c.N()
	var est *big.Int
	switch cfg.Mechanism {
	case ecdlp.MechanismBruteForce:
		est = new(big.Int).Sub(n, big.NewInt(1))
	case ecdlp.MechanismLookupTable:
		est = new(big.Int).Set(n)
	case ecdlp.MechanismBabyStepGiant:
		est = new(big.Int).Sqrt(n)
		est.Add(est, big.NewInt(1))
		est.Lsh(est, 1)
	case ecdlp.MechanismKangaroo:
		if cfg.Bound != nil {
			est = new(big.Int).Sqrt(cfg.Bound.Width())
			est.Add(est, big.NewInt(1))
			est.Mul(est, big.NewInt(2*cfg.BudgetFactor))
		}
	}
	if capped > 0 && (est == nil || !est.IsUint64() || est.Uint64() > capped) {
		est = new(big.Int).SetUint64(capped)
	}
	if est == nil || !est.IsInt64() {
		return -1
	}
	return est.Int64()
}

func newProgressBar(description string, max int64) *progressbar.ProgressBar {
	return progressbar.NewOptions64(
		max,
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("it"),
		progressbar.OptionThrottle(65*time.Millisecond),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionFullWidth(),
		progressbar.OptionClearOnFinish(),
	)
}

func printHeader(c *curve.Curve, target curve.Point) {
	colorTitle.Println("ECDLP rollback")
	colorInfo.Printf("    Curve:  %s\n", c.Name())
	colorInfo.Printf("    Order:  %s\n", c.N())
	colorInfo.Printf("    Target: %s\n", target)
}

func printResult(label string, r *ecdlp.AttackResult) {
	if r.Success {
		colorFound.Printf("\n[+] %s: recovered private key\n", label)
		fmt.Printf("    Private key: %s (0x%s)\n", r.PrivateKey, r.PrivateKey.Text(16))
	} else {
		colorWarn.Printf("\n[-] %s: no key found (%s)\n", label, r.Stats.StopReason)
	}
	printStats(r.Stats)
}

func printStats(s ecdlp.ExecutionStats) {
	fmt.Printf("    Mechanism:   %s\n", s.Mechanism)
	fmt.Printf("    Iterations:  %d\n", s.Iterations)
	fmt.Printf("    Elapsed:     %v\n", s.Elapsed.Round(time.Microsecond))

	counters := []struct {
		name  string
		value uint64
	}{
		{"Keys tested", s.KeysTested},
		{"Baby steps", s.BabySteps},
		{"Giant steps", s.GiantSteps},
		{"Rho steps", s.RhoSteps},
		{"Rho restarts", s.RhoRestarts},
		{"Tame jumps", s.TameJumps},
		{"Wild jumps", s.WildJumps},
		{"Subproblems", s.Subproblems},
		{"Point ops", s.PointOperations},
		{"Candidates", s.Candidates},
	}
	for _, c := range counters {
		if c.value > 0 {
			fmt.Printf("    %-12s %d\n", c.name+":", c.value)
		}
	}
}

func printComparison(results []ecdlp.Comparison) {
	colorTitle.Println("\nComparison")
	fmt.Printf("    %-22s %-8s %-14s %12s %14s\n", "MECHANISM", "FOUND", "STOP", "ITERATIONS", "ELAPSED")
	for _, cmp := range results {
		if cmp.Err != nil {
			colorError.Printf("    %-22s error: %v\n", cmp.Config.Mechanism, cmp.Err)
			continue
		}
		found := "-"
		if cmp.Result.Success {
			found = cmp.Result.PrivateKey.String()
		}
		fmt.Printf("    %-22s %-8s %-14s %12d %14v\n", cmp.Config.Mechanism, found,
			cmp.Result.Stats.StopReason, cmp.Result.Stats.Iterations, cmp.Result.Stats.Elapsed.Round(time.Microsecond))
	}
}
