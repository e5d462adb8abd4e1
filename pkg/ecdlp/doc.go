// Package ecdlp recovers a private key d from a public key Q = d·G by solving
// the elliptic curve discrete logarithm problem on weak parameters: toy
// curves, smooth group orders, or keys known to lie in a small interval.
//
// Every mechanism runs under the same execution controller, which enforces an
// iteration cap, honours context cancellation, reports progress, and records
// ExecutionStats. A reported key has always been checked against the target.
//
// # Quick Start
//
//	import (
//	    "github.com/mahdiidarabi/ecdlp-rollback/pkg/curve"
//	    "github.com/mahdiidarabi/ecdlp-rollback/pkg/ecdlp"
//	)
//
//	c := curve.FourBit()
//	Q, _ := c.ScalarBaseMultiply(big.NewInt(7))
//
//	engine := ecdlp.NewEngine(c)
//	result, err := engine.Attack(ctx, Q, ecdlp.DefaultAttackConfig(ecdlp.MechanismBabyStepGiant))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(result.Success, result.PrivateKey) // true 7
//
// # Mechanisms
//
//   - brute_force: d = 1, 2, …, N-1
//   - baby_step_giant_step: O(√N) time and memory
//   - pollard_rho: O(√N) time, constant memory, randomized
//   - pollard_kangaroo: O(√(high-low)) for a key in [low, high]
//   - pohlig_hellman: reduces to the prime-power factors of N
//   - lookup_table: a full table of k·G for toy curves
//
// # Controlling a run
//
//	engine := ecdlp.NewEngine(c).WithRunOptions(ecdlp.RunOptions{
//	    MaxIterations:    1_000_000,
//	    ProgressInterval: 10_000,
//	    Progress: func(s ecdlp.ExecutionStats) {
//	        log.Printf("%d iterations", s.Iterations)
//	    },
//	})
//
// Cancelling ctx stops the run at its next iteration with StopReason
// "interrupted"; hitting the cap gives "max_iterations".
//
// # Custom Strategies
//
// Implement Strategy and call r.Next(ctx) once per unit of work:
//
//	type MyStrategy struct{}
//
//	func (s *MyStrategy) Search(ctx context.Context, r *ecdlp.Run) (*big.Int, error) {
//	    for r.Next(ctx) {
//	        // one step
//	    }
//	    return nil, nil
//	}
//
//	func (s *MyStrategy) Name() ecdlp.Mechanism { return "my_strategy" }
//
//	result, err := engine.AttackWithStrategy(ctx, Q, &MyStrategy{})
package ecdlp
