// Package hybrid provides the core types shared by every stage of the motor
// firing simulation.
//
// The package defines the vocabulary the simulation stages exchange:
//
//   - [Phase]: tank blowdown phase (liquid or vapour dominant)
//   - [ValveModel]: feed valve loss model selector
//   - [Outcome]: tagged reason a firing ended
//   - [StepRecord]: the immutable per-tick output record
//   - error types for every terminal or fatal condition
//
// # Example
//
//	sim, _ := motor.New(motor.DefaultConfig(), table, ztable)
//	result, err := sim.Run(ctx)
//	for _, rec := range result.Records {
//		fmt.Println(rec.Time, rec.Thrust)
//	}
//
// # Thread Safety
//
// All types here are plain values. A finished record sequence may be shared
// between goroutines without synchronization.
package hybrid
