// Package motor drives a hybrid motor firing on a fixed time step.
//
// Each tick runs the same pipeline: feed losses set the manifold pressure,
// the injector meters oxidizer from the tank, the tank blows down, the fuel
// port regresses, the propellant table gives c* and gamma, and the nozzle
// turns chamber pressure into thrust. Chamber pressure lags one tick: it is
// computed from the previous tick's c* and then used to look up the next.
//
// # Example
//
//	table, _ := combustion.LoadDefaultTable()
//	ztable, _ := nitrous.LoadDefaultCompressibility()
//	sim, err := motor.New(motor.DefaultConfig(), table, ztable)
//	if err != nil {
//		return err
//	}
//	result, err := sim.Run(ctx)
//	fmt.Println(result.Outcome, result.Time)
//
// # Termination
//
// A run ends when the fuel burns through, the vapour is spent, the injector
// drop collapses, the flux limit trips (when configured as a hard stop) or
// the duration cap is hit. The record of the terminating tick is discarded.
// Property domain violations and context cancellation abort the run and Run
// returns a *hybrid.SimulationError alongside the partial result.
//
// # Thread Safety
//
// A Simulator is not safe for concurrent use, but the lookup tables it is
// built from may be shared between simulators.
package motor
