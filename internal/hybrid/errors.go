package hybrid

import (
	"errors"
	"fmt"
)

// Sentinel errors for the simulation taxonomy. Every typed error below
// unwraps to one of these so callers can use errors.Is.
var (
	// ErrDomain indicates a property correlation evaluated outside its valid range.
	ErrDomain = errors.New("hybrid: property correlation outside valid range")

	// ErrFlowReversal indicates the injector pressure drop collapsed after startup.
	ErrFlowReversal = errors.New("hybrid: injector flow reversal")

	// ErrConvergence indicates the vapour-phase compressibility solve failed.
	ErrConvergence = errors.New("hybrid: compressibility solve did not converge")

	// ErrGrainBurnout indicates the fuel port reached the grain outer diameter.
	ErrGrainBurnout = errors.New("hybrid: fuel grain burnt through")

	// ErrExcessiveFlux indicates the oxidizer mass flux exceeded the safety limit.
	ErrExcessiveFlux = errors.New("hybrid: oxidizer mass flux above limit")

	// ErrInvalidConfig indicates a motor parameter outside its valid bounds.
	ErrInvalidConfig = errors.New("hybrid: invalid motor configuration")

	// ErrInvalidTable indicates a malformed propellant or compressibility table.
	ErrInvalidTable = errors.New("hybrid: invalid data table")
)

// DomainError reports a correlation input outside the range it was fitted on.
type DomainError struct {
	Quantity string
	Value    float64
	Min      float64
	Max      float64
}

func (e *DomainError) Error() string {
	return fmt.Sprintf("%s=%.4f outside valid range [%.4f, %.4f)", e.Quantity, e.Value, e.Min, e.Max)
}

func (e *DomainError) Unwrap() error { return ErrDomain }

// FlowReversalError reports the tick at which the injector pressure drop
// fell below the allowed fraction of chamber pressure.
type FlowReversalError struct {
	Time             float64
	ManifoldPressure float64
	ChamberPressure  float64
	MinDropRatio     float64
}

// Drop returns the injector pressure drop at the failing tick.
func (e *FlowReversalError) Drop() float64 {
	return e.ManifoldPressure - e.ChamberPressure
}

func (e *FlowReversalError) Error() string {
	return fmt.Sprintf("reverse flow at t=%.4f s: injector drop %.1f Pa below %.2f of chamber pressure %.1f Pa",
		e.Time, e.Drop(), e.MinDropRatio, e.ChamberPressure)
}

func (e *FlowReversalError) Unwrap() error { return ErrFlowReversal }

// ConvergenceError reports a failed vapour-phase compressibility solve, which
// the driver treats as vapour depletion.
type ConvergenceError struct {
	VaporMass  float64
	Iterations int
	Reason     string
}

func (e *ConvergenceError) Error() string {
	return fmt.Sprintf("vapour depleted (mass %.5f kg, %d iterations): %s", e.VaporMass, e.Iterations, e.Reason)
}

func (e *ConvergenceError) Unwrap() error { return ErrConvergence }

// GrainBurnoutCondition reports the fuel port reaching the outer diameter.
type GrainBurnoutCondition struct {
	Time          float64
	PortDiameter  float64
	OuterDiameter float64
}

func (e *GrainBurnoutCondition) Error() string {
	return fmt.Sprintf("fuel depleted at t=%.4f s: port %.5f m reached outer diameter %.5f m",
		e.Time, e.PortDiameter, e.OuterDiameter)
}

func (e *GrainBurnoutCondition) Unwrap() error { return ErrGrainBurnout }

// ExcessiveFluxWarning reports an oxidizer mass flux above the safety limit.
type ExcessiveFluxWarning struct {
	Time  float64
	Flux  float64
	Limit float64
}

func (e *ExcessiveFluxWarning) Error() string {
	return fmt.Sprintf("oxidizer flux too high at t=%.4f s: %.2f kg/m^2/s (limit %.2f)", e.Time, e.Flux, e.Limit)
}

func (e *ExcessiveFluxWarning) Unwrap() error { return ErrExcessiveFlux }

// SimulationError wraps a fatal error with the tick it happened on.
type SimulationError struct {
	Step    int
	Time    float64
	Wrapped error
}

func (e *SimulationError) Error() string {
	return fmt.Sprintf("step %d (t=%.4f): %v", e.Step, e.Time, e.Wrapped)
}

func (e *SimulationError) Unwrap() error {
	return e.Wrapped
}
