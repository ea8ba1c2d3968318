package hybrid

import (
	"fmt"
	"strings"
)

// Phase is the tank blowdown regime.
type Phase int

const (
	// PhaseLiquid is liquid-dominant blowdown: saturated liquid feeds the injector.
	PhaseLiquid Phase = iota
	// PhaseVapor is vapour-only blowdown after the liquid has depleted.
	PhaseVapor
)

func (p Phase) String() string {
	switch p {
	case PhaseLiquid:
		return "liquid"
	case PhaseVapor:
		return "vapour"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// ValveModel selects how the feed valve pressure loss is computed.
type ValveModel int

const (
	// ValveThickOrifice models a full-bore ball valve as a thick orifice.
	ValveThickOrifice ValveModel = iota
	// ValveKv uses the valve flow coefficient.
	ValveKv
)

func (v ValveModel) String() string {
	switch v {
	case ValveThickOrifice:
		return "thick-orifice"
	case ValveKv:
		return "kv"
	default:
		return fmt.Sprintf("valve(%d)", int(v))
	}
}

// ParseValveModel accepts "kv", "thick-orifice" or its alias "ball".
func ParseValveModel(s string) (ValveModel, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "kv":
		return ValveKv, nil
	case "thick-orifice", "thick_orifice", "ball":
		return ValveThickOrifice, nil
	default:
		return 0, fmt.Errorf("%w: unknown valve model %q (want kv or thick-orifice)", ErrInvalidConfig, s)
	}
}

// Outcome tags why a firing ended.
type Outcome int

const (
	// OutcomeRunning is the zero value of a result still being built.
	OutcomeRunning Outcome = iota
	OutcomeFuelDepleted
	OutcomeFlowReversed
	OutcomeVaporDepleted
	OutcomeMaxFluxExceeded
	OutcomeDurationLimit
	// OutcomeAborted marks a fatal error such as a property domain violation.
	OutcomeAborted
)

func (o Outcome) String() string {
	switch o {
	case OutcomeRunning:
		return "running"
	case OutcomeFuelDepleted:
		return "fuel-depleted"
	case OutcomeFlowReversed:
		return "flow-reversed"
	case OutcomeVaporDepleted:
		return "vapour-depleted"
	case OutcomeMaxFluxExceeded:
		return "max-flux-exceeded"
	case OutcomeDurationLimit:
		return "duration-limit"
	case OutcomeAborted:
		return "aborted"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// Normal reports whether the outcome is an expected end of the burn rather
// than a failure.
func (o Outcome) Normal() bool {
	return o == OutcomeFuelDepleted || o == OutcomeVaporDepleted
}

// StepRecord is the immutable snapshot of one tick. Units are SI.
type StepRecord struct {
	Step  int
	Time  float64
	Phase Phase

	TankPressure     float64
	ChamberPressure  float64
	ManifoldPressure float64
	ExitPressure     float64

	Thrust           float64
	OxidizerFlux     float64
	OxidizerMassFlow float64
	FuelMassFlow     float64

	PropellantMass   float64
	LiquidMass       float64
	VaporMass        float64
	LiquidDensity    float64
	VaporDensity     float64
	TankTemperature  float64
	FuelMass         float64
	Gamma            float64
	CStar            float64
	ThroatDiameter   float64
	NozzleEfficiency float64
	AreaRatio        float64
	OFRatio          float64
	RegressionRate   float64
	PortDiameter     float64
}

// InjectorMargin is the injector pressure drop as a fraction of chamber pressure.
func (r StepRecord) InjectorMargin() float64 {
	if r.ChamberPressure == 0 {
		return 0
	}
	return (r.ManifoldPressure - r.ChamberPressure) / r.ChamberPressure
}
