package motor

import (
	"github.com/san-kum/hybridsim/internal/hybrid"
	"github.com/san-kum/hybridsim/internal/tank"
)

// State is the mutable simulation state, updated once per tick.
type State struct {
	Step  int
	Time  float64
	Phase hybrid.Phase

	TankMass        float64
	LiquidMass      float64
	VaporMass       float64
	TankTemperature float64
	VaporPressure   float64

	ChamberPressure  float64
	OxidizerMassFlow float64

	PortDiameter float64
	FuelMass     float64

	VaporizationLag float64
	// PrevCStar is the delivered c* of the previous burning tick, or zero
	// before ignition.
	PrevCStar float64
	Gamma     float64
}

type Metric interface {
	Name() string
	Observe(r hybrid.StepRecord)
	Value() float64
	Reset()
}

type Observer interface {
	OnStep(r hybrid.StepRecord)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(r hybrid.StepRecord)

func (f ObserverFunc) OnStep(r hybrid.StepRecord) { f(r) }

// Result is the outcome of one firing.
type Result struct {
	// Records starts with the initial condition at t = 0 and holds one
	// record per completed tick.
	Records []hybrid.StepRecord
	Outcome hybrid.Outcome
	// Cause is the condition that ended the run, nil for a duration limit.
	Cause error

	// Step and Time are the last completed tick.
	Step int
	Time float64

	// Snapshot is set when the liquid depleted during the run.
	Snapshot *tank.Snapshot

	FluxWarnings int
	Final        State
	Metrics      map[string]float64
}

// Last returns the final record.
func (r *Result) Last() hybrid.StepRecord {
	return r.Records[len(r.Records)-1]
}

// Series extracts one field across every record.
func (r *Result) Series(field func(hybrid.StepRecord) float64) []float64 {
	out := make([]float64, len(r.Records))
	for i, rec := range r.Records {
		out[i] = field(rec)
	}
	return out
}

// Times is the record time axis.
func (r *Result) Times() []float64 {
	return r.Series(func(rec hybrid.StepRecord) float64 { return rec.Time })
}
