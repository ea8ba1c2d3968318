package metrics

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/san-kum/hybridsim/internal/analysis"
	"github.com/san-kum/hybridsim/internal/hybrid"
	"github.com/san-kum/hybridsim/internal/motor"
)

// StandardGravity converts impulse per unit mass to specific impulse.
const StandardGravity = 9.81

// Summary is the post-burn performance report.
type Summary struct {
	BurnTime            float64
	TotalImpulse        float64
	InitialThrust       float64 // thrust at the end of startup
	MeanThrust          float64
	PeakThrust          float64
	MeanIsp             float64
	PeakChamberPressure float64
	MeanChamberPressure float64
	MidBurnOF           float64
	MidBurnRegression   float64
	MinPressureMargin   float64
	// LiquidDepletionDrop is the injector drop at the tick the liquid ran
	// out, as a fraction of chamber pressure. Zero when it never did.
	LiquidDepletionDrop float64
	PropellantConsumed  float64
	// ChamberOscillation is the dominant detrended chamber pressure
	// component after startup.
	ChamberOscillation analysis.Peak
}

// Standard returns the metrics attached to every CLI run.
func Standard(minMargin float64) []motor.Metric {
	return []motor.Metric{
		NewImpulse(),
		NewMeanThrust(),
		NewPeakThrust(),
		NewPeakChamberPressure(),
		NewPressureMargin(),
		NewMarginCompliance(minMargin),
	}
}

// Summarize computes a Summary from records whose first entry is the
// initial condition. startup is the time at which InitialThrust is read.
func Summarize(records []hybrid.StepRecord, startup float64) Summary {
	if len(records) < 2 {
		return Summary{}
	}
	fired := records[1:]
	dt := fired[0].Time - records[0].Time

	thrust := make([]float64, len(fired))
	pc := make([]float64, len(fired))
	margin := make([]float64, len(fired))
	for i, r := range fired {
		thrust[i] = r.Thrust
		pc[i] = r.ChamberPressure
		margin[i] = r.InjectorMargin()
	}

	s := Summary{
		BurnTime:            fired[len(fired)-1].Time,
		TotalImpulse:        dt * floats.Sum(thrust),
		MeanThrust:          stat.Mean(thrust, nil),
		PeakThrust:          floats.Max(thrust),
		PeakChamberPressure: floats.Max(pc),
		MeanChamberPressure: stat.Mean(pc, nil),
		MinPressureMargin:   floats.Min(margin),
		PropellantConsumed:  records[0].PropellantMass - records[len(records)-1].PropellantMass,
	}

	if dt > 0 {
		idx := int(math.Round(startup / dt))
		if idx >= len(fired) {
			idx = len(fired) - 1
		}
		s.InitialThrust = fired[idx].Thrust
	}

	var settled []float64
	for i, r := range fired {
		if r.Time > startup {
			settled = pc[i:]
			break
		}
	}
	s.ChamberOscillation = analysis.DominantOscillation(settled, dt)

	mid := fired[len(fired)/2]
	s.MidBurnOF = mid.OFRatio
	s.MidBurnRegression = mid.RegressionRate

	if s.PropellantConsumed > 0 {
		s.MeanIsp = s.TotalImpulse / s.PropellantConsumed / StandardGravity
	}

	for i := 1; i < len(records); i++ {
		if records[i].Phase == hybrid.PhaseVapor && records[i-1].Phase == hybrid.PhaseLiquid {
			prev := records[i-1].ChamberPressure
			s.LiquidDepletionDrop = (records[i].ManifoldPressure - prev) / prev
			break
		}
	}
	return s
}
