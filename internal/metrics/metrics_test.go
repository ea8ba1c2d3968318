package metrics

import (
	"math"
	"testing"

	"github.com/san-kum/hybridsim/internal/hybrid"
	"github.com/san-kum/hybridsim/internal/motor"
)

// syntheticBurn is a one second burn at dt = 0.1 with a linear thrust ramp.
func syntheticBurn() []hybrid.StepRecord {
	records := []hybrid.StepRecord{{
		Step: 0, Time: 0, ChamberPressure: 101325, ManifoldPressure: 5e6, PropellantMass: 10,
	}}
	for i := 1; i <= 10; i++ {
		phase := hybrid.PhaseLiquid
		if i > 6 {
			phase = hybrid.PhaseVapor
		}
		records = append(records, hybrid.StepRecord{
			Step:             i,
			Time:             float64(i) * 0.1,
			Phase:            phase,
			Thrust:           100 * float64(i),
			ChamberPressure:  2e6 + 1e5*float64(i),
			ManifoldPressure: 4e6 - 1e5*float64(i),
			PropellantMass:   10 - 0.5*float64(i),
			OFRatio:          float64(i),
			RegressionRate:   1e-3 * float64(i),
		})
	}
	return records
}

func observe(m motor.Metric, records []hybrid.StepRecord) {
	for _, r := range records {
		m.Observe(r)
	}
}

func TestStreamingMetrics(t *testing.T) {
	records := syntheticBurn()

	tests := []struct {
		name     string
		metric   motor.Metric
		expected float64
	}{
		{"impulse", NewImpulse(), 0.1 * 5500},
		{"mean thrust", NewMeanThrust(), 550},
		{"peak thrust", NewPeakThrust(), 1000},
		{"peak chamber pressure", NewPeakChamberPressure(), 3e6},
		{"pressure margin", NewPressureMargin(), (3e6 - 3e6) / 3e6},
		{"margin compliance", NewMarginCompliance(0.15), 0.7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			observe(tt.metric, records)
			if got := tt.metric.Value(); math.Abs(got-tt.expected) > 1e-9 {
				t.Errorf("%s = %v, want %v", tt.metric.Name(), got, tt.expected)
			}

			tt.metric.Reset()
			observe(tt.metric, records)
			if got := tt.metric.Value(); math.Abs(got-tt.expected) > 1e-9 {
				t.Errorf("%s after reset = %v, want %v", tt.metric.Name(), got, tt.expected)
			}
		})
	}
}

func TestEmptyMetrics(t *testing.T) {
	if NewMeanThrust().Value() != 0 || NewPressureMargin().Value() != 0 {
		t.Error("expected zero for metrics with no samples")
	}
	if NewMarginCompliance(0.15).Value() != 1 {
		t.Error("expected full compliance with no samples")
	}
}

func TestSummarize(t *testing.T) {
	s := Summarize(syntheticBurn(), 0.5)

	checks := []struct {
		name      string
		got, want float64
	}{
		{"burn time", s.BurnTime, 1.0},
		{"impulse", s.TotalImpulse, 550},
		{"mean thrust", s.MeanThrust, 550},
		{"peak thrust", s.PeakThrust, 1000},
		{"initial thrust", s.InitialThrust, 600},
		{"consumed", s.PropellantConsumed, 5},
		{"isp", s.MeanIsp, 550 / 5.0 / StandardGravity},
		{"mid O/F", s.MidBurnOF, 6},
		{"mid regression", s.MidBurnRegression, 6e-3},
		{"min margin", s.MinPressureMargin, 0},
		{"depletion drop", s.LiquidDepletionDrop, (3.3e6 - 2.6e6) / 2.6e6},
		{"peak pc", s.PeakChamberPressure, 3e6},
		{"mean pc", s.MeanChamberPressure, 2.55e6},
	}
	for _, c := range checks {
		if math.Abs(c.got-c.want) > 1e-9*math.Max(1, math.Abs(c.want)) {
			t.Errorf("%s = %v, want %v", c.name, c.got, c.want)
		}
	}
}

func TestSummarizeShortRuns(t *testing.T) {
	if s := Summarize(nil, 0.5); s != (Summary{}) {
		t.Errorf("expected empty summary, got %+v", s)
	}
	only := syntheticBurn()[:1]
	if s := Summarize(only, 0.5); s != (Summary{}) {
		t.Errorf("expected empty summary for initial record only, got %+v", s)
	}

	short := syntheticBurn()[:3]
	s := Summarize(short, 0.5)
	if s.InitialThrust != 200 {
		t.Errorf("startup beyond the burn should clamp to the last tick, got %v", s.InitialThrust)
	}
	if s.LiquidDepletionDrop != 0 {
		t.Errorf("no depletion expected, got %v", s.LiquidDepletionDrop)
	}
}

func TestStandard(t *testing.T) {
	names := map[string]bool{}
	for _, m := range Standard(0.15) {
		names[m.Name()] = true
	}
	for _, want := range []string{"total_impulse", "mean_thrust", "peak_thrust", "peak_chamber_pressure", "min_pressure_margin", "margin_compliance"} {
		if !names[want] {
			t.Errorf("missing metric %s", want)
		}
	}
}

func TestSummarizeChamberOscillation(t *testing.T) {
	// 2 s limit cycle at 5 Hz after a 0.5 s startup
	recs := make([]hybrid.StepRecord, 251)
	for i := range recs {
		tm := float64(i) * 0.01
		recs[i] = hybrid.StepRecord{
			Step:            i,
			Time:            tm,
			ChamberPressure: 2e6 + 2e5*math.Sin(2*math.Pi*5*tm),
			Thrust:          1000,
		}
	}

	s := Summarize(recs, 0.5)
	if math.Abs(s.ChamberOscillation.Frequency-5) > 0.3 {
		t.Errorf("oscillation frequency = %v Hz, want 5", s.ChamberOscillation.Frequency)
	}
	if s.ChamberOscillation.Amplitude < 1.5e5 {
		t.Errorf("oscillation amplitude = %v, want about 2e5", s.ChamberOscillation.Amplitude)
	}
}
