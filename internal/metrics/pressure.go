package metrics

import (
	"math"

	"github.com/san-kum/hybridsim/internal/hybrid"
)

type PeakChamberPressure struct {
	name string
	peak float64
}

func NewPeakChamberPressure() *PeakChamberPressure {
	return &PeakChamberPressure{name: "peak_chamber_pressure"}
}

func (m *PeakChamberPressure) Name() string { return m.name }

func (m *PeakChamberPressure) Observe(r hybrid.StepRecord) {
	m.peak = max(m.peak, r.ChamberPressure)
}

func (m *PeakChamberPressure) Value() float64 { return m.peak }

func (m *PeakChamberPressure) Reset() { m.peak = 0 }

// PressureMargin tracks the smallest injector drop as a fraction of chamber
// pressure over fired ticks.
type PressureMargin struct {
	name    string
	margin  float64
	samples int
}

func NewPressureMargin() *PressureMargin {
	return &PressureMargin{name: "min_pressure_margin", margin: math.Inf(1)}
}

func (m *PressureMargin) Name() string { return m.name }

func (m *PressureMargin) Observe(r hybrid.StepRecord) {
	if r.Step == 0 {
		return
	}
	m.margin = math.Min(m.margin, r.InjectorMargin())
	m.samples++
}

func (m *PressureMargin) Value() float64 {
	if m.samples == 0 {
		return 0
	}
	return m.margin
}

func (m *PressureMargin) Reset() {
	m.margin = math.Inf(1)
	m.samples = 0
}

// MarginCompliance is the fraction of fired ticks whose injector margin
// stayed at or above threshold.
type MarginCompliance struct {
	name       string
	threshold  float64
	violations int
	samples    int
}

func NewMarginCompliance(threshold float64) *MarginCompliance {
	return &MarginCompliance{
		name:      "margin_compliance",
		threshold: threshold,
	}
}

func (m *MarginCompliance) Name() string { return m.name }

func (m *MarginCompliance) Observe(r hybrid.StepRecord) {
	if r.Step == 0 {
		return
	}
	m.samples++
	if r.InjectorMargin() < m.threshold {
		m.violations++
	}
}

func (m *MarginCompliance) Value() float64 {
	if m.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(m.violations)/float64(m.samples)
}

func (m *MarginCompliance) Reset() {
	m.violations = 0
	m.samples = 0
}
