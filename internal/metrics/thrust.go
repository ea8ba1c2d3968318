// Package metrics holds streaming performance metrics that plug into the
// motor simulator, and a batch Summary computed from a finished record set.
package metrics

import "github.com/san-kum/hybridsim/internal/hybrid"

// Impulse integrates thrust over time.
type Impulse struct {
	name  string
	total float64
	prevT float64
}

func NewImpulse() *Impulse {
	return &Impulse{name: "total_impulse"}
}

func (m *Impulse) Name() string { return m.name }

func (m *Impulse) Observe(r hybrid.StepRecord) {
	m.total += r.Thrust * (r.Time - m.prevT)
	m.prevT = r.Time
}

func (m *Impulse) Value() float64 { return m.total }

func (m *Impulse) Reset() {
	m.total = 0
	m.prevT = 0
}

// MeanThrust averages thrust over fired ticks, skipping the initial record.
type MeanThrust struct {
	name    string
	sum     float64
	samples int
}

func NewMeanThrust() *MeanThrust {
	return &MeanThrust{name: "mean_thrust"}
}

func (m *MeanThrust) Name() string { return m.name }

func (m *MeanThrust) Observe(r hybrid.StepRecord) {
	if r.Step == 0 {
		return
	}
	m.sum += r.Thrust
	m.samples++
}

func (m *MeanThrust) Value() float64 {
	if m.samples == 0 {
		return 0
	}
	return m.sum / float64(m.samples)
}

func (m *MeanThrust) Reset() {
	m.sum = 0
	m.samples = 0
}

type PeakThrust struct {
	name string
	peak float64
}

func NewPeakThrust() *PeakThrust {
	return &PeakThrust{name: "peak_thrust"}
}

func (m *PeakThrust) Name() string { return m.name }

func (m *PeakThrust) Observe(r hybrid.StepRecord) {
	m.peak = max(m.peak, r.Thrust)
}

func (m *PeakThrust) Value() float64 { return m.peak }

func (m *PeakThrust) Reset() { m.peak = 0 }
