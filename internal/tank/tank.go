// Package tank models a self-pressurizing nitrous oxide run tank.
//
// The tank starts in liquid blowdown: liquid leaves through the feed, some
// of the remainder boils to refill the ullage and the latent heat cools the
// tank. When the liquid is gone the state is frozen in a Snapshot and the
// vapour expands isentropically until it can no longer be resolved against
// the compressibility table.
package tank

import (
	"fmt"

	"github.com/san-kum/hybridsim/internal/hybrid"
	"github.com/san-kum/hybridsim/internal/nitrous"
)

const DefaultLagTime = 0.15 // s

type Options struct {
	// LagTime is the first-order time constant applied to vaporization.
	LagTime float64
	// VaporGamma is the ratio of specific heats for the vapour phase.
	VaporGamma float64
}

func DefaultOptions() Options {
	return Options{LagTime: DefaultLagTime, VaporGamma: nitrous.VaporGamma}
}

type Tank struct {
	volume  float64
	lagTime float64
	gamma   float64
	ztable  *nitrous.CompressibilityTable

	phase  hybrid.Phase
	total  float64
	liquid float64
	vapor  float64
	lag    float64
	props  nitrous.Properties

	snapshot *Snapshot
}

// New fills a tank of the given volume at temp, leaving headSpace (a
// fraction of the volume) as saturated vapour.
func New(volume, headSpace, temp float64, ztable *nitrous.CompressibilityTable, opts Options) (*Tank, error) {
	if volume <= 0 {
		return nil, fmt.Errorf("%w: tank volume must be positive", hybrid.ErrInvalidConfig)
	}
	if headSpace <= 0 || headSpace >= 1 {
		return nil, fmt.Errorf("%w: head space must be in (0, 1), got %.3f", hybrid.ErrInvalidConfig, headSpace)
	}
	if ztable == nil {
		return nil, fmt.Errorf("%w: compressibility table is required", hybrid.ErrInvalidConfig)
	}
	if opts.LagTime <= 0 {
		opts.LagTime = DefaultLagTime
	}
	if opts.VaporGamma <= 1 {
		opts.VaporGamma = nitrous.VaporGamma
	}

	props, err := nitrous.At(temp)
	if err != nil {
		return nil, err
	}

	t := &Tank{
		volume:  volume,
		lagTime: opts.LagTime,
		gamma:   opts.VaporGamma,
		ztable:  ztable,
		phase:   hybrid.PhaseLiquid,
		liquid:  volume * (1 - headSpace) * props.LiquidDensity,
		vapor:   volume * headSpace * props.VaporDensity,
		props:   props,
	}
	t.total = t.liquid + t.vapor
	return t, nil
}

func (t *Tank) Phase() hybrid.Phase            { return t.phase }
func (t *Tank) Volume() float64                { return t.volume }
func (t *Tank) TotalMass() float64             { return t.total }
func (t *Tank) LiquidMass() float64            { return t.liquid }
func (t *Tank) VaporMass() float64             { return t.vapor }
func (t *Tank) Lag() float64                   { return t.lag }
func (t *Tank) Temperature() float64           { return t.props.Temperature }
func (t *Tank) VaporPressure() float64         { return t.props.VaporPressure }
func (t *Tank) Properties() nitrous.Properties { return t.props }

// Snapshot returns the liquid depletion state once the tank has entered
// vapour blowdown.
func (t *Tank) Snapshot() (Snapshot, bool) {
	if t.snapshot == nil {
		return Snapshot{}, false
	}
	return *t.snapshot, true
}

// Drain removes mdot*dt of oxidizer and advances the tank state. It reports
// whether this tick depleted the liquid. A *hybrid.ConvergenceError means the
// vapour is spent; a *hybrid.DomainError means the liquid cooled out of the
// property range.
func (t *Tank) Drain(mdot, dt float64) (bool, error) {
	if t.phase == hybrid.PhaseVapor {
		return false, t.drainVapor(mdot, dt)
	}
	return t.drainLiquid(mdot, dt)
}

func (t *Tank) drainLiquid(mdot, dt float64) (bool, error) {
	p := t.props
	t.total -= mdot * dt

	pre := t.liquid - mdot*dt
	post := (p.VaporDensity*t.volume - t.total) / (p.VaporDensity/p.LiquidDensity - 1)

	if post <= 0 || (mdot > 0 && pre < post) {
		t.liquid = 0
		t.vapor = t.total
		t.phase = hybrid.PhaseVapor
		t.snapshot = &Snapshot{
			VaporMass:     t.vapor,
			Temperature:   p.Temperature,
			VaporDensity:  p.VaporDensity,
			VaporPressure: p.VaporPressure,
			Z:             t.ztable.Z(p.VaporPressure),
			Gamma:         t.gamma,
		}
		return true, nil
	}

	t.liquid = post
	vaporized := pre - post
	t.lag += dt / t.lagTime * (vaporized - t.lag)
	t.vapor = t.total - t.liquid

	temp := p.Temperature - t.lag*p.LatentHeat()/t.liquid/p.LiquidCp
	props, err := nitrous.At(temp)
	if err != nil {
		return false, err
	}
	t.props = props
	return false, nil
}

func (t *Tank) drainVapor(mdot, dt float64) error {
	t.vapor = max(t.vapor-dt*mdot, 0)
	t.total = t.vapor

	z, _, err := t.snapshot.SolveZ(t.vapor, t.ztable)
	if err != nil {
		return err
	}

	proj := t.snapshot.Project(t.vapor, z)
	t.props.Temperature = proj.Temperature
	t.props.VaporPressure = proj.VaporPressure
	t.props.VaporDensity = proj.VaporDensity
	return nil
}
