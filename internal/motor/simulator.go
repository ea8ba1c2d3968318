package motor

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/san-kum/hybridsim/internal/combustion"
	"github.com/san-kum/hybridsim/internal/feed"
	"github.com/san-kum/hybridsim/internal/grain"
	"github.com/san-kum/hybridsim/internal/hybrid"
	"github.com/san-kum/hybridsim/internal/injector"
	"github.com/san-kum/hybridsim/internal/nitrous"
	"github.com/san-kum/hybridsim/internal/nozzle"
	"github.com/san-kum/hybridsim/internal/tank"
)

type Simulator struct {
	cfg       Config
	table     *combustion.Table
	ztable    *nitrous.CompressibilityTable
	log       zerolog.Logger
	metrics   []Metric
	observers []Observer
}

type Option func(*Simulator)

func WithLogger(log zerolog.Logger) Option {
	return func(s *Simulator) { s.log = log }
}

func WithObserver(o Observer) Option {
	return func(s *Simulator) { s.observers = append(s.observers, o) }
}

func WithMetrics(ms ...Metric) Option {
	return func(s *Simulator) { s.metrics = append(s.metrics, ms...) }
}

// New validates cfg and prepares a simulator. The tables are shared by
// reference and never modified.
func New(cfg Config, table *combustion.Table, ztable *nitrous.CompressibilityTable, opts ...Option) (*Simulator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := validateTables(table, ztable); err != nil {
		return nil, err
	}

	s := &Simulator{
		cfg:    cfg,
		table:  table,
		ztable: ztable,
		log:    zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *Simulator) AddMetric(m Metric)     { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o Observer) { s.observers = append(s.observers, o) }
func (s *Simulator) Config() Config         { return s.cfg }

// firing is the mutable hardware of a single run.
type firing struct {
	cfg    Config
	tank   *tank.Tank
	feed   feed.System
	inj    injector.Injector
	guard  injector.ReversalGuard
	grain  *grain.Grain
	comb   combustion.Model
	nozzle nozzle.Nozzle
	state  State

	fluxHigh     bool
	fluxWarnings int
	log          zerolog.Logger
}

// Run fires the motor until a terminal condition. The returned result always
// holds the records up to the last completed tick. A non-nil error is a
// *hybrid.SimulationError for aborted runs; normal and failure outcomes are
// reported through Result.Outcome and Result.Cause.
func (s *Simulator) Run(ctx context.Context) (*Result, error) {
	f, err := s.ignite()
	if err != nil {
		return nil, err
	}

	for _, m := range s.metrics {
		m.Reset()
	}

	capacity := min(int(s.cfg.MaxDuration/s.cfg.Dt)+1, 16384)
	result := &Result{
		Records: make([]hybrid.StepRecord, 0, capacity),
		Metrics: make(map[string]float64),
	}

	s.logConditions("initial conditions", f)
	s.emit(result, f.initialRecord())

	var runErr error
	for {
		n := f.state.Step + 1
		t := float64(n) * s.cfg.Dt
		if t > s.cfg.MaxDuration+1e-9 {
			result.Outcome = hybrid.OutcomeDurationLimit
			s.log.Warn().Float64("max_duration", s.cfg.MaxDuration).Msg("duration limit reached")
			break
		}

		if err := ctx.Err(); err != nil {
			result.Outcome = hybrid.OutcomeAborted
			result.Cause = err
			runErr = &hybrid.SimulationError{Step: f.state.Step, Time: f.state.Time, Wrapped: err}
			break
		}

		rec, err := f.tick(n, t)
		if err != nil {
			result.Outcome = classify(err)
			result.Cause = err
			if result.Outcome == hybrid.OutcomeAborted {
				runErr = &hybrid.SimulationError{Step: n, Time: t, Wrapped: err}
			}
			break
		}
		s.emit(result, rec)
	}

	result.Step = f.state.Step
	result.Time = f.state.Time
	result.FluxWarnings = f.fluxWarnings
	result.Final = f.state
	if snap, ok := f.tank.Snapshot(); ok {
		result.Snapshot = &snap
	}
	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}

	s.logOutcome(result, runErr)
	s.logConditions("final conditions", f)

	return result, runErr
}

func (s *Simulator) ignite() (*firing, error) {
	tk, err := tank.New(s.cfg.TankVolume, s.cfg.HeadSpace, s.cfg.InitialTemperature, s.ztable, s.cfg.TankOptions())
	if err != nil {
		return nil, err
	}

	f := &firing{
		cfg:    s.cfg,
		tank:   tk,
		feed:   s.cfg.Feed(),
		inj:    s.cfg.Injector(),
		guard:  s.cfg.Guard(),
		grain:  s.cfg.Grain(),
		comb:   combustion.Model{Table: s.table, Efficiency: s.cfg.CStarEfficiency},
		nozzle: s.cfg.Nozzle(),
		log:    s.log,
	}
	f.state.ChamberPressure = s.cfg.ExternalPressure
	f.sync()
	return f, nil
}

func (s *Simulator) emit(result *Result, rec hybrid.StepRecord) {
	result.Records = append(result.Records, rec)
	for _, m := range s.metrics {
		m.Observe(rec)
	}
	for _, o := range s.observers {
		o.OnStep(rec)
	}
}

// classify maps the error that ended a tick to the run outcome.
func classify(err error) hybrid.Outcome {
	switch {
	case errors.Is(err, hybrid.ErrGrainBurnout):
		return hybrid.OutcomeFuelDepleted
	case errors.Is(err, hybrid.ErrConvergence):
		return hybrid.OutcomeVaporDepleted
	case errors.Is(err, hybrid.ErrFlowReversal):
		return hybrid.OutcomeFlowReversed
	case errors.Is(err, hybrid.ErrExcessiveFlux):
		return hybrid.OutcomeMaxFluxExceeded
	default:
		return hybrid.OutcomeAborted
	}
}

// tick advances one time step: feed, injector, tank, flux check, grain,
// combustion, nozzle. The record is returned only if every stage succeeds.
func (f *firing) tick(n int, t float64) (hybrid.StepRecord, error) {
	dt := f.cfg.Dt
	st := &f.state
	props := f.tank.Properties()

	manifold, _ := f.feed.ManifoldPressure(st.OxidizerMassFlow, props, f.tank.LiquidMass())
	if err := f.guard.Check(t, manifold, st.ChamberPressure); err != nil {
		return hybrid.StepRecord{}, err
	}

	var mdot float64
	switch f.tank.Phase() {
	case hybrid.PhaseLiquid:
		var err error
		mdot, err = f.inj.LiquidMassFlow(injector.Conditions{
			Upstream:         props,
			ManifoldPressure: manifold,
			ChamberPressure:  st.ChamberPressure,
		})
		if err != nil {
			return hybrid.StepRecord{}, err
		}
	case hybrid.PhaseVapor:
		mdot = f.inj.VaporMassFlow(props.VaporDensity, manifold-st.ChamberPressure)
	}

	depleted, err := f.tank.Drain(mdot, dt)
	if err != nil {
		return hybrid.StepRecord{}, err
	}
	if depleted {
		drop := manifold - st.ChamberPressure
		f.log.Info().
			Float64("t", t).
			Float64("vapour_mass", f.tank.VaporMass()).
			Float64("injector_drop_pct", 100*drop/st.ChamberPressure).
			Msg("liquid depleted, starting vapour blowdown")
	}

	flux := f.grain.Flux(mdot)
	if err := f.checkFlux(t, flux); err != nil {
		return hybrid.StepRecord{}, err
	}

	burn, err := f.grain.Burn(mdot, dt, t)
	if err != nil {
		return hybrid.StepRecord{}, err
	}

	pc := f.cfg.ExternalPressure
	pe := f.cfg.ExternalPressure
	thrust, of := 0.0, 0.0
	gamma := st.Gamma
	cstar := st.PrevCStar

	if burn.FuelFlow > 0 {
		of = mdot / burn.FuelFlow
		if cstar == 0 {
			cstar = f.comb.CStar(st.ChamberPressure, of)
		}
		pc = combustion.ChamberPressure(mdot+burn.FuelFlow, cstar, f.nozzle.Throat.Area())
		cstar, gamma = f.comb.Lookup(pc, of)

		perf, err := f.nozzle.Evaluate(pc, gamma, f.cfg.ExternalPressure)
		if err != nil {
			return hybrid.StepRecord{}, err
		}
		pe, thrust = perf.ExitPressure, perf.Thrust
	}

	st.Step = n
	st.Time = t
	st.ChamberPressure = pc
	st.OxidizerMassFlow = mdot
	st.PrevCStar = cstar
	st.Gamma = gamma
	f.sync()

	rec := f.record()
	rec.ManifoldPressure = manifold
	rec.ExitPressure = pe
	rec.Thrust = thrust
	rec.OxidizerFlux = burn.Flux
	rec.OxidizerMassFlow = mdot
	rec.FuelMassFlow = burn.FuelFlow
	rec.OFRatio = of
	rec.RegressionRate = burn.Rate
	return rec, nil
}

func (f *firing) checkFlux(t, flux float64) error {
	if flux <= f.cfg.MaxFlux {
		f.fluxHigh = false
		return nil
	}

	// the ignition transient is always advisory, like the reversal guard
	warning := &hybrid.ExcessiveFluxWarning{Time: t, Flux: flux, Limit: f.cfg.MaxFlux}
	if f.cfg.StopOnExcessiveFlux && t > f.cfg.StartupTime {
		return warning
	}
	if !f.fluxHigh {
		f.fluxWarnings++
		f.log.Warn().Err(warning).Float64("t", t).Float64("flux", flux).Msg("oxidizer flux above limit")
	}
	f.fluxHigh = true
	return nil
}

// sync copies component state into the simulation state.
func (f *firing) sync() {
	st := &f.state
	st.Phase = f.tank.Phase()
	st.TankMass = f.tank.TotalMass()
	st.LiquidMass = f.tank.LiquidMass()
	st.VaporMass = f.tank.VaporMass()
	st.TankTemperature = f.tank.Temperature()
	st.VaporPressure = f.tank.VaporPressure()
	st.VaporizationLag = f.tank.Lag()
	st.PortDiameter = f.grain.Port.Diameter
	st.FuelMass = f.grain.Mass()
}

// record fills the fields that come straight from state and geometry.
func (f *firing) record() hybrid.StepRecord {
	st := f.state
	props := f.tank.Properties()
	return hybrid.StepRecord{
		Step:             st.Step,
		Time:             st.Time,
		Phase:            st.Phase,
		TankPressure:     st.VaporPressure,
		ChamberPressure:  st.ChamberPressure,
		PropellantMass:   st.TankMass + st.FuelMass,
		LiquidMass:       st.LiquidMass,
		VaporMass:        st.VaporMass,
		LiquidDensity:    props.LiquidDensity,
		VaporDensity:     props.VaporDensity,
		TankTemperature:  st.TankTemperature,
		FuelMass:         st.FuelMass,
		Gamma:            st.Gamma,
		CStar:            st.PrevCStar,
		ThroatDiameter:   f.nozzle.Throat.Diameter,
		NozzleEfficiency: f.nozzle.Efficiency,
		AreaRatio:        f.nozzle.AreaRatio,
		PortDiameter:     st.PortDiameter,
	}
}

// initialRecord is the state at t = 0 before ignition.
func (f *firing) initialRecord() hybrid.StepRecord {
	rec := f.record()
	rec.ManifoldPressure = f.state.VaporPressure
	rec.ExitPressure = f.cfg.ExternalPressure
	return rec
}

func (s *Simulator) logConditions(msg string, f *firing) {
	st := f.state
	s.log.Info().
		Float64("t", st.Time).
		Float64("tank_temp_c", st.TankTemperature-273.15).
		Float64("liquid_mass", st.LiquidMass).
		Float64("vapour_mass", st.VaporMass).
		Float64("vapour_pressure", st.VaporPressure).
		Float64("fuel_thickness", f.grain.WebThickness()).
		Float64("fuel_mass", st.FuelMass).
		Msg(msg)
}

func (s *Simulator) logOutcome(result *Result, runErr error) {
	if runErr != nil {
		s.log.Error().Err(runErr).Int("step", result.Step).Msg("simulation aborted")
		return
	}
	ev := s.log.Info()
	if !result.Outcome.Normal() {
		ev = s.log.Warn()
	}
	ev.Str("outcome", result.Outcome.String()).
		Float64("t", result.Time).
		Int("records", len(result.Records)).
		Int("flux_warnings", result.FluxWarnings).
		AnErr("cause", result.Cause).
		Msg("firing ended")
}

// Simulate is a convenience wrapper that loads the embedded tables.
func Simulate(ctx context.Context, cfg Config, opts ...Option) (*Result, error) {
	table, err := combustion.LoadDefaultTable()
	if err != nil {
		return nil, fmt.Errorf("load propellant table: %w", err)
	}
	ztable, err := nitrous.LoadDefaultCompressibility()
	if err != nil {
		return nil, fmt.Errorf("load compressibility table: %w", err)
	}
	s, err := New(cfg, table, ztable, opts...)
	if err != nil {
		return nil, err
	}
	return s.Run(ctx)
}
