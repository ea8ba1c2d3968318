package motor

import (
	"errors"
	"fmt"
	"math"

	"github.com/san-kum/hybridsim/internal/combustion"
	"github.com/san-kum/hybridsim/internal/feed"
	"github.com/san-kum/hybridsim/internal/geometry"
	"github.com/san-kum/hybridsim/internal/grain"
	"github.com/san-kum/hybridsim/internal/hybrid"
	"github.com/san-kum/hybridsim/internal/injector"
	"github.com/san-kum/hybridsim/internal/nitrous"
	"github.com/san-kum/hybridsim/internal/nozzle"
	"github.com/san-kum/hybridsim/internal/tank"
)

// Config holds every motor and run parameter in SI units.
type Config struct {
	TankVolume         float64 // m^3
	HeadSpace          float64 // fraction of tank volume
	InitialTemperature float64 // K

	InjectorCount        int
	InjectorDiameter     float64
	DischargeCoefficient float64

	PortDiameter          float64
	PortLength            float64
	OuterDiameter         float64
	FuelDensity           float64
	RegressionCoefficient float64
	RegressionExponent    float64

	CStarEfficiency float64

	ThroatDiameter   float64
	NozzleEfficiency float64
	AreaRatio        float64

	FeedDiameter  float64
	FeedLength    float64
	Valve         hybrid.ValveModel
	ValveKv       float64
	ValveDiameter float64
	ValveLength   float64

	ExternalPressure float64

	Dt          float64
	MaxDuration float64

	VaporGamma      float64
	VaporizationLag float64

	StartupTime         float64
	MinDropRatio        float64
	MaxFlux             float64
	StopOnExcessiveFlux bool
}

// DefaultConfig is the Pulsar motor: a 94 mm tank feeding an HDPE grain.
func DefaultConfig() Config {
	return Config{
		TankVolume:         0.047 * 0.047 * math.Pi * 0.7,
		HeadSpace:          0.15,
		InitialTemperature: 298.15,

		InjectorCount:        12,
		InjectorDiameter:     0.0015,
		DischargeCoefficient: injector.DefaultCd,

		PortDiameter:          0.04,
		PortLength:            0.7,
		OuterDiameter:         0.07,
		FuelDensity:           1000,
		RegressionCoefficient: 1.157e-4,
		RegressionExponent:    0.331,

		CStarEfficiency: 0.95,

		ThroatDiameter:   0.02,
		NozzleEfficiency: 0.97,
		AreaRatio:        3.5,

		FeedDiameter:  0.01,
		FeedLength:    0.2,
		Valve:         hybrid.ValveThickOrifice,
		ValveKv:       5,
		ValveDiameter: 0.015,
		ValveLength:   0.08,

		ExternalPressure: 101325,

		Dt:          0.01,
		MaxDuration: 120,

		VaporGamma:      nitrous.VaporGamma,
		VaporizationLag: tank.DefaultLagTime,

		StartupTime:  injector.DefaultStartupTime,
		MinDropRatio: injector.DefaultMinDropRatio,
		MaxFlux:      600,
	}
}

func (c Config) Feed() feed.System {
	return feed.System{
		Pipe:  geometry.NewPipe(c.FeedDiameter, c.FeedLength),
		Valve: geometry.NewPipe(c.ValveDiameter, c.ValveLength),
		Model: c.Valve,
		Kv:    c.ValveKv,
	}
}

func (c Config) Injector() injector.Injector {
	inj := injector.New(c.InjectorCount, c.InjectorDiameter)
	inj.Cd = c.DischargeCoefficient
	return inj
}

func (c Config) Guard() injector.ReversalGuard {
	return injector.ReversalGuard{MinDropRatio: c.MinDropRatio, StartupTime: c.StartupTime}
}

// Grain returns a fresh grain; the driver owns and mutates its port.
func (c Config) Grain() *grain.Grain {
	return &grain.Grain{
		Port:          geometry.NewPipe(c.PortDiameter, c.PortLength),
		OuterDiameter: c.OuterDiameter,
		Density:       c.FuelDensity,
		Coefficient:   c.RegressionCoefficient,
		Exponent:      c.RegressionExponent,
	}
}

func (c Config) Nozzle() nozzle.Nozzle {
	return nozzle.Nozzle{
		Throat:     geometry.Circle(c.ThroatDiameter),
		AreaRatio:  c.AreaRatio,
		Efficiency: c.NozzleEfficiency,
	}
}

func (c Config) TankOptions() tank.Options {
	return tank.Options{LagTime: c.VaporizationLag, VaporGamma: c.VaporGamma}
}

// Validate checks every parameter. All failures are reported together and
// each wraps hybrid.ErrInvalidConfig.
func (c Config) Validate() error {
	var errs []error
	add := func(err error) {
		if err != nil {
			errs = append(errs, err)
		}
	}
	invalid := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{hybrid.ErrInvalidConfig}, args...)...))
	}

	if c.TankVolume <= 0 {
		invalid("tank volume must be positive, got %g", c.TankVolume)
	}
	if c.HeadSpace <= 0 || c.HeadSpace >= 1 {
		invalid("head space must be in (0, 1), got %g", c.HeadSpace)
	}
	if c.InitialTemperature < nitrous.TriplePointTemperature || c.InitialTemperature >= nitrous.CriticalTemperature {
		invalid("initial temperature %.2f K outside saturated range [%.2f, %.2f)",
			c.InitialTemperature, nitrous.TriplePointTemperature, nitrous.CriticalTemperature)
	}
	if c.CStarEfficiency <= 0 || c.CStarEfficiency > 1 {
		invalid("c* efficiency must be in (0, 1], got %g", c.CStarEfficiency)
	}
	if c.ExternalPressure <= 0 {
		invalid("external pressure must be positive, got %g", c.ExternalPressure)
	}
	if c.Dt <= 0 {
		invalid("dt must be positive, got %g", c.Dt)
	}
	if c.MaxDuration <= 0 {
		invalid("max duration must be positive, got %g", c.MaxDuration)
	}
	if c.VaporGamma <= 1 {
		invalid("vapour gamma must exceed 1, got %g", c.VaporGamma)
	}
	if c.VaporizationLag <= 0 {
		invalid("vaporization lag must be positive, got %g", c.VaporizationLag)
	}
	if c.StartupTime < 0 || c.MinDropRatio < 0 {
		invalid("reversal guard needs non-negative startup time and drop ratio")
	}
	if c.MaxFlux <= 0 {
		invalid("flux limit must be positive, got %g", c.MaxFlux)
	}

	add(c.Feed().Validate())
	add(c.Injector().Validate())
	add(c.Grain().Validate())
	add(c.Nozzle().Validate())

	return errors.Join(errs...)
}

// validateTables checks the shared lookup tables handed to the simulator.
func validateTables(table *combustion.Table, ztable *nitrous.CompressibilityTable) error {
	if table == nil {
		return fmt.Errorf("%w: propellant table is required", hybrid.ErrInvalidConfig)
	}
	if ztable == nil {
		return fmt.Errorf("%w: compressibility table is required", hybrid.ErrInvalidConfig)
	}
	return nil
}
