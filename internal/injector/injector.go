// Package injector computes oxidizer mass flow through the injector plate.
//
// Liquid feed uses the Dyer non-homogeneous non-equilibrium model, which
// blends single-phase incompressible flow with choked homogeneous
// equilibrium flow according to how far the drop is from flashing. Vapour
// feed is treated as single-phase incompressible flow.
package injector

import (
	"fmt"
	"math"

	"github.com/san-kum/hybridsim/internal/geometry"
	"github.com/san-kum/hybridsim/internal/hybrid"
	"github.com/san-kum/hybridsim/internal/nitrous"
)

const (
	DefaultCd         = 0.8
	DefaultHEMSamples = 24
)

// Injector is a plate of identical plain orifices.
type Injector struct {
	Count   int
	Orifice geometry.Pipe
	Cd      float64

	// HEMSamples is the number of intervals used to scan for the choked
	// homogeneous equilibrium flux.
	HEMSamples int
}

func New(count int, diameter float64) Injector {
	return Injector{
		Count:      count,
		Orifice:    geometry.Circle(diameter),
		Cd:         DefaultCd,
		HEMSamples: DefaultHEMSamples,
	}
}

func (inj Injector) Validate() error {
	if inj.Count <= 0 {
		return fmt.Errorf("%w: injector count must be positive, got %d", hybrid.ErrInvalidConfig, inj.Count)
	}
	if inj.Orifice.Diameter <= 0 {
		return fmt.Errorf("%w: injector diameter must be positive", hybrid.ErrInvalidConfig)
	}
	if inj.Cd <= 0 || inj.Cd > 1 {
		return fmt.Errorf("%w: discharge coefficient must be in (0, 1], got %.3f", hybrid.ErrInvalidConfig, inj.Cd)
	}
	return nil
}

// Area is the total flow area of the plate.
func (inj Injector) Area() float64 {
	return float64(inj.Count) * inj.Orifice.Area()
}

// Conditions is the state either side of the injector for one tick.
type Conditions struct {
	// Upstream is the saturated liquid state in the tank.
	Upstream         nitrous.Properties
	ManifoldPressure float64
	ChamberPressure  float64
}

func (c Conditions) Drop() float64 {
	return c.ManifoldPressure - c.ChamberPressure
}

// LiquidMassFlow is the Dyer two-phase mass flow for the whole plate.
// It is zero when the pressure drop is not positive.
func (inj Injector) LiquidMassFlow(c Conditions) (float64, error) {
	drop := c.Drop()
	if drop <= 0 {
		return 0, nil
	}

	spi := SPIFlux(c.Upstream.LiquidDensity, drop)
	hem, err := inj.ChokedHEMFlux(c.Upstream, c.ManifoldPressure, c.ChamberPressure)
	if err != nil {
		return 0, err
	}

	k := NonEquilibrium(drop, c.Upstream.VaporPressure, c.ChamberPressure)
	flux := k/(1+k)*spi + 1/(1+k)*hem
	return inj.Cd * inj.Area() * flux, nil
}

// VaporMassFlow is single-phase flow of vapour of the given density.
func (inj Injector) VaporMassFlow(vaporDensity, drop float64) float64 {
	if drop <= 0 {
		return 0
	}
	return inj.Cd * inj.Area() * SPIFlux(vaporDensity, drop)
}

// SPIFlux is the single-phase incompressible mass flux.
func SPIFlux(density, drop float64) float64 {
	return math.Sqrt(2 * density * drop)
}

// NonEquilibrium is the Dyer kappa parameter. Larger values weight the
// single-phase term more heavily.
func NonEquilibrium(drop, vaporPressure, chamberPressure float64) float64 {
	return math.Sqrt(drop / math.Max(vaporPressure-chamberPressure, 1e-9))
}

// HEMFlux is the homogeneous equilibrium mass flux expanding saturated
// liquid from p1 to p2. The downstream state flashes isenthalpically.
func HEMFlux(upstream nitrous.Properties, p1, p2 float64) (float64, error) {
	down, err := nitrous.At(nitrous.SaturationTemperature(p2))
	if err != nil {
		return 0, err
	}

	quality := (upstream.LiquidEnthalpy - down.LiquidEnthalpy) / down.LatentHeat()
	quality = math.Min(math.Max(quality, 0), 1)

	v1 := 1 / upstream.LiquidDensity
	v2 := 1/down.LiquidDensity + quality*(1/down.VaporDensity-1/down.LiquidDensity)
	dh := (p1 - p2) * (v1 + v2) / 2

	return math.Sqrt(2*dh) / v2, nil
}

// ChokedHEMFlux scans downstream pressures from the chamber up to the
// manifold and returns the largest homogeneous equilibrium flux.
func (inj Injector) ChokedHEMFlux(upstream nitrous.Properties, manifold, chamber float64) (float64, error) {
	n := inj.HEMSamples
	if n <= 0 {
		n = DefaultHEMSamples
	}

	best := 0.0
	for k := 0; k <= n; k++ {
		p2 := chamber + (manifold-chamber)*float64(k)/float64(n)
		if p2 >= manifold {
			break
		}
		g, err := HEMFlux(upstream, manifold, p2)
		if err != nil {
			return 0, err
		}
		best = math.Max(best, g)
	}
	return best, nil
}
