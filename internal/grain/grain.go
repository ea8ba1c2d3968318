// Package grain models the solid fuel grain: a single cylindrical port whose
// diameter grows with the oxidizer-flux driven regression law rdot = a*G^n.
package grain

import (
	"fmt"
	"math"

	"github.com/san-kum/hybridsim/internal/geometry"
	"github.com/san-kum/hybridsim/internal/hybrid"
)

type Grain struct {
	Port          geometry.Pipe
	OuterDiameter float64
	Density       float64
	Coefficient   float64 // a, SI units
	Exponent      float64 // n
}

// Burn is the outcome of one regression step.
type Burn struct {
	Flux     float64 // kg/m^2/s, over the port before growth
	Rate     float64 // m/s
	FuelFlow float64 // kg/s
}

func (g *Grain) Validate() error {
	switch {
	case g.Port.Diameter <= 0 || g.Port.Length <= 0:
		return fmt.Errorf("%w: fuel port needs positive diameter and length", hybrid.ErrInvalidConfig)
	case g.OuterDiameter < g.Port.Diameter:
		return fmt.Errorf("%w: grain outer diameter %.4f is smaller than port %.4f", hybrid.ErrInvalidConfig, g.OuterDiameter, g.Port.Diameter)
	case g.Density <= 0:
		return fmt.Errorf("%w: fuel density must be positive", hybrid.ErrInvalidConfig)
	case g.Coefficient <= 0 || g.Exponent <= 0:
		return fmt.Errorf("%w: regression coefficients must be positive", hybrid.ErrInvalidConfig)
	}
	return nil
}

// Flux is the oxidizer mass flux through the current port.
func (g *Grain) Flux(mdot float64) float64 {
	return mdot / g.Port.Area()
}

// RegressionRate returns a*G^n, or zero when there is no flux.
func (g *Grain) RegressionRate(flux float64) float64 {
	if flux <= 0 {
		return 0
	}
	return g.Coefficient * math.Pow(flux, g.Exponent)
}

// Burn regresses the port for one tick at oxidizer flow mdot. The fuel flow
// uses the burning surface before growth. A *hybrid.GrainBurnoutCondition is
// returned once the port reaches the outer diameter; the grain is left at
// the grown diameter.
func (g *Grain) Burn(mdot, dt, t float64) (Burn, error) {
	b := Burn{Flux: g.Flux(mdot)}
	b.Rate = g.RegressionRate(b.Flux)
	b.FuelFlow = b.Rate * g.Density * math.Pi * g.Port.Diameter * g.Port.Length

	g.Port.Diameter += 2 * b.Rate * dt

	if g.Port.Diameter >= g.OuterDiameter {
		return b, &hybrid.GrainBurnoutCondition{
			Time:          t,
			PortDiameter:  g.Port.Diameter,
			OuterDiameter: g.OuterDiameter,
		}
	}
	return b, nil
}

// Mass is the fuel remaining between the port and the outer diameter.
func (g *Grain) Mass() float64 {
	return geometry.AnnulusArea(g.Port.Diameter, g.OuterDiameter) * g.Port.Length * g.Density
}

// WebThickness is the remaining fuel thickness.
func (g *Grain) WebThickness() float64 {
	return 0.5 * (g.OuterDiameter - g.Port.Diameter)
}
