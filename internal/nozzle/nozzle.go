// Package nozzle evaluates ideal converging-diverging nozzle performance
// with a momentum efficiency correction.
package nozzle

import (
	"fmt"
	"math"

	"github.com/san-kum/hybridsim/internal/geometry"
	"github.com/san-kum/hybridsim/internal/hybrid"
	"github.com/san-kum/hybridsim/internal/solve"
)

// MaxExitMach bounds the supersonic branch searched by ExitMach.
const MaxExitMach = 50.0

type Nozzle struct {
	Throat     geometry.Pipe
	AreaRatio  float64
	Efficiency float64
}

// Performance is the nozzle output for one chamber state.
type Performance struct {
	ExitMach     float64
	ExitPressure float64
	Thrust       float64
	// Momentum is the thrust term before the pressure correction.
	Momentum float64
}

func (n Nozzle) Validate() error {
	if n.Throat.Diameter <= 0 {
		return fmt.Errorf("%w: throat diameter must be positive", hybrid.ErrInvalidConfig)
	}
	if n.AreaRatio < 1 {
		return fmt.Errorf("%w: nozzle area ratio %.3f is below 1", hybrid.ErrInvalidConfig, n.AreaRatio)
	}
	if n.Efficiency <= 0 || n.Efficiency > 1 {
		return fmt.Errorf("%w: nozzle efficiency must be in (0, 1], got %.3f", hybrid.ErrInvalidConfig, n.Efficiency)
	}
	return nil
}

// AreaRatioAt is the isentropic area ratio for Mach number m.
func AreaRatioAt(gamma, m float64) float64 {
	return (1 / m) * math.Pow((2/(gamma+1))*(1+(gamma-1)/2*m*m), (gamma+1)/(2*(gamma-1)))
}

// ExitMach solves the area ratio relation on the supersonic branch.
func ExitMach(gamma, areaRatio float64) (float64, error) {
	if areaRatio < 1 {
		return 0, fmt.Errorf("%w: area ratio %.4f is below 1", hybrid.ErrInvalidConfig, areaRatio)
	}
	if areaRatio == 1 {
		return 1, nil
	}
	f := func(m float64) float64 { return AreaRatioAt(gamma, m) - areaRatio }
	m, _, err := solve.Bisect(f, 1, MaxExitMach, 1e-12, 0)
	if err != nil {
		return 0, fmt.Errorf("exit mach for area ratio %.3f: %w", areaRatio, err)
	}
	return m, nil
}

// ExitPressure is the isentropic static pressure at Mach m.
func ExitPressure(chamber, gamma, m float64) float64 {
	return chamber * math.Pow(1+(gamma-1)*m*m/2, -gamma/(gamma-1))
}

// Evaluate returns exit conditions and thrust at chamber pressure pc into
// an ambient pressure pext. Deep overexpansion at low chamber pressure can
// drive the pressure term below the momentum term; thrust floors at zero
// there, as the flow separates instead of pulling the motor backwards.
func (n Nozzle) Evaluate(pc, gamma, pext float64) (Performance, error) {
	m, err := ExitMach(gamma, n.AreaRatio)
	if err != nil {
		return Performance{}, err
	}
	pe := ExitPressure(pc, gamma, m)
	at := n.Throat.Area()

	cf := math.Sqrt(2 * gamma * gamma / (gamma - 1) *
		math.Pow(2/(gamma+1), (gamma+1)/(gamma-1)) *
		(1 - math.Pow(pe/pc, 1-1/gamma)))
	momentum := n.Efficiency * at * pc * cf

	return Performance{
		ExitMach:     m,
		ExitPressure: pe,
		Momentum:     momentum,
		Thrust:       max(momentum+(pe-pext)*at*n.AreaRatio, 0),
	}, nil
}
