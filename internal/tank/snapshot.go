package tank

import (
	"errors"
	"math"

	"github.com/san-kum/hybridsim/internal/hybrid"
	"github.com/san-kum/hybridsim/internal/nitrous"
	"github.com/san-kum/hybridsim/internal/solve"
)

const (
	zTolerance     = 1e-12
	zMaxIterations = 100
)

// Snapshot is the tank state frozen at liquid depletion. Every vapour
// blowdown state is an isentropic projection from it.
type Snapshot struct {
	VaporMass     float64
	Temperature   float64
	VaporDensity  float64
	VaporPressure float64
	Z             float64
	Gamma         float64
}

// Projection is the tank state at a point on the vapour expansion.
type Projection struct {
	Temperature   float64
	VaporPressure float64
	VaporDensity  float64
}

// Project returns the isentropic state for the remaining vapour mass and
// compressibility factor. It has no side effects.
func (s Snapshot) Project(mass, z float64) Projection {
	g := s.Gamma
	temp := s.Temperature * math.Pow(z*mass/(s.Z*s.VaporMass), g-1)
	ratio := temp / s.Temperature
	return Projection{
		Temperature:   temp,
		VaporPressure: s.VaporPressure * math.Pow(ratio, g/(g-1)),
		VaporDensity:  s.VaporDensity * math.Pow(ratio, 1/(g-1)),
	}
}

// pressureAt is the vapour pressure implied directly by a trial Z.
func (s Snapshot) pressureAt(mass, z float64) float64 {
	return s.VaporPressure * math.Pow(z*mass/(s.Z*s.VaporMass), s.Gamma)
}

// SolveZ finds the compressibility factor consistent with both the table and
// the isentropic expansion for the remaining vapour mass. Failure to find one
// inside the tabulated range means the vapour is spent.
func (s Snapshot) SolveZ(mass float64, table *nitrous.CompressibilityTable) (float64, int, error) {
	if mass <= 0 {
		return 0, 0, &hybrid.ConvergenceError{VaporMass: mass, Reason: "vapour mass exhausted"}
	}

	f := func(z float64) float64 {
		return z - table.Z(s.pressureAt(mass, z))
	}

	lo, hi := table.FactorRange()
	z, iters, err := solve.Bisect(f, lo, hi, zTolerance, zMaxIterations)
	switch {
	case errors.Is(err, solve.ErrNotBracketed):
		return 0, iters, &hybrid.ConvergenceError{VaporMass: mass, Iterations: iters, Reason: "no compressibility root in table range"}
	case err != nil:
		return 0, iters, &hybrid.ConvergenceError{VaporMass: mass, Iterations: iters, Reason: err.Error()}
	}

	if pmin, _ := table.Range(); s.pressureAt(mass, z) < pmin {
		return 0, iters, &hybrid.ConvergenceError{VaporMass: mass, Iterations: iters, Reason: "pressure below tabulated range"}
	}
	return z, iters, nil
}
