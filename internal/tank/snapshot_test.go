package tank

import (
	"errors"
	"math"
	"testing"

	"github.com/san-kum/hybridsim/internal/hybrid"
	"github.com/san-kum/hybridsim/internal/nitrous"
)

func testSnapshot() Snapshot {
	return Snapshot{
		VaporMass:     0.67,
		Temperature:   283.07,
		VaporDensity:  114.16,
		VaporPressure: 3.999e6,
		Z:             0.664,
		Gamma:         nitrous.VaporGamma,
	}
}

func TestProjectIdempotent(t *testing.T) {
	s := testSnapshot()
	first := s.Project(0.5, 0.7)
	for i := 0; i < 10; i++ {
		if got := s.Project(0.5, 0.7); got != first {
			t.Fatalf("projection changed on call %d: %+v vs %+v", i, got, first)
		}
	}
}

func TestProjectAtSnapshot(t *testing.T) {
	s := testSnapshot()
	got := s.Project(s.VaporMass, s.Z)

	if math.Abs(got.Temperature-s.Temperature) > 1e-9 ||
		math.Abs(got.VaporPressure-s.VaporPressure) > 1e-6 ||
		math.Abs(got.VaporDensity-s.VaporDensity) > 1e-9 {
		t.Errorf("projection at the snapshot should reproduce it, got %+v", got)
	}
}

func TestProjectIsentropic(t *testing.T) {
	s := testSnapshot()
	p := s.Project(0.4, 0.72)

	// p/rho^gamma is constant along an isentrope
	lhs := s.VaporPressure / math.Pow(s.VaporDensity, s.Gamma)
	rhs := p.VaporPressure / math.Pow(p.VaporDensity, s.Gamma)
	if math.Abs(lhs-rhs)/lhs > 1e-9 {
		t.Errorf("p/rho^gamma not conserved: %v vs %v", lhs, rhs)
	}
	if p.Temperature >= s.Temperature {
		t.Errorf("expansion should cool, got %v", p.Temperature)
	}
}

func TestSolveZ(t *testing.T) {
	ztable, err := nitrous.LoadDefaultCompressibility()
	if err != nil {
		t.Fatal(err)
	}
	s := testSnapshot()
	s.Z = ztable.Z(s.VaporPressure)

	z, iters, err := s.SolveZ(0.6, ztable)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if iters == 0 {
		t.Error("expected bisection iterations")
	}
	if resid := z - ztable.Z(s.pressureAt(0.6, z)); math.Abs(resid) > 1e-9 {
		t.Errorf("residual %v at z=%v", resid, z)
	}
	if z <= s.Z {
		t.Errorf("Z should rise as the vapour expands, got %v from %v", z, s.Z)
	}
}

func TestSolveZFailures(t *testing.T) {
	ztable, _ := nitrous.LoadDefaultCompressibility()
	s := testSnapshot()
	s.Z = ztable.Z(s.VaporPressure)

	for _, mass := range []float64{0, -0.1, 1e-4} {
		_, _, err := s.SolveZ(mass, ztable)
		var ce *hybrid.ConvergenceError
		if !errors.As(err, &ce) {
			t.Errorf("mass %v: expected ConvergenceError, got %v", mass, err)
		}
	}
}
