package feed

import (
	"errors"
	"math"
	"testing"

	"github.com/san-kum/hybridsim/internal/geometry"
	"github.com/san-kum/hybridsim/internal/hybrid"
	"github.com/san-kum/hybridsim/internal/nitrous"
)

func defaultSystem(model hybrid.ValveModel) System {
	return System{
		Pipe:  geometry.NewPipe(0.01, 0.2),
		Valve: geometry.NewPipe(0.015, 0.08),
		Model: model,
		Kv:    5,
	}
}

func TestNikuradseFriction(t *testing.T) {
	tests := []struct {
		re       float64
		expected float64
	}{
		{1e5, 0.017634},
		{1e6, 0.011564},
	}
	for _, tt := range tests {
		if got := NikuradseFriction(tt.re); math.Abs(got-tt.expected) > 1e-5 {
			t.Errorf("NikuradseFriction(%v) = %v, want %v", tt.re, got, tt.expected)
		}
	}
}

func TestThickOrificeK(t *testing.T) {
	tests := []struct {
		name           string
		re, dp, dv, lv float64
		expected       float64
	}{
		{"bore wider than pipe", 1e6, 0.01, 0.015, 0.08, 0.066172},
		{"restricting bore", 1e6, 0.015, 0.01, 0.005, 5.4367},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ThickOrificeK(tt.re, tt.dp, tt.dv, tt.lv)
			if math.Abs(got-tt.expected)/tt.expected > 1e-3 {
				t.Errorf("got %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestKvLoss(t *testing.T) {
	got := KvLoss(1, 1000, 5)
	if math.Abs(got-1.296e9/25000) > 1e-6 {
		t.Errorf("unexpected Kv loss %v", got)
	}
}

func TestManifoldPressure(t *testing.T) {
	props, err := nitrous.At(298.15)
	if err != nil {
		t.Fatal(err)
	}

	for _, model := range []hybrid.ValveModel{hybrid.ValveThickOrifice, hybrid.ValveKv} {
		t.Run(model.String(), func(t *testing.T) {
			s := defaultSystem(model)
			pm, losses := s.ManifoldPressure(1.5, props, 5)

			if losses.Entry <= 0 || losses.Friction <= 0 || losses.Valve <= 0 {
				t.Errorf("expected positive losses, got %+v", losses)
			}
			if math.Abs(props.VaporPressure-losses.Total()-pm) > 1e-6 {
				t.Errorf("manifold %v does not equal tank minus losses", pm)
			}

			wantV := 1.5 / (props.LiquidDensity * s.Pipe.Area())
			if math.Abs(losses.FlowSpeed-wantV) > 1e-9 {
				t.Errorf("flow speed %v, want %v", losses.FlowSpeed, wantV)
			}
		})
	}
}

func TestManifoldPressureWithoutLiquidFlow(t *testing.T) {
	props, _ := nitrous.At(290)
	s := defaultSystem(hybrid.ValveThickOrifice)

	for _, tc := range []struct{ mdot, liquid float64 }{{0, 5}, {-1, 5}, {1, 0}} {
		pm, losses := s.ManifoldPressure(tc.mdot, props, tc.liquid)
		if pm != props.VaporPressure || losses.Total() != 0 {
			t.Errorf("mdot=%v liquid=%v: expected no losses, got %v", tc.mdot, tc.liquid, losses)
		}
	}
}

func TestLossesGrowWithFlow(t *testing.T) {
	props, _ := nitrous.At(298.15)
	s := defaultSystem(hybrid.ValveKv)

	prev := 0.0
	for _, mdot := range []float64{0.2, 0.5, 1, 2} {
		total := s.Losses(mdot, props).Total()
		if total <= prev {
			t.Errorf("losses not increasing at mdot=%v", mdot)
		}
		prev = total
	}
}

func TestSystemValidate(t *testing.T) {
	if err := defaultSystem(hybrid.ValveKv).Validate(); err != nil {
		t.Errorf("default kv system invalid: %v", err)
	}

	bad := defaultSystem(hybrid.ValveKv)
	bad.Kv = 0
	if err := bad.Validate(); !errors.Is(err, hybrid.ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig for zero Kv, got %v", err)
	}

	bad = defaultSystem(hybrid.ValveThickOrifice)
	bad.Valve.Diameter = 0
	if err := bad.Validate(); !errors.Is(err, hybrid.ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig for zero bore, got %v", err)
	}

	bad = defaultSystem(hybrid.ValveThickOrifice)
	bad.Pipe.Diameter = -1
	if err := bad.Validate(); !errors.Is(err, hybrid.ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig for negative pipe, got %v", err)
	}
}
