package hybrid

import (
	"errors"
	"fmt"
	"testing"
)

func TestParseValveModel(t *testing.T) {
	tests := []struct {
		in      string
		want    ValveModel
		wantErr bool
	}{
		{"kv", ValveKv, false},
		{" KV ", ValveKv, false},
		{"thick-orifice", ValveThickOrifice, false},
		{"thick_orifice", ValveThickOrifice, false},
		{"ball", ValveThickOrifice, false},
		{"gate", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		got, err := ParseValveModel(tt.in)
		if tt.wantErr {
			if !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("%q: expected ErrInvalidConfig, got %v", tt.in, err)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("%q: got %v, %v; want %v", tt.in, got, err, tt.want)
		}
	}
}

func TestValveModelStringRoundTrip(t *testing.T) {
	for _, v := range []ValveModel{ValveKv, ValveThickOrifice} {
		got, err := ParseValveModel(v.String())
		if err != nil || got != v {
			t.Errorf("%v does not round trip: %v, %v", v, got, err)
		}
	}
}

func TestOutcomeNormal(t *testing.T) {
	normal := map[Outcome]bool{
		OutcomeRunning:         false,
		OutcomeFuelDepleted:    true,
		OutcomeFlowReversed:    false,
		OutcomeVaporDepleted:   true,
		OutcomeMaxFluxExceeded: false,
		OutcomeDurationLimit:   false,
		OutcomeAborted:         false,
	}
	for o, want := range normal {
		if o.Normal() != want {
			t.Errorf("%v.Normal() = %v, want %v", o, o.Normal(), want)
		}
	}
}

func TestStrings(t *testing.T) {
	if PhaseLiquid.String() != "liquid" || PhaseVapor.String() != "vapour" {
		t.Error("phase names changed")
	}
	if Phase(9).String() != "phase(9)" {
		t.Errorf("unknown phase = %q", Phase(9).String())
	}
	if OutcomeFlowReversed.String() != "flow-reversed" {
		t.Errorf("got %q", OutcomeFlowReversed.String())
	}
	if Outcome(42).String() != "outcome(42)" {
		t.Errorf("unknown outcome = %q", Outcome(42).String())
	}
}

func TestInjectorMargin(t *testing.T) {
	r := StepRecord{ManifoldPressure: 3e6, ChamberPressure: 2e6}
	if got := r.InjectorMargin(); got != 0.5 {
		t.Errorf("margin = %v, want 0.5", got)
	}
	if got := (StepRecord{ManifoldPressure: 1e6}).InjectorMargin(); got != 0 {
		t.Errorf("zero chamber pressure should give 0, got %v", got)
	}
}

func TestErrorsUnwrap(t *testing.T) {
	tests := []struct {
		err      error
		sentinel error
	}{
		{&DomainError{Quantity: "temperature", Value: 400, Min: 182.33, Max: 309.57}, ErrDomain},
		{&FlowReversalError{Time: 0.52, ManifoldPressure: 2.1e6, ChamberPressure: 2e6, MinDropRatio: 0.15}, ErrFlowReversal},
		{&ConvergenceError{VaporMass: 0.01, Reason: "no bracket"}, ErrConvergence},
		{&GrainBurnoutCondition{Time: 7, PortDiameter: 0.05, OuterDiameter: 0.05}, ErrGrainBurnout},
		{&ExcessiveFluxWarning{Time: 1, Flux: 820, Limit: 600}, ErrExcessiveFlux},
	}

	for _, tt := range tests {
		if !errors.Is(tt.err, tt.sentinel) {
			t.Errorf("%T does not unwrap to %v", tt.err, tt.sentinel)
		}
		wrapped := fmt.Errorf("tick: %w", tt.err)
		if !errors.Is(wrapped, tt.sentinel) {
			t.Errorf("wrapped %T lost its sentinel", tt.err)
		}
	}
}

func TestSimulationError(t *testing.T) {
	inner := &DomainError{Quantity: "temperature", Value: 100, Min: 182.33, Max: 309.57}
	err := error(&SimulationError{Step: 12, Time: 0.12, Wrapped: inner})

	if !errors.Is(err, ErrDomain) {
		t.Error("simulation error should expose the domain sentinel")
	}
	var de *DomainError
	if !errors.As(err, &de) || de.Value != 100 {
		t.Error("errors.As should reach the domain error")
	}

	var se *SimulationError
	if !errors.As(err, &se) || se.Step != 12 {
		t.Error("errors.As should reach the simulation error")
	}
}

func TestFlowReversalDrop(t *testing.T) {
	e := &FlowReversalError{ManifoldPressure: 2.1e6, ChamberPressure: 2e6}
	if got := e.Drop(); got != 1e5 {
		t.Errorf("drop = %v, want 1e5", got)
	}
}
