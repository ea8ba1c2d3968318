package injector

import "github.com/san-kum/hybridsim/internal/hybrid"

const (
	DefaultStartupTime  = 0.5  // s
	DefaultMinDropRatio = 0.15 // fraction of chamber pressure
)

// ReversalGuard trips when the injector pressure drop falls too low relative
// to chamber pressure once the motor is past startup.
type ReversalGuard struct {
	MinDropRatio float64
	StartupTime  float64
}

func DefaultReversalGuard() ReversalGuard {
	return ReversalGuard{MinDropRatio: DefaultMinDropRatio, StartupTime: DefaultStartupTime}
}

// Check returns a *hybrid.FlowReversalError when the drop is below the limit.
func (g ReversalGuard) Check(t, manifold, chamber float64) error {
	if t <= g.StartupTime {
		return nil
	}
	if manifold-chamber < g.MinDropRatio*chamber {
		return &hybrid.FlowReversalError{
			Time:             t,
			ManifoldPressure: manifold,
			ChamberPressure:  chamber,
			MinDropRatio:     g.MinDropRatio,
		}
	}
	return nil
}
