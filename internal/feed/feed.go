// Package feed computes pressure losses between the tank and the injector
// manifold: tank entry, pipe friction and the run valve.
package feed

import (
	"fmt"
	"math"

	"github.com/san-kum/hybridsim/internal/geometry"
	"github.com/san-kum/hybridsim/internal/hybrid"
	"github.com/san-kum/hybridsim/internal/nitrous"
)

// kvConversion turns a Kv in m^3/h of water into SI for the mass flow form.
const kvConversion = 1.296e9

// System is the plumbing from the tank outlet to the injector manifold.
type System struct {
	Pipe  geometry.Pipe
	Valve geometry.Pipe
	Model hybrid.ValveModel
	Kv    float64
}

// Losses splits the manifold pressure drop into its parts.
type Losses struct {
	Entry          float64
	Friction       float64
	Valve          float64
	Reynolds       float64
	FrictionFactor float64
	FlowSpeed      float64
}

func (l Losses) Total() float64 {
	return l.Entry + l.Friction + l.Valve
}

func (s System) Validate() error {
	if s.Pipe.Diameter <= 0 || s.Pipe.Length < 0 {
		return fmt.Errorf("%w: feed pipe needs positive diameter and non-negative length", hybrid.ErrInvalidConfig)
	}
	switch s.Model {
	case hybrid.ValveKv:
		if s.Kv <= 0 {
			return fmt.Errorf("%w: valve Kv must be positive", hybrid.ErrInvalidConfig)
		}
	case hybrid.ValveThickOrifice:
		if s.Valve.Diameter <= 0 || s.Valve.Length < 0 {
			return fmt.Errorf("%w: valve bore needs positive diameter and non-negative length", hybrid.ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown valve model %v", hybrid.ErrInvalidConfig, s.Model)
	}
	return nil
}

// Losses evaluates every loss term for an oxidizer mass flow of liquid with
// the given properties.
func (s System) Losses(mdot float64, props nitrous.Properties) Losses {
	rho := props.LiquidDensity
	v := mdot / (rho * s.Pipe.Area())
	re := rho * v * s.Pipe.Diameter / props.LiquidViscosity
	f := NikuradseFriction(re)
	dyn := 0.5 * rho * v * v

	l := Losses{
		Entry:          dyn,
		Friction:       0.25 * f * rho * v * v * s.Pipe.Length / s.Pipe.Diameter,
		Reynolds:       re,
		FrictionFactor: f,
		FlowSpeed:      v,
	}

	switch s.Model {
	case hybrid.ValveKv:
		l.Valve = KvLoss(mdot, rho, s.Kv)
	default:
		l.Valve = dyn * ThickOrificeK(re, s.Pipe.Diameter, s.Valve.Diameter, s.Valve.Length)
	}
	return l
}

// ManifoldPressure is the tank vapour pressure less the feed losses. Losses
// only apply while liquid flows; otherwise the manifold sees tank pressure.
func (s System) ManifoldPressure(mdot float64, props nitrous.Properties, liquidMass float64) (float64, Losses) {
	if mdot <= 0 || liquidMass <= 0 {
		return props.VaporPressure, Losses{}
	}
	l := s.Losses(mdot, props)
	return props.VaporPressure - l.Total(), l
}

// NikuradseFriction is the smooth-pipe turbulent friction factor.
func NikuradseFriction(re float64) float64 {
	return 0.0032 + 0.221*math.Pow(re, -0.237)
}

// ThickOrificeK is the loss coefficient of a valve bore treated as a thick
// orifice in a pipe. The coefficient is referenced to the pipe velocity.
func ThickOrificeK(re, pipeDiameter, boreDiameter, boreLength float64) float64 {
	ar := math.Min(math.Pow(boreDiameter/pipeDiameter, 2), 1)
	lbar := boreLength / boreDiameter

	phi := 0.25 + 0.535*math.Pow(lbar, 8)/(0.05+math.Pow(lbar, 7))
	tau := math.Max((2.4-lbar)*math.Pow(10, -phi), 0)

	lambda := NikuradseFriction(re * pipeDiameter / boreDiameter)
	open := 1 - ar

	return (0.5*math.Pow(open, 0.75) + tau*math.Pow(open, 1.375) + open*open + lambda*lbar) / (ar * ar)
}

// KvLoss is the valve pressure drop from its flow coefficient.
func KvLoss(mdot, rho, kv float64) float64 {
	return kvConversion * mdot * mdot / (rho * kv * kv)
}
