package geometry

import "math"

// Pipe describes anything round with a bore: feed lines, valve bores,
// injector orifices, the fuel port and the nozzle throat.
type Pipe struct {
	Diameter float64
	Length   float64
}

func NewPipe(diameter, length float64) Pipe {
	return Pipe{Diameter: diameter, Length: length}
}

// Circle returns a pipe with no meaningful length.
func Circle(diameter float64) Pipe {
	return Pipe{Diameter: diameter}
}

func (p Pipe) Area() float64 {
	return AreaOf(p.Diameter)
}

// AspectRatio is length over diameter.
func (p Pipe) AspectRatio() float64 {
	if p.Diameter == 0 {
		return 0
	}
	return p.Length / p.Diameter
}

func AreaOf(diameter float64) float64 {
	return math.Pi * diameter * diameter / 4
}

// AnnulusArea is the area between an inner and outer diameter.
func AnnulusArea(inner, outer float64) float64 {
	return AreaOf(outer) - AreaOf(inner)
}
