// Package nitrous models saturated nitrous oxide: the temperature-driven
// property correlations used by the tank and injector, and the tabulated
// vapour compressibility factor used during vapour blowdown.
//
// The correlations are the ESDU 91022 fits for the saturated liquid and
// vapour lines. They are valid from the triple point up to, but excluding,
// the critical point.
package nitrous

import (
	"math"

	"github.com/san-kum/hybridsim/internal/hybrid"
	"github.com/san-kum/hybridsim/internal/solve"
)

const (
	CriticalTemperature    = 309.57  // K
	CriticalPressure       = 7.251e6 // Pa
	CriticalDensity        = 452.0   // kg/m^3
	TriplePointTemperature = 182.34  // K

	// VaporGamma is the ratio of specific heats used for isentropic vapour expansion.
	VaporGamma = 1.31
)

// Properties is the saturated state at one temperature, in SI units.
type Properties struct {
	Temperature     float64 // K
	LiquidDensity   float64 // kg/m^3
	VaporDensity    float64 // kg/m^3
	LiquidEnthalpy  float64 // J/kg
	VaporEnthalpy   float64 // J/kg
	LiquidCp        float64 // J/kg/K
	VaporPressure   float64 // Pa
	LiquidViscosity float64 // Pa s
}

// LatentHeat is the specific enthalpy of vaporization.
func (p Properties) LatentHeat() float64 {
	return p.VaporEnthalpy - p.LiquidEnthalpy
}

func checkTemperature(temp float64) error {
	if math.IsNaN(temp) || temp < TriplePointTemperature || temp >= CriticalTemperature {
		return &hybrid.DomainError{
			Quantity: "temperature",
			Value:    temp,
			Min:      TriplePointTemperature,
			Max:      CriticalTemperature,
		}
	}
	return nil
}

// At evaluates every saturated property at temp (K).
func At(temp float64) (Properties, error) {
	if err := checkTemperature(temp); err != nil {
		return Properties{}, err
	}

	tr := temp / CriticalTemperature
	a := 1 - tr
	b := 1/tr - 1

	lden := CriticalDensity * math.Exp(1.72328*math.Cbrt(a)-0.83950*math.Pow(a, 2.0/3)+0.51060*a-0.10412*math.Pow(a, 4.0/3))
	vden := CriticalDensity * math.Exp(-1.00900*math.Cbrt(b)-6.28792*math.Pow(b, 2.0/3)+7.50332*b-7.90463*math.Pow(b, 4.0/3)+0.629427*math.Pow(b, 5.0/3))

	hl := 1e3 * (-200 + 116.043*math.Cbrt(a) - 917.225*math.Pow(a, 2.0/3) + 794.779*a - 589.587*math.Pow(a, 4.0/3))
	hg := 1e3 * (-200 + 440.055*math.Cbrt(a) - 459.701*math.Pow(a, 2.0/3) + 434.081*a - 485.338*math.Pow(a, 4.0/3))

	cp := 1e3 * 2.49973 * (1 + 0.023454/a - 3.80136*a + 13.0945*a*a - 14.5180*a*a*a)

	return Properties{
		Temperature:     temp,
		LiquidDensity:   lden,
		VaporDensity:    vden,
		LiquidEnthalpy:  hl,
		VaporEnthalpy:   hg,
		LiquidCp:        cp,
		VaporPressure:   vaporPressure(tr),
		LiquidViscosity: liquidViscosity(temp),
	}, nil
}

// VaporPressure returns the saturation pressure at temp (K).
func VaporPressure(temp float64) (float64, error) {
	if err := checkTemperature(temp); err != nil {
		return 0, err
	}
	return vaporPressure(temp / CriticalTemperature), nil
}

func vaporPressure(tr float64) float64 {
	a := 1 - tr
	return CriticalPressure * math.Exp((-6.71893*a+1.35966*math.Pow(a, 1.5)-1.3779*math.Pow(a, 2.5)-4.051*math.Pow(a, 5))/tr)
}

func liquidViscosity(temp float64) float64 {
	const b4 = 5.24
	theta := (CriticalTemperature - b4) / (temp - b4)
	x := theta - 1
	return 1e-3 * 0.0293423 * math.Exp(1.6089*math.Cbrt(x)+2.0439*math.Pow(x, 4.0/3))
}

var (
	triplePointPressure = vaporPressure(TriplePointTemperature / CriticalTemperature)
	// upper bracket for saturation temperature searches, just below critical
	nearCritical = CriticalTemperature - 1e-6
)

// SaturationTemperature inverts the vapour pressure curve. Pressures below
// the triple point clamp to the triple point temperature and pressures at or
// above critical clamp to just below the critical temperature.
func SaturationTemperature(p float64) float64 {
	if p <= triplePointPressure {
		return TriplePointTemperature
	}
	if p >= vaporPressure(nearCritical/CriticalTemperature) {
		return nearCritical
	}

	f := func(temp float64) float64 {
		return vaporPressure(temp/CriticalTemperature) - p
	}
	temp, _, err := solve.Bisect(f, TriplePointTemperature, nearCritical, 1e-9, 100)
	if err != nil {
		return TriplePointTemperature
	}
	return temp
}
