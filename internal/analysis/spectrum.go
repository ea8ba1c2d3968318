package analysis

import (
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/stat"
)

// MinSamples is the shortest series worth transforming.
const MinSamples = 8

// Peak is one spectral component.
type Peak struct {
	Frequency float64 // Hz
	Amplitude float64 // same unit as the series
}

// Spectrum returns the one-sided amplitude spectrum of series sampled every
// dt seconds. The mean is removed first, so amps[0] is zero.
func Spectrum(series []float64, dt float64) (freqs, amps []float64) {
	n := len(series)
	if n < 2 || dt <= 0 {
		return nil, nil
	}

	mean := stat.Mean(series, nil)
	centered := make([]float64, n)
	for i, v := range series {
		centered[i] = v - mean
	}
	return transform(centered, dt)
}

func transform(seq []float64, dt float64) (freqs, amps []float64) {
	n := len(seq)
	fft := fourier.NewFFT(n)
	coeff := fft.Coefficients(nil, seq)

	freqs = make([]float64, len(coeff))
	amps = make([]float64, len(coeff))
	for i, c := range coeff {
		freqs[i] = fft.Freq(i) / dt
		amps[i] = 2 * cmplx.Abs(c) / float64(n)
	}
	// DC and Nyquist terms are not doubled
	amps[0] /= 2
	if n%2 == 0 {
		amps[len(amps)-1] /= 2
	}
	return freqs, amps
}

// DominantOscillation removes the least-squares line from series and
// returns its strongest remaining component. Series shorter than
// MinSamples give a zero Peak.
func DominantOscillation(series []float64, dt float64) Peak {
	n := len(series)
	if n < MinSamples || dt <= 0 {
		return Peak{}
	}

	t := make([]float64, n)
	for i := range t {
		t[i] = float64(i) * dt
	}
	alpha, beta := stat.LinearRegression(t, series, nil, false)

	resid := make([]float64, n)
	for i, v := range series {
		resid[i] = v - (alpha + beta*t[i])
	}

	freqs, amps := transform(resid, dt)
	var best Peak
	for i := 1; i < len(amps); i++ {
		if amps[i] > best.Amplitude {
			best = Peak{Frequency: freqs[i], Amplitude: amps[i]}
		}
	}
	return best
}
