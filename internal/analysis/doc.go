// Package analysis holds signal tools for firing records.
//
//   - [Spectrum]: one-sided amplitude spectrum of a uniformly sampled series
//   - [DominantOscillation]: strongest non-DC component after detrending
//
// # Limit Cycles
//
// Cold tanks drive the lagged chamber pressure into a sustained oscillation
// before the injector drop collapses. The dominant component of the chamber
// pressure series makes that visible before the reversal guard trips:
//
//	peak := analysis.DominantOscillation(pc, dt)
//	if peak.Amplitude > 0.05*meanPc {
//	    // chamber pressure is cycling
//	}
package analysis
