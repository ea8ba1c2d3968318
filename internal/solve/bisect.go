package solve

import (
	"errors"
	"math"
)

var (
	// ErrNotBracketed means f(lo) and f(hi) have the same sign.
	ErrNotBracketed = errors.New("solve: root not bracketed")

	// ErrMaxIterations means the interval did not shrink below tolerance in time.
	ErrMaxIterations = errors.New("solve: iteration limit reached")
)

const (
	DefaultTolerance     = 1e-12
	DefaultMaxIterations = 200
)

// Bisect finds a root of f in [lo, hi]. It returns the root, the iterations
// used, and an error when the interval does not bracket a sign change or the
// iteration budget runs out. NaN evaluations count as unbracketed.
func Bisect(f func(float64) float64, lo, hi, tol float64, maxIter int) (float64, int, error) {
	if tol <= 0 {
		tol = DefaultTolerance
	}
	if maxIter <= 0 {
		maxIter = DefaultMaxIterations
	}
	if lo > hi {
		lo, hi = hi, lo
	}

	flo := f(lo)
	fhi := f(hi)
	if math.IsNaN(flo) || math.IsNaN(fhi) {
		return 0, 0, ErrNotBracketed
	}
	if flo == 0 {
		return lo, 0, nil
	}
	if fhi == 0 {
		return hi, 0, nil
	}
	if (flo > 0) == (fhi > 0) {
		return 0, 0, ErrNotBracketed
	}

	for i := 1; i <= maxIter; i++ {
		mid := 0.5 * (lo + hi)
		fmid := f(mid)
		if math.IsNaN(fmid) {
			return mid, i, ErrNotBracketed
		}
		if fmid == 0 || 0.5*(hi-lo) < tol {
			return mid, i, nil
		}
		if (fmid > 0) == (flo > 0) {
			lo, flo = mid, fmid
		} else {
			hi = mid
		}
	}

	return 0.5 * (lo + hi), maxIter, ErrMaxIterations
}
