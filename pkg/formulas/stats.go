// Package formulas holds the small numeric helpers shared by the analytical modules.
// Every helper degrades to zero instead of NaN/Inf so results can be embedded in
// user-facing text without further checks.
package formulas

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"
)

// IsFinite reports whether v is neither NaN nor ±Inf.
func IsFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Finite returns the finite values of data in order.
func Finite(data []float64) []float64 {
	out := make([]float64, 0, len(data))
	for _, v := range data {
		if IsFinite(v) {
			out = append(out, v)
		}
	}
	return out
}

// FiniteMean averages the finite values of data. ok is false when there are none.
func FiniteMean(data []float64) (mean float64, ok bool) {
	finite := Finite(data)
	if len(finite) == 0 {
		return 0, false
	}
	return stat.Mean(finite, nil), true
}

// Mean calculates the arithmetic mean of the finite values in data.
// Returns 0 when data holds no finite value.
func Mean(data []float64) float64 {
	m, _ := FiniteMean(data)
	return m
}

// PctChange returns (to-from)/from*100, or 0 when from is zero or non-finite.
func PctChange(from, to float64) float64 {
	if !IsFinite(from) || from == 0 {
		return 0
	}
	return (to - from) / from * 100
}

// OLSSlope fits y = a + b*x by ordinary least squares and returns b.
// Only the first min(len(xs), len(ys)) pairs are used. Returns 0 for fewer than
// two pairs or when n*Σx² - (Σx)² is zero (constant X).
func OLSSlope(xs, ys []float64) float64 {
	n := len(xs)
	if len(ys) < n {
		n = len(ys)
	}
	if n < 2 {
		return 0
	}

	var sumX, sumXX float64
	for i := 0; i < n; i++ {
		sumX += xs[i]
		sumXX += xs[i] * xs[i]
	}
	if float64(n)*sumXX-sumX*sumX == 0 {
		return 0
	}

	_, beta := stat.LinearRegression(xs[:n], ys[:n], nil, false)
	if !IsFinite(beta) {
		return 0
	}
	return beta
}

// Clamp bounds n to [lo, hi].
func Clamp(n, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, n))
}

// ClampInt bounds n to [lo, hi].
func ClampInt(n, lo, hi int) int {
	if n > hi {
		n = hi
	}
	if n < lo {
		n = lo
	}
	return n
}

// RoundHalfUp rounds to the nearest integer, ties toward +Inf.
func RoundHalfUp(v float64) float64 {
	return math.Floor(v + 0.5)
}

// SignedPercent renders pct rounded to an integer with an explicit sign, e.g. "+12%" or "-3%".
func SignedPercent(pct float64) string {
	r := int(RoundHalfUp(pct))
	if r >= 0 {
		return fmt.Sprintf("+%d%%", r)
	}
	return fmt.Sprintf("%d%%", r)
}
