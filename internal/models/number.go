package models

import "math"

// Numeric readings are kept at a resolution of one thousandth.
const (
	MilliScale = 1000
	// MaxAbsNumber keeps any realistic history sum of thousandths inside int64.
	MaxAbsNumber = 1e9
)

// ToMilli rounds n to thousandths. ok is false when n is not finite or
// exceeds MaxAbsNumber in magnitude.
func ToMilli(n float64) (m int64, ok bool) {
	if math.IsNaN(n) || math.IsInf(n, 0) || math.Abs(n) > MaxAbsNumber {
		return 0, false
	}
	return int64(math.Round(n * MilliScale)), true
}

// FromMilli converts thousandths back to a float.
func FromMilli(m int64) float64 { return float64(m) / MilliScale }

// RoundMilli rounds n to the stored resolution.
func RoundMilli(n float64) (float64, bool) {
	m, ok := ToMilli(n)
	if !ok {
		return 0, false
	}
	return FromMilli(m), true
}
