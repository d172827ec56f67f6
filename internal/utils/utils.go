package utils

import (
	"math"
	"strings"
)

// Clip bounds x to [lo, hi]. NaN is mapped to lo.
func Clip(x, lo, hi float64) float64 {
	if math.IsNaN(x) || x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

// Clip01 bounds x to the unit interval.
func Clip01(x float64) float64 {
	return Clip(x, 0, 1)
}

// Round rounds x half away from zero to the given number of decimal places.
func Round(x float64, places int) float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return x
	}
	p := math.Pow(10, float64(places))
	return math.Round(x*p) / p
}

// Round4 rounds to four decimal places, the precision used on the wire.
func Round4(x float64) float64 {
	return Round(x, 4)
}

// NormalizeSlug makes a slug safe and simple: lower case, spaces to dashes,
// anything outside [a-z0-9-_.] dropped.
func NormalizeSlug(s string) string {
	s = strings.TrimSpace(strings.ToLower(s))
	s = strings.ReplaceAll(s, " ", "-")
	var b strings.Builder
	for _, r := range s {
		if (r >= 'a' && r <= 'z') ||
			(r >= '0' && r <= '9') ||
			r == '-' || r == '_' || r == '.' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
