package risk

import (
	"math"

	"github.com/raysh454/georisk/internal/utils"
)

// Fixed weights of the four hazard sub-terms.
const (
	slopeWeight     = 0.4
	curvatureWeight = 0.15
	lithologyWeight = 0.15
	rainfallWeight  = 0.3

	slopeSteepness     = 0.15
	slopeMidpoint      = 20.0
	curvatureSteepness = 0.8

	exposureWeight  = 0.7
	fragilityWeight = 0.3
)

// Logistic returns 1/(1+e^(-k(x-x0))).
func Logistic(x, k, x0 float64) float64 {
	return 1.0 / (1.0 + math.Exp(-k*(x-x0)))
}

// LithologyErodibility maps the ordinal lithology class 1..5 (1 = hardest)
// onto [0,1].
func LithologyErodibility(class int) float64 {
	return float64(class-1) / 4.0
}

// ComputeH scores the physical hazard drivers. Steeper slopes, concave
// (negative) curvature, more erodible rock and a higher rainfall exceedance
// all raise H. Sub-terms are not clipped individually; only the weighted sum is.
func ComputeH(slopeDeg, curvature, lithErodibility, rainExceedance float64) float64 {
	slopeTerm := Logistic(slopeDeg, slopeSteepness, slopeMidpoint)
	curvTerm := Logistic(-curvature, curvatureSteepness, 0)

	h := slopeWeight*slopeTerm +
		curvatureWeight*curvTerm +
		lithologyWeight*lithErodibility +
		rainfallWeight*rainExceedance

	return utils.Clip01(h)
}

// ComputeL passes the aggregated lore signal through, clamped to [0,1].
func ComputeL(loreSignal float64) float64 {
	return utils.Clip01(loreSignal)
}

// ComputeV combines exposure and fragility, 0.7/0.3.
func ComputeV(exposure, fragility float64) float64 {
	return utils.Clip01(exposureWeight*exposure + fragilityWeight*fragility)
}
