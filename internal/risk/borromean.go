package risk

import (
	"math"

	"github.com/raysh454/georisk/internal/utils"
)

// GatePassed reports whether all three rings are strictly above their
// thresholds.
func GatePassed(h, l, v float64, cfg Config) bool {
	return h > cfg.TauH && l > cfg.TauL && v > cfg.TauV
}

// BorromeanScore combines the three rings into one risk value.
//
// The product term H^alpha * L^beta * V^gamma rewards agreement; the synergy
// term kappa*min(H,L,V) is bounded by the weakest ring. The two are mixed by
// lambda. If any ring fails its gate the result is forced to zero, so removing
// one ring collapses the whole.
func BorromeanScore(h, l, v float64, cfg Config) (float64, bool) {
	gate := GatePassed(h, l, v, cfg)
	if !gate {
		return 0, false
	}

	r0 := math.Pow(h, cfg.Alpha) * math.Pow(l, cfg.Beta) * math.Pow(v, cfg.Gamma)
	s := cfg.KappaSynergy * math.Min(h, math.Min(l, v))
	r := cfg.LambdaMix*r0 + (1-cfg.LambdaMix)*s

	return utils.Clip01(r), true
}
