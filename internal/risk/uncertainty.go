package risk

import (
	"math"
	"math/rand/v2"

	"github.com/raysh454/georisk/internal/utils"
)

// Uncertainty summarises the Monte Carlo distribution of R and the share of
// output variance attributable to each ring.
type Uncertainty struct {
	Mean float64 `json:"R_mean"`
	Std  float64 `json:"R_std"`
	P05  float64 `json:"R_p05"`
	P95  float64 `json:"R_p95"`

	HSensitivity float64 `json:"H_sensitivity"`
	LSensitivity float64 `json:"L_sensitivity"`
	VSensitivity float64 `json:"V_sensitivity"`

	Samples int `json:"samples"`
}

// newSource returns an independent random source for one invocation.
func newSource(seed *uint64) *rand.Rand {
	if seed != nil {
		return rand.New(rand.NewPCG(*seed, *seed^0x9e3779b97f4a7c15))
	}
	return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
}

// MonteCarloUncertainty perturbs H, L and V with zero-mean Gaussian noise,
// clips each draw to [0,1] and runs it through BorromeanScore.
//
// For the first third of the draws, three one-at-a-time variants are also
// scored (only H varied, only L varied, only V varied); their variances,
// normalised to sum to one, are the sensitivity indices. A flat response
// falls back to an equal split.
//
// If opts.Correlation is not positive-definite the draws are independent.
func MonteCarloUncertainty(h, l, v float64, cfg Config, opts UncertaintyOptions) Uncertainty {
	n := max(opts.Samples, 0)
	rng := newSource(opts.Seed)

	var (
		chol       [3][3]float64
		correlated bool
	)
	if opts.Correlation != nil {
		chol, correlated = cholesky3(*opts.Correlation)
	}

	samples := make([]float64, 0, n)
	third := n / 3
	hOnly := make([]float64, 0, third)
	lOnly := make([]float64, 0, third)
	vOnly := make([]float64, 0, third)

	for i := 0; i < n; i++ {
		var nh, nl, nv float64
		if correlated {
			z := [3]float64{rng.NormFloat64(), rng.NormFloat64(), rng.NormFloat64()}
			nh = (chol[0][0] * z[0]) * opts.SigmaH
			nl = (chol[1][0]*z[0] + chol[1][1]*z[1]) * opts.SigmaL
			nv = (chol[2][0]*z[0] + chol[2][1]*z[1] + chol[2][2]*z[2]) * opts.SigmaV
		} else {
			nh = rng.NormFloat64() * opts.SigmaH
			nl = rng.NormFloat64() * opts.SigmaL
			nv = rng.NormFloat64() * opts.SigmaV
		}

		hs := utils.Clip01(h + nh)
		ls := utils.Clip01(l + nl)
		vs := utils.Clip01(v + nv)

		r, _ := BorromeanScore(hs, ls, vs, cfg)
		samples = append(samples, r)

		if i < third {
			rh, _ := BorromeanScore(hs, l, v, cfg)
			rl, _ := BorromeanScore(h, ls, v, cfg)
			rv, _ := BorromeanScore(h, l, vs, cfg)
			hOnly = append(hOnly, rh)
			lOnly = append(lOnly, rl)
			vOnly = append(vOnly, rv)
		}
	}

	out := Uncertainty{Samples: n}
	if n > 0 {
		out.Mean = mean(samples)
		out.Std = math.Sqrt(variance(samples))
		out.P05 = percentile(samples, 5)
		out.P95 = percentile(samples, 95)
	}
	out.HSensitivity, out.LSensitivity, out.VSensitivity = sensitivityIndices(
		variance(hOnly), variance(lOnly), variance(vOnly))
	return out
}

// sensitivityIndices normalises the one-at-a-time variances to sum to one.
func sensitivityIndices(varH, varL, varV float64) (float64, float64, float64) {
	total := varH + varL + varV
	if total > 0 {
		return varH / total, varL / total, varV / total
	}
	const third = 1.0 / 3.0
	return third, third, 1 - 2*third
}
