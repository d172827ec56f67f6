package risk

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func seed(v uint64) *uint64 { return &v }

func TestMonteCarlo_ZeroSamples(t *testing.T) {
	opts := DefaultUncertaintyOptions()
	opts.Samples = 0

	u := MonteCarloUncertainty(0.7, 0.6, 0.7, DefaultConfig(), opts)

	assert.Equal(t, 0, u.Samples)
	assert.Zero(t, u.Mean)
	assert.Zero(t, u.Std)
	assert.Zero(t, u.P05)
	assert.Zero(t, u.P95)
	assert.InDelta(t, 1.0/3, u.HSensitivity, 1e-12)
	assert.InDelta(t, 1.0/3, u.LSensitivity, 1e-12)
	assert.InDelta(t, 1.0, u.HSensitivity+u.LSensitivity+u.VSensitivity, 1e-12)
}

func TestMonteCarlo_NegativeSamplesTreatedAsZero(t *testing.T) {
	opts := DefaultUncertaintyOptions()
	opts.Samples = -5
	u := MonteCarloUncertainty(0.7, 0.6, 0.7, DefaultConfig(), opts)
	assert.Equal(t, 0, u.Samples)
}

func TestMonteCarlo_SensitivitiesSumToOne(t *testing.T) {
	opts := DefaultUncertaintyOptions()
	opts.Seed = seed(42)

	for _, in := range [][3]float64{
		{0.77, 0.6, 0.705},
		{0.5, 0.5, 0.5},
		{0.9, 0.3, 0.8},
		{0.4, 0.95, 0.35},
	} {
		u := MonteCarloUncertainty(in[0], in[1], in[2], DefaultConfig(), opts)
		sum := u.HSensitivity + u.LSensitivity + u.VSensitivity
		assert.InDelta(t, 1.0, sum, 1e-6, "inputs %v", in)
		for _, s := range []float64{u.HSensitivity, u.LSensitivity, u.VSensitivity} {
			assert.GreaterOrEqual(t, s, 0.0)
			assert.LessOrEqual(t, s, 1.0)
		}
	}
}

func TestMonteCarlo_LoreDominatesWhenMostUncertain(t *testing.T) {
	opts := DefaultUncertaintyOptions()
	opts.Samples = 3000
	opts.SigmaH = 0.01
	opts.SigmaV = 0.01
	opts.SigmaL = 0.1
	opts.Seed = seed(7)

	u := MonteCarloUncertainty(0.7, 0.6, 0.7, DefaultConfig(), opts)
	assert.Greater(t, u.LSensitivity, u.HSensitivity)
	assert.Greater(t, u.LSensitivity, u.VSensitivity)
}

func TestMonteCarlo_ConvergesToNoiselessScore(t *testing.T) {
	cfg := DefaultConfig()
	h, l, v := 0.7667, 0.6, 0.705
	nominal, _ := BorromeanScore(h, l, v, cfg)

	opts := UncertaintyOptions{Samples: 300, SigmaH: 1e-5, SigmaL: 1e-5, SigmaV: 1e-5, Seed: seed(1)}
	u := MonteCarloUncertainty(h, l, v, cfg, opts)
	assert.InDelta(t, nominal, u.Mean, 1e-4)
	assert.Less(t, u.Std, 1e-4)

	opts = UncertaintyOptions{Samples: 300}
	u = MonteCarloUncertainty(h, l, v, cfg, opts)
	assert.InDelta(t, nominal, u.Mean, 1e-12)
	assert.Zero(t, u.Std)
	// flat response: equal split
	assert.InDelta(t, 1.0/3, u.VSensitivity, 1e-12)
}

func TestMonteCarlo_BoundsAndOrdering(t *testing.T) {
	opts := DefaultUncertaintyOptions()
	opts.Seed = seed(99)
	u := MonteCarloUncertainty(0.77, 0.6, 0.705, DefaultConfig(), opts)

	assert.Equal(t, 300, u.Samples)
	assert.LessOrEqual(t, u.P05, u.Mean)
	assert.LessOrEqual(t, u.Mean, u.P95)
	assert.GreaterOrEqual(t, u.P05, 0.0)
	assert.LessOrEqual(t, u.P95, 1.0)
	assert.Greater(t, u.Std, 0.0)
}

func TestMonteCarlo_SeededIsReproducible(t *testing.T) {
	opts := DefaultUncertaintyOptions()
	opts.Seed = seed(2024)
	a := MonteCarloUncertainty(0.77, 0.6, 0.705, DefaultConfig(), opts)
	b := MonteCarloUncertainty(0.77, 0.6, 0.705, DefaultConfig(), opts)
	assert.Equal(t, a, b)
}

func TestMonteCarlo_Correlated(t *testing.T) {
	opts := DefaultUncertaintyOptions()
	opts.Seed = seed(5)
	opts.Correlation = &Correlation{{1, 0.5, 0.2}, {0.5, 1, 0.3}, {0.2, 0.3, 1}}

	u := MonteCarloUncertainty(0.77, 0.6, 0.705, DefaultConfig(), opts)
	assert.Greater(t, u.Std, 0.0)
	assert.InDelta(t, 1.0, u.HSensitivity+u.LSensitivity+u.VSensitivity, 1e-6)
}

func TestMonteCarlo_IdentityCorrelationMatchesIndependentSpread(t *testing.T) {
	opts := DefaultUncertaintyOptions()
	opts.Samples = 4000
	opts.Seed = seed(11)
	indep := MonteCarloUncertainty(0.77, 0.6, 0.705, DefaultConfig(), opts)

	opts.Correlation = &Correlation{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}
	ident := MonteCarloUncertainty(0.77, 0.6, 0.705, DefaultConfig(), opts)

	assert.InDelta(t, indep.Mean, ident.Mean, 0.01)
	assert.InDelta(t, indep.Std, ident.Std, 0.01)
}

func TestMonteCarlo_NonPositiveDefiniteFallsBackToIndependent(t *testing.T) {
	opts := DefaultUncertaintyOptions()
	opts.Seed = seed(3)
	indep := MonteCarloUncertainty(0.77, 0.6, 0.705, DefaultConfig(), opts)

	opts.Correlation = &Correlation{{1, 2, 0}, {2, 1, 0}, {0, 0, 1}}
	bad := MonteCarloUncertainty(0.77, 0.6, 0.705, DefaultConfig(), opts)

	assert.Equal(t, indep, bad)
}
