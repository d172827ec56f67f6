package risk

// HazardType tags the kind of event an assessment is about. It is echoed in
// results and does not change the computation.
type HazardType string

const (
	HazardDebrisFlow HazardType = "debris_flow"
	HazardLandslide  HazardType = "landslide"
	HazardRockfall   HazardType = "rockfall"
	HazardLavaFlow   HazardType = "lava_flow"
)

// Config holds the gating thresholds and mixing weights of the Borromean
// combination. It is a value type: callers copy it, nothing mutates it.
type Config struct {
	// TauH, TauL, TauV are the per-ring gates. A ring must be strictly above
	// its threshold for the triad to carry any risk.
	TauH float64 `json:"tau_H" yaml:"tau_h"`
	TauL float64 `json:"tau_L" yaml:"tau_l"`
	TauV float64 `json:"tau_V" yaml:"tau_v"`

	// LambdaMix weighs the product term against the synergy term.
	LambdaMix float64 `json:"lambda_mix" yaml:"lambda_mix"`

	// KappaSynergy scales the weakest-ring synergy bonus.
	KappaSynergy float64 `json:"kappa_synergy" yaml:"kappa_synergy"`

	// Alpha, Beta, Gamma are the exponents of H, L, V in the product term.
	Alpha float64 `json:"alpha" yaml:"alpha"`
	Beta  float64 `json:"beta" yaml:"beta"`
	Gamma float64 `json:"gamma" yaml:"gamma"`
}

// DefaultConfig returns the stock thresholds and weights.
func DefaultConfig() Config {
	return Config{
		TauH:         0.35,
		TauL:         0.25,
		TauV:         0.30,
		LambdaMix:    0.7,
		KappaSynergy: 0.3,
		Alpha:        1.0,
		Beta:         1.0,
		Gamma:        1.0,
	}
}

// Correlation is a 3x3 correlation matrix over (H, L, V).
type Correlation [3][3]float64

// UncertaintyOptions controls Monte Carlo propagation.
type UncertaintyOptions struct {
	// Samples is the number of Monte Carlo draws. Zero is allowed and yields
	// an all-zero summary with equal sensitivities.
	Samples int `json:"samples" yaml:"samples"`

	// SigmaH, SigmaL, SigmaV are the standard deviations of the zero-mean
	// Gaussian noise added to each ring.
	SigmaH float64 `json:"sigma_H" yaml:"sigma_h"`
	SigmaL float64 `json:"sigma_L" yaml:"sigma_l"`
	SigmaV float64 `json:"sigma_V" yaml:"sigma_v"`

	// Correlation, when set, correlates the noise through its Cholesky factor.
	Correlation *Correlation `json:"correlation,omitempty" yaml:"correlation,omitempty"`

	// Seed fixes the random source. Nil means a fresh seed per call.
	Seed *uint64 `json:"seed,omitempty" yaml:"seed,omitempty"`
}

// DefaultUncertaintyOptions reflects the epistemic confidence of each ring's
// data source: terrain instruments (H), historical lore (L, least certain),
// surveys (V, most certain).
func DefaultUncertaintyOptions() UncertaintyOptions {
	return UncertaintyOptions{
		Samples: 300,
		SigmaH:  0.05,
		SigmaL:  0.08,
		SigmaV:  0.04,
	}
}
