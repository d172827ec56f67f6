package risk

import (
	"github.com/raysh454/georisk/internal/utils"
)

// Calculator runs the full pipeline: factor scorers, Borromean aggregation
// and, on request, Monte Carlo uncertainty. A Calculator is immutable and
// safe for concurrent use; every call draws from its own random source.
type Calculator struct {
	cfg  Config
	opts UncertaintyOptions
}

// NewCalculator returns a Calculator with the given configuration.
func NewCalculator(cfg Config, opts UncertaintyOptions) *Calculator {
	return &Calculator{cfg: cfg, opts: opts}
}

// Config returns the calculator's risk configuration.
func (c *Calculator) Config() Config { return c.cfg }

// UncertaintyOptions returns the calculator's Monte Carlo settings.
func (c *Calculator) UncertaintyOptions() UncertaintyOptions { return c.opts }

// Calculate validates the inputs and scores them with the calculator's
// configuration.
func (c *Calculator) Calculate(in Inputs) (*Result, error) {
	return c.CalculateWith(in, c.cfg, c.opts)
}

// CalculateWith scores the inputs with an explicit configuration, for
// per-call overrides.
func (c *Calculator) CalculateWith(in Inputs, cfg Config, opts UncertaintyOptions) (*Result, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	if in.HazardType == "" {
		in.HazardType = HazardLandslide
	}

	h := ComputeH(in.SlopeDeg, in.Curvature, LithologyErodibility(in.LithClass), in.RainExceed)
	l := ComputeL(in.LoreSignal)
	v := ComputeV(in.Exposure, in.Fragility)

	nominal, gate := BorromeanScore(h, l, v, cfg)
	r := nominal

	var unc Uncertainty
	if in.ComputeUncertainty {
		unc = MonteCarloUncertainty(h, l, v, cfg, opts)
		r = unc.Mean
	}

	echo := ConfigEcho{
		HazardType:   in.HazardType,
		TauH:         cfg.TauH,
		TauL:         cfg.TauL,
		TauV:         cfg.TauV,
		LambdaMix:    cfg.LambdaMix,
		KappaSynergy: cfg.KappaSynergy,
		Alpha:        cfg.Alpha,
		Beta:         cfg.Beta,
		Gamma:        cfg.Gamma,
	}
	if in.ComputeUncertainty {
		echo.Samples = unc.Samples
	}

	hs, ls := utils.Round4(unc.HSensitivity), utils.Round4(unc.LSensitivity)
	vs := utils.Round4(unc.VSensitivity)
	if in.ComputeUncertainty {
		// V absorbs the rounding remainder so the indices sum to one.
		vs = utils.Round4(1 - hs - ls)
	}

	return &Result{
		H:            utils.Round4(h),
		L:            utils.Round4(l),
		V:            utils.Round4(v),
		R:            utils.Round4(r),
		RNominal:     utils.Round4(nominal),
		RStd:         utils.Round4(unc.Std),
		RP05:         utils.Round4(unc.P05),
		RP95:         utils.Round4(unc.P95),
		HSensitivity: hs,
		LSensitivity: ls,
		VSensitivity: vs,
		Level:        LevelFor(r),
		GatePassed:   gate,
		Config:       echo,
	}, nil
}
