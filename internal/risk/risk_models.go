package risk

// Inputs is the flat record a risk assessment is computed from.
type Inputs struct {
	// H factor
	SlopeDeg   float64 `json:"slope_deg" validate:"gte=0,lte=90"`
	Curvature  float64 `json:"curvature" validate:"finite"`
	LithClass  int     `json:"lith_class" validate:"gte=1,lte=5"`
	RainExceed float64 `json:"rain_exceed" validate:"gte=0,lte=1"`

	// L factor
	LoreSignal float64 `json:"lore_signal" validate:"gte=0,lte=1"`

	// V factor
	Exposure  float64 `json:"exposure" validate:"gte=0,lte=1"`
	Fragility float64 `json:"fragility" validate:"gte=0,lte=1"`

	// HazardType is informational only.
	HazardType HazardType `json:"hazard_type,omitempty"`

	ComputeUncertainty bool `json:"compute_uncertainty"`
}

// Result is the outcome of one assessment. Floats are rounded to four
// decimal places.
type Result struct {
	H float64 `json:"H_score"`
	L float64 `json:"L_score"`
	V float64 `json:"V_score"`

	// R is the reported risk: the Monte Carlo mean when uncertainty was
	// computed, otherwise the noiseless score.
	R float64 `json:"R_score"`

	// RNominal is the noiseless Borromean score.
	RNominal float64 `json:"R_nominal"`

	RStd float64 `json:"R_std"`
	RP05 float64 `json:"R_p05"`
	RP95 float64 `json:"R_p95"`

	HSensitivity float64 `json:"H_sensitivity"`
	LSensitivity float64 `json:"L_sensitivity"`
	VSensitivity float64 `json:"V_sensitivity"`

	Level      Level      `json:"risk_level"`
	GatePassed bool       `json:"gate_passed"`
	Config     ConfigEcho `json:"config"`
}

// ConfigEcho reports the configuration an assessment ran with.
type ConfigEcho struct {
	HazardType   HazardType `json:"hazard_type"`
	TauH         float64    `json:"tau_H"`
	TauL         float64    `json:"tau_L"`
	TauV         float64    `json:"tau_V"`
	LambdaMix    float64    `json:"lambda_mix"`
	KappaSynergy float64    `json:"kappa_synergy"`
	Alpha        float64    `json:"alpha"`
	Beta         float64    `json:"beta"`
	Gamma        float64    `json:"gamma"`
	Samples      int        `json:"samples,omitempty"`
}
