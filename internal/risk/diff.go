package risk

import "github.com/raysh454/georisk/internal/utils"

// ResultDiff explains how risk changed between two assessments.
type ResultDiff struct {
	RBase  float64 `json:"R_base"`
	RHead  float64 `json:"R_head"`
	RDelta float64 `json:"R_delta"`

	// FactorDeltas holds head - base per ring ("H", "L", "V"); zero deltas
	// are omitted.
	FactorDeltas map[string]float64 `json:"factor_deltas"`

	LevelBase    Level `json:"level_base"`
	LevelHead    Level `json:"level_head"`
	LevelChanged bool  `json:"level_changed"`
	// Escalated is true when the head tier ranks above the base tier.
	Escalated bool `json:"escalated"`

	GateBase bool `json:"gate_base"`
	GateHead bool `json:"gate_head"`
}

// Diff compares two results. A nil side is treated as a zero, low-tier,
// gate-failed result.
func Diff(base, head *Result) ResultDiff {
	zero := &Result{Level: LevelLow}
	if base == nil {
		base = zero
	}
	if head == nil {
		head = zero
	}

	d := ResultDiff{
		RBase:        base.R,
		RHead:        head.R,
		RDelta:       utils.Round4(head.R - base.R),
		FactorDeltas: make(map[string]float64),
		LevelBase:    base.Level,
		LevelHead:    head.Level,
		LevelChanged: base.Level != head.Level,
		Escalated:    head.Level.Rank() > base.Level.Rank(),
		GateBase:     base.GatePassed,
		GateHead:     head.GatePassed,
	}

	for name, pair := range map[string][2]float64{
		"H": {base.H, head.H},
		"L": {base.L, head.L},
		"V": {base.V, head.V},
	} {
		if delta := utils.Round4(pair[1] - pair[0]); delta != 0 {
			d.FactorDeltas[name] = delta
		}
	}
	return d
}
