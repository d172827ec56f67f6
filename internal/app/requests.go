package app

import (
	"github.com/raysh454/georisk/internal/model"
	"github.com/raysh454/georisk/internal/risk"
)

// AssessmentRequest is one risk calculation request. Pointer fields are
// required unless noted; LoreSignal may be omitted when SiteID names a site
// with scored lore, and defaults to 0 otherwise.
type AssessmentRequest struct {
	SlopeDeg   *float64 `json:"slope_deg"`
	Curvature  *float64 `json:"curvature"`
	LithClass  *int     `json:"lith_class"`
	RainExceed *float64 `json:"rain_exceed"`
	LoreSignal *float64 `json:"lore_signal,omitempty"`
	Exposure   *float64 `json:"exposure"`
	Fragility  *float64 `json:"fragility"`

	HazardType risk.HazardType `json:"hazard_type,omitempty"`
	// EventType is accepted as an alias of HazardType.
	EventType risk.HazardType `json:"event_type,omitempty"`

	// ComputeUncertainty defaults to true.
	ComputeUncertainty *bool   `json:"compute_uncertainty,omitempty"`
	Samples            int     `json:"n_samples,omitempty"`
	Seed               *uint64 `json:"seed,omitempty"`

	SiteID       string   `json:"site_id,omitempty"`
	Latitude     *float64 `json:"location_lat,omitempty"`
	Longitude    *float64 `json:"location_lng,omitempty"`
	DateObserved string   `json:"date_observed,omitempty"`
}

func (r *AssessmentRequest) hazard() risk.HazardType {
	if r.EventType != "" {
		return r.EventType
	}
	return r.HazardType
}

func (r *AssessmentRequest) uncertainty() bool {
	return r.ComputeUncertainty == nil || *r.ComputeUncertainty
}

func (r *AssessmentRequest) location() model.Location {
	return model.Location{Latitude: r.Latitude, Longitude: r.Longitude, DateObserved: r.DateObserved}
}

// inputs checks that required fields are present and builds the scoring
// inputs with the given lore signal.
func (r *AssessmentRequest) inputs(loreSignal float64) (risk.Inputs, error) {
	required := []struct {
		name    string
		missing bool
	}{
		{"slope_deg", r.SlopeDeg == nil},
		{"curvature", r.Curvature == nil},
		{"lith_class", r.LithClass == nil},
		{"rain_exceed", r.RainExceed == nil},
		{"exposure", r.Exposure == nil},
		{"fragility", r.Fragility == nil},
	}
	for _, f := range required {
		if f.missing {
			return risk.Inputs{}, &risk.InvalidInputError{Field: f.name, Value: nil, Range: "required"}
		}
	}

	return risk.Inputs{
		SlopeDeg:           *r.SlopeDeg,
		Curvature:          *r.Curvature,
		LithClass:          *r.LithClass,
		RainExceed:         *r.RainExceed,
		LoreSignal:         loreSignal,
		Exposure:           *r.Exposure,
		Fragility:          *r.Fragility,
		HazardType:         r.hazard(),
		ComputeUncertainty: r.uncertainty(),
	}, nil
}
