package server

import (
	"github.com/raysh454/georisk/internal/app"
	"github.com/raysh454/georisk/internal/lore"
	"github.com/raysh454/georisk/internal/model"
	"github.com/raysh454/georisk/internal/risk"
)

// CreateSiteRequest is the payload for registering a site.
type CreateSiteRequest struct {
	Slug       string          `json:"slug" example:"mill-creek"`
	Name       string          `json:"name" example:"Mill Creek Slope"`
	HazardType risk.HazardType `json:"hazard_type" example:"debris_flow"`
	Latitude   *float64        `json:"latitude,omitempty" example:"46.2"`
	Longitude  *float64        `json:"longitude,omitempty" example:"-122.1"`
}

// CalculateRiskData is the result of one calculation plus the echoed
// location fields.
type CalculateRiskData struct {
	*risk.Result
	ID           string          `json:"assessment_id,omitempty"`
	SiteID       string          `json:"site_id,omitempty"`
	Location     LocationEcho    `json:"location"`
	DateObserved string          `json:"date_observed,omitempty"`
	EventType    risk.HazardType `json:"event_type"`
}

// LocationEcho mirrors the request's location.
type LocationEcho struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

// CalculateRiskResponse wraps a calculation in the success envelope.
type CalculateRiskResponse struct {
	Success bool              `json:"success" example:"true"`
	Message string            `json:"message" example:"Risk calculated successfully"`
	Data    CalculateRiskData `json:"data"`
}

func newCalculateRiskData(a *model.Assessment) CalculateRiskData {
	res := a.Result
	return CalculateRiskData{
		Result:       &res,
		ID:           a.ID,
		SiteID:       a.SiteID,
		Location:     LocationEcho{Latitude: a.Location.Latitude, Longitude: a.Location.Longitude},
		DateObserved: a.Location.DateObserved,
		EventType:    res.Config.HazardType,
	}
}

// LoreScoreRequest is a lore record plus optional combination weights that
// replace the configured ones for this call.
type LoreScoreRequest struct {
	lore.Record
	Weights *lore.Weights `json:"weights,omitempty"`
}

// LoreScoreResponse is a scored record with its score breakdown.
type LoreScoreResponse struct {
	Record *lore.Record `json:"record"`
	Score  lore.Score   `json:"score"`
}

// BatchJobRequest starts a batch assessment job.
type BatchJobRequest struct {
	Requests []app.AssessmentRequest `json:"requests"`
}

// HealthResponse reports liveness.
type HealthResponse struct {
	Status  string `json:"status" example:"healthy"`
	Service string `json:"service" example:"georisk"`
	Time    string `json:"timestamp"`
}

// ErrorResponse is a uniform error payload returned by the API.
type ErrorResponse struct {
	Error string `json:"error" example:"site not found"`
}
