package model

import "github.com/raysh454/georisk/internal/risk"

// Site is a named location whose hazards are assessed over time.
type Site struct {
	ID         string          `json:"id"`
	Slug       string          `json:"slug"`
	Name       string          `json:"name"`
	HazardType risk.HazardType `json:"hazard_type"`
	Latitude   *float64        `json:"latitude,omitempty" validate:"omitempty,gte=-90,lte=90"`
	Longitude  *float64        `json:"longitude,omitempty" validate:"omitempty,gte=-180,lte=180"`
	CreatedAt  int64           `json:"created_at"`
}

// Location is echoed back with an assessment; it does not affect scoring.
type Location struct {
	Latitude     *float64 `json:"latitude,omitempty" validate:"omitempty,gte=-90,lte=90"`
	Longitude    *float64 `json:"longitude,omitempty" validate:"omitempty,gte=-180,lte=180"`
	DateObserved string   `json:"date_observed,omitempty"`
}

// Assessment is a persisted risk calculation.
type Assessment struct {
	ID        string      `json:"id"`
	SiteID    string      `json:"site_id,omitempty"`
	Inputs    risk.Inputs `json:"inputs"`
	Result    risk.Result `json:"result"`
	Location  Location    `json:"location"`
	CreatedAt int64       `json:"created_at"`
}

// Statistics summarises the registry contents.
type Statistics struct {
	Sites        int                `json:"sites"`
	LoreRecords  int                `json:"lore_records"`
	Assessments  int                `json:"assessments"`
	AverageR     float64            `json:"average_r_score"`
	GatePassRate float64            `json:"gate_pass_rate"`
	ByLevel      map[risk.Level]int `json:"by_risk_level"`
}

// LoreRevision is one stored narrative change of a lore record. Patch is
// diff-match-patch patch text that turns the previous narrative into the
// next one; Narrative is the text after the patch.
type LoreRevision struct {
	ID        int64  `json:"id"`
	LoreID    string `json:"lore_id"`
	Patch     string `json:"patch"`
	Narrative string `json:"narrative,omitempty"`
	CreatedAt int64  `json:"created_at"`
}

// LoreHistory is the narrative history of a lore record, oldest first.
type LoreHistory struct {
	LoreID    string         `json:"lore_id"`
	Original  string         `json:"original_narrative"`
	Narrative string         `json:"narrative"`
	Revisions []LoreRevision `json:"revisions"`
}
