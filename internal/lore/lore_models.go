package lore

import "time"

// Record is one historical account of a past event near an assessed site.
// Score fields are nil until the record has been scored.
type Record struct {
	ID     string `json:"id,omitempty"`
	SiteID string `json:"site_id,omitempty"`

	// Event
	Narrative            string     `json:"event_narrative" validate:"required"`
	PlaceName            string     `json:"place_name"`
	EventDate            *time.Time `json:"event_date,omitempty"`
	YearsAgo             *float64   `json:"years_ago,omitempty" validate:"omitempty,gte=0,finite"`
	DateUncertaintyYears float64    `json:"event_date_uncertainty_years" validate:"gte=0,finite"`

	// Source
	SourceType   SourceType `json:"source_type"`
	SourceTitle  string     `json:"source_title,omitempty"`
	SourceAuthor string     `json:"source_author,omitempty"`
	SourceURL    string     `json:"source_url,omitempty"`

	// Spatial
	DistanceKm *float64 `json:"distance_to_report,omitempty" validate:"omitempty,gte=0,finite"`

	// ConfidenceBand is the extraction confidence reported upstream.
	ConfidenceBand *float64 `json:"confidence_band,omitempty" validate:"omitempty,gte=0,lte=1"`

	// Scores
	RecentScore      *float64 `json:"recent_score,omitempty"`
	CredibilityScore *float64 `json:"credibility_score,omitempty"`
	SpatialScore     *float64 `json:"spatial_score,omitempty"`
	LScore           *float64 `json:"l_score,omitempty"`

	CreatedAt time.Time `json:"created_at,omitzero"`
	UpdatedAt time.Time `json:"updated_at,omitzero"`
}

// Scored reports whether the record carries an l_score.
func (r *Record) Scored() bool { return r.LScore != nil }

// Score is the standalone result of scoring one record.
type Score struct {
	Recent      float64 `json:"recent_score"`
	Credibility float64 `json:"credibility_score"`
	Spatial     float64 `json:"spatial_score"`
	L           float64 `json:"l_score"`
	WeightsUsed Weights `json:"weights_used"`
}
