package lore

// Weights are the mixing weights of the three lore sub-scores.
type Weights struct {
	Recent      float64 `json:"w1" yaml:"recent" validate:"gte=0,finite"`
	Credibility float64 `json:"w2" yaml:"credibility" validate:"gte=0,finite"`
	Spatial     float64 `json:"w3" yaml:"spatial" validate:"gte=0,finite"`
}

// DefaultWeights weighs credibility highest.
func DefaultWeights() Weights {
	return Weights{Recent: 0.35, Credibility: 0.40, Spatial: 0.25}
}

// CulturalMemory slows recency decay for sources that carry knowledge across
// generations.
type CulturalMemory struct {
	Enabled  bool         `yaml:"enabled"`
	Baseline float64      `yaml:"baseline"`
	Boost    float64      `yaml:"boost"`
	Decay    float64      `yaml:"decay_years"`
	Sources  []SourceType `yaml:"sources"`
}

// Config holds every constant of the lore scoring formula. It is built once
// and passed by value.
type Config struct {
	Weights Weights `yaml:"weights"`

	// Recency
	DecayYears       float64        `yaml:"decay_years"`
	MinRecentScore   float64        `yaml:"min_recent_score"`
	RecentFloor      float64        `yaml:"recent_floor"`
	UncertaintyScale float64        `yaml:"uncertainty_scale_years"`
	CulturalMemory   CulturalMemory `yaml:"cultural_memory"`

	// Credibility
	Credibility        CredibilityTable `yaml:"-"`
	AuthorBonus        float64          `yaml:"author_bonus"`
	URLBonus           float64          `yaml:"url_bonus"`
	CorroborationMax   float64          `yaml:"corroboration_max"`
	CorroborationScale float64          `yaml:"corroboration_scale"`

	// Spatial
	SpatialSigmaKm       float64 `yaml:"spatial_sigma_km"`
	UnknownDistanceScore float64 `yaml:"unknown_distance_score"`
}

// DefaultConfig returns the stock lore scoring constants.
func DefaultConfig() Config {
	return Config{
		Weights:          DefaultWeights(),
		DecayYears:       50,
		MinRecentScore:   0.2,
		RecentFloor:      0.1,
		UncertaintyScale: 10,
		CulturalMemory: CulturalMemory{
			Enabled:  true,
			Baseline: 0.20,
			Boost:    0.18,
			Decay:    200,
			Sources:  []SourceType{SourceOralTradition, SourceIndigenous},
		},
		Credibility:          DefaultCredibilityTable(),
		AuthorBonus:          0.05,
		URLBonus:             0.05,
		CorroborationMax:     0.1,
		CorroborationScale:   3,
		SpatialSigmaKm:       0.5,
		UnknownDistanceScore: 0.5,
	}
}
