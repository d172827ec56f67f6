package lore

import (
	"math"
	"slices"
	"time"

	"github.com/raysh454/georisk/internal/utils"
)

const daysPerYear = 365.25

// Calculator scores lore records. It is stateless apart from its config and
// safe for concurrent use.
type Calculator struct {
	cfg Config
	now func() time.Time
}

// NewCalculator returns a Calculator using cfg.
func NewCalculator(cfg Config) *Calculator {
	return &Calculator{cfg: cfg, now: time.Now}
}

// Config returns the calculator's configuration.
func (c *Calculator) Config() Config { return c.cfg }

// RecentScore scores how recent an event is. A nil or negative age yields
// the minimum recent score. Sources with cultural memory decay more slowly
// and never fall under the cultural baseline.
func (c *Calculator) RecentScore(yearsAgo *float64, uncertaintyYears float64, source SourceType) float64 {
	cfg := c.cfg
	if yearsAgo == nil || *yearsAgo < 0 || math.IsNaN(*yearsAgo) {
		return cfg.MinRecentScore
	}
	y := *yearsAgo

	score := math.Exp(-y / cfg.DecayYears)
	if cm := cfg.CulturalMemory; cm.Enabled && slices.Contains(cm.Sources, source) {
		score = math.Max(score, cm.Baseline+cm.Boost*math.Exp(-y/cm.Decay))
	}
	if uncertaintyYears > 0 {
		score /= 1 + uncertaintyYears/cfg.UncertaintyScale
	}

	score = math.Max(score, cfg.MinRecentScore)
	return utils.Clip(score, cfg.RecentFloor, 1)
}

// CredibilityScore scores a source from its type, attribution and the number
// of independent corroborating accounts.
func (c *Calculator) CredibilityScore(source SourceType, hasAuthor, hasURL bool, corroborating int) float64 {
	cfg := c.cfg
	score := cfg.Credibility.Weight(source)
	if hasAuthor {
		score += cfg.AuthorBonus
	}
	if hasURL {
		score += cfg.URLBonus
	}
	if corroborating > 0 {
		score += cfg.CorroborationMax * (1 - math.Exp(-float64(corroborating)/cfg.CorroborationScale))
	}
	return utils.Clip01(score)
}

// SpatialScore scores proximity between the reported event and the site.
func (c *Calculator) SpatialScore(distanceKm *float64) float64 {
	switch {
	case distanceKm == nil || *distanceKm < 0 || math.IsNaN(*distanceKm):
		return c.cfg.UnknownDistanceScore
	case *distanceKm == 0:
		return 1
	}
	return utils.Clip01(math.Exp(-*distanceKm / c.cfg.SpatialSigmaKm))
}

// YearsAgo resolves the age of the event in years. An explicit years_ago
// wins over event_date; nil means the age is unknown.
func (c *Calculator) YearsAgo(r *Record) *float64 {
	if r.YearsAgo != nil {
		return r.YearsAgo
	}
	if r.EventDate == nil {
		return nil
	}
	y := c.now().Sub(*r.EventDate).Hours() / 24 / daysPerYear
	return &y
}

// Score computes the three sub-scores and their weighted combination.
func (c *Calculator) Score(r *Record) Score {
	return c.ScoreWith(r, c.cfg.Weights)
}

// ScoreWith is Score with the combination weights overridden.
func (c *Calculator) ScoreWith(r *Record, w Weights) Score {
	recent := c.RecentScore(c.YearsAgo(r), r.DateUncertaintyYears, r.SourceType)
	// corroboration needs a lookup across records that does not exist yet
	cred := c.CredibilityScore(r.SourceType, r.SourceAuthor != "", r.SourceURL != "", 0)
	spatial := c.SpatialScore(r.DistanceKm)

	l := utils.Clip01(w.Recent*recent + w.Credibility*cred + w.Spatial*spatial)
	return Score{
		Recent:      utils.Round4(recent),
		Credibility: utils.Round4(cred),
		Spatial:     utils.Round4(spatial),
		L:           utils.Round4(l),
		WeightsUsed: w,
	}
}

// Apply scores r and writes the scores back onto it.
func (c *Calculator) Apply(r *Record) Score {
	return c.ApplyWith(r, c.cfg.Weights)
}

// ApplyWith is Apply with the combination weights overridden.
func (c *Calculator) ApplyWith(r *Record, w Weights) Score {
	s := c.ScoreWith(r, w)
	r.RecentScore = ptr(s.Recent)
	r.CredibilityScore = ptr(s.Credibility)
	r.SpatialScore = ptr(s.Spatial)
	r.LScore = ptr(s.L)
	return s
}

func ptr[T any](v T) *T { return &v }
