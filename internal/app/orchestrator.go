package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/raysh454/georisk/internal/interfaces"
	"github.com/raysh454/georisk/internal/logging"
	"github.com/raysh454/georisk/internal/lore"
	"github.com/raysh454/georisk/internal/metrics"
	"github.com/raysh454/georisk/internal/model"
	"github.com/raysh454/georisk/internal/risk"
)

// ErrNoStore is returned by operations that need persistence when the
// orchestrator runs without a store.
var ErrNoStore = errors.New("no store configured")

// Orchestrator ties the scoring core to persistence and background jobs.
type Orchestrator struct {
	cfg    *Config
	store  interfaces.Store
	logger logging.Logger

	risk   *risk.Calculator
	lore   *lore.Calculator
	policy lore.ReductionPolicy

	jobs *jobTable
}

// NewOrchestrator builds the calculators from cfg. store may be nil, in
// which case only stateless scoring is available.
func NewOrchestrator(cfg *Config, store interfaces.Store, logger logging.Logger) (*Orchestrator, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	lc, err := cfg.LoreConfig()
	if err != nil {
		return nil, err
	}
	policy, err := lore.ParseReductionPolicy(cfg.Lore.Reduction)
	if err != nil {
		return nil, err
	}

	return &Orchestrator{
		cfg:    cfg,
		store:  store,
		logger: logger,
		risk:   risk.NewCalculator(cfg.Risk.Config, cfg.Risk.MonteCarlo),
		lore:   lore.NewCalculator(lc),
		policy: policy,
		jobs:   newJobTable(),
	}, nil
}

// Config returns the orchestrator's configuration.
func (o *Orchestrator) Config() *Config { return o.cfg }

func (o *Orchestrator) requireStore() error {
	if o.store == nil {
		return ErrNoStore
	}
	return nil
}

// Assess scores one request. When SiteID is set the site's lore is reduced
// into the lore signal (unless the request carries one) and the assessment
// is persisted.
func (o *Orchestrator) Assess(ctx context.Context, req AssessmentRequest) (*model.Assessment, error) {
	start := time.Now()

	var site *model.Site
	if req.SiteID != "" {
		if err := o.requireStore(); err != nil {
			return nil, err
		}
		s, err := o.store.GetSite(ctx, req.SiteID)
		if err != nil {
			return nil, err
		}
		site = s
		if req.HazardType == "" && req.EventType == "" {
			req.HazardType = s.HazardType
		}
	}

	var signal float64
	switch {
	case req.LoreSignal != nil:
		signal = *req.LoreSignal
	case site != nil:
		s, err := o.SiteLoreSignal(ctx, site.ID)
		if err != nil {
			metrics.AssessmentErrors.WithLabelValues("lore").Inc()
			return nil, err
		}
		signal = s
	}

	in, err := req.inputs(signal)
	if err != nil {
		metrics.AssessmentErrors.WithLabelValues("invalid_input").Inc()
		return nil, err
	}

	opts := o.risk.UncertaintyOptions()
	if req.Samples > 0 {
		opts.Samples = req.Samples
	}
	if req.Seed != nil {
		opts.Seed = req.Seed
	}

	res, err := o.risk.CalculateWith(in, o.risk.Config(), opts)
	if err != nil {
		metrics.AssessmentErrors.WithLabelValues("invalid_input").Inc()
		return nil, err
	}

	a := &model.Assessment{
		Inputs:   in,
		Result:   *res,
		Location: req.location(),
	}
	if site != nil {
		a.SiteID = site.ID
		if err := o.store.SaveAssessment(ctx, a); err != nil {
			metrics.AssessmentErrors.WithLabelValues("storage").Inc()
			return nil, fmt.Errorf("save assessment: %w", err)
		}
	}

	metrics.ObserveAssessment(string(res.Config.HazardType), string(res.Level), res.GatePassed,
		in.ComputeUncertainty, res.R, time.Since(start))
	o.logger.Debug("assessment computed",
		logging.Field{Key: "assessment_id", Value: a.ID},
		logging.Field{Key: "r_score", Value: res.R},
		logging.Field{Key: "risk_level", Value: res.Level},
		logging.Field{Key: "gate_passed", Value: res.GatePassed})
	return a, nil
}

// ScoreRecord scores a lore record without storing it.
func (o *Orchestrator) ScoreRecord(rec lore.Record) (*lore.Record, lore.Score, error) {
	return o.ScoreRecordWith(rec, nil)
}

// ScoreRecordWith scores a lore record without storing it. A non-nil
// weights replaces the configured combination weights for this record.
func (o *Orchestrator) ScoreRecordWith(rec lore.Record, weights *lore.Weights) (*lore.Record, lore.Score, error) {
	if err := rec.Validate(); err != nil {
		return nil, lore.Score{}, err
	}
	w := o.lore.Config().Weights
	if weights != nil {
		if err := weights.Validate(); err != nil {
			return nil, lore.Score{}, err
		}
		w = *weights
	}
	s := o.lore.ApplyWith(&rec, w)
	metrics.LoreScored.WithLabelValues(rec.SourceType.String()).Inc()
	return &rec, s, nil
}

// ScoreLore scores rec and stores it under the given site.
func (o *Orchestrator) ScoreLore(ctx context.Context, siteIdentifier string, rec lore.Record) (*lore.Record, error) {
	if err := o.requireStore(); err != nil {
		return nil, err
	}
	scored, _, err := o.ScoreRecord(rec)
	if err != nil {
		return nil, err
	}
	saved, err := o.store.AddLoreRecord(ctx, siteIdentifier, scored)
	if err != nil {
		return nil, err
	}
	o.logger.Info("lore record scored",
		logging.Field{Key: "lore_id", Value: saved.ID},
		logging.Field{Key: "l_score", Value: *saved.LScore})
	return saved, nil
}

// UpdateLore replaces a stored record's content, rescores it and keeps the
// narrative revision.
func (o *Orchestrator) UpdateLore(ctx context.Context, id string, rec lore.Record) (*lore.Record, error) {
	if err := o.requireStore(); err != nil {
		return nil, err
	}
	if _, err := o.store.GetLoreRecord(ctx, id); err != nil {
		return nil, err
	}
	rec.ID = id
	scored, _, err := o.ScoreRecord(rec)
	if err != nil {
		return nil, err
	}
	return o.store.UpdateLoreRecord(ctx, scored)
}

// GetLore returns a stored lore record.
func (o *Orchestrator) GetLore(ctx context.Context, id string) (*lore.Record, error) {
	if err := o.requireStore(); err != nil {
		return nil, err
	}
	return o.store.GetLoreRecord(ctx, id)
}

// DeleteLore removes a stored lore record.
func (o *Orchestrator) DeleteLore(ctx context.Context, id string) error {
	if err := o.requireStore(); err != nil {
		return err
	}
	return o.store.DeleteLoreRecord(ctx, id)
}

// LoreHistory returns the narrative revisions of a stored lore record.
func (o *Orchestrator) LoreHistory(ctx context.Context, id string) (*model.LoreHistory, error) {
	if err := o.requireStore(); err != nil {
		return nil, err
	}
	return o.store.LoreHistory(ctx, id)
}

// ListLore returns a site's lore records.
func (o *Orchestrator) ListLore(ctx context.Context, siteIdentifier string) ([]lore.Record, error) {
	if err := o.requireStore(); err != nil {
		return nil, err
	}
	return o.store.ListLoreRecords(ctx, siteIdentifier)
}

// LoreSignal is a site's lore reduced to one signal.
type LoreSignal struct {
	SiteID  string               `json:"site_id"`
	Policy  lore.ReductionPolicy `json:"policy"`
	Signal  float64              `json:"lore_signal"`
	Records int                  `json:"records"`
}

// SiteLore reduces a site's scored lore into one signal with the
// configured policy. A site without scored lore has signal 0.
func (o *Orchestrator) SiteLore(ctx context.Context, siteIdentifier string) (*LoreSignal, error) {
	if err := o.requireStore(); err != nil {
		return nil, err
	}
	site, err := o.store.GetSite(ctx, siteIdentifier)
	if err != nil {
		return nil, err
	}
	records, err := o.store.ListLoreRecords(ctx, site.ID)
	if err != nil {
		return nil, err
	}
	return &LoreSignal{
		SiteID:  site.ID,
		Policy:  o.policy,
		Signal:  lore.Reduce(records, o.policy),
		Records: len(records),
	}, nil
}

// SiteLoreSignal is SiteLore's signal alone.
func (o *Orchestrator) SiteLoreSignal(ctx context.Context, siteIdentifier string) (float64, error) {
	sig, err := o.SiteLore(ctx, siteIdentifier)
	if err != nil {
		return 0, err
	}
	return sig.Signal, nil
}

// ReductionPolicy returns the configured lore reduction policy.
func (o *Orchestrator) ReductionPolicy() lore.ReductionPolicy { return o.policy }

// CreateSite registers a new site.
func (o *Orchestrator) CreateSite(ctx context.Context, slug, name string, hazard risk.HazardType, lat, lng *float64) (*model.Site, error) {
	if err := o.requireStore(); err != nil {
		return nil, err
	}
	return o.store.CreateSite(ctx, slug, name, hazard, lat, lng)
}

// GetSite resolves a site by slug or id.
func (o *Orchestrator) GetSite(ctx context.Context, identifier string) (*model.Site, error) {
	if err := o.requireStore(); err != nil {
		return nil, err
	}
	return o.store.GetSite(ctx, identifier)
}

// ListSites returns all sites.
func (o *Orchestrator) ListSites(ctx context.Context) ([]model.Site, error) {
	if err := o.requireStore(); err != nil {
		return nil, err
	}
	return o.store.ListSites(ctx)
}

// GetAssessment returns a stored assessment.
func (o *Orchestrator) GetAssessment(ctx context.Context, id string) (*model.Assessment, error) {
	if err := o.requireStore(); err != nil {
		return nil, err
	}
	return o.store.GetAssessment(ctx, id)
}

// ListAssessments lists stored assessments, optionally for one site.
func (o *Orchestrator) ListAssessments(ctx context.Context, siteIdentifier string, limit int) ([]model.Assessment, error) {
	if err := o.requireStore(); err != nil {
		return nil, err
	}
	return o.store.ListAssessments(ctx, siteIdentifier, limit)
}

// CompareAssessments diffs two stored assessments.
func (o *Orchestrator) CompareAssessments(ctx context.Context, baseID, headID string) (*risk.ResultDiff, error) {
	if err := o.requireStore(); err != nil {
		return nil, err
	}
	base, err := o.store.GetAssessment(ctx, baseID)
	if err != nil {
		return nil, fmt.Errorf("base: %w", err)
	}
	head, err := o.store.GetAssessment(ctx, headID)
	if err != nil {
		return nil, fmt.Errorf("head: %w", err)
	}
	d := risk.Diff(&base.Result, &head.Result)
	return &d, nil
}

// Statistics summarises stored data.
func (o *Orchestrator) Statistics(ctx context.Context) (*model.Statistics, error) {
	if err := o.requireStore(); err != nil {
		return nil, err
	}
	return o.store.Statistics(ctx)
}
