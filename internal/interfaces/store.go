package interfaces

import (
	"context"

	"github.com/raysh454/georisk/internal/lore"
	"github.com/raysh454/georisk/internal/model"
	"github.com/raysh454/georisk/internal/risk"
)

// SiteStore persists assessed sites.
type SiteStore interface {
	CreateSite(ctx context.Context, slug, name string, hazard risk.HazardType, lat, lng *float64) (*model.Site, error)

	// GetSite resolves a site by slug or id.
	GetSite(ctx context.Context, identifier string) (*model.Site, error)

	ListSites(ctx context.Context) ([]model.Site, error)
}

// LoreStore persists lore records. Updates keep a revision of narrative
// changes.
type LoreStore interface {
	AddLoreRecord(ctx context.Context, siteIdentifier string, rec *lore.Record) (*lore.Record, error)
	UpdateLoreRecord(ctx context.Context, rec *lore.Record) (*lore.Record, error)
	GetLoreRecord(ctx context.Context, id string) (*lore.Record, error)
	ListLoreRecords(ctx context.Context, siteIdentifier string) ([]lore.Record, error)
	DeleteLoreRecord(ctx context.Context, id string) error

	// LoreHistory returns the narrative revisions of a record.
	LoreHistory(ctx context.Context, id string) (*model.LoreHistory, error)
}

// AssessmentStore persists computed risk assessments.
type AssessmentStore interface {
	SaveAssessment(ctx context.Context, a *model.Assessment) error
	GetAssessment(ctx context.Context, id string) (*model.Assessment, error)

	// ListAssessments lists newest first; an empty siteIdentifier means all
	// sites and limit <= 0 means no limit.
	ListAssessments(ctx context.Context, siteIdentifier string, limit int) ([]model.Assessment, error)

	Statistics(ctx context.Context) (*model.Statistics, error)
}

// Store is the persistence collaborator of the orchestrator. The scoring
// core never depends on it.
type Store interface {
	SiteStore
	LoreStore
	AssessmentStore
}
