package registry

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/raysh454/georisk/internal/logging"
	"github.com/raysh454/georisk/internal/model"
	"github.com/raysh454/georisk/internal/risk"
	"github.com/raysh454/georisk/internal/utils"
	"github.com/raysh454/georisk/internal/validation"
)

//go:embed schema.sql
var schemaFS embed.FS

var (
	ErrSiteNotFound       = errors.New("site not found")
	ErrLoreNotFound       = errors.New("lore record not found")
	ErrAssessmentNotFound = errors.New("assessment not found")
	ErrInvalidSite        = errors.New("invalid site")
)

// Registry stores sites, their lore records and the assessments computed for
// them in SQLite.
type Registry struct {
	db     *sql.DB
	logger logging.Logger
}

// NewRegistry returns a Registry and runs migrations from schema.sql.
// db should typically be the SQLite DB at <storage_root>/georisk.db.
func NewRegistry(db *sql.DB, logger logging.Logger) (*Registry, error) {
	if db == nil {
		return nil, fmt.Errorf("db is nil")
	}

	schemaSQL, err := schemaFS.ReadFile("schema.sql")
	if err != nil {
		return nil, fmt.Errorf("failed to read schema.sql: %w", err)
	}
	if _, err := db.Exec(string(schemaSQL)); err != nil {
		return nil, fmt.Errorf("failed to execute schema: %w", err)
	}

	return &Registry{db: db, logger: logger}, nil
}

// Close closes the underlying database.
func (r *Registry) Close() error {
	return r.db.Close()
}

func siteSlug(slug, name string) string {
	if slug == "" {
		slug = name
	}
	out := utils.NormalizeSlug(slug)
	if out == "" {
		out = uuid.New().String()[:8]
	}
	return out
}

// CreateSite inserts a new site. An empty slug is derived from name, and an
// empty hazard type defaults to landslide.
func (r *Registry) CreateSite(ctx context.Context, slug, name string, hazard risk.HazardType, lat, lng *float64) (*model.Site, error) {
	slug = siteSlug(slug, name)
	if name == "" {
		name = slug
	}
	if hazard == "" {
		hazard = risk.HazardLandslide
	}

	s := &model.Site{
		ID:         uuid.New().String(),
		Slug:       slug,
		Name:       name,
		HazardType: hazard,
		Latitude:   lat,
		Longitude:  lng,
		CreatedAt:  time.Now().Unix(),
	}
	violations, err := validation.Check(s)
	if err != nil {
		return nil, err
	}
	if len(violations) > 0 {
		v := violations[0]
		return nil, fmt.Errorf("%w: %s=%v must be %s", ErrInvalidSite, v.Field, v.Value, v.Range)
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO sites (id, slug, name, hazard_type, latitude, longitude, created_at)
         VALUES (?, ?, ?, ?, ?, ?, ?)`,
		s.ID, s.Slug, s.Name, string(s.HazardType), nullFloat(lat), nullFloat(lng), s.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert site: %w", err)
	}

	r.logger.Info("site created", logging.Field{Key: "site_id", Value: s.ID}, logging.Field{Key: "slug", Value: s.Slug})
	return s, nil
}

const siteColumns = `id, slug, name, hazard_type, latitude, longitude, created_at`

func scanSite(row interface{ Scan(...any) error }) (*model.Site, error) {
	var (
		s        model.Site
		hazard   string
		lat, lng sql.NullFloat64
	)
	if err := row.Scan(&s.ID, &s.Slug, &s.Name, &hazard, &lat, &lng, &s.CreatedAt); err != nil {
		return nil, err
	}
	s.HazardType = risk.HazardType(hazard)
	s.Latitude = floatPtr(lat)
	s.Longitude = floatPtr(lng)
	return &s, nil
}

// GetSite resolves a site by slug first, then by id.
func (r *Registry) GetSite(ctx context.Context, identifier string) (*model.Site, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+siteColumns+` FROM sites WHERE slug = ? LIMIT 1`,
		utils.NormalizeSlug(identifier))
	s, err := scanSite(row)
	if err == nil {
		return s, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	row = r.db.QueryRowContext(ctx,
		`SELECT `+siteColumns+` FROM sites WHERE id = ? LIMIT 1`, identifier)
	s, err = scanSite(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSiteNotFound
		}
		return nil, err
	}
	return s, nil
}

// ListSites returns all sites, newest first.
func (r *Registry) ListSites(ctx context.Context) ([]model.Site, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+siteColumns+` FROM sites ORDER BY created_at DESC, rowid DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Site
	for rows.Next() {
		s, err := scanSite(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *s)
	}
	return out, rows.Err()
}

// Statistics counts registry contents and summarises stored assessments.
func (r *Registry) Statistics(ctx context.Context) (*model.Statistics, error) {
	st := &model.Statistics{ByLevel: map[risk.Level]int{}}

	counts := []struct {
		query string
		dst   *int
	}{
		{`SELECT COUNT(*) FROM sites`, &st.Sites},
		{`SELECT COUNT(*) FROM lore_records`, &st.LoreRecords},
		{`SELECT COUNT(*) FROM assessments`, &st.Assessments},
	}
	for _, c := range counts {
		if err := r.db.QueryRowContext(ctx, c.query).Scan(c.dst); err != nil {
			return nil, fmt.Errorf("statistics: %w", err)
		}
	}
	if st.Assessments == 0 {
		return st, nil
	}

	var avg, passRate sql.NullFloat64
	if err := r.db.QueryRowContext(ctx,
		`SELECT AVG(r_score), AVG(gate_passed) FROM assessments`).Scan(&avg, &passRate); err != nil {
		return nil, fmt.Errorf("statistics: %w", err)
	}
	st.AverageR = utils.Round4(avg.Float64)
	st.GatePassRate = utils.Round4(passRate.Float64)

	rows, err := r.db.QueryContext(ctx,
		`SELECT risk_level, COUNT(*) FROM assessments GROUP BY risk_level`)
	if err != nil {
		return nil, fmt.Errorf("statistics: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			level string
			n     int
		)
		if err := rows.Scan(&level, &n); err != nil {
			return nil, err
		}
		st.ByLevel[risk.Level(level)] = n
	}
	return st, rows.Err()
}

func nullFloat(p *float64) any {
	if p == nil {
		return nil
	}
	return *p
}

func floatPtr(n sql.NullFloat64) *float64 {
	if !n.Valid {
		return nil
	}
	v := n.Float64
	return &v
}
