package registry

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/raysh454/georisk/internal/logging"
	"github.com/raysh454/georisk/internal/lore"
	"github.com/raysh454/georisk/internal/model"
	"github.com/sergi/go-diff/diffmatchpatch"
)

const loreColumns = `id, site_id, narrative, place_name, event_date, years_ago,
    date_uncertainty_years, source_type, source_title, source_author, source_url,
    distance_km, confidence_band, recent_score, credibility_score, spatial_score,
    l_score, created_at, updated_at`

func scanLore(row interface{ Scan(...any) error }) (*lore.Record, error) {
	var (
		rec                      lore.Record
		eventDate                sql.NullInt64
		yearsAgo, distance, band sql.NullFloat64
		recent, cred, spatial, l sql.NullFloat64
		sourceType               string
		createdAt, updatedAt     int64
	)
	err := row.Scan(&rec.ID, &rec.SiteID, &rec.Narrative, &rec.PlaceName, &eventDate, &yearsAgo,
		&rec.DateUncertaintyYears, &sourceType, &rec.SourceTitle, &rec.SourceAuthor, &rec.SourceURL,
		&distance, &band, &recent, &cred, &spatial, &l, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	if eventDate.Valid {
		t := time.Unix(eventDate.Int64, 0).UTC()
		rec.EventDate = &t
	}
	rec.SourceType, _ = lore.ParseSourceType(sourceType)
	rec.YearsAgo = floatPtr(yearsAgo)
	rec.DistanceKm = floatPtr(distance)
	rec.ConfidenceBand = floatPtr(band)
	rec.RecentScore = floatPtr(recent)
	rec.CredibilityScore = floatPtr(cred)
	rec.SpatialScore = floatPtr(spatial)
	rec.LScore = floatPtr(l)
	rec.CreatedAt = time.Unix(createdAt, 0).UTC()
	rec.UpdatedAt = time.Unix(updatedAt, 0).UTC()
	return &rec, nil
}

func eventUnix(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.Unix()
}

// AddLoreRecord stores rec under the site named by siteIdentifier (slug or
// id). rec is assigned a fresh id and timestamps.
func (r *Registry) AddLoreRecord(ctx context.Context, siteIdentifier string, rec *lore.Record) (*lore.Record, error) {
	site, err := r.GetSite(ctx, siteIdentifier)
	if err != nil {
		return nil, err
	}

	out := *rec
	out.ID = uuid.New().String()
	out.SiteID = site.ID
	now := time.Now().UTC().Truncate(time.Second)
	out.CreatedAt, out.UpdatedAt = now, now

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO lore_records (`+loreColumns+`, original_narrative)
         VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		out.ID, out.SiteID, out.Narrative, out.PlaceName, eventUnix(out.EventDate), nullFloat(out.YearsAgo),
		out.DateUncertaintyYears, out.SourceType.String(), out.SourceTitle, out.SourceAuthor, out.SourceURL,
		nullFloat(out.DistanceKm), nullFloat(out.ConfidenceBand), nullFloat(out.RecentScore),
		nullFloat(out.CredibilityScore), nullFloat(out.SpatialScore), nullFloat(out.LScore),
		now.Unix(), now.Unix(), out.Narrative,
	)
	if err != nil {
		return nil, fmt.Errorf("insert lore record: %w", err)
	}

	r.logger.Debug("lore record added",
		logging.Field{Key: "lore_id", Value: out.ID},
		logging.Field{Key: "site_id", Value: out.SiteID})
	return &out, nil
}

// GetLoreRecord returns a lore record by id.
func (r *Registry) GetLoreRecord(ctx context.Context, id string) (*lore.Record, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+loreColumns+` FROM lore_records WHERE id = ? LIMIT 1`, id)
	rec, err := scanLore(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrLoreNotFound
		}
		return nil, err
	}
	return rec, nil
}

// ListLoreRecords returns the lore records of a site in insertion order.
func (r *Registry) ListLoreRecords(ctx context.Context, siteIdentifier string) ([]lore.Record, error) {
	site, err := r.GetSite(ctx, siteIdentifier)
	if err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT `+loreColumns+` FROM lore_records
         WHERE site_id = ?
         ORDER BY created_at ASC, rowid ASC`, site.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []lore.Record
	for rows.Next() {
		rec, err := scanLore(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *rec)
	}
	return out, rows.Err()
}

// UpdateLoreRecord overwrites the stored record with rec (matched by rec.ID).
// A narrative change is kept as a revision patch.
func (r *Registry) UpdateLoreRecord(ctx context.Context, rec *lore.Record) (*lore.Record, error) {
	prev, err := r.GetLoreRecord(ctx, rec.ID)
	if err != nil {
		return nil, err
	}

	out := *rec
	out.SiteID = prev.SiteID
	out.CreatedAt = prev.CreatedAt
	out.UpdatedAt = time.Now().UTC().Truncate(time.Second)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`UPDATE lore_records SET
             narrative = ?, place_name = ?, event_date = ?, years_ago = ?,
             date_uncertainty_years = ?, source_type = ?, source_title = ?,
             source_author = ?, source_url = ?, distance_km = ?, confidence_band = ?,
             recent_score = ?, credibility_score = ?, spatial_score = ?, l_score = ?,
             updated_at = ?
         WHERE id = ?`,
		out.Narrative, out.PlaceName, eventUnix(out.EventDate), nullFloat(out.YearsAgo),
		out.DateUncertaintyYears, out.SourceType.String(), out.SourceTitle,
		out.SourceAuthor, out.SourceURL, nullFloat(out.DistanceKm), nullFloat(out.ConfidenceBand),
		nullFloat(out.RecentScore), nullFloat(out.CredibilityScore), nullFloat(out.SpatialScore), nullFloat(out.LScore),
		out.UpdatedAt.Unix(), out.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("update lore record: %w", err)
	}

	if prev.Narrative != out.Narrative {
		dmp := diffmatchpatch.New()
		patch := dmp.PatchToText(dmp.PatchMake(prev.Narrative, out.Narrative))
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO lore_revisions (lore_id, patch, created_at) VALUES (?, ?, ?)`,
			out.ID, patch, out.UpdatedAt.Unix()); err != nil {
			return nil, fmt.Errorf("insert lore revision: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return &out, nil
}

// DeleteLoreRecord removes a lore record and its revisions.
func (r *Registry) DeleteLoreRecord(ctx context.Context, id string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM lore_revisions WHERE lore_id = ?`, id); err != nil {
		return fmt.Errorf("delete lore revisions: %w", err)
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM lore_records WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete lore record: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrLoreNotFound
	}
	return tx.Commit()
}

// ListLoreRevisions returns the narrative revisions of a record, oldest
// first.
func (r *Registry) ListLoreRevisions(ctx context.Context, loreID string) ([]model.LoreRevision, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, lore_id, patch, created_at FROM lore_revisions
         WHERE lore_id = ?
         ORDER BY id ASC`, loreID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.LoreRevision
	for rows.Next() {
		var rev model.LoreRevision
		if err := rows.Scan(&rev.ID, &rev.LoreID, &rev.Patch, &rev.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, rev)
	}
	return out, rows.Err()
}

// LoreHistory returns the original narrative of a record and every revision
// with the narrative it produced.
func (r *Registry) LoreHistory(ctx context.Context, loreID string) (*model.LoreHistory, error) {
	h := &model.LoreHistory{LoreID: loreID}
	err := r.db.QueryRowContext(ctx,
		`SELECT original_narrative, narrative FROM lore_records WHERE id = ?`, loreID).
		Scan(&h.Original, &h.Narrative)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrLoreNotFound
		}
		return nil, err
	}

	revs, err := r.ListLoreRevisions(ctx, loreID)
	if err != nil {
		return nil, err
	}
	replayed, err := ReplayNarrative(h.Original, revs)
	if err != nil {
		return nil, err
	}
	if replayed != h.Narrative {
		r.logger.Warn("lore revisions do not reproduce narrative",
			logging.Field{Key: "lore_id", Value: loreID})
	}
	if revs == nil {
		revs = []model.LoreRevision{}
	}
	h.Revisions = revs
	return h, nil
}

// ReplayNarrative applies revisions in order to the original narrative,
// recording on each revision the narrative it produced. It fails when a
// patch does not apply cleanly.
func ReplayNarrative(original string, revisions []model.LoreRevision) (string, error) {
	dmp := diffmatchpatch.New()
	text := original
	for i := range revisions {
		rev := &revisions[i]
		patches, err := dmp.PatchFromText(rev.Patch)
		if err != nil {
			return "", fmt.Errorf("revision %d: %w", rev.ID, err)
		}
		next, applied := dmp.PatchApply(patches, text)
		for _, ok := range applied {
			if !ok {
				return "", fmt.Errorf("revision %d does not apply", rev.ID)
			}
		}
		text = next
		rev.Narrative = text
	}
	return text, nil
}
