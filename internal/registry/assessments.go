package registry

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/raysh454/georisk/internal/model"
)

const assessmentColumns = `id, site_id, inputs, result, location, created_at`

// SaveAssessment persists a. Empty ID and CreatedAt are filled in.
func (r *Registry) SaveAssessment(ctx context.Context, a *model.Assessment) error {
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	if a.CreatedAt == 0 {
		a.CreatedAt = time.Now().Unix()
	}

	inputs, err := json.Marshal(a.Inputs)
	if err != nil {
		return fmt.Errorf("marshal inputs: %w", err)
	}
	result, err := json.Marshal(a.Result)
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}
	location, err := json.Marshal(a.Location)
	if err != nil {
		return fmt.Errorf("marshal location: %w", err)
	}

	var siteID any
	if a.SiteID != "" {
		siteID = a.SiteID
	}
	gate := 0
	if a.Result.GatePassed {
		gate = 1
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO assessments
             (id, site_id, hazard_type, inputs, result, location, r_score, risk_level, gate_passed, created_at)
         VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, siteID, string(a.Result.Config.HazardType), string(inputs), string(result), string(location),
		a.Result.R, string(a.Result.Level), gate, a.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert assessment: %w", err)
	}
	return nil
}

func scanAssessment(row interface{ Scan(...any) error }) (*model.Assessment, error) {
	var (
		a                        model.Assessment
		siteID                   sql.NullString
		inputs, result, location string
	)
	if err := row.Scan(&a.ID, &siteID, &inputs, &result, &location, &a.CreatedAt); err != nil {
		return nil, err
	}
	a.SiteID = siteID.String
	if err := json.Unmarshal([]byte(inputs), &a.Inputs); err != nil {
		return nil, fmt.Errorf("decode inputs of %s: %w", a.ID, err)
	}
	if err := json.Unmarshal([]byte(result), &a.Result); err != nil {
		return nil, fmt.Errorf("decode result of %s: %w", a.ID, err)
	}
	if err := json.Unmarshal([]byte(location), &a.Location); err != nil {
		return nil, fmt.Errorf("decode location of %s: %w", a.ID, err)
	}
	return &a, nil
}

// GetAssessment returns a stored assessment by id.
func (r *Registry) GetAssessment(ctx context.Context, id string) (*model.Assessment, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+assessmentColumns+` FROM assessments WHERE id = ? LIMIT 1`, id)
	a, err := scanAssessment(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAssessmentNotFound
		}
		return nil, err
	}
	return a, nil
}

// ListAssessments returns assessments newest first. An empty siteIdentifier
// lists every site; limit <= 0 means no limit.
func (r *Registry) ListAssessments(ctx context.Context, siteIdentifier string, limit int) ([]model.Assessment, error) {
	query := `SELECT ` + assessmentColumns + ` FROM assessments`
	var args []any
	if siteIdentifier != "" {
		site, err := r.GetSite(ctx, siteIdentifier)
		if err != nil {
			return nil, err
		}
		query += ` WHERE site_id = ?`
		args = append(args, site.ID)
	}
	query += ` ORDER BY created_at DESC, rowid DESC`
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Assessment
	for rows.Next() {
		a, err := scanAssessment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *a)
	}
	return out, rows.Err()
}
