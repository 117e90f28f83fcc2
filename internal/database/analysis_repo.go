package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/vdmitriev/vregscan/internal/models"
)

// AnalysisRepo persists one row per analysis attempt. Rows are append-only;
// nothing here updates or deletes existing records.
type AnalysisRepo struct {
	db *DB
}

func NewAnalysisRepo(db *DB) *AnalysisRepo {
	return &AnalysisRepo{db: db}
}

func (r *AnalysisRepo) Create(ctx context.Context, rec *models.AnalysisRecord) error {
	if rec.Fields == nil {
		rec.Fields = json.RawMessage(`{}`)
	}
	if rec.MissingFields == nil {
		rec.MissingFields = []string{}
	}

	missingJSON, err := json.Marshal(rec.MissingFields)
	if err != nil {
		return fmt.Errorf("failed to marshal missing fields: %w", err)
	}

	if r.db.dbType == "postgres" {
		query := `
			INSERT INTO analyses (
				asset_id, document_type, fields, quality_label, quality_score,
				missing_fields, motohours, last_service_date, registration_date, created_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
			RETURNING id`

		return r.db.conn.QueryRowContext(ctx, query,
			rec.AssetID,
			rec.DocumentType,
			string(rec.Fields),
			rec.QualityLabel,
			rec.QualityScore,
			string(missingJSON),
			rec.Motohours,
			rec.LastServiceDate,
			rec.RegistrationDate,
			rec.CreatedAt,
		).Scan(&rec.ID)
	}

	query := `
		INSERT INTO analyses (
			asset_id, document_type, fields, quality_label, quality_score,
			missing_fields, motohours, last_service_date, registration_date, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	result, err := r.db.conn.ExecContext(ctx, query,
		rec.AssetID,
		rec.DocumentType,
		string(rec.Fields),
		rec.QualityLabel,
		rec.QualityScore,
		string(missingJSON),
		rec.Motohours,
		rec.LastServiceDate,
		rec.RegistrationDate,
		rec.CreatedAt,
	)
	if err != nil {
		return err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read inserted id: %w", err)
	}
	rec.ID = id
	return nil
}

// LatestForAsset returns the most recently created record for the asset, or
// nil when the asset has no analyses yet.
func (r *AnalysisRepo) LatestForAsset(ctx context.Context, assetID string) (*models.AnalysisRecord, error) {
	query := `
		SELECT id, asset_id, document_type, fields, quality_label, quality_score,
			   missing_fields, motohours, last_service_date, registration_date, created_at
		FROM analyses
		WHERE asset_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT 1`

	rec, err := r.scanRecord(r.db.conn.QueryRowContext(ctx, query, assetID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query latest analysis: %w", err)
	}
	return rec, nil
}

// ListForAsset returns the full analysis history for an asset, newest first.
func (r *AnalysisRepo) ListForAsset(ctx context.Context, assetID string) ([]*models.AnalysisRecord, error) {
	query := `
		SELECT id, asset_id, document_type, fields, quality_label, quality_score,
			   missing_fields, motohours, last_service_date, registration_date, created_at
		FROM analyses
		WHERE asset_id = $1
		ORDER BY created_at DESC, id DESC`

	rows, err := r.db.conn.QueryContext(ctx, query, assetID)
	if err != nil {
		return nil, fmt.Errorf("failed to query analyses: %w", err)
	}
	defer rows.Close()

	var records []*models.AnalysisRecord
	for rows.Next() {
		rec, err := r.scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan analysis: %w", err)
		}
		records = append(records, rec)
	}

	return records, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func (r *AnalysisRepo) scanRecord(row rowScanner) (*models.AnalysisRecord, error) {
	rec := &models.AnalysisRecord{}
	var fieldsStr, missingStr string

	err := row.Scan(
		&rec.ID,
		&rec.AssetID,
		&rec.DocumentType,
		&fieldsStr,
		&rec.QualityLabel,
		&rec.QualityScore,
		&missingStr,
		&rec.Motohours,
		&rec.LastServiceDate,
		&rec.RegistrationDate,
		&rec.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	rec.Fields = json.RawMessage(fieldsStr)
	if missingStr != "" {
		if err := json.Unmarshal([]byte(missingStr), &rec.MissingFields); err != nil {
			rec.MissingFields = []string{}
		}
	}

	return rec, nil
}
