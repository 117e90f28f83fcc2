package models

import (
	"encoding/json"
	"time"
)

// Document types an analysis attempt can target.
const (
	DocTypeRegistration    = "registration_document"
	DocTypeInstrumentPanel = "instrument_panel"
)

// Quality labels derived from the completeness score.
const (
	QualityGood    = "good"
	QualityPartial = "partial"
	QualityPoor    = "poor"
)

// AnalysisRecord is one row per analysis attempt. Rows are append-only:
// history is never edited, and "latest for an asset" is a query by creation
// time, not a mutable pointer.
type AnalysisRecord struct {
	ID               int64           `json:"id"`
	AssetID          string          `json:"asset_id"`
	DocumentType     string          `json:"document_type"`
	Fields           json.RawMessage `json:"fields"`
	QualityLabel     string          `json:"quality_label"`
	QualityScore     *float64        `json:"quality_score,omitempty"`
	MissingFields    []string        `json:"missing_fields"`
	Motohours        *float64        `json:"motohours,omitempty"`
	LastServiceDate  *time.Time      `json:"last_service_date,omitempty"`
	RegistrationDate *time.Time      `json:"registration_date,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
}

// DailyStats is the per-day rolling extraction telemetry. One row per
// calendar day, mutated in place as attempts complete, never deleted.
type DailyStats struct {
	Day        string  `json:"day"`
	Total      int     `json:"total"`
	Successful int     `json:"successful"`
	Failed     int     `json:"failed"`
	AvgQuality float64 `json:"avg_quality"`
}
