package analysis

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/vdmitriev/vregscan/internal/logger"
	"github.com/vdmitriev/vregscan/internal/models"
)

// RecordRepo is the persistence surface the store needs. Implemented by
// database.AnalysisRepo.
type RecordRepo interface {
	Create(ctx context.Context, rec *models.AnalysisRecord) error
	LatestForAsset(ctx context.Context, assetID string) (*models.AnalysisRecord, error)
}

// OutcomeRecorder folds attempt outcomes into the daily telemetry.
// Implemented by database.StatsRepo.
type OutcomeRecorder interface {
	RecordOutcome(ctx context.Context, day time.Time, success bool, qualityScore *float64) error
}

// Store appends analysis records and keeps the daily stats in step with
// every attempt. Records are immutable once written.
type Store struct {
	records RecordRepo
	stats   OutcomeRecorder
}

func NewStore(records RecordRepo, stats OutcomeRecorder) *Store {
	return &Store{records: records, stats: stats}
}

// Save persists the record and records the attempt outcome exactly once. A
// persistence failure is logged and counted as a failed outcome rather than
// propagated: the pipeline already produced its result, and telemetry has to
// reflect the attempt either way. Returns the record id, or 0 when the
// record could not be persisted.
func (s *Store) Save(ctx context.Context, rec *models.AnalysisRecord, success bool, qualityScore *float64) int64 {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}

	if err := s.records.Create(ctx, rec); err != nil {
		logger.WithError(err).WithFields(logrus.Fields{
			"asset_id":      rec.AssetID,
			"document_type": rec.DocumentType,
		}).Error("failed to persist analysis record")

		s.recordOutcome(ctx, rec.CreatedAt, false, nil)
		return 0
	}

	s.recordOutcome(ctx, rec.CreatedAt, success, qualityScore)
	return rec.ID
}

// RecordFailedAttempt counts an attempt that never produced a record, such
// as an OCR transport failure.
func (s *Store) RecordFailedAttempt(ctx context.Context) {
	s.recordOutcome(ctx, time.Now(), false, nil)
}

// LatestFor returns the most recent analysis for an asset, or nil.
func (s *Store) LatestFor(ctx context.Context, assetID string) (*models.AnalysisRecord, error) {
	return s.records.LatestForAsset(ctx, assetID)
}

func (s *Store) recordOutcome(ctx context.Context, day time.Time, success bool, score *float64) {
	if err := s.stats.RecordOutcome(ctx, day, success, score); err != nil {
		logger.WithError(err).Error("failed to update daily stats")
	}
}
