package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/vdmitriev/vregscan/internal/models"
)

// dayFormat keys daily_stats rows at calendar-day granularity.
const dayFormat = "2006-01-02"

// StatsRepo maintains the per-day extraction telemetry. Every update is a
// read-modify-write against the day's row and runs inside a transaction so
// concurrent pipeline runs finishing on the same day cannot lose counts.
type StatsRepo struct {
	db *DB
}

func NewStatsRepo(db *DB) *StatsRepo {
	return &StatsRepo{db: db}
}

// RecordOutcome folds one completed attempt into the day's row, creating the
// row on the first attempt of the day. The running average covers successful
// attempts only and is advanced with the successful count from before this
// attempt; the post-increment count would silently skew the mean.
func (r *StatsRepo) RecordOutcome(ctx context.Context, day time.Time, success bool, qualityScore *float64) error {
	key := day.Format(dayFormat)

	tx, err := r.db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin stats transaction: %w", err)
	}
	defer tx.Rollback()

	selectQuery := `SELECT total, successful, failed, avg_quality FROM daily_stats WHERE day = $1`
	if r.db.dbType == "postgres" {
		selectQuery += " FOR UPDATE"
	}

	var stats models.DailyStats
	err = tx.QueryRowContext(ctx, selectQuery, key).Scan(
		&stats.Total, &stats.Successful, &stats.Failed, &stats.AvgQuality,
	)

	switch {
	case err == sql.ErrNoRows:
		stats = models.DailyStats{Day: key, Total: 1}
		if success {
			stats.Successful = 1
			if qualityScore != nil {
				stats.AvgQuality = *qualityScore
			}
		} else {
			stats.Failed = 1
		}

		_, err = tx.ExecContext(ctx,
			`INSERT INTO daily_stats (day, total, successful, failed, avg_quality) VALUES ($1, $2, $3, $4, $5)`,
			key, stats.Total, stats.Successful, stats.Failed, stats.AvgQuality,
		)
		if err != nil {
			return fmt.Errorf("failed to insert daily stats: %w", err)
		}

	case err != nil:
		return fmt.Errorf("failed to read daily stats: %w", err)

	default:
		stats.Total++
		if success {
			priorSuccessful := stats.Successful
			score := 0.0
			if qualityScore != nil {
				score = *qualityScore
			}
			stats.AvgQuality = (stats.AvgQuality*float64(priorSuccessful) + score) / float64(priorSuccessful+1)
			stats.Successful++
		} else {
			stats.Failed++
		}

		_, err = tx.ExecContext(ctx,
			`UPDATE daily_stats SET total = $1, successful = $2, failed = $3, avg_quality = $4 WHERE day = $5`,
			stats.Total, stats.Successful, stats.Failed, stats.AvgQuality, key,
		)
		if err != nil {
			return fmt.Errorf("failed to update daily stats: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit stats: %w", err)
	}
	return nil
}

// GetDay returns the stats row for one day, or nil when no attempts landed
// that day.
func (r *StatsRepo) GetDay(ctx context.Context, day time.Time) (*models.DailyStats, error) {
	stats := &models.DailyStats{Day: day.Format(dayFormat)}

	err := r.db.conn.QueryRowContext(ctx,
		`SELECT total, successful, failed, avg_quality FROM daily_stats WHERE day = $1`,
		stats.Day,
	).Scan(&stats.Total, &stats.Successful, &stats.Failed, &stats.AvgQuality)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query daily stats: %w", err)
	}

	return stats, nil
}

// ListRecent returns up to limit most recent daily rows, newest first.
func (r *StatsRepo) ListRecent(ctx context.Context, limit int) ([]*models.DailyStats, error) {
	rows, err := r.db.conn.QueryContext(ctx,
		`SELECT day, total, successful, failed, avg_quality FROM daily_stats ORDER BY day DESC LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query daily stats: %w", err)
	}
	defer rows.Close()

	var result []*models.DailyStats
	for rows.Next() {
		stats := &models.DailyStats{}
		if err := rows.Scan(&stats.Day, &stats.Total, &stats.Successful, &stats.Failed, &stats.AvgQuality); err != nil {
			return nil, fmt.Errorf("failed to scan daily stats: %w", err)
		}
		result = append(result, stats)
	}

	return result, rows.Err()
}
