package database

import (
	"context"
	"math"
	"testing"
	"time"
)

func floatPtr(v float64) *float64 {
	return &v
}

func TestStatsRepo_FirstAttemptOfDay(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewStatsRepo(db)
	ctx := context.Background()
	day := time.Date(2025, 6, 1, 14, 30, 0, 0, time.UTC)

	if err := repo.RecordOutcome(ctx, day, true, floatPtr(0.8)); err != nil {
		t.Fatalf("Failed to record outcome: %v", err)
	}

	stats, err := repo.GetDay(ctx, day)
	if err != nil {
		t.Fatalf("Failed to get day stats: %v", err)
	}
	if stats == nil {
		t.Fatal("Expected a stats row after first attempt")
	}

	if stats.Total != 1 || stats.Successful != 1 || stats.Failed != 0 {
		t.Errorf("Unexpected counters: %+v", stats)
	}
	if stats.AvgQuality != 0.8 {
		t.Errorf("Expected avg quality 0.8, got %f", stats.AvgQuality)
	}
}

func TestStatsRepo_RunningAverage(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewStatsRepo(db)
	ctx := context.Background()
	day := time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)

	scores := []float64{1.0, 0.5, 0.75}
	for _, score := range scores {
		if err := repo.RecordOutcome(ctx, day, true, floatPtr(score)); err != nil {
			t.Fatalf("Failed to record outcome: %v", err)
		}
	}

	stats, err := repo.GetDay(ctx, day)
	if err != nil {
		t.Fatalf("Failed to get day stats: %v", err)
	}

	if stats.Successful != 3 {
		t.Errorf("Expected 3 successful, got %d", stats.Successful)
	}
	if math.Abs(stats.AvgQuality-0.75) > 1e-9 {
		t.Errorf("Expected avg quality 0.75, got %f", stats.AvgQuality)
	}
}

// Replaying identical scores must leave the average exactly at that score:
// the incremental mean has to weight the old average with the successful
// count from before the current attempt. Weighting with the incremented
// count drags the average toward zero as the day fills up.
func TestStatsRepo_IdenticalScoresKeepAverageFixed(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewStatsRepo(db)
	ctx := context.Background()
	day := time.Date(2025, 6, 3, 9, 0, 0, 0, time.UTC)

	const q = 0.7
	for i := 0; i < 10; i++ {
		if err := repo.RecordOutcome(ctx, day, true, floatPtr(q)); err != nil {
			t.Fatalf("Failed to record outcome %d: %v", i, err)
		}
	}

	stats, err := repo.GetDay(ctx, day)
	if err != nil {
		t.Fatalf("Failed to get day stats: %v", err)
	}
	if math.Abs(stats.AvgQuality-q) > 1e-9 {
		t.Errorf("Expected avg quality to stay at %f, got %f", q, stats.AvgQuality)
	}
	if stats.Total != 10 || stats.Successful != 10 {
		t.Errorf("Unexpected counters: %+v", stats)
	}
}

func TestStatsRepo_FailedAttemptsDoNotPerturbAverage(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewStatsRepo(db)
	ctx := context.Background()
	day := time.Date(2025, 6, 4, 9, 0, 0, 0, time.UTC)

	if err := repo.RecordOutcome(ctx, day, true, floatPtr(0.9)); err != nil {
		t.Fatalf("Failed to record success: %v", err)
	}
	for i := 0; i < 3; i++ {
		if err := repo.RecordOutcome(ctx, day, false, nil); err != nil {
			t.Fatalf("Failed to record failure: %v", err)
		}
	}

	stats, err := repo.GetDay(ctx, day)
	if err != nil {
		t.Fatalf("Failed to get day stats: %v", err)
	}

	if stats.Total != 4 || stats.Successful != 1 || stats.Failed != 3 {
		t.Errorf("Unexpected counters: %+v", stats)
	}
	if stats.AvgQuality != 0.9 {
		t.Errorf("Expected failures to leave avg quality at 0.9, got %f", stats.AvgQuality)
	}
}

func TestStatsRepo_SeparateDays(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewStatsRepo(db)
	ctx := context.Background()

	day1 := time.Date(2025, 6, 5, 23, 59, 0, 0, time.UTC)
	day2 := time.Date(2025, 6, 6, 0, 1, 0, 0, time.UTC)

	if err := repo.RecordOutcome(ctx, day1, true, floatPtr(1.0)); err != nil {
		t.Fatalf("Failed to record outcome: %v", err)
	}
	if err := repo.RecordOutcome(ctx, day2, false, nil); err != nil {
		t.Fatalf("Failed to record outcome: %v", err)
	}

	recent, err := repo.ListRecent(ctx, 10)
	if err != nil {
		t.Fatalf("Failed to list recent stats: %v", err)
	}
	if len(recent) != 2 {
		t.Fatalf("Expected 2 day rows, got %d", len(recent))
	}
	if recent[0].Day != "2025-06-06" || recent[1].Day != "2025-06-05" {
		t.Errorf("Expected newest-first ordering, got %s then %s", recent[0].Day, recent[1].Day)
	}

	missing, err := repo.GetDay(ctx, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("Unexpected error for empty day: %v", err)
	}
	if missing != nil {
		t.Error("Expected nil stats for a day with no attempts")
	}
}
