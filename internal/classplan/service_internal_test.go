package classplan

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/sofiamaki/pilatesapp/internal/errors"
	"github.com/sofiamaki/pilatesapp/internal/sqlite"
)

// brokenUsageRepository simulates a usage history store that is down.
type brokenUsageRepository struct {
	aggregatesErr error
	classCountErr error
}

func (r brokenUsageRepository) Aggregates(_ context.Context, _ string, _ []int) (map[int]UsageAggregate, error) {
	if r.aggregatesErr != nil {
		return nil, r.aggregatesErr
	}
	return map[int]UsageAggregate{}, nil
}

func (r brokenUsageRepository) ClassCount(_ context.Context, _ string) (int, error) {
	if r.classCountErr != nil {
		return 0, r.classCountErr
	}
	return 0, nil
}

func newBrokenHistoryService(t *testing.T, usage usageRepository) *Service {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level:       slog.LevelDebug,
		AddSource:   false,
		ReplaceAttr: nil,
	}))

	db, err := sqlite.NewDatabase(t.Context(), ":memory:", logger)
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}
	t.Cleanup(func() {
		if closeErr := db.Close(); closeErr != nil {
			t.Errorf("Failed to close test database: %v", closeErr)
		}
	})

	svc := NewService(db, logger)
	svc.repo.usage = usage
	return svc
}

func TestSelectionWeightsFallBackToUniform(t *testing.T) {
	tests := []struct {
		name  string
		usage usageRepository
	}{
		{
			name:  "aggregates unavailable",
			usage: brokenUsageRepository{aggregatesErr: errors.New("usage store down")},
		},
		{
			name:  "class count unavailable",
			usage: brokenUsageRepository{classCountErr: errors.New("usage store down")},
		},
	}

	pool := testPool()
	want := uniformWeights(pool)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newBrokenHistoryService(t, tt.usage)

			got := svc.selectionWeights(t.Context(), "user-1", pool, nil, time.Now())
			if diff := cmp.Diff(want, got); diff != "" {
				t.Errorf("selectionWeights() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestGenerateClassSurvivesBrokenHistory(t *testing.T) {
	svc := newBrokenHistoryService(t, brokenUsageRepository{
		aggregatesErr: errors.New("usage store down"),
	})

	plan, err := svc.GenerateClass(t.Context(), "user-1", 45, DifficultyBeginner, nil)
	if err != nil {
		t.Fatalf("Failed to generate class: %v", err)
	}

	if plan.MovementCount != 9 {
		t.Errorf("movement count = %d, want 9", plan.MovementCount)
	}
	if plan.TransitionCount != 8 {
		t.Errorf("transition count = %d, want 8", plan.TransitionCount)
	}
	if plan.Truncated {
		t.Error("plan unexpectedly truncated")
	}
}
