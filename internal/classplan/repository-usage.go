package classplan

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sofiamaki/pilatesapp/internal/sqlite"
)

const timestampFormat = "2006-01-02T15:04:05.000Z"

// sqliteUsageRepository implements usageRepository.
type sqliteUsageRepository struct {
	db *sqlite.Database
}

func newUsageRepository(db *sqlite.Database) *sqliteUsageRepository {
	return &sqliteUsageRepository{db: db}
}

// Aggregates returns per-movement usage counts and last-used timestamps for
// the user. Movements the user has never seen are absent from the result.
func (r *sqliteUsageRepository) Aggregates(
	ctx context.Context,
	userID string,
	movementIDs []int,
) (_ map[int]UsageAggregate, err error) {
	aggregates := make(map[int]UsageAggregate, len(movementIDs))
	if len(movementIDs) == 0 {
		return aggregates, nil
	}

	placeholders := strings.Repeat("?, ", len(movementIDs)-1) + "?"
	args := make([]any, 0, len(movementIDs)+1)
	args = append(args, userID)
	for _, id := range movementIDs {
		args = append(args, id)
	}

	rows, err := r.db.ReadOnly.QueryContext(ctx, fmt.Sprintf(`
		SELECT movement_id, COUNT(*), MAX(used_at)
		FROM usage_records
		WHERE user_id = ? AND movement_id IN (%s)
		GROUP BY movement_id`, placeholders), args...)
	if err != nil {
		return nil, fmt.Errorf("query usage aggregates: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			err = errors.Join(err, fmt.Errorf("close rows: %w", closeErr))
		}
	}()

	for rows.Next() {
		var (
			movementID int
			frequency  int
			lastUsed   string
		)
		if err = rows.Scan(&movementID, &frequency, &lastUsed); err != nil {
			return nil, fmt.Errorf("scan usage aggregate: %w", err)
		}
		lastUsedAt, parseErr := time.Parse(timestampFormat, lastUsed)
		if parseErr != nil {
			return nil, fmt.Errorf("parse used_at for movement %d: %w", movementID, parseErr)
		}
		aggregates[movementID] = UsageAggregate{
			Frequency:  frequency,
			LastUsedAt: lastUsedAt,
		}
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return aggregates, nil
}

// ClassCount returns how many accepted classes the user has.
func (r *sqliteUsageRepository) ClassCount(ctx context.Context, userID string) (int, error) {
	var count int
	err := r.db.ReadOnly.QueryRowContext(ctx, `
		SELECT COUNT(*)
		FROM classes
		WHERE user_id = ? AND accepted_at IS NOT NULL`, userID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count accepted classes: %w", err)
	}
	return count, nil
}
