package classplan

import (
	"context"
	"errors"
	"fmt"

	"github.com/sofiamaki/pilatesapp/internal/sqlite"
)

// sqliteTransitionRepository implements transitionRepository.
type sqliteTransitionRepository struct {
	db *sqlite.Database
}

func newTransitionRepository(db *sqlite.Database) *sqliteTransitionRepository {
	return &sqliteTransitionRepository{db: db}
}

// ListAll returns the whole transition catalog. The catalog is small, so the
// builder prefetches it once per generation instead of looking up pairs
// one by one.
func (r *sqliteTransitionRepository) ListAll(ctx context.Context) (_ []Transition, err error) {
	rows, err := r.db.ReadOnly.QueryContext(ctx, `
		SELECT from_position, to_position, narrative, duration_seconds
		FROM transitions
		ORDER BY from_position, to_position`)
	if err != nil {
		return nil, fmt.Errorf("query transitions: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			err = errors.Join(err, fmt.Errorf("close rows: %w", closeErr))
		}
	}()

	var transitions []Transition
	for rows.Next() {
		var transition Transition
		if err = rows.Scan(
			&transition.FromPosition,
			&transition.ToPosition,
			&transition.Narrative,
			&transition.DurationSeconds,
		); err != nil {
			return nil, fmt.Errorf("scan transition: %w", err)
		}
		transitions = append(transitions, transition)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return transitions, nil
}

// Put upserts a transition for its position pair.
func (r *sqliteTransitionRepository) Put(ctx context.Context, transition Transition) error {
	_, err := r.db.ReadWrite.ExecContext(ctx, `
		INSERT INTO transitions (from_position, to_position, narrative, duration_seconds)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (from_position, to_position) DO UPDATE SET
			narrative = excluded.narrative,
			duration_seconds = excluded.duration_seconds`,
		transition.FromPosition,
		transition.ToPosition,
		transition.Narrative,
		transition.DurationSeconds,
	)
	if err != nil {
		return fmt.Errorf("save transition %s to %s: %w", transition.FromPosition, transition.ToPosition, err)
	}
	return nil
}
