package classplan

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/sofiamaki/pilatesapp/internal/sqlite"
)

// sqliteMovementRepository implements movementRepository.
type sqliteMovementRepository struct {
	db *sqlite.Database
}

func newMovementRepository(db *sqlite.Database) *sqliteMovementRepository {
	return &sqliteMovementRepository{db: db}
}

// List returns the movements at or below maxDifficulty with their muscle
// groups, ordered by id for deterministic iteration.
func (r *sqliteMovementRepository) List(ctx context.Context, maxDifficulty Difficulty) (_ []Movement, err error) {
	rows, err := r.db.ReadOnly.QueryContext(ctx, `
		SELECT id, name, difficulty, family, setup_position, description_markdown
		FROM movements
		WHERE CASE difficulty
			WHEN 'beginner' THEN 0
			WHEN 'intermediate' THEN 1
			ELSE 2
		END <= ?
		ORDER BY id`, maxDifficulty.rank())
	if err != nil {
		return nil, fmt.Errorf("query movements: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			err = errors.Join(err, fmt.Errorf("close rows: %w", closeErr))
		}
	}()

	var movements []Movement
	for rows.Next() {
		var (
			movement Movement
			family   string
		)
		if err = rows.Scan(
			&movement.ID,
			&movement.Name,
			&movement.Difficulty,
			&family,
			&movement.SetupPosition,
			&movement.DescriptionMarkdown,
		); err != nil {
			return nil, fmt.Errorf("scan movement: %w", err)
		}
		movement.Family = NormalizeFamily(family)
		movements = append(movements, movement)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	for i, movement := range movements {
		movements[i].MuscleGroups, err = r.fetchMuscleGroups(ctx, movement.ID)
		if err != nil {
			return nil, fmt.Errorf("fetch muscle groups for movement %d: %w", movement.ID, err)
		}
	}

	return movements, nil
}

// Get retrieves a single movement by ID.
func (r *sqliteMovementRepository) Get(ctx context.Context, id int) (Movement, error) {
	var (
		movement Movement
		family   string
	)
	err := r.db.ReadOnly.QueryRowContext(ctx, `
		SELECT id, name, difficulty, family, setup_position, description_markdown
		FROM movements
		WHERE id = ?`, id).Scan(
		&movement.ID,
		&movement.Name,
		&movement.Difficulty,
		&family,
		&movement.SetupPosition,
		&movement.DescriptionMarkdown,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return Movement{}, ErrNotFound
	}
	if err != nil {
		return Movement{}, fmt.Errorf("query movement: %w", err)
	}
	movement.Family = NormalizeFamily(family)

	movement.MuscleGroups, err = r.fetchMuscleGroups(ctx, movement.ID)
	if err != nil {
		return Movement{}, fmt.Errorf("fetch muscle groups for movement %d: %w", movement.ID, err)
	}

	return movement, nil
}

// Put upserts a movement by name and replaces its muscle group links in one
// transaction. Catalog imports rerun safely.
func (r *sqliteMovementRepository) Put(ctx context.Context, movement Movement) (err error) {
	tx, err := r.db.ReadWrite.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if rollbackErr := tx.Rollback(); rollbackErr != nil && !errors.Is(rollbackErr, sql.ErrTxDone) {
			err = errors.Join(err, fmt.Errorf("rollback transaction: %w", rollbackErr))
		}
	}()

	var movementID int
	err = tx.QueryRowContext(ctx, `
		INSERT INTO movements (name, difficulty, family, setup_position, description_markdown)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (name) DO UPDATE SET
			difficulty = excluded.difficulty,
			family = excluded.family,
			setup_position = excluded.setup_position,
			description_markdown = excluded.description_markdown
		RETURNING id`,
		movement.Name,
		movement.Difficulty,
		NormalizeFamily(string(movement.Family)),
		movement.SetupPosition,
		movement.DescriptionMarkdown,
	).Scan(&movementID)
	if err != nil {
		return fmt.Errorf("upsert movement %s: %w", movement.Name, err)
	}

	if _, err = tx.ExecContext(ctx, `
		DELETE FROM movement_muscle_groups WHERE movement_id = ?`, movementID); err != nil {
		return fmt.Errorf("clear muscle groups for movement %d: %w", movementID, err)
	}
	for _, group := range movement.MuscleGroups {
		if _, err = tx.ExecContext(ctx, `
			INSERT OR IGNORE INTO muscle_groups (name) VALUES (?)`, group); err != nil {
			return fmt.Errorf("insert muscle group %s: %w", group, err)
		}
		if _, err = tx.ExecContext(ctx, `
			INSERT INTO movement_muscle_groups (movement_id, muscle_group_name)
			VALUES (?, ?)`, movementID, group); err != nil {
			return fmt.Errorf("link muscle group %s to movement %d: %w", group, movementID, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func (r *sqliteMovementRepository) fetchMuscleGroups(ctx context.Context, movementID int) (_ []string, err error) {
	rows, err := r.db.ReadOnly.QueryContext(ctx, `
		SELECT muscle_group_name
		FROM movement_muscle_groups
		WHERE movement_id = ?
		ORDER BY muscle_group_name`, movementID)
	if err != nil {
		return nil, fmt.Errorf("query muscle groups: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			err = errors.Join(err, fmt.Errorf("close rows: %w", closeErr))
		}
	}()

	var groups []string
	for rows.Next() {
		var group string
		if err = rows.Scan(&group); err != nil {
			return nil, fmt.Errorf("scan muscle group: %w", err)
		}
		groups = append(groups, group)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return groups, nil
}
