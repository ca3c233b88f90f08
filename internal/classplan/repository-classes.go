package classplan

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/sofiamaki/pilatesapp/internal/sqlite"
)

// sqliteClassRepository implements classRepository.
type sqliteClassRepository struct {
	db     *sqlite.Database
	logger *slog.Logger
}

func newClassRepository(db *sqlite.Database, logger *slog.Logger) *sqliteClassRepository {
	return &sqliteClassRepository{db: db, logger: logger}
}

// Create persists a freshly generated plan as a draft. Usage records are
// written only on acceptance, so abandoned drafts never skew the variety
// weighting.
func (r *sqliteClassRepository) Create(ctx context.Context, plan Plan) (err error) {
	tx, err := r.db.ReadWrite.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if rollbackErr := tx.Rollback(); rollbackErr != nil && !errors.Is(rollbackErr, sql.ErrTxDone) {
			err = errors.Join(err, fmt.Errorf("rollback transaction: %w", rollbackErr))
		}
	}()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO classes (
			id, user_id, difficulty, target_duration_minutes,
			total_duration_minutes, relaxed, truncated, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		plan.ID,
		plan.UserID,
		plan.Difficulty,
		plan.TargetDurationMinutes,
		plan.TotalDurationMinutes,
		plan.Relaxed,
		plan.Truncated,
		plan.CreatedAt.UTC().Format(timestampFormat),
	)
	if err != nil {
		return fmt.Errorf("insert class %s: %w", plan.ID, err)
	}

	for i, item := range plan.Items {
		switch item.Type {
		case ItemTypeMovement:
			_, err = tx.ExecContext(ctx, `
				INSERT INTO class_items (class_id, item_index, item_type, movement_id, duration_seconds)
				VALUES (?, ?, ?, ?, ?)`,
				plan.ID, i, item.Type, item.MovementID, item.DurationSeconds)
		case ItemTypeTransition:
			_, err = tx.ExecContext(ctx, `
				INSERT INTO class_items (
					class_id, item_index, item_type,
					from_position, to_position, narrative, duration_seconds
				) VALUES (?, ?, ?, ?, ?, ?, ?)`,
				plan.ID, i, item.Type, item.FromPosition, item.ToPosition, item.Narrative, item.DurationSeconds)
		default:
			err = fmt.Errorf("unknown item type %q", item.Type)
		}
		if err != nil {
			return fmt.Errorf("insert class item %d: %w", i, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// Get loads a persisted class with its items. Movement attributes are read
// back from the catalog so the snapshot stays a thin sequence of references.
func (r *sqliteClassRepository) Get(ctx context.Context, classID string) (Plan, error) {
	var (
		plan        Plan
		createdAt   string
		acceptedAt  sql.NullString
	)
	err := r.db.ReadOnly.QueryRowContext(ctx, `
		SELECT id, user_id, difficulty, target_duration_minutes,
		       total_duration_minutes, relaxed, truncated, created_at, accepted_at
		FROM classes
		WHERE id = ?`, classID).Scan(
		&plan.ID,
		&plan.UserID,
		&plan.Difficulty,
		&plan.TargetDurationMinutes,
		&plan.TotalDurationMinutes,
		&plan.Relaxed,
		&plan.Truncated,
		&createdAt,
		&acceptedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return Plan{}, ErrNotFound
	}
	if err != nil {
		return Plan{}, fmt.Errorf("query class: %w", err)
	}
	if plan.CreatedAt, err = time.Parse(timestampFormat, createdAt); err != nil {
		return Plan{}, fmt.Errorf("parse created_at: %w", err)
	}

	if plan.Items, err = r.fetchItems(ctx, classID); err != nil {
		return Plan{}, fmt.Errorf("fetch items for class %s: %w", classID, err)
	}
	for _, item := range plan.Items {
		switch item.Type {
		case ItemTypeMovement:
			plan.MovementCount++
		case ItemTypeTransition:
			plan.TransitionCount++
		}
	}
	return plan, nil
}

// Accept marks a draft class as taught and records one usage row per
// movement. The accepted_at guard makes the whole operation at most once:
// a second accept finds no draft row, writes nothing, and succeeds quietly.
func (r *sqliteClassRepository) Accept(ctx context.Context, classID string, userID string) (err error) {
	tx, err := r.db.ReadWrite.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if rollbackErr := tx.Rollback(); rollbackErr != nil && !errors.Is(rollbackErr, sql.ErrTxDone) {
			err = errors.Join(err, fmt.Errorf("rollback transaction: %w", rollbackErr))
		}
	}()

	acceptedAt := time.Now().UTC().Format(timestampFormat)
	result, err := tx.ExecContext(ctx, `
		UPDATE classes
		SET accepted_at = ?
		WHERE id = ? AND user_id = ? AND accepted_at IS NULL`,
		acceptedAt, classID, userID)
	if err != nil {
		return fmt.Errorf("accept class %s: %w", classID, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		var exists int
		err = tx.QueryRowContext(ctx, `
			SELECT COUNT(*) FROM classes WHERE id = ? AND user_id = ?`,
			classID, userID).Scan(&exists)
		if err != nil {
			return fmt.Errorf("check class %s: %w", classID, err)
		}
		if exists == 0 {
			return ErrNotFound
		}
		r.logger.LogAttrs(ctx, slog.LevelInfo, "class already accepted",
			slog.String("class_id", classID))
		return nil
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO usage_records (user_id, movement_id, class_id, used_at)
		SELECT ?, movement_id, class_id, ?
		FROM class_items
		WHERE class_id = ? AND item_type = 'movement'
		ORDER BY item_index`,
		userID, acceptedAt, classID)
	if err != nil {
		return fmt.Errorf("record usage for class %s: %w", classID, err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func (r *sqliteClassRepository) fetchItems(ctx context.Context, classID string) (_ []PlanItem, err error) {
	rows, err := r.db.ReadOnly.QueryContext(ctx, `
		SELECT ci.item_type, ci.duration_seconds,
		       ci.movement_id, m.name, m.difficulty, m.family, m.setup_position,
		       ci.from_position, ci.to_position, ci.narrative
		FROM class_items ci
		LEFT JOIN movements m ON m.id = ci.movement_id
		WHERE ci.class_id = ?
		ORDER BY ci.item_index`, classID)
	if err != nil {
		return nil, fmt.Errorf("query class items: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			err = errors.Join(err, fmt.Errorf("close rows: %w", closeErr))
		}
	}()

	var items []PlanItem
	for rows.Next() {
		var (
			item          PlanItem
			movementID    sql.NullInt64
			name          sql.NullString
			difficulty    sql.NullString
			family        sql.NullString
			setupPosition sql.NullString
			fromPosition  sql.NullString
			toPosition    sql.NullString
			narrative     sql.NullString
		)
		if err = rows.Scan(
			&item.Type, &item.DurationSeconds,
			&movementID, &name, &difficulty, &family, &setupPosition,
			&fromPosition, &toPosition, &narrative,
		); err != nil {
			return nil, fmt.Errorf("scan class item: %w", err)
		}

		switch item.Type {
		case ItemTypeMovement:
			item.MovementID = int(movementID.Int64)
			item.Name = name.String
			item.Difficulty = Difficulty(difficulty.String)
			item.Family = NormalizeFamily(family.String)
			item.SetupPosition = Position(setupPosition.String)
		case ItemTypeTransition:
			item.FromPosition = Position(fromPosition.String)
			item.ToPosition = Position(toPosition.String)
			item.Narrative = narrative.String
		}
		items = append(items, item)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	for i, item := range items {
		if item.Type != ItemTypeMovement {
			continue
		}
		items[i].MuscleGroups, err = r.fetchMovementMuscleGroups(ctx, item.MovementID)
		if err != nil {
			return nil, fmt.Errorf("fetch muscle groups for movement %d: %w", item.MovementID, err)
		}
	}
	return items, nil
}

func (r *sqliteClassRepository) fetchMovementMuscleGroups(ctx context.Context, movementID int) (_ []string, err error) {
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
