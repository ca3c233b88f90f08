package classplan

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"
	"github.com/sofiamaki/pilatesapp/internal/errors"
	"github.com/sofiamaki/pilatesapp/internal/sqlite"
)

// ErrTargetTooShort is returned when the requested duration cannot fit even
// a single movement at the requested difficulty.
var ErrTargetTooShort = errors.NewSentinel("target duration too short for any movement")

// Service handles the business logic for class plan generation.
type Service struct {
	repo   *repository
	logger *slog.Logger
	now    func() time.Time
}

// NewService creates a new class plan service.
func NewService(db *sqlite.Database, logger *slog.Logger) *Service {
	factory := newRepositoryFactory(db, logger)
	return &Service{
		repo:   factory.newRepository(),
		logger: logger,
		now:    time.Now,
	}
}

// GenerateClass builds a class plan for the user and persists it as a draft.
// The movement and transition catalogs are required; a missing usage history
// degrades to uniform weighting rather than failing the request.
func (s *Service) GenerateClass(
	ctx context.Context,
	userID string,
	targetMinutes int,
	difficulty Difficulty,
	focusAreas []string,
) (Plan, error) {
	if maxMovements(targetMinutes, difficulty) < 1 {
		return Plan{}, errors.Wrap(ErrTargetTooShort, "validate request",
			slog.Int("target_minutes", targetMinutes),
			slog.String("difficulty", string(difficulty)))
	}

	pool, err := s.repo.movements.List(ctx, difficulty)
	if err != nil {
		return Plan{}, errors.Wrap(err, "list movement catalog")
	}
	if len(pool) == 0 {
		return Plan{}, errors.New("movement catalog is empty",
			slog.String("difficulty", string(difficulty)))
	}

	transitionCatalog, err := s.repo.transitions.ListAll(ctx)
	if err != nil {
		return Plan{}, errors.Wrap(err, "list transition catalog")
	}
	transitions := make(map[positionPair]Transition, len(transitionCatalog))
	for _, transition := range transitionCatalog {
		transitions[positionPair{From: transition.FromPosition, To: transition.ToPosition}] = transition
	}

	now := s.now()
	weights := s.selectionWeights(ctx, userID, pool, focusAreas, now)

	rng := rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	result := buildSequence(rng, pool, weights, transitions, difficulty, targetMinutes)

	plan := Plan{
		ID:                    uuid.New().String(),
		UserID:                userID,
		Difficulty:            difficulty,
		TargetDurationMinutes: targetMinutes,
		Items:                 result.Items,
		MovementCount:         result.MovementCount,
		TransitionCount:       result.TransitionCount,
		MuscleBalance:         muscleBalance(result.Items),
		FamilyBalance:         familyBalance(result.Items),
		TotalDurationMinutes:  totalDurationMinutes(result.Items),
		Relaxed:               result.Relaxed,
		Truncated:             result.Truncated,
		CreatedAt:             now,
	}

	if plan.Relaxed {
		s.logger.LogAttrs(ctx, slog.LevelWarn, "class generated with relaxed constraints",
			slog.String("class_id", plan.ID),
			slog.String("user_id", userID))
	}
	if plan.Truncated {
		s.logger.LogAttrs(ctx, slog.LevelWarn, "class truncated by pool exhaustion",
			slog.String("class_id", plan.ID),
			slog.Int("movement_count", plan.MovementCount))
	}

	if err = s.repo.classes.Create(ctx, plan); err != nil {
		return Plan{}, errors.Wrap(err, "persist class draft", slog.String("class_id", plan.ID))
	}
	return plan, nil
}

// selectionWeights computes variety weights from the user's history, falling
// back to uniform weights when the history store is unavailable.
func (s *Service) selectionWeights(
	ctx context.Context,
	userID string,
	pool []Movement,
	focusAreas []string,
	now time.Time,
) map[int]float64 {
	movementIDs := make([]int, len(pool))
	for i, movement := range pool {
		movementIDs[i] = movement.ID
	}

	usage, err := s.repo.usage.Aggregates(ctx, userID, movementIDs)
	if err != nil {
		s.logger.LogAttrs(ctx, slog.LevelWarn, "usage history unavailable, using uniform weights",
			errors.SlogError(err),
			slog.String("user_id", userID))
		return uniformWeights(pool)
	}
	totalClasses, err := s.repo.usage.ClassCount(ctx, userID)
	if err != nil {
		s.logger.LogAttrs(ctx, slog.LevelWarn, "class count unavailable, using uniform weights",
			errors.SlogError(err),
			slog.String("user_id", userID))
		return uniformWeights(pool)
	}

	return computeWeights(pool, usage, totalClasses, focusAreas, now)
}

// AcceptClass marks a draft class as taught and records its movements in the
// user's usage history. Accepting an already accepted class is a no-op.
func (s *Service) AcceptClass(ctx context.Context, userID string, classID string) error {
	if err := s.repo.classes.Accept(ctx, classID, userID); err != nil {
		return errors.Wrap(err, "accept class", slog.String("class_id", classID))
	}
	return nil
}

// GetClass loads a persisted class. Balance metrics are recomputed from the
// stored sequence so they always match what generation reported.
func (s *Service) GetClass(ctx context.Context, classID string) (Plan, error) {
	plan, err := s.repo.classes.Get(ctx, classID)
	if err != nil {
		return Plan{}, errors.Wrap(err, "get class", slog.String("class_id", classID))
	}
	plan.MuscleBalance = muscleBalance(plan.Items)
	plan.FamilyBalance = familyBalance(plan.Items)
	plan.TotalDurationMinutes = totalDurationMinutes(plan.Items)
	return plan, nil
}

// ListMovements returns the catalog at or below the given difficulty.
func (s *Service) ListMovements(ctx context.Context, maxDifficulty Difficulty) ([]Movement, error) {
	movements, err := s.repo.movements.List(ctx, maxDifficulty)
	if err != nil {
		return nil, errors.Wrap(err, "list movements")
	}
	return movements, nil
}

// PutMovement upserts a catalog movement. Used by the catalog importer.
func (s *Service) PutMovement(ctx context.Context, movement Movement) error {
	if err := s.repo.movements.Put(ctx, movement); err != nil {
		return errors.Wrap(err, "put movement", slog.String("name", movement.Name))
	}
	return nil
}

// PutTransition upserts a catalog transition. Used by the catalog importer.
func (s *Service) PutTransition(ctx context.Context, transition Transition) error {
	if err := s.repo.transitions.Put(ctx, transition); err != nil {
		return errors.Wrap(err, "put transition")
	}
	return nil
}
