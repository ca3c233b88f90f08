package classplan

import (
	"context"
	"errors"
	"log/slog"

	"github.com/sofiamaki/pilatesapp/internal/sqlite"
)

// ErrNotFound is returned when a requested entity is not found.
var ErrNotFound = errors.New("not found")

// repository contains the repositories for the class-plan domain aggregates.
type repository struct {
	movements   movementRepository
	transitions transitionRepository
	classes     classRepository
	usage       usageRepository
}

// movementRepository handles the movement catalog.
type movementRepository interface {
	List(ctx context.Context, maxDifficulty Difficulty) ([]Movement, error)
	Get(ctx context.Context, id int) (Movement, error)
	Put(ctx context.Context, movement Movement) error
}

// transitionRepository handles the transition catalog.
type transitionRepository interface {
	ListAll(ctx context.Context) ([]Transition, error)
	Put(ctx context.Context, transition Transition) error
}

// classRepository persists generated class plans.
type classRepository interface {
	Create(ctx context.Context, plan Plan) error
	Get(ctx context.Context, classID string) (Plan, error)
	Accept(ctx context.Context, classID string, userID string) error
}

// usageRepository reads a user's movement history.
type usageRepository interface {
	Aggregates(ctx context.Context, userID string, movementIDs []int) (map[int]UsageAggregate, error)
	ClassCount(ctx context.Context, userID string) (int, error)
}

// repositoryFactory creates repository instances.
type repositoryFactory struct {
	db     *sqlite.Database
	logger *slog.Logger
}

// newRepositoryFactory creates a new repository factory.
func newRepositoryFactory(db *sqlite.Database, logger *slog.Logger) *repositoryFactory {
	return &repositoryFactory{
		db:     db,
		logger: logger,
	}
}

// newRepository creates a new repository aggregate.
func (f *repositoryFactory) newRepository() *repository {
	return &repository{
		movements:   newMovementRepository(f.db),
		transitions: newTransitionRepository(f.db),
		classes:     newClassRepository(f.db, f.logger),
		usage:       newUsageRepository(f.db),
	}
}
