// Package classplan generates Pilates class plans from a movement catalog
// and per-user usage history.
package classplan

import (
	"fmt"
	"time"
)

// Difficulty represents the taught level of a movement or a class.
type Difficulty string

// Difficulty tiers from easiest to hardest. Each tier includes the
// repertoire of the tiers below it.
const (
	DifficultyBeginner     Difficulty = "beginner"
	DifficultyIntermediate Difficulty = "intermediate"
	DifficultyAdvanced     Difficulty = "advanced"
)

// ParseDifficulty converts user input into a Difficulty.
func ParseDifficulty(s string) (Difficulty, error) {
	switch Difficulty(s) {
	case DifficultyBeginner, DifficultyIntermediate, DifficultyAdvanced:
		return Difficulty(s), nil
	default:
		return "", fmt.Errorf("unknown difficulty: %q", s)
	}
}

// rank orders the difficulty tiers for prefix filtering.
func (d Difficulty) rank() int {
	switch d {
	case DifficultyBeginner:
		return 0
	case DifficultyIntermediate:
		return 1
	case DifficultyAdvanced:
		return 2
	default:
		return -1
	}
}

// Allows reports whether a movement at level other may appear in a class
// taught at level d.
func (d Difficulty) Allows(other Difficulty) bool {
	return other.rank() >= 0 && other.rank() <= d.rank()
}

// MinutesPerMovement is the canonical teaching time for one movement at the
// given class difficulty. Harder movements are taught longer.
func (d Difficulty) MinutesPerMovement() int {
	switch d {
	case DifficultyBeginner:
		return 4
	case DifficultyIntermediate:
		return 5
	case DifficultyAdvanced:
		return 6
	default:
		// Unreachable for values produced by ParseDifficulty. An unparsed
		// value falls back to the intermediate pace so a class can never be
		// priced at zero minutes per movement.
		return 5
	}
}

// Family is a coarse categorical grouping of movements used for balance
// enforcement, e.g. spinal flexion or hip work.
type Family string

// FamilyOther is the default family for uncategorized movements.
const FamilyOther Family = "other"

// NormalizeFamily maps an unset family label onto FamilyOther. The default
// lives here, at the data-model boundary, so that the generation engine and
// any downstream reporting agree on the label.
func NormalizeFamily(s string) Family {
	if s == "" {
		return FamilyOther
	}
	return Family(s)
}

// Position is the body position required at the start of a movement.
type Position string

// Movement is an immutable catalog entry.
type Movement struct {
	ID                  int        `json:"id"`
	Name                string     `json:"name"`
	Difficulty          Difficulty `json:"difficulty"`
	MuscleGroups        []string   `json:"muscle_groups"`
	Family              Family     `json:"family"`
	SetupPosition       Position   `json:"setup_position"`
	DescriptionMarkdown string     `json:"description_markdown,omitempty"`
}

// Transition is a scripted bridge between two setup positions.
type Transition struct {
	FromPosition    Position `json:"from_position"`
	ToPosition      Position `json:"to_position"`
	Narrative       string   `json:"narrative"`
	DurationSeconds int      `json:"duration_seconds"`
}

// ItemType discriminates the two kinds of plan items.
type ItemType string

// Plan item types.
const (
	ItemTypeMovement   ItemType = "movement"
	ItemTypeTransition ItemType = "transition"
)

// PlanItem is one slot of a finished class plan. Movement items carry the
// full movement attributes plus the computed teaching time; transition items
// carry the bridge between the surrounding setup positions. Items strictly
// alternate movement, transition, movement, ..., movement.
type PlanItem struct {
	Type ItemType `json:"type"`

	// Movement fields, set when Type is ItemTypeMovement.
	MovementID    int        `json:"movement_id,omitempty"`
	Name          string     `json:"name,omitempty"`
	Difficulty    Difficulty `json:"difficulty,omitempty"`
	MuscleGroups  []string   `json:"muscle_groups,omitempty"`
	Family        Family     `json:"family,omitempty"`
	SetupPosition Position   `json:"setup_position,omitempty"`

	// Transition fields, set when Type is ItemTypeTransition. A missing
	// catalog entry yields an empty narrative and zero duration.
	FromPosition Position `json:"from_position,omitempty"`
	ToPosition   Position `json:"to_position,omitempty"`
	Narrative    string   `json:"narrative,omitempty"`

	DurationSeconds int `json:"duration_seconds"`
}

// Plan is a generated class: the interleaved sequence plus the computed
// balance metrics. It is immutable once returned.
type Plan struct {
	ID                    string             `json:"id"`
	UserID                string             `json:"user_id"`
	Difficulty            Difficulty         `json:"difficulty"`
	TargetDurationMinutes int                `json:"target_duration_minutes"`
	Items                 []PlanItem         `json:"items"`
	MovementCount         int                `json:"movement_count"`
	TransitionCount       int                `json:"transition_count"`
	MuscleBalance         map[string]float64 `json:"muscle_balance"`
	FamilyBalance         map[Family]float64 `json:"family_balance"`
	TotalDurationMinutes  float64            `json:"total_duration_minutes"`
	// Relaxed is set when constraint exhaustion forced the builder to accept
	// a candidate violating a soft rule.
	Relaxed bool `json:"relaxed"`
	// Truncated is set when the candidate pool emptied before the movement
	// budget was reached.
	Truncated bool      `json:"truncated"`
	CreatedAt time.Time `json:"created_at"`
}

// UsageAggregate summarizes a user's history with one movement.
type UsageAggregate struct {
	Frequency  int
	LastUsedAt time.Time
}
