package classplan

import (
	"math/rand/v2"
	"testing"
)

func testRNG() *rand.Rand {
	return rand.New(rand.NewPCG(7, 11))
}

// balancedPool returns twelve beginner movements spread over six families
// with pairwise disjoint muscle groups, so a nine-movement class can always
// be built without relaxing either rule.
func balancedPool() []Movement {
	families := []Family{
		"spinal_flexion", "spinal_extension", "spinal_rotation",
		"lateral_flexion", "hip_work", "core_stability",
	}
	positions := []Position{"supine", "prone", "seated", "sidelying", "kneeling", "plank"}

	pool := make([]Movement, 0, 12)
	for i := 0; i < 12; i++ {
		pool = append(pool, Movement{
			ID:            i + 1,
			Name:          "movement",
			Difficulty:    DifficultyBeginner,
			MuscleGroups:  []string{string(rune('a' + i))},
			Family:        families[i%len(families)],
			SetupPosition: positions[i%len(positions)],
		})
	}
	return pool
}

func testTransitions() map[positionPair]Transition {
	return map[positionPair]Transition{
		{From: "supine", To: "prone"}: {
			FromPosition: "supine", ToPosition: "prone",
			Narrative: "Roll onto your stomach.", DurationSeconds: 30,
		},
	}
}

func TestMaxMovements(t *testing.T) {
	tests := []struct {
		targetMinutes int
		difficulty    Difficulty
		want          int
	}{
		{45, DifficultyBeginner, 9},
		{60, DifficultyAdvanced, 8},
		{30, DifficultyIntermediate, 5},
		{4, DifficultyBeginner, 1},
		{3, DifficultyBeginner, 0},
	}
	for _, tt := range tests {
		if got := maxMovements(tt.targetMinutes, tt.difficulty); got != tt.want {
			t.Errorf("maxMovements(%d, %s) = %d, want %d", tt.targetMinutes, tt.difficulty, got, tt.want)
		}
	}
}

func TestBuildSequenceAlternationAndBudget(t *testing.T) {
	result := buildSequence(testRNG(), balancedPool(), uniformWeights(balancedPool()), testTransitions(), DifficultyBeginner, 45)

	if result.MovementCount != 9 {
		t.Fatalf("movement count = %d, want 9", result.MovementCount)
	}
	if result.TransitionCount != 8 {
		t.Fatalf("transition count = %d, want 8", result.TransitionCount)
	}
	if len(result.Items) != 17 {
		t.Fatalf("item count = %d, want 17", len(result.Items))
	}
	if result.Relaxed {
		t.Error("balanced pool must not require relaxation")
	}
	if result.Truncated {
		t.Error("pool of twelve must fill a nine-movement budget")
	}

	seen := make(map[int]bool)
	for i, item := range result.Items {
		wantType := ItemTypeMovement
		if i%2 == 1 {
			wantType = ItemTypeTransition
		}
		if item.Type != wantType {
			t.Fatalf("item %d type = %s, want %s", i, item.Type, wantType)
		}
		if item.Type != ItemTypeMovement {
			continue
		}
		if seen[item.MovementID] {
			t.Errorf("movement %d appears twice", item.MovementID)
		}
		seen[item.MovementID] = true
		if item.DurationSeconds != DifficultyBeginner.MinutesPerMovement()*60 {
			t.Errorf("movement duration = %d, want %d", item.DurationSeconds, DifficultyBeginner.MinutesPerMovement()*60)
		}
	}
}

func TestBuildSequenceHonorsRulesWhenNotRelaxed(t *testing.T) {
	result := buildSequence(testRNG(), balancedPool(), uniformWeights(balancedPool()), nil, DifficultyBeginner, 45)
	if result.Relaxed {
		t.Fatal("balanced pool must not require relaxation")
	}

	var placed []Movement
	for _, item := range result.Items {
		if item.Type != ItemTypeMovement {
			continue
		}
		candidate := Movement{
			ID:           item.MovementID,
			MuscleGroups: item.MuscleGroups,
			Family:       item.Family,
		}
		if report := checkCandidate(placed, candidate); !report.OK() {
			t.Errorf("movement %d violates rules: overlap %f, family %s at %f",
				item.MovementID, report.OverlapPct, report.WorstFamily, report.WorstFamilyShare)
		}
		placed = append(placed, candidate)
	}
}

func TestBuildSequenceTruncatesOnSmallPool(t *testing.T) {
	pool := balancedPool()[:3]
	result := buildSequence(testRNG(), pool, uniformWeights(pool), nil, DifficultyBeginner, 45)

	if result.MovementCount != 3 {
		t.Fatalf("movement count = %d, want 3", result.MovementCount)
	}
	if !result.Truncated {
		t.Error("exhausted pool must be flagged as truncated")
	}
	if result.TransitionCount != 2 {
		t.Errorf("transition count = %d, want 2", result.TransitionCount)
	}
}

func TestBuildSequenceRelaxesInsteadOfStalling(t *testing.T) {
	// Every movement shares the same muscle groups and family, so after the
	// first placement no candidate can pass Rule 1.
	pool := make([]Movement, 5)
	for i := range pool {
		pool[i] = Movement{
			ID:            i + 1,
			Name:          "movement",
			Difficulty:    DifficultyBeginner,
			MuscleGroups:  []string{"abdominals", "hip_flexors"},
			Family:        "spinal_flexion",
			SetupPosition: "supine",
		}
	}

	result := buildSequence(testRNG(), pool, uniformWeights(pool), nil, DifficultyBeginner, 30)

	if !result.Relaxed {
		t.Error("all-overlapping pool must be flagged as relaxed")
	}
	if result.MovementCount != 5 {
		t.Errorf("movement count = %d, want 5", result.MovementCount)
	}
}

func TestBuildSequenceZeroDurationTransition(t *testing.T) {
	pool := []Movement{
		{ID: 1, Difficulty: DifficultyBeginner, MuscleGroups: []string{"abdominals"}, Family: "spinal_flexion", SetupPosition: "supine"},
		{ID: 2, Difficulty: DifficultyBeginner, MuscleGroups: []string{"glutes"}, Family: "hip_work", SetupPosition: "supine"},
	}
	result := buildSequence(testRNG(), pool, uniformWeights(pool), testTransitions(), DifficultyBeginner, 9)

	if result.MovementCount != 2 {
		t.Fatalf("movement count = %d, want 2", result.MovementCount)
	}
	transition := result.Items[1]
	if transition.Type != ItemTypeTransition {
		t.Fatalf("item 1 type = %s, want transition", transition.Type)
	}
	if transition.DurationSeconds != 0 || transition.Narrative != "" {
		t.Errorf("missing catalog pair must yield a zero-duration transition, got %d seconds %q",
			transition.DurationSeconds, transition.Narrative)
	}
	if transition.FromPosition != "supine" || transition.ToPosition != "supine" {
		t.Errorf("transition positions = %s to %s, want supine to supine", transition.FromPosition, transition.ToPosition)
	}
}

func TestBuildSequenceFiltersDifficulty(t *testing.T) {
	pool := balancedPool()
	for i := 6; i < len(pool); i++ {
		pool[i].Difficulty = DifficultyAdvanced
	}

	result := buildSequence(testRNG(), pool, uniformWeights(pool), nil, DifficultyBeginner, 60)

	if result.MovementCount != 6 {
		t.Fatalf("movement count = %d, want 6 beginner movements", result.MovementCount)
	}
	for _, item := range result.Items {
		if item.Type == ItemTypeMovement && item.MovementID > 6 {
			t.Errorf("advanced movement %d placed in a beginner class", item.MovementID)
		}
	}
	if !result.Truncated {
		t.Error("beginner pool smaller than budget must be flagged as truncated")
	}
}
