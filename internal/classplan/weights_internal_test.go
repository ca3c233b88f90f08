package classplan

import (
	"testing"
	"time"
)

func testPool() []Movement {
	return []Movement{
		{ID: 1, Name: "The Hundred", Difficulty: DifficultyBeginner, MuscleGroups: []string{"abdominals"}, Family: "spinal_flexion", SetupPosition: "supine"},
		{ID: 2, Name: "Swan Dive", Difficulty: DifficultyIntermediate, MuscleGroups: []string{"back_extensors"}, Family: "spinal_extension", SetupPosition: "prone"},
		{ID: 3, Name: "Saw", Difficulty: DifficultyBeginner, MuscleGroups: []string{"obliques"}, Family: "spinal_rotation", SetupPosition: "seated"},
	}
}

func TestComputeWeightsNeverUsedOutranksUsed(t *testing.T) {
	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	pool := testPool()

	// Movement 2 was used once, years ago; staleness maxes out its weight.
	// Movement 3 was used yesterday, many times.
	usage := map[int]UsageAggregate{
		2: {Frequency: 1, LastUsedAt: now.AddDate(-5, 0, 0)},
		3: {Frequency: 40, LastUsedAt: now.AddDate(0, 0, -1)},
	}

	weights := computeWeights(pool, usage, 10, nil, now)

	for _, id := range []int{2, 3} {
		if weights[id] >= weights[1] {
			t.Errorf("used movement %d weight %f must be below never-used weight %f", id, weights[id], weights[1])
		}
	}
	if weights[2] > maxComputedWeight {
		t.Errorf("stale movement weight %f exceeds cap %f", weights[2], maxComputedWeight)
	}
	if weights[3] < minComputedWeight {
		t.Errorf("frequent movement weight %f below floor %f", weights[3], minComputedWeight)
	}
	if weights[2] <= weights[3] {
		t.Errorf("stale movement weight %f not above recently hammered movement weight %f", weights[2], weights[3])
	}
}

func TestComputeWeightsOnboardingBoost(t *testing.T) {
	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	pool := testPool()

	newUser := computeWeights(pool, nil, 0, nil, now)
	established := computeWeights(pool, nil, onboardingClassThreshold, nil, now)

	if newUser[1] != neverUsedWeight*onboardingBoost {
		t.Errorf("got onboarding weight %f, want %f", newUser[1], neverUsedWeight*onboardingBoost)
	}
	if established[1] != neverUsedWeight {
		t.Errorf("established user got boosted weight %f, want %f", established[1], neverUsedWeight)
	}
}

func TestComputeWeightsOnboardingBoostNeverOutranksNovelty(t *testing.T) {
	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	pool := testPool()

	// New user who has already seen The Hundred. The boost must not push it
	// back above unseen movements.
	usage := map[int]UsageAggregate{
		1: {Frequency: 1, LastUsedAt: now.AddDate(0, 0, -400)},
	}
	weights := computeWeights(pool, usage, 1, nil, now)

	if weights[1] >= weights[2] {
		t.Errorf("boosted used weight %f must stay below never-used weight %f", weights[1], weights[2])
	}
	if weights[1] > maxComputedWeight {
		t.Errorf("boosted used weight %f exceeds cap %f", weights[1], maxComputedWeight)
	}
}

func TestComputeWeightsFocusAreaBoost(t *testing.T) {
	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	pool := testPool()

	weights := computeWeights(pool, nil, 10, []string{"obliques"}, now)

	if weights[3] != neverUsedWeight*focusAreaBoost {
		t.Errorf("focus movement weight = %f, want %f", weights[3], neverUsedWeight*focusAreaBoost)
	}
	if weights[2] != neverUsedWeight {
		t.Errorf("unfocused movement weight = %f, want %f", weights[2], neverUsedWeight)
	}
}

func TestUniformWeights(t *testing.T) {
	weights := uniformWeights(testPool())
	if len(weights) != 3 {
		t.Fatalf("got %d weights, want 3", len(weights))
	}
	for id, weight := range weights {
		if weight != 1 {
			t.Errorf("movement %d weight = %f, want 1", id, weight)
		}
	}
}
