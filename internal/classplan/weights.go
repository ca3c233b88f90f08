package classplan

import (
	"time"
)

// Selection weighting constants.
const (
	// neverUsedWeight is the sentinel weight for movements the user has not
	// seen. It is kept far above maxComputedWeight so that novelty always
	// outranks staleness.
	neverUsedWeight   = 1000.0
	maxComputedWeight = neverUsedWeight / 2
	minComputedWeight = 0.1

	// onboardingMovementName gets a selection boost for users early in their
	// history. The Hundred is the traditional opener of the mat repertoire
	// and doubles as the breathing primer for new students.
	onboardingMovementName   = "The Hundred"
	onboardingBoost          = 2.0
	onboardingClassThreshold = 3

	// focusAreaBoost favors movements targeting a requested focus area.
	focusAreaBoost = 2.0
)

// computeWeights converts usage aggregates into per-movement selection
// weights. Movements never used by the user receive the sentinel weight;
// used movements are weighted by staleness over frequency. The result is a
// pure function of its inputs.
func computeWeights(
	pool []Movement,
	usage map[int]UsageAggregate,
	totalClasses int,
	focusAreas []string,
	now time.Time,
) map[int]float64 {
	focus := make(map[string]struct{}, len(focusAreas))
	for _, area := range focusAreas {
		focus[area] = struct{}{}
	}

	weights := make(map[int]float64, len(pool))
	for _, movement := range pool {
		aggregate, used := usage[movement.ID]

		var weight float64
		if !used || aggregate.Frequency == 0 {
			weight = neverUsedWeight
		} else {
			daysSince := int(now.Sub(aggregate.LastUsedAt).Hours() / 24)
			if daysSince < 0 {
				daysSince = 0
			}
			recencyBoost := float64(1 + daysSince)
			frequencyPenalty := float64(aggregate.Frequency)
			weight = recencyBoost / frequencyPenalty
			weight = min(max(weight, minComputedWeight), maxComputedWeight)
		}

		if totalClasses < onboardingClassThreshold && movement.Name == onboardingMovementName {
			weight *= onboardingBoost
		}
		if targetsAnyFocusArea(movement, focus) {
			weight *= focusAreaBoost
		}

		// Boosts never let a used movement overtake a never-used one.
		if used && aggregate.Frequency > 0 {
			weight = min(weight, maxComputedWeight)
		}

		weights[movement.ID] = weight
	}
	return weights
}

// uniformWeights is the degraded-mode fallback when the usage history store
// is unavailable: every movement is equally likely.
func uniformWeights(pool []Movement) map[int]float64 {
	weights := make(map[int]float64, len(pool))
	for _, movement := range pool {
		weights[movement.ID] = 1
	}
	return weights
}

func targetsAnyFocusArea(movement Movement, focus map[string]struct{}) bool {
	if len(focus) == 0 {
		return false
	}
	for _, group := range movement.MuscleGroups {
		if _, ok := focus[group]; ok {
			return true
		}
	}
	return false
}
