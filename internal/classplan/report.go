package classplan

// muscleBalance computes the duration-weighted share of class time spent on
// each muscle group. A movement contributes its full teaching time to every
// group it targets, so the percentages can sum past 100 for compound work.
// Transitions carry no muscle load and are excluded entirely.
func muscleBalance(items []PlanItem) map[string]float64 {
	totalSeconds := 0
	groupSeconds := make(map[string]int)
	for _, item := range items {
		if item.Type != ItemTypeMovement {
			continue
		}
		totalSeconds += item.DurationSeconds
		for _, group := range item.MuscleGroups {
			groupSeconds[group] += item.DurationSeconds
		}
	}

	balance := make(map[string]float64, len(groupSeconds))
	if totalSeconds == 0 {
		return balance
	}
	for group, seconds := range groupSeconds {
		balance[group] = 100 * float64(seconds) / float64(totalSeconds)
	}
	return balance
}

// familyBalance computes the count-weighted share of movements per family.
// Unlike muscleBalance this is deliberately not duration-weighted; every
// movement counts once regardless of how long it is taught.
func familyBalance(items []PlanItem) map[Family]float64 {
	total := 0
	counts := make(map[Family]int)
	for _, item := range items {
		if item.Type != ItemTypeMovement {
			continue
		}
		total++
		counts[NormalizeFamily(string(item.Family))]++
	}

	balance := make(map[Family]float64, len(counts))
	if total == 0 {
		return balance
	}
	for family, count := range counts {
		balance[family] = 100 * float64(count) / float64(total)
	}
	return balance
}

// totalDurationMinutes sums every item's duration, transitions included.
func totalDurationMinutes(items []PlanItem) float64 {
	seconds := 0
	for _, item := range items {
		seconds += item.DurationSeconds
	}
	return float64(seconds) / 60
}
