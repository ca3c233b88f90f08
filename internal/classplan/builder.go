package classplan

import (
	"math/rand/v2"
)

const (
	// transitionMinutes is the budgeted slot for one transition between
	// movements. Catalog narratives may run shorter or longer; the budget
	// formula always uses this constant.
	transitionMinutes = 1

	// maxDrawRetries bounds the weighted redraws per slot before the
	// builder relaxes to the least-violating candidate.
	maxDrawRetries = 8
)

// maxMovements derives the movement budget for a class. The class is modeled
// as n teaching slots plus n-1 transition slots, solved for n and floored:
//
//	target = n*minutesPerMovement + (n-1)*transitionMinutes
func maxMovements(targetMinutes int, difficulty Difficulty) int {
	perMovement := difficulty.MinutesPerMovement()
	return (targetMinutes + transitionMinutes) / (perMovement + transitionMinutes)
}

// positionPair keys the transition catalog.
type positionPair struct {
	From Position
	To   Position
}

// buildResult is the raw output of one build run before persistence and
// balance reporting are layered on.
type buildResult struct {
	Items           []PlanItem
	MovementCount   int
	TransitionCount int
	// Relaxed records that at least one slot was filled by a candidate
	// violating Rule 1 or Rule 2 after retries exhausted.
	Relaxed bool
	// Truncated records that the pool emptied before the movement budget
	// was reached.
	Truncated bool
}

// buildSequence assembles an alternating movement/transition sequence from
// the candidate pool. Selection is weighted random sampling without repeats;
// each accepted movement must pass the sequencing rules or be the least
// violating option once retries exhaust. The pool is filtered to the
// requested difficulty tier and below. Transitions come from the catalog
// keyed by setup position pair; a missing pair yields a zero-duration item
// so the sequence still alternates.
func buildSequence(
	rng *rand.Rand,
	pool []Movement,
	weights map[int]float64,
	transitions map[positionPair]Transition,
	difficulty Difficulty,
	targetMinutes int,
) buildResult {
	budget := maxMovements(targetMinutes, difficulty)

	eligible := make([]Movement, 0, len(pool))
	for _, movement := range pool {
		if difficulty.Allows(movement.Difficulty) {
			eligible = append(eligible, movement)
		}
	}

	var (
		placed  []Movement
		relaxed bool
	)
	for len(placed) < budget && len(eligible) > 0 {
		candidate, ok, slotRelaxed := drawMovement(rng, eligible, weights, placed)
		if !ok {
			break
		}
		relaxed = relaxed || slotRelaxed
		placed = append(placed, candidate)
		eligible = removeMovement(eligible, candidate.ID)
	}

	result := buildResult{
		Items:         assembleItems(placed, transitions, difficulty),
		MovementCount: len(placed),
		Relaxed:       relaxed,
		Truncated:     len(placed) < budget,
	}
	if len(placed) > 0 {
		result.TransitionCount = len(placed) - 1
	}
	return result
}

// drawMovement picks the next movement for the sequence. It redraws without
// replacement up to maxDrawRetries, keeping the least-violating candidate as
// a fallback so exhaustion degrades the class instead of stalling it.
func drawMovement(
	rng *rand.Rand,
	eligible []Movement,
	weights map[int]float64,
	placed []Movement,
) (candidate Movement, ok bool, relaxed bool) {
	drawPool := make([]Movement, len(eligible))
	copy(drawPool, eligible)

	var (
		best          Movement
		bestViolation = -1.0
	)
	for retry := 0; retry < maxDrawRetries && len(drawPool) > 0; retry++ {
		idx := weightedDraw(rng, drawPool, weights)
		drawn := drawPool[idx]

		report := checkCandidate(placed, drawn)
		if report.OK() {
			return drawn, true, false
		}

		if violation := report.violation(); bestViolation < 0 || violation < bestViolation {
			best = drawn
			bestViolation = violation
		}
		drawPool = append(drawPool[:idx], drawPool[idx+1:]...)
	}

	if bestViolation < 0 {
		return Movement{}, false, false
	}
	return best, true, true
}

// weightedDraw samples one index from the pool proportionally to its weight.
// Movements missing from the weight map count as weight 1 so a partial map
// never silences part of the pool.
func weightedDraw(rng *rand.Rand, pool []Movement, weights map[int]float64) int {
	total := 0.0
	for _, movement := range pool {
		total += weightFor(weights, movement.ID)
	}
	if total <= 0 {
		return rng.IntN(len(pool))
	}

	target := rng.Float64() * total
	cumulative := 0.0
	for i, movement := range pool {
		cumulative += weightFor(weights, movement.ID)
		if target < cumulative {
			return i
		}
	}
	return len(pool) - 1
}

func weightFor(weights map[int]float64, movementID int) float64 {
	if weight, ok := weights[movementID]; ok && weight > 0 {
		return weight
	}
	return 1
}

func removeMovement(pool []Movement, movementID int) []Movement {
	for i, movement := range pool {
		if movement.ID == movementID {
			return append(pool[:i], pool[i+1:]...)
		}
	}
	return pool
}

// assembleItems interleaves the placed movements with catalog transitions.
// Teaching time is a function of class difficulty only, never of the
// individual movement.
func assembleItems(placed []Movement, transitions map[positionPair]Transition, difficulty Difficulty) []PlanItem {
	if len(placed) == 0 {
		return nil
	}

	durationSeconds := difficulty.MinutesPerMovement() * 60
	items := make([]PlanItem, 0, 2*len(placed)-1)
	for i, movement := range placed {
		if i > 0 {
			items = append(items, transitionItem(transitions, placed[i-1].SetupPosition, movement.SetupPosition))
		}
		items = append(items, PlanItem{
			Type:            ItemTypeMovement,
			MovementID:      movement.ID,
			Name:            movement.Name,
			Difficulty:      movement.Difficulty,
			MuscleGroups:    movement.MuscleGroups,
			Family:          NormalizeFamily(string(movement.Family)),
			SetupPosition:   movement.SetupPosition,
			DurationSeconds: durationSeconds,
		})
	}
	return items
}

// transitionItem looks up the scripted bridge between two setup positions.
// Same-position pairs and gaps in the catalog are expected and produce a
// zero-duration item, preserving the alternation of the sequence.
func transitionItem(transitions map[positionPair]Transition, from, to Position) PlanItem {
	item := PlanItem{
		Type:         ItemTypeTransition,
		FromPosition: from,
		ToPosition:   to,
	}
	if transition, ok := transitions[positionPair{From: from, To: to}]; ok {
		item.Narrative = transition.Narrative
		item.DurationSeconds = transition.DurationSeconds
	}
	return item
}
