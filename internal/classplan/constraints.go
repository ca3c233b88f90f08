package classplan

// Constraint thresholds. Both checks are inclusive of failure: a candidate
// sitting exactly on the limit is rejected.
const (
	muscleOverlapLimitPct = 50.0
	familyShareLimitPct   = 40.0

	// minFamilySample is the smallest prospective movement count at which a
	// single movement's family can sit below familyShareLimitPct. Shorter
	// prefixes fail the share check vacuously, so it is skipped until then.
	minFamilySample = 3
)

// constraintReport is the outcome of speculatively evaluating one candidate
// against the sequence built so far. It carries diagnostic detail so that
// relaxation decisions can be audited.
type constraintReport struct {
	MuscleOverlapOK  bool
	OverlapPct       float64
	FamilyBalanceOK  bool
	WorstFamily      Family
	WorstFamilyShare float64
}

// OK reports whether both rules pass.
func (r constraintReport) OK() bool {
	return r.MuscleOverlapOK && r.FamilyBalanceOK
}

// violation scores how badly the candidate breaks the rules; zero means both
// rules pass. The score is the total excess over the thresholds, so the
// least-violating candidate is the one closest to passing.
func (r constraintReport) violation() float64 {
	v := 0.0
	if !r.MuscleOverlapOK {
		v += r.OverlapPct - muscleOverlapLimitPct
	}
	if !r.FamilyBalanceOK {
		v += r.WorstFamilyShare - familyShareLimitPct
	}
	return v
}

// checkCandidate evaluates both sequencing rules for appending candidate to
// the movements placed so far. It is a pure function and never mutates its
// inputs, so it can be called speculatively.
func checkCandidate(placed []Movement, candidate Movement) constraintReport {
	report := constraintReport{
		MuscleOverlapOK:  true,
		OverlapPct:       0,
		FamilyBalanceOK:  true,
		WorstFamily:      "",
		WorstFamilyShare: 0,
	}

	if len(placed) > 0 {
		report.OverlapPct = muscleOverlapPct(placed[len(placed)-1], candidate)
		report.MuscleOverlapOK = report.OverlapPct < muscleOverlapLimitPct
	}

	report.WorstFamily, report.WorstFamilyShare = worstFamilyShare(placed, candidate)
	if len(placed)+1 >= minFamilySample {
		report.FamilyBalanceOK = report.WorstFamilyShare < familyShareLimitPct
	}

	return report
}

// muscleOverlapPct computes how much of the candidate's muscle groups are
// already loaded by the previous movement. A candidate with no muscle groups
// passes automatically since there is nothing to overload.
func muscleOverlapPct(prev, candidate Movement) float64 {
	if len(candidate.MuscleGroups) == 0 {
		return 0
	}

	prevGroups := make(map[string]struct{}, len(prev.MuscleGroups))
	for _, group := range prev.MuscleGroups {
		prevGroups[group] = struct{}{}
	}

	overlap := 0
	for _, group := range candidate.MuscleGroups {
		if _, ok := prevGroups[group]; ok {
			overlap++
		}
	}

	return 100 * float64(overlap) / float64(len(candidate.MuscleGroups))
}

// worstFamilyShare computes the highest family percentage the sequence would
// have after appending the candidate. The check is prospective so that the
// final slot cannot push a family over the threshold undetected.
func worstFamilyShare(placed []Movement, candidate Movement) (Family, float64) {
	counts := make(map[Family]int, len(placed)+1)
	for _, movement := range placed {
		counts[NormalizeFamily(string(movement.Family))]++
	}
	counts[NormalizeFamily(string(candidate.Family))]++

	total := len(placed) + 1
	var (
		worst      Family
		worstShare float64
	)
	for family, count := range counts {
		share := 100 * float64(count) / float64(total)
		if share > worstShare {
			worst = family
			worstShare = share
		}
	}
	return worst, worstShare
}
