package classplan

import "testing"

func movementWithGroups(id int, family Family, groups ...string) Movement {
	return Movement{
		ID:           id,
		Name:         "movement",
		Difficulty:   DifficultyBeginner,
		MuscleGroups: groups,
		Family:       family,
	}
}

func TestMuscleOverlapExactlyHalfFails(t *testing.T) {
	prev := movementWithGroups(1, "spinal_flexion", "abdominals", "hip_flexors")
	candidate := movementWithGroups(2, "hip_work", "hip_flexors", "glutes")

	report := checkCandidate([]Movement{prev}, candidate)

	if report.OverlapPct != 50 {
		t.Fatalf("overlap = %f, want 50", report.OverlapPct)
	}
	if report.MuscleOverlapOK {
		t.Error("candidate at exactly 50%% overlap must be rejected")
	}
}

func TestMuscleOverlapBelowHalfPasses(t *testing.T) {
	prev := movementWithGroups(1, "spinal_flexion", "abdominals")
	candidate := movementWithGroups(2, "hip_work", "abdominals", "glutes", "hamstrings")

	report := checkCandidate([]Movement{prev}, candidate)

	if want := 100.0 / 3.0; report.OverlapPct != want {
		t.Fatalf("overlap = %f, want %f", report.OverlapPct, want)
	}
	if !report.MuscleOverlapOK {
		t.Error("candidate below 50%% overlap must pass")
	}
}

func TestMuscleOverlapEmptyGroupsPasses(t *testing.T) {
	prev := movementWithGroups(1, "spinal_flexion", "abdominals")
	candidate := movementWithGroups(2, "other")

	report := checkCandidate([]Movement{prev}, candidate)

	if !report.MuscleOverlapOK || report.OverlapPct != 0 {
		t.Errorf("candidate without muscle groups must pass, got overlap %f", report.OverlapPct)
	}
}

func TestMuscleOverlapNoPreviousMovementPasses(t *testing.T) {
	candidate := movementWithGroups(1, "spinal_flexion", "abdominals")

	report := checkCandidate(nil, candidate)

	if !report.MuscleOverlapOK {
		t.Error("first movement has no previous movement to overlap")
	}
}

func TestFamilyBalanceProspective(t *testing.T) {
	placed := []Movement{
		movementWithGroups(1, "spinal_flexion", "abdominals"),
		movementWithGroups(2, "hip_work", "glutes"),
		movementWithGroups(3, "spinal_extension", "back_extensors"),
		movementWithGroups(4, "spinal_rotation", "obliques"),
	}
	// A second spinal_flexion movement would put the family at 2/5 = 40%.
	candidate := movementWithGroups(5, "spinal_flexion", "hip_flexors")

	report := checkCandidate(placed, candidate)

	if report.FamilyBalanceOK {
		t.Error("candidate reaching exactly 40%% family share must be rejected")
	}
	if report.WorstFamily != "spinal_flexion" || report.WorstFamilyShare != 40 {
		t.Errorf("worst family = %s at %f, want spinal_flexion at 40", report.WorstFamily, report.WorstFamilyShare)
	}

	// A fresh family keeps every share at 20% and passes.
	fresh := movementWithGroups(6, "lateral_flexion", "obliques_lateral")
	if report = checkCandidate(placed, fresh); !report.FamilyBalanceOK {
		t.Errorf("fresh family rejected at share %f", report.WorstFamilyShare)
	}
}

func TestFamilyBalanceSkippedForShortPrefix(t *testing.T) {
	first := movementWithGroups(1, "spinal_flexion", "abdominals")
	second := movementWithGroups(2, "hip_work", "glutes")

	if report := checkCandidate(nil, first); !report.FamilyBalanceOK {
		t.Error("single-movement prefix must not fail the family check")
	}
	if report := checkCandidate([]Movement{first}, second); !report.FamilyBalanceOK {
		t.Error("two-movement prefix must not fail the family check")
	}
}

func TestFamilyBalanceDefaultsUnsetToOther(t *testing.T) {
	placed := []Movement{
		movementWithGroups(1, "", "abdominals"),
		movementWithGroups(2, "hip_work", "glutes"),
		movementWithGroups(3, "spinal_extension", "back_extensors"),
		movementWithGroups(4, "spinal_rotation", "obliques"),
	}
	candidate := movementWithGroups(5, FamilyOther, "hip_flexors")

	report := checkCandidate(placed, candidate)

	if report.WorstFamily != FamilyOther || report.WorstFamilyShare != 40 {
		t.Errorf("unset family must pool with %q, got %s at %f", FamilyOther, report.WorstFamily, report.WorstFamilyShare)
	}
}

func TestViolationScore(t *testing.T) {
	passing := constraintReport{MuscleOverlapOK: true, FamilyBalanceOK: true}
	if got := passing.violation(); got != 0 {
		t.Errorf("passing report violation = %f, want 0", got)
	}

	failing := constraintReport{
		MuscleOverlapOK:  false,
		OverlapPct:       75,
		FamilyBalanceOK:  false,
		WorstFamilyShare: 50,
	}
	if got, want := failing.violation(), 35.0; got != want {
		t.Errorf("violation = %f, want %f", got, want)
	}
}
