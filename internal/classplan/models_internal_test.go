package classplan

import "testing"

func TestMinutesPerMovement(t *testing.T) {
	tests := []struct {
		difficulty Difficulty
		want       int
	}{
		{DifficultyBeginner, 4},
		{DifficultyIntermediate, 5},
		{DifficultyAdvanced, 6},
		// An unparsed difficulty must never price a movement at zero.
		{Difficulty("expert"), 5},
		{Difficulty(""), 5},
	}
	for _, tt := range tests {
		if got := tt.difficulty.MinutesPerMovement(); got != tt.want {
			t.Errorf("MinutesPerMovement(%q) = %d, want %d", tt.difficulty, got, tt.want)
		}
	}
}

func TestDifficultyAllows(t *testing.T) {
	tests := []struct {
		class    Difficulty
		movement Difficulty
		want     bool
	}{
		{DifficultyBeginner, DifficultyBeginner, true},
		{DifficultyBeginner, DifficultyIntermediate, false},
		{DifficultyAdvanced, DifficultyBeginner, true},
		{DifficultyAdvanced, DifficultyAdvanced, true},
		{DifficultyIntermediate, Difficulty("expert"), false},
	}
	for _, tt := range tests {
		if got := tt.class.Allows(tt.movement); got != tt.want {
			t.Errorf("%s.Allows(%s) = %t, want %t", tt.class, tt.movement, got, tt.want)
		}
	}
}

func TestParseDifficulty(t *testing.T) {
	if _, err := ParseDifficulty("expert"); err == nil {
		t.Error("expected an error for an unknown difficulty")
	}
	got, err := ParseDifficulty("intermediate")
	if err != nil {
		t.Fatalf("ParseDifficulty(intermediate) error = %v", err)
	}
	if got != DifficultyIntermediate {
		t.Errorf("ParseDifficulty(intermediate) = %s", got)
	}
}
