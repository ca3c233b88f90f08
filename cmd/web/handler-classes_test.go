package main

import (
	"database/sql"
	"net/http"
	"testing"

	"github.com/sofiamaki/pilatesapp/internal/e2etest"
	"github.com/sofiamaki/pilatesapp/internal/testhelpers"
)

func testLookupEnv(key string) (string, bool) {
	switch key {
	case "PILATES_SQLITE_URL":
		return ":memory:", true
	case "PILATES_ADDR":
		return "localhost:0", true
	default:
		return "", false
	}
}

type planResponse struct {
	ID              string             `json:"id"`
	Difficulty      string             `json:"difficulty"`
	MovementCount   int                `json:"movement_count"`
	TransitionCount int                `json:"transition_count"`
	Items           []planItemResponse `json:"items"`
	MuscleBalance   map[string]float64 `json:"muscle_balance"`
	FamilyBalance   map[string]float64 `json:"family_balance"`
	Relaxed         bool               `json:"relaxed"`
	Truncated       bool               `json:"truncated"`
}

type planItemResponse struct {
	Type            string `json:"type"`
	MovementID      int    `json:"movement_id"`
	Name            string `json:"name"`
	DurationSeconds int    `json:"duration_seconds"`
}

func Test_application_classLifecycle(t *testing.T) {
	ctx := t.Context()
	server, err := e2etest.StartServer(t, testhelpers.NewWriter(t), testLookupEnv, run)
	if err != nil {
		t.Fatalf("Failed to start server: %v", err)
	}
	client := server.Client()

	var plan planResponse

	t.Run("Generate", func(t *testing.T) {
		body := map[string]any{
			"target_duration_minutes": 45,
			"difficulty":              "beginner",
		}
		status, err := client.PostJSON(ctx, "/api/classes/generate", body, &plan)
		if err != nil {
			t.Fatalf("Failed to generate class: %v", err)
		}
		if status != http.StatusCreated {
			t.Fatalf("status = %d, want %d", status, http.StatusCreated)
		}
		if plan.MovementCount != 9 {
			t.Errorf("movement count = %d, want 9", plan.MovementCount)
		}
		if plan.TransitionCount != 8 {
			t.Errorf("transition count = %d, want 8", plan.TransitionCount)
		}
		if len(plan.Items) != 17 {
			t.Errorf("item count = %d, want 17", len(plan.Items))
		}
		for i, item := range plan.Items {
			wantType := "movement"
			if i%2 == 1 {
				wantType = "transition"
			}
			if item.Type != wantType {
				t.Errorf("item %d type = %s, want %s", i, item.Type, wantType)
			}
		}
	})

	t.Run("Accept records usage once", func(t *testing.T) {
		status, err := client.PostJSON(ctx, "/api/classes/"+plan.ID+"/accept", nil, nil)
		if err != nil {
			t.Fatalf("Failed to accept class: %v", err)
		}
		if status != http.StatusOK {
			t.Fatalf("status = %d, want %d", status, http.StatusOK)
		}

		// Accepting again must not duplicate usage records.
		if status, err = client.PostJSON(ctx, "/api/classes/"+plan.ID+"/accept", nil, nil); err != nil {
			t.Fatalf("Failed to accept class twice: %v", err)
		}
		if status != http.StatusOK {
			t.Fatalf("second accept status = %d, want %d", status, http.StatusOK)
		}

		if got := countUsageRows(t, server.DB(), plan.ID); got != plan.MovementCount {
			t.Errorf("usage rows = %d, want %d", got, plan.MovementCount)
		}
	})

	t.Run("Get", func(t *testing.T) {
		var fetched planResponse
		status, err := client.GetJSON(ctx, "/api/classes/"+plan.ID, &fetched)
		if err != nil {
			t.Fatalf("Failed to get class: %v", err)
		}
		if status != http.StatusOK {
			t.Fatalf("status = %d, want %d", status, http.StatusOK)
		}
		if fetched.ID != plan.ID {
			t.Errorf("class id = %s, want %s", fetched.ID, plan.ID)
		}
		if fetched.MovementCount != plan.MovementCount {
			t.Errorf("movement count = %d, want %d", fetched.MovementCount, plan.MovementCount)
		}
		if len(fetched.MuscleBalance) == 0 || len(fetched.FamilyBalance) == 0 {
			t.Error("fetched class must include balance metrics")
		}
	})

	t.Run("Get unknown class", func(t *testing.T) {
		var errResp struct {
			Error string `json:"error"`
		}
		status, err := client.GetJSON(ctx, "/api/classes/no-such-class", &errResp)
		if err != nil {
			t.Fatalf("Failed to get class: %v", err)
		}
		if status != http.StatusNotFound {
			t.Errorf("status = %d, want %d", status, http.StatusNotFound)
		}
	})
}

func Test_application_classGenerate_validation(t *testing.T) {
	ctx := t.Context()
	server, err := e2etest.StartServer(t, testhelpers.NewWriter(t), testLookupEnv, run)
	if err != nil {
		t.Fatalf("Failed to start server: %v", err)
	}
	client := server.Client()

	tests := []struct {
		name       string
		body       map[string]any
		wantStatus int
	}{
		{
			name:       "unknown difficulty",
			body:       map[string]any{"target_duration_minutes": 45, "difficulty": "expert"},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "duration out of range",
			body:       map[string]any{"target_duration_minutes": 600, "difficulty": "beginner"},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "duration below a single advanced movement",
			body:       map[string]any{"target_duration_minutes": 5, "difficulty": "advanced"},
			wantStatus: http.StatusUnprocessableEntity,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var errResp struct {
				Error string `json:"error"`
			}
			status, err := client.PostJSON(ctx, "/api/classes/generate", tt.body, &errResp)
			if err != nil {
				t.Fatalf("Failed to post: %v", err)
			}
			if status != tt.wantStatus {
				t.Errorf("status = %d, want %d", status, tt.wantStatus)
			}
			if errResp.Error == "" {
				t.Error("error response must include a message")
			}
		})
	}
}

func countUsageRows(t *testing.T, db *sql.DB, classID string) int {
	t.Helper()
	var count int
	err := db.QueryRow("SELECT COUNT(*) FROM usage_records WHERE class_id = ?", classID).Scan(&count)
	if err != nil {
		t.Fatalf("Failed to count usage records: %v", err)
	}
	return count
}
