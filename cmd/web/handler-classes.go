package main

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/sofiamaki/pilatesapp/internal/classplan"
	"github.com/sofiamaki/pilatesapp/internal/contexthelpers"
)

const (
	minTargetMinutes = 5
	maxTargetMinutes = 180
)

type generateClassRequest struct {
	TargetDurationMinutes int      `json:"target_duration_minutes"`
	Difficulty            string   `json:"difficulty"`
	FocusAreas            []string `json:"focus_areas"`
}

// classGeneratePOST generates a class plan and stores it as a draft. The
// draft only enters the user's usage history once it is accepted.
func (app *application) classGeneratePOST(w http.ResponseWriter, r *http.Request) {
	var req generateClassRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		app.badRequest(w, r, "invalid JSON body")
		return
	}

	difficulty, err := classplan.ParseDifficulty(req.Difficulty)
	if err != nil {
		app.badRequest(w, r, "difficulty must be beginner, intermediate or advanced")
		return
	}
	if req.TargetDurationMinutes < minTargetMinutes || req.TargetDurationMinutes > maxTargetMinutes {
		app.badRequest(w, r, "target_duration_minutes out of range")
		return
	}

	userID := contexthelpers.UserID(r.Context())
	plan, err := app.classService.GenerateClass(r.Context(), userID, req.TargetDurationMinutes, difficulty, req.FocusAreas)
	if err != nil {
		if errors.Is(err, classplan.ErrTargetTooShort) {
			app.writeJSON(w, r, http.StatusUnprocessableEntity,
				errorResponse{Error: "target duration too short for any movement"})
			return
		}
		app.serverError(w, r, err)
		return
	}

	app.writeJSON(w, r, http.StatusCreated, plan)
}

// classAcceptPOST marks a draft class as taught. Accepting twice is harmless.
func (app *application) classAcceptPOST(w http.ResponseWriter, r *http.Request) {
	classID := r.PathValue("classID")
	userID := contexthelpers.UserID(r.Context())

	if err := app.classService.AcceptClass(r.Context(), userID, classID); err != nil {
		if errors.Is(err, classplan.ErrNotFound) {
			app.notFound(w, r)
			return
		}
		app.serverError(w, r, err)
		return
	}

	app.writeJSON(w, r, http.StatusOK, map[string]string{"status": "accepted"})
}

// classGET returns a persisted class with freshly derived balance metrics.
func (app *application) classGET(w http.ResponseWriter, r *http.Request) {
	classID := r.PathValue("classID")
	userID := contexthelpers.UserID(r.Context())

	plan, err := app.classService.GetClass(r.Context(), classID)
	if err != nil {
		if errors.Is(err, classplan.ErrNotFound) {
			app.notFound(w, r)
			return
		}
		app.serverError(w, r, err)
		return
	}
	if plan.UserID != userID {
		app.notFound(w, r)
		return
	}

	app.writeJSON(w, r, http.StatusOK, plan)
}
