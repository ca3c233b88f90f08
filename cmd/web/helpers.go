package main

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/sofiamaki/pilatesapp/internal/errors"
)

// isAPIRequest distinguishes the JSON surface from the HTML pages.
func isAPIRequest(r *http.Request) bool {
	return strings.HasPrefix(r.URL.Path, "/api/")
}

func (app *application) serverError(w http.ResponseWriter, r *http.Request, err error) {
	app.logger.LogAttrs(r.Context(), slog.LevelError, "server error", errors.SlogError(err))
	if isAPIRequest(r) {
		app.writeJSON(w, r, http.StatusInternalServerError, errorResponse{Error: "internal server error"})
		return
	}
	app.render(w, r, http.StatusInternalServerError, "error", nil)
}

func (app *application) notFound(w http.ResponseWriter, r *http.Request) {
	if isAPIRequest(r) {
		app.writeJSON(w, r, http.StatusNotFound, errorResponse{Error: "not found"})
		return
	}
	app.render(w, r, http.StatusNotFound, "not-found", newBaseTemplateData(r))
}

type errorResponse struct {
	Error string `json:"error"`
}

func (app *application) writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		app.logger.LogAttrs(r.Context(), slog.LevelError, "encode response", errors.SlogError(err))
	}
}

func (app *application) badRequest(w http.ResponseWriter, r *http.Request, msg string) {
	app.writeJSON(w, r, http.StatusBadRequest, errorResponse{Error: msg})
}
