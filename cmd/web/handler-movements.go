package main

import (
	"html/template"
	"net/http"

	"github.com/sofiamaki/pilatesapp/internal/classplan"
)

type movementResponse struct {
	ID              int      `json:"id"`
	Name            string   `json:"name"`
	Difficulty      string   `json:"difficulty"`
	MuscleGroups    []string `json:"muscle_groups"`
	Family          string   `json:"family"`
	SetupPosition   string   `json:"setup_position"`
	DescriptionHTML string   `json:"description_html"`
}

// parseDifficultyParam reads the optional difficulty query parameter,
// defaulting to the full repertoire.
func (app *application) parseDifficultyParam(w http.ResponseWriter, r *http.Request) (classplan.Difficulty, bool) {
	raw := r.URL.Query().Get("difficulty")
	if raw == "" {
		return classplan.DifficultyAdvanced, true
	}
	difficulty, err := classplan.ParseDifficulty(raw)
	if err != nil {
		app.badRequest(w, r, "difficulty must be beginner, intermediate or advanced")
		return "", false
	}
	return difficulty, true
}

// movementsGET returns the movement catalog as JSON with descriptions
// rendered from markdown.
func (app *application) movementsGET(w http.ResponseWriter, r *http.Request) {
	difficulty, ok := app.parseDifficultyParam(w, r)
	if !ok {
		return
	}

	movements, err := app.classService.ListMovements(r.Context(), difficulty)
	if err != nil {
		app.serverError(w, r, err)
		return
	}

	response := make([]movementResponse, 0, len(movements))
	for _, movement := range movements {
		response = append(response, movementResponse{
			ID:              movement.ID,
			Name:            movement.Name,
			Difficulty:      string(movement.Difficulty),
			MuscleGroups:    movement.MuscleGroups,
			Family:          string(movement.Family),
			SetupPosition:   string(movement.SetupPosition),
			DescriptionHTML: string(app.renderMarkdownToHTML(r.Context(), movement.DescriptionMarkdown)),
		})
	}

	app.writeJSON(w, r, http.StatusOK, response)
}

type movementView struct {
	Name            string
	Difficulty      string
	MuscleGroups    []string
	Family          string
	SetupPosition   string
	DescriptionHTML template.HTML
}

type movementCatalogTemplateData struct {
	BaseTemplateData
	Movements []movementView
}

// movementCatalogGET renders the repertoire as a browsable page.
func (app *application) movementCatalogGET(w http.ResponseWriter, r *http.Request) {
	difficulty, ok := app.parseDifficultyParam(w, r)
	if !ok {
		return
	}

	movements, err := app.classService.ListMovements(r.Context(), difficulty)
	if err != nil {
		app.serverError(w, r, err)
		return
	}

	data := movementCatalogTemplateData{
		BaseTemplateData: newBaseTemplateData(r),
		Movements:        make([]movementView, 0, len(movements)),
	}
	for _, movement := range movements {
		data.Movements = append(data.Movements, movementView{
			Name:            movement.Name,
			Difficulty:      string(movement.Difficulty),
			MuscleGroups:    movement.MuscleGroups,
			Family:          string(movement.Family),
			SetupPosition:   string(movement.SetupPosition),
			DescriptionHTML: app.renderMarkdownToHTML(r.Context(), movement.DescriptionMarkdown),
		})
	}

	app.render(w, r, http.StatusOK, "movements", data)
}
