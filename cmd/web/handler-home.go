package main

import (
	"net/http"
)

type homeTemplateData struct {
	BaseTemplateData
	Durations    []int
	Difficulties []string
}

func (app *application) home(w http.ResponseWriter, r *http.Request) {
	data := homeTemplateData{
		BaseTemplateData: newBaseTemplateData(r),
		Durations:        []int{30, 45, 60},
		Difficulties:     []string{"beginner", "intermediate", "advanced"},
	}
	app.render(w, r, http.StatusOK, "home", data)
}
