package main

import (
	"io"
	"os"

	"github.com/sofiamaki/pilatesapp/internal/classplan"
	"github.com/sofiamaki/pilatesapp/internal/errors"
	"gopkg.in/yaml.v3"
)

// catalogFile is the YAML document describing the movement repertoire and
// the transition scripts between setup positions.
type catalogFile struct {
	Movements   []catalogMovement   `yaml:"movements"`
	Transitions []catalogTransition `yaml:"transitions"`
}

type catalogMovement struct {
	Name          string   `yaml:"name"`
	Difficulty    string   `yaml:"difficulty"`
	Family        string   `yaml:"family"`
	SetupPosition string   `yaml:"setup_position"`
	MuscleGroups  []string `yaml:"muscle_groups"`
	Description   string   `yaml:"description"`
}

type catalogTransition struct {
	From            string `yaml:"from"`
	To              string `yaml:"to"`
	Narrative       string `yaml:"narrative"`
	DurationSeconds int    `yaml:"duration_seconds"`
}

// loadCatalog parses and validates a catalog YAML file.
func loadCatalog(path string) (catalogFile, error) {
	file, err := os.Open(path)
	if err != nil {
		return catalogFile{}, errors.Wrap(err, "open catalog file")
	}
	defer func() {
		_ = file.Close()
	}()

	return parseCatalog(file)
}

func parseCatalog(r io.Reader) (catalogFile, error) {
	var catalog catalogFile
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(&catalog); err != nil {
		return catalogFile{}, errors.Wrap(err, "decode catalog")
	}

	for _, movement := range catalog.Movements {
		if movement.Name == "" {
			return catalogFile{}, errors.New("movement without a name")
		}
		if _, err := classplan.ParseDifficulty(movement.Difficulty); err != nil {
			return catalogFile{}, errors.Wrap(err, "movement "+movement.Name)
		}
		if movement.SetupPosition == "" {
			return catalogFile{}, errors.New("movement without a setup position: " + movement.Name)
		}
	}
	for _, transition := range catalog.Transitions {
		if transition.From == "" || transition.To == "" {
			return catalogFile{}, errors.New("transition without positions")
		}
		if transition.DurationSeconds < 0 {
			return catalogFile{}, errors.New("transition with negative duration")
		}
	}

	return catalog, nil
}

func (m catalogMovement) toMovement() classplan.Movement {
	return classplan.Movement{
		Name:                m.Name,
		Difficulty:          classplan.Difficulty(m.Difficulty),
		MuscleGroups:        m.MuscleGroups,
		Family:              classplan.NormalizeFamily(m.Family),
		SetupPosition:       classplan.Position(m.SetupPosition),
		DescriptionMarkdown: m.Description,
	}
}

func (t catalogTransition) toTransition() classplan.Transition {
	return classplan.Transition{
		FromPosition:    classplan.Position(t.From),
		ToPosition:      classplan.Position(t.To),
		Narrative:       t.Narrative,
		DurationSeconds: t.DurationSeconds,
	}
}
