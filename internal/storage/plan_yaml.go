package storage

import (
	"errors"
	"fmt"
	"os"

	"gohome/internal/core/store"

	"gopkg.in/yaml.v3"
)

// ErrEmptyPlan is returned for a plan file without events.
var ErrEmptyPlan = errors.New("plan has no events")

type yamlPlan struct {
	Events []yamlPlanEvent `yaml:"events"`
}

type yamlPlanEvent struct {
	Name         string `yaml:"name"`
	Duration     int    `yaml:"duration"`
	Loops        *int   `yaml:"loops"`
	ElapsedFirst int    `yaml:"elapsed_first"`
	Order        int    `yaml:"order"`
}

// LoadPlanFile reads a list of events to add, in file order. Loops defaults
// to 1 when omitted.
func LoadPlanFile(planPath string) ([]store.AddParams, error) {
	rawData, err := os.ReadFile(planPath)
	if err != nil {
		return nil, fmt.Errorf("read plan file: %w", err)
	}
	return ParsePlan(rawData)
}

// ParsePlan decodes plan YAML and validates every entry.
func ParsePlan(rawData []byte) ([]store.AddParams, error) {
	var fileData yamlPlan
	if err := yaml.Unmarshal(rawData, &fileData); err != nil {
		return nil, fmt.Errorf("parse plan yaml: %w", err)
	}
	if len(fileData.Events) == 0 {
		return nil, ErrEmptyPlan
	}

	params := make([]store.AddParams, 0, len(fileData.Events))
	for index, event := range fileData.Events {
		loops := 1
		if event.Loops != nil {
			loops = *event.Loops
		}
		entry := store.AddParams{
			Name:         event.Name,
			Duration:     event.Duration,
			Loops:        loops,
			ElapsedFirst: event.ElapsedFirst,
			Order:        event.Order,
		}
		if err := entry.Validate(); err != nil {
			return nil, fmt.Errorf("plan event %d (%q): %w", index+1, event.Name, err)
		}
		params = append(params, entry)
	}
	return params, nil
}
