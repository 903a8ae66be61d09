package director

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// WritePlan stores plan as YAML so a run can be inspected or replayed.
func WritePlan(plan *Plan, path string) error {
	data, err := yaml.Marshal(plan)
	if err != nil {
		return fmt.Errorf("encode plan: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write plan %s: %w", path, err)
	}
	return nil
}

// ReadPlan loads a plan written by WritePlan. Segments are not checked here;
// see Plan.Match and Plan.Validate.
func ReadPlan(path string) (*Plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read plan %s: %w", path, err)
	}

	var plan Plan
	if err := yaml.Unmarshal(data, &plan); err != nil {
		return nil, fmt.Errorf("parse plan %s: %w", path, err)
	}
	if plan.Version == "" {
		return nil, fmt.Errorf("parse plan %s: missing version", path)
	}
	return &plan, nil
}
