// pkg/registry/registry.go
package registry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

func Load(path string) (*WorkerRegistry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var reg WorkerRegistry
	if err := json.Unmarshal(data, &reg); err != nil {
		return nil, fmt.Errorf("parse registry %s: %w", path, err)
	}
	return &reg, nil
}

// Save writes the registry back with its LastUpdated stamp refreshed.
func (r *WorkerRegistry) Save(path string) error {
	r.LastUpdated = time.Now().UTC().Format(time.RFC3339)

	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal registry: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create registry directory: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

// Validate checks structural invariants: non-empty, unique IDs and task
// types, and the fields tooling depends on.
func (r *WorkerRegistry) Validate() error {
	if len(r.Workers) == 0 {
		return fmt.Errorf("registry contains no workers")
	}

	ids := make(map[string]bool, len(r.Workers))
	taskTypes := make(map[string]bool, len(r.Workers))
	for _, w := range r.Workers {
		if w.ID == "" {
			return fmt.Errorf("worker missing required field: id")
		}
		if ids[w.ID] {
			return fmt.Errorf("duplicate worker id: %s", w.ID)
		}
		ids[w.ID] = true

		if w.TaskType == "" {
			return fmt.Errorf("worker %s missing required field: taskType", w.ID)
		}
		if taskTypes[w.TaskType] {
			return fmt.Errorf("duplicate task type: %s", w.TaskType)
		}
		taskTypes[w.TaskType] = true

		if w.DisplayName == "" {
			return fmt.Errorf("worker %s missing required field: displayName", w.ID)
		}
		if w.Category == "" {
			return fmt.Errorf("worker %s missing required field: category", w.ID)
		}
		if w.Timeout != "" {
			if _, err := time.ParseDuration(w.Timeout); err != nil {
				return fmt.Errorf("worker %s has invalid timeout %q: %w", w.ID, w.Timeout, err)
			}
		}
	}
	return nil
}
