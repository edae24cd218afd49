// pkg/registry/schema.go
package registry

// WorkerRegistry is the machine-readable catalogue of every Camunda task
// type this repo implements. Deployment tooling and the scaffolding
// generator both read it, so the file in configs/ is the source of truth
// for task types, error codes and timeouts.
type WorkerRegistry struct {
	Version     string        `json:"version"`
	LastUpdated string        `json:"lastUpdated"`
	Workers     []WorkerEntry `json:"workers"`
}

type WorkerEntry struct {
	ID           string                 `json:"id"`
	DisplayName  string                 `json:"displayName"`
	Description  string                 `json:"description"`
	Category     string                 `json:"category"`
	Version      string                 `json:"version"`
	TaskType     string                 `json:"taskType"`
	Status       string                 `json:"status"`
	InputSchema  map[string]interface{} `json:"inputSchema"`
	OutputSchema map[string]interface{} `json:"outputSchema"`
	ErrorCodes   []string               `json:"errorCodes"`
	Timeout      string                 `json:"timeout"`
	Retries      int                    `json:"retries"`
	Workflows    []string               `json:"workflows"`
	Tags         []string               `json:"tags"`
}

// FindByTaskType returns the entry registered for a task type, or nil.
func (r *WorkerRegistry) FindByTaskType(taskType string) *WorkerEntry {
	for i := range r.Workers {
		if r.Workers[i].TaskType == taskType {
			return &r.Workers[i]
		}
	}
	return nil
}

// TaskTypes returns every registered task type in file order.
func (r *WorkerRegistry) TaskTypes() []string {
	types := make([]string, 0, len(r.Workers))
	for _, w := range r.Workers {
		types = append(types, w.TaskType)
	}
	return types
}
