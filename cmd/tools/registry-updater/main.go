// cmd/tools/registry-updater/main.go
package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"

	"verification-workers/pkg/registry"
)

const defaultRegistryPath = "configs/worker-registry.json"

func main() {
	addCmd := flag.NewFlagSet("add", flag.ExitOnError)
	updateCmd := flag.NewFlagSet("update", flag.ExitOnError)
	validateCmd := flag.NewFlagSet("validate", flag.ExitOnError)
	listCmd := flag.NewFlagSet("list", flag.ExitOnError)

	addPath := addCmd.String("path", defaultRegistryPath, "Path to registry file")
	idAdd := addCmd.String("id", "", "Worker ID (e.g., score-verification)")
	displayName := addCmd.String("displayName", "", "Display name")
	description := addCmd.String("description", "", "Description")
	category := addCmd.String("category", "report", "Category")
	taskType := addCmd.String("taskType", "", "Camunda task type")
	version := addCmd.String("version", "1.0.0", "Version")
	status := addCmd.String("status", "planned", "Status (planned, in-progress, completed, verified)")
	timeout := addCmd.String("timeout", "30s", "Job timeout")

	updatePath := updateCmd.String("path", defaultRegistryPath, "Path to registry file")
	idUpdate := updateCmd.String("id", "", "Worker ID to update")
	field := updateCmd.String("field", "", "Field to update (status, version, timeout, retries, ...)")
	value := updateCmd.String("value", "", "New value")

	validatePath := validateCmd.String("path", defaultRegistryPath, "Path to registry file")
	listPath := listCmd.String("path", defaultRegistryPath, "Path to registry file")

	if len(os.Args) < 2 {
		help()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "add":
		addCmd.Parse(os.Args[2:])
		if *idAdd == "" || *displayName == "" || *taskType == "" {
			fmt.Println("Error: id, displayName and taskType are required for add.")
			addCmd.Usage()
			os.Exit(1)
		}
		entry := registry.WorkerEntry{
			ID:           *idAdd,
			DisplayName:  *displayName,
			Description:  *description,
			Category:     *category,
			Version:      *version,
			TaskType:     *taskType,
			Status:       *status,
			InputSchema:  map[string]interface{}{},
			OutputSchema: map[string]interface{}{},
			ErrorCodes:   []string{"PARSE_ERROR"},
			Timeout:      *timeout,
			Workflows:    []string{"verification-report"},
			Tags:         []string{},
		}
		if err := addWorker(*addPath, entry); err != nil {
			fmt.Printf("Error adding worker: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Added worker: %s\n", *idAdd)

	case "update":
		updateCmd.Parse(os.Args[2:])
		if *idUpdate == "" || *field == "" || *value == "" {
			fmt.Println("Error: id, field and value are required for update.")
			updateCmd.Usage()
			os.Exit(1)
		}
		if err := updateWorker(*updatePath, *idUpdate, *field, *value); err != nil {
			fmt.Printf("Error updating worker: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Updated worker %s, field %s to %s\n", *idUpdate, *field, *value)

	case "validate":
		validateCmd.Parse(os.Args[2:])
		reg, err := registry.Load(*validatePath)
		if err == nil {
			err = reg.Validate()
		}
		if err != nil {
			fmt.Printf("Registry validation failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Registry validation passed. Found %d workers.\n", len(reg.Workers))

	case "list":
		listCmd.Parse(os.Args[2:])
		reg, err := registry.Load(*listPath)
		if err != nil {
			fmt.Printf("Error loading registry: %v\n", err)
			os.Exit(1)
		}
		for _, w := range reg.Workers {
			fmt.Printf("%-28s %-10s %-8s %s\n", w.TaskType, w.Status, w.Timeout, w.DisplayName)
		}

	case "help":
		fallthrough
	default:
		help()
	}
}

func addWorker(path string, entry registry.WorkerEntry) error {
	reg, err := registry.Load(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to load registry: %w", err)
		}
		reg = &registry.WorkerRegistry{Version: "1.0.0"}
	}

	if reg.FindByTaskType(entry.TaskType) != nil {
		return fmt.Errorf("task type %s already registered", entry.TaskType)
	}
	for _, existing := range reg.Workers {
		if existing.ID == entry.ID {
			return fmt.Errorf("worker with ID %s already exists", entry.ID)
		}
	}

	reg.Workers = append(reg.Workers, entry)
	return reg.Save(path)
}

func updateWorker(path, id, field, value string) error {
	reg, err := registry.Load(path)
	if err != nil {
		return fmt.Errorf("failed to load registry: %w", err)
	}

	found := false
	for i := range reg.Workers {
		if reg.Workers[i].ID != id {
			continue
		}
		found = true
		switch field {
		case "status":
			reg.Workers[i].Status = value
		case "version":
			reg.Workers[i].Version = value
		case "displayName":
			reg.Workers[i].DisplayName = value
		case "description":
			reg.Workers[i].Description = value
		case "category":
			reg.Workers[i].Category = value
		case "taskType":
			reg.Workers[i].TaskType = value
		case "timeout":
			reg.Workers[i].Timeout = value
		case "retries":
			retries, err := strconv.Atoi(value)
			if err != nil {
				return fmt.Errorf("invalid retries value: %w", err)
			}
			reg.Workers[i].Retries = retries
		default:
			return fmt.Errorf("unknown field: %s", field)
		}
		break
	}

	if !found {
		return fmt.Errorf("worker with ID %s not found", id)
	}

	if err := reg.Validate(); err != nil {
		return fmt.Errorf("update would invalidate registry: %w", err)
	}
	return reg.Save(path)
}

func help() {
	fmt.Println(`
Usage: registry-updater <command> [flags]

Commands:
  add      Add a new worker to the registry
  update   Update an existing worker's field
  validate Validate the registry file
  list     List registered task types
  help     Show this help message

Examples:
  registry-updater add -id score-verification -displayName "Score Verification" -taskType score-verification
  registry-updater update -id score-verification -field status -value verified
  registry-updater validate -path configs/worker-registry.json

Use 'registry-updater <command> -h' for more information about a command.`)
}
