package registry

import (
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"time"

	"github.com/xeipuuv/gojsonschema"
)

var toolNamePattern = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

func LoadRegistry(path string) (*ToolRegistry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

func Parse(data []byte) (*ToolRegistry, error) {
	var reg ToolRegistry
	if err := json.Unmarshal(data, &reg); err != nil {
		return nil, fmt.Errorf("parse tool registry: %w", err)
	}
	return &reg, nil
}

// Save writes the registry as indented JSON and stamps LastUpdated.
func Save(reg *ToolRegistry, path string) error {
	reg.LastUpdated = time.Now().UTC().Format(time.RFC3339)
	data, err := json.MarshalIndent(reg, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}

func (r *ToolRegistry) Find(name string) (*Tool, bool) {
	for i := range r.Tools {
		if r.Tools[i].Name == name {
			return &r.Tools[i], true
		}
	}
	return nil, false
}

func (r *ToolRegistry) FindByTaskType(taskType string) (*Tool, bool) {
	for i := range r.Tools {
		if r.Tools[i].TaskType == taskType {
			return &r.Tools[i], true
		}
	}
	return nil, false
}

// Add appends a tool; names must be unique.
func (r *ToolRegistry) Add(tool Tool) error {
	if _, exists := r.Find(tool.Name); exists {
		return fmt.Errorf("tool %s already exists", tool.Name)
	}
	r.Tools = append(r.Tools, tool)
	return nil
}

// Validate checks names, task types and that every input schema compiles.
func (r *ToolRegistry) Validate() error {
	if len(r.Tools) == 0 {
		return fmt.Errorf("registry contains no tools")
	}

	names := make(map[string]bool, len(r.Tools))
	taskTypes := make(map[string]bool, len(r.Tools))

	for _, tool := range r.Tools {
		if tool.Name == "" {
			return fmt.Errorf("tool missing required field: name")
		}
		if !toolNamePattern.MatchString(tool.Name) {
			return fmt.Errorf("tool name %q must be snake_case", tool.Name)
		}
		if names[tool.Name] {
			return fmt.Errorf("duplicate tool name: %s", tool.Name)
		}
		names[tool.Name] = true

		if tool.Description == "" {
			return fmt.Errorf("tool %s missing description", tool.Name)
		}

		if tool.TaskType != "" {
			if taskTypes[tool.TaskType] {
				return fmt.Errorf("duplicate task type: %s", tool.TaskType)
			}
			taskTypes[tool.TaskType] = true
		}

		if err := checkInputSchema(tool); err != nil {
			return err
		}

		if tool.Timeout != "" {
			if _, err := time.ParseDuration(tool.Timeout); err != nil {
				return fmt.Errorf("tool %s has invalid timeout %q: %w", tool.Name, tool.Timeout, err)
			}
		}
	}

	return nil
}

func checkInputSchema(tool Tool) error {
	if len(tool.InputSchema) == 0 {
		return fmt.Errorf("tool %s missing inputSchema", tool.Name)
	}
	if t, _ := tool.InputSchema["type"].(string); t != "object" {
		return fmt.Errorf("tool %s inputSchema must be of type object", tool.Name)
	}
	if _, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(tool.InputSchema)); err != nil {
		return fmt.Errorf("tool %s inputSchema does not compile: %w", tool.Name, err)
	}
	return nil
}

// RawInputSchema returns the input schema as JSON, as sent to MCP clients.
func (t *Tool) RawInputSchema() (json.RawMessage, error) {
	return json.Marshal(t.InputSchema)
}

// TimeoutDuration parses Timeout, falling back to def when unset or invalid.
func (t *Tool) TimeoutDuration(def time.Duration) time.Duration {
	if d, err := time.ParseDuration(t.Timeout); err == nil && d > 0 {
		return d
	}
	return def
}
