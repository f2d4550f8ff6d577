// cmd/tools/worker-generator/main.go
package main

import (
	"bytes"
	"fmt"
	"go/format"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"text/template"

	"entity-mcp/pkg/registry"

	"github.com/spf13/cobra"
)

// WorkerData holds data for templates
type WorkerData struct {
	Name        string
	PackageName string
	Directory   string
	TaskType    string
	Description string
	Timeout     string
	Fields      []Field
	Required    []string
}

type Field struct {
	GoName   string
	GoType   string
	JSONName string
	Required bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var registryPath, outputDir string
	var force bool

	cmd := &cobra.Command{
		Use:           "worker-generator <tool-name>",
		Short:         "Scaffolds a Zeebe worker package from a tool registry entry",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := registry.LoadRegistry(registryPath)
			if err != nil {
				return fmt.Errorf("loading registry from %s: %w", registryPath, err)
			}
			tool, ok := reg.Find(args[0])
			if !ok {
				return fmt.Errorf("tool %q not found in registry %s", args[0], registryPath)
			}
			if tool.TaskType == "" {
				return fmt.Errorf("tool %q has no taskType", tool.Name)
			}

			data := newWorkerData(tool)
			workerDir := filepath.Join(outputDir, data.Directory)
			if _, err := os.Stat(workerDir); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", workerDir)
			}

			files, err := render(data)
			if err != nil {
				return err
			}
			if err := os.MkdirAll(workerDir, 0o755); err != nil {
				return err
			}

			names := make([]string, 0, len(files))
			for name := range files {
				names = append(names, name)
			}
			sort.Strings(names)
			for _, name := range names {
				path := filepath.Join(workerDir, name)
				if err := os.WriteFile(path, files[name], 0o644); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Generated %s\n", path)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Register the worker in cmd/worker-manager/main.go and add workers.%s to configs/config.yaml\n", data.TaskType)
			return nil
		},
	}

	cmd.Flags().StringVar(&registryPath, "registry", "configs/tool-registry.json", "Path to the tool registry JSON file")
	cmd.Flags().StringVar(&outputDir, "output", "internal/workers", "Root directory for generated workers")
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing worker directory")
	return cmd
}

func newWorkerData(tool *registry.Tool) WorkerData {
	required := requiredFields(tool.InputSchema)
	isRequired := make(map[string]bool, len(required))
	for _, name := range required {
		isRequired[name] = true
	}

	return WorkerData{
		Name:        tool.Name,
		PackageName: strings.ReplaceAll(tool.TaskType, "-", ""),
		Directory:   filepath.Join(strings.ToLower(tool.Category), tool.TaskType),
		TaskType:    tool.TaskType,
		Description: tool.Description,
		Timeout:     tool.Timeout,
		Fields:      structFields(tool.InputSchema, isRequired),
		Required:    required,
	}
}

func requiredFields(schema map[string]interface{}) []string {
	raw, _ := schema["required"].([]interface{})
	out := make([]string, 0, len(raw))
	for _, r := range raw {
		if s, ok := r.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// structFields maps schema properties to Go fields, sorted by JSON name.
func structFields(schema map[string]interface{}, required map[string]bool) []Field {
	props, _ := schema["properties"].(map[string]interface{})
	fields := make([]Field, 0, len(props))
	for name, details := range props {
		d, _ := details.(map[string]interface{})
		fields = append(fields, Field{
			GoName:   goName(name),
			GoType:   goType(d),
			JSONName: name,
			Required: required[name],
		})
	}
	sort.Slice(fields, func(i, j int) bool { return fields[i].JSONName < fields[j].JSONName })
	return fields
}

func goType(prop map[string]interface{}) string {
	switch prop["type"] {
	case "string":
		return "string"
	case "integer":
		return "int"
	case "number":
		return "float64"
	case "boolean":
		return "bool"
	case "array":
		if items, ok := prop["items"].(map[string]interface{}); ok && items["type"] != nil {
			return "[]" + goType(items)
		}
		return "[]interface{}"
	case "object":
		return "map[string]interface{}"
	default:
		return "interface{}"
	}
}

// goName turns orderNumber, order_number and order-number into OrderNumber.
func goName(s string) string {
	parts := strings.FieldsFunc(s, func(r rune) bool { return r == '_' || r == '-' })
	var b strings.Builder
	for _, p := range parts {
		b.WriteString(strings.ToUpper(p[:1]) + p[1:])
	}
	if b.Len() == 0 {
		return "Field"
	}
	return b.String()
}

// render executes every template and gofmts the Go output.
func render(data WorkerData) (map[string][]byte, error) {
	out := make(map[string][]byte, len(templates))
	for name, text := range templates {
		tmpl, err := template.New(name).Funcs(template.FuncMap{"quote": func(s string) string {
			return fmt.Sprintf("%q", s)
		}}).Parse(text)
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", name, err)
		}

		var buf bytes.Buffer
		if err := tmpl.Execute(&buf, data); err != nil {
			return nil, fmt.Errorf("execute template %s: %w", name, err)
		}

		src, err := format.Source(buf.Bytes())
		if err != nil {
			return nil, fmt.Errorf("format %s: %w", name, err)
		}
		out[name] = src
	}
	return out, nil
}

var templates = map[string]string{
	"config.go":       configTemplate,
	"models.go":       modelsTemplate,
	"handler.go":      handlerTemplate,
	"handler_test.go": testTemplate,
}

const configTemplate = `// internal/workers/{{ .Directory }}/config.go
package {{ .PackageName }}

import "time"

type Config struct {
	Timeout time.Duration
}

func LoadConfig() *Config {
	timeout, err := time.ParseDuration({{ quote .Timeout }})
	if err != nil || timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Config{Timeout: timeout}
}
`

const modelsTemplate = `// internal/workers/{{ .Directory }}/models.go
package {{ .PackageName }}

type Input struct {
{{- range .Fields }}
	{{ .GoName }} {{ .GoType }} ` + "`json:\"{{ .JSONName }}{{ if not .Required }},omitempty{{ end }}\"`" + `
{{- end }}
}

type Output struct {
	Result map[string]interface{} ` + "`json:\"result\"`" + `
}
`

const handlerTemplate = `// internal/workers/{{ .Directory }}/handler.go
package {{ .PackageName }}

import (
	"context"
	"encoding/json"

	"entity-mcp/internal/common/errors"
	"entity-mcp/internal/common/logger"
	"entity-mcp/internal/common/metrics"
	"entity-mcp/internal/common/validation"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = {{ quote .TaskType }}
)

// Handler runs the {{ .Name }} tool as a Zeebe job. {{ .Description }}
type Handler struct {
	config       *Config
	schema       *validation.Schema
	errorHandler *errors.ErrorHandler
	logger       logger.Logger
}

func NewHandler(config *Config, schema *validation.Schema, log logger.Logger) *Handler {
	return &Handler{
		config:       config,
		schema:       schema,
		errorHandler: errors.NewErrorHandler(log),
		logger:       log.WithFields(map[string]interface{}{"taskType": TaskType}),
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	input, err := h.parseInput(job.Variables)
	if err != nil {
		h.failJob(ctx, client, job, err)
		return
	}

	output, err := h.execute(ctx, input)
	if err != nil {
		h.failJob(ctx, client, job, err)
		return
	}

	cmd, err := client.NewCompleteJobCommand().JobKey(job.Key).VariablesFromObject(output)
	if err != nil {
		h.failJob(ctx, client, job, err)
		return
	}
	if _, err := cmd.Send(ctx); err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{"error": err})
		return
	}
	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
}

func (h *Handler) parseInput(variables string) (*Input, error) {
	if h.schema != nil {
		result, err := h.schema.ValidateJSON([]byte(variables))
		if err != nil {
			return nil, errors.NewInvalidArgumentsError(err.Error())
		}
		if err := result.Err(); err != nil {
			return nil, err
		}
	}

	var input Input
	if err := json.Unmarshal([]byte(variables), &input); err != nil {
		return nil, errors.NewInvalidArgumentsError(err.Error())
	}
	return &input, nil
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	// TODO: implement {{ .Name }}
	return &Output{Result: map[string]interface{}{}}, nil
}

func (h *Handler) failJob(ctx context.Context, client worker.JobClient, job entities.Job, err error) {
	metrics.WorkerJobsFailed.WithLabelValues(TaskType, string(errors.Normalize(err).Code)).Inc()
	h.errorHandler.HandleJobError(ctx, client, job, err)
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
`

const testTemplate = `// internal/workers/{{ .Directory }}/handler_test.go
package {{ .PackageName }}

import (
	"context"
	"testing"

	"entity-mcp/internal/common/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandler_Execute(t *testing.T) {
	handler := NewHandler(LoadConfig(), nil, logger.NewTestLogger(t))

	output, err := handler.Execute(context.Background(), &Input{})
	require.NoError(t, err)
	assert.NotNil(t, output)
}
{{ if .Required }}
func TestHandler_ParseInput_Malformed(t *testing.T) {
	handler := NewHandler(LoadConfig(), nil, logger.NewTestLogger(t))

	_, err := handler.parseInput("{")
	assert.Error(t, err)
}
{{ end }}`
