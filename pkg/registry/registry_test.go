package registry

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestTool(name string) Tool {
	return Tool{
		Name:        name,
		Description: "test tool",
		TaskType:    "task-" + name,
		InputSchema: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"places": map[string]interface{}{"type": "array"},
			},
			"required": []interface{}{"places"},
		},
		Timeout: "5s",
	}
}

func TestLoadRegistry_Shipped(t *testing.T) {
	reg, err := LoadRegistry(filepath.Join("..", "..", "configs", "tool-registry.json"))
	require.NoError(t, err)
	require.NoError(t, reg.Validate())

	recommend, ok := reg.Find("recommend_coupons")
	require.True(t, ok)
	assert.Equal(t, "recommend-coupons", recommend.TaskType)
	assert.Equal(t, []interface{}{"places"}, recommend.InputSchema["required"])

	ticket, ok := reg.FindByTaskType("issue-ticket")
	require.True(t, ok)
	assert.Equal(t, "issue_ticket", ticket.Name)
	assert.Equal(t, []interface{}{"orderNumber", "customerName", "product"}, ticket.InputSchema["required"])
	assert.Equal(t, 5*time.Second, ticket.TimeoutDuration(time.Minute))
}

func TestToolRegistry_Validate(t *testing.T) {
	tests := []struct {
		name        string
		tools       []Tool
		errContains string
	}{
		{
			name:  "valid",
			tools: []Tool{createTestTool("recommend_coupons"), createTestTool("issue_ticket")},
		},
		{
			name:        "empty",
			tools:       nil,
			errContains: "no tools",
		},
		{
			name:        "bad name",
			tools:       []Tool{createTestTool("Issue-Ticket")},
			errContains: "snake_case",
		},
		{
			name:        "duplicate name",
			tools:       []Tool{createTestTool("issue_ticket"), createTestTool("issue_ticket")},
			errContains: "duplicate tool name",
		},
		{
			name: "duplicate task type",
			tools: func() []Tool {
				a, b := createTestTool("a"), createTestTool("b")
				b.TaskType = a.TaskType
				return []Tool{a, b}
			}(),
			errContains: "duplicate task type",
		},
		{
			name: "schema not object",
			tools: func() []Tool {
				tool := createTestTool("a")
				tool.InputSchema = map[string]interface{}{"type": "string"}
				return []Tool{tool}
			}(),
			errContains: "type object",
		},
		{
			name: "bad timeout",
			tools: func() []Tool {
				tool := createTestTool("a")
				tool.Timeout = "soon"
				return []Tool{tool}
			}(),
			errContains: "invalid timeout",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := &ToolRegistry{Tools: tt.tools}
			err := reg.Validate()
			if tt.errContains == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errContains)
		})
	}
}

func TestSaveAndAdd(t *testing.T) {
	path := filepath.Join(t.TempDir(), "registry.json")
	reg := &ToolRegistry{Version: "1.0.0"}

	require.NoError(t, reg.Add(createTestTool("issue_ticket")))
	assert.Error(t, reg.Add(createTestTool("issue_ticket")))
	require.NoError(t, Save(reg, path))

	loaded, err := LoadRegistry(path)
	require.NoError(t, err)
	assert.NotEmpty(t, loaded.LastUpdated)
	require.Len(t, loaded.Tools, 1)

	raw, err := loaded.Tools[0].RawInputSchema()
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"object","properties":{"places":{"type":"array"}},"required":["places"]}`, string(raw))
}

func TestLoadRegistry_Errors(t *testing.T) {
	_, err := LoadRegistry(filepath.Join(t.TempDir(), "missing.json"))
	assert.True(t, os.IsNotExist(err))

	_, err = Parse([]byte(`{"tools": 3}`))
	assert.Error(t, err)
}
