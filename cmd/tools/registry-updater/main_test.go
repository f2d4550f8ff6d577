package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"entity-mcp/pkg/registry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func copyRegistry(t *testing.T) string {
	data, err := os.ReadFile("../../../configs/tool-registry.json")
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "tool-registry.json")
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestSetField(t *testing.T) {
	tests := []struct {
		name      string
		field     string
		value     string
		expectErr bool
		check     func(t *testing.T, tool *registry.Tool)
	}{
		{name: "status", field: "status", value: "verified", check: func(t *testing.T, tool *registry.Tool) {
			assert.Equal(t, registry.StatusVerified, tool.ImplementationStatus)
		}},
		{name: "invalid status", field: "status", value: "done", expectErr: true},
		{name: "retries", field: "retries", value: "2", check: func(t *testing.T, tool *registry.Tool) {
			assert.Equal(t, 2, tool.Retries)
		}},
		{name: "invalid retries", field: "retries", value: "two", expectErr: true},
		{name: "tags", field: "tags", value: "support,tickets", check: func(t *testing.T, tool *registry.Tool) {
			assert.Equal(t, []string{"support", "tickets"}, tool.Tags)
		}},
		{name: "unknown field", field: "owner", value: "x", expectErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tool := &registry.Tool{Name: "issue_ticket"}
			err := setField(tool, tt.field, tt.value)
			if tt.expectErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			tt.check(t, tool)
		})
	}
}

func TestCommands(t *testing.T) {
	path := copyRegistry(t)

	out, err := execute(t, "validate", "--path", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Registry validation passed.")

	_, err = execute(t, "update", "--path", path, "--name", "issue_ticket", "--field", "timeout", "--value", "7s")
	require.NoError(t, err)

	_, err = execute(t, "add", "--path", path,
		"--name", "track_delivery", "--description", "Tracks a parcel",
		"--category", "support", "--taskType", "track-delivery")
	require.NoError(t, err)

	_, err = execute(t, "add", "--path", path,
		"--name", "track_delivery", "--description", "Tracks a parcel",
		"--category", "support", "--taskType", "track-delivery")
	assert.Error(t, err)

	reg, err := registry.LoadRegistry(path)
	require.NoError(t, err)
	tool, ok := reg.Find("issue_ticket")
	require.True(t, ok)
	assert.Equal(t, "7s", tool.Timeout)
	_, ok = reg.Find("track_delivery")
	assert.True(t, ok)

	out, err = execute(t, "list", "--path", path)
	require.NoError(t, err)
	assert.Contains(t, out, "recommend_coupons")
	assert.Contains(t, out, "track_delivery")
}
