// cmd/tools/registry-updater/main.go
package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"entity-mcp/pkg/registry"

	"github.com/spf13/cobra"
)

var registryPath string

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "registry-updater",
		Short:         "Maintains the MCP tool registry",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&registryPath, "path", "configs/tool-registry.json", "Path to registry file")

	root.AddCommand(newListCmd(), newValidateCmd(), newAddCmd(), newUpdateCmd())
	return root
}

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List registered tools",
		RunE: func(cmd *cobra.Command, _ []string) error {
			reg, err := registry.LoadRegistry(registryPath)
			if err != nil {
				return fmt.Errorf("failed to load registry: %w", err)
			}
			for _, tool := range reg.Tools {
				fmt.Fprintf(cmd.OutOrStdout(), "%-20s %-20s %-12s %s\n", tool.Name, tool.TaskType, tool.ImplementationStatus, tool.Timeout)
			}
			return nil
		},
	}
}

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate names, task types and input schemas",
		RunE: func(cmd *cobra.Command, _ []string) error {
			reg, err := registry.LoadRegistry(registryPath)
			if err != nil {
				return fmt.Errorf("failed to load registry: %w", err)
			}
			if err := reg.Validate(); err != nil {
				return fmt.Errorf("registry validation failed: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Registry validation passed.")
			return nil
		},
	}
}

func newAddCmd() *cobra.Command {
	tool := registry.Tool{}
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a tool with an empty input schema",
		RunE: func(cmd *cobra.Command, _ []string) error {
			reg, err := registry.LoadRegistry(registryPath)
			if err != nil {
				if !os.IsNotExist(err) {
					return fmt.Errorf("failed to load registry: %w", err)
				}
				reg = &registry.ToolRegistry{Version: "1.0.0"}
			}

			tool.InputSchema = map[string]interface{}{"type": "object", "properties": map[string]interface{}{}}
			tool.ErrorCodes = []string{}
			tool.Tags = []string{}
			if err := reg.Add(tool); err != nil {
				return err
			}
			if err := reg.Validate(); err != nil {
				return err
			}
			if err := registry.Save(reg, registryPath); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added tool: %s\n", tool.Name)
			return nil
		},
	}

	cmd.Flags().StringVar(&tool.Name, "name", "", "Tool name (e.g. recommend_coupons)")
	cmd.Flags().StringVar(&tool.DisplayName, "displayName", "", "Display name")
	cmd.Flags().StringVar(&tool.Description, "description", "", "Description")
	cmd.Flags().StringVar(&tool.Category, "category", "", "Category (e.g. membership)")
	cmd.Flags().StringVar(&tool.TaskType, "taskType", "", "Zeebe task type (e.g. recommend-coupons)")
	cmd.Flags().StringVar(&tool.Version, "version", "1.0.0", "Version")
	cmd.Flags().StringVar(&tool.ImplementationStatus, "status", registry.StatusPlanned, "Implementation status (planned, in-progress, completed, verified)")
	cmd.Flags().StringVar(&tool.Timeout, "timeout", "10s", "Call timeout")
	for _, name := range []string{"name", "description", "category", "taskType"} {
		_ = cmd.MarkFlagRequired(name)
	}
	return cmd
}

func newUpdateCmd() *cobra.Command {
	var name, field, value string
	cmd := &cobra.Command{
		Use:   "update",
		Short: "Update a single field of a tool",
		RunE: func(cmd *cobra.Command, _ []string) error {
			reg, err := registry.LoadRegistry(registryPath)
			if err != nil {
				return fmt.Errorf("failed to load registry: %w", err)
			}
			tool, ok := reg.Find(name)
			if !ok {
				return fmt.Errorf("tool %s not found", name)
			}
			if err := setField(tool, field, value); err != nil {
				return err
			}
			if err := registry.Save(reg, registryPath); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated tool %s, field %s to %s\n", name, field, value)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Tool name to update")
	cmd.Flags().StringVar(&field, "field", "", "Field to update (status, version, displayName, description, category, taskType, timeout, retries, tags)")
	cmd.Flags().StringVar(&value, "value", "", "New value for the field")
	for _, flag := range []string{"name", "field", "value"} {
		_ = cmd.MarkFlagRequired(flag)
	}
	return cmd
}

func setField(tool *registry.Tool, field, value string) error {
	switch field {
	case "status":
		switch value {
		case registry.StatusPlanned, registry.StatusInProgress, registry.StatusCompleted, registry.StatusVerified:
			tool.ImplementationStatus = value
		default:
			return fmt.Errorf("invalid status: %s", value)
		}
	case "version":
		tool.Version = value
	case "displayName":
		tool.DisplayName = value
	case "description":
		tool.Description = value
	case "category":
		tool.Category = value
	case "taskType":
		tool.TaskType = value
	case "timeout":
		tool.Timeout = value
	case "retries":
		retries, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid retries value: %w", err)
		}
		tool.Retries = retries
	case "tags":
		tool.Tags = strings.Split(value, ",")
	default:
		return fmt.Errorf("unknown field: %s", field)
	}
	return nil
}
