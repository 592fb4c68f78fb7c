package domain

import (
	"context"
	"fmt"
	"sort"
	"strings"
)

// ParamSpec describes one tool parameter.
type ParamSpec struct {
	Type        string   `json:"type"`
	Description string   `json:"description"`
	Required    bool     `json:"required,omitempty"`
	Enum        []string `json:"enum,omitempty"`
	Default     any      `json:"default,omitempty"`
}

// ToolParameters defines the input schema for a tool.
type ToolParameters struct {
	Properties map[string]ParamSpec `json:"properties"`
	Required   []string             `json:"required"`
}

// ToolResult is the uniform envelope every tool execution produces.
// Data is tool-specific; interpretation belongs to the caller.
type ToolResult struct {
	Success  bool           `json:"success"`
	Data     any            `json:"data,omitempty"`
	Error    string         `json:"error,omitempty"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// ToolExecutor is the function signature for tool execution.
type ToolExecutor func(ctx context.Context, params map[string]any) (any, error)

// Tool represents an executable capability available to the agent.
type Tool struct {
	Name        string
	Description string
	Parameters  ToolParameters
	Execute     ToolExecutor
}

// ToolRegistry manages available tools. Write-once at startup, read-only
// afterwards, so concurrent requests share it without locking.
type ToolRegistry struct {
	tools map[string]*Tool
}

// NewToolRegistry creates a new empty registry.
func NewToolRegistry() *ToolRegistry {
	return &ToolRegistry{
		tools: make(map[string]*Tool),
	}
}

// Register adds a tool to the registry.
func (r *ToolRegistry) Register(tool *Tool) error {
	if tool.Name == "" {
		return fmt.Errorf("tool name cannot be empty")
	}
	r.tools[tool.Name] = tool
	return nil
}

// Execute runs a tool with the given parameters. It never returns a Go error:
// unknown names, missing required parameters, executor errors, and executor
// panics all normalize into a failed ToolResult so the orchestration loop can
// call it without its own recovery layer. A hallucinated tool name is a
// normal, expected outcome here.
func (r *ToolRegistry) Execute(ctx context.Context, name string, params map[string]any) (result ToolResult) {
	defer func() {
		if rec := recover(); rec != nil {
			result = ToolResult{Success: false, Error: fmt.Sprintf("tool %s panicked: %v", name, rec)}
		}
	}()

	tool, ok := r.tools[name]
	if !ok {
		return ToolResult{Success: false, Error: fmt.Sprintf("tool not found: %s", name)}
	}

	for _, req := range tool.Parameters.Required {
		v, present := params[req]
		if !present || v == nil {
			return ToolResult{Success: false, Error: fmt.Sprintf("missing required parameter: %s", req)}
		}
	}

	data, err := tool.Execute(ctx, params)
	if err != nil {
		return ToolResult{Success: false, Error: err.Error()}
	}
	return ToolResult{Success: true, Data: data}
}

// GetTool returns a tool by name.
func (r *ToolRegistry) GetTool(name string) (*Tool, bool) {
	tool, ok := r.tools[name]
	return tool, ok
}

// ListTools returns all registered tools sorted by name.
func (r *ToolRegistry) ListTools() []*Tool {
	tools := make([]*Tool, 0, len(r.tools))
	for _, tool := range r.tools {
		tools = append(tools, tool)
	}
	sort.Slice(tools, func(i, j int) bool { return tools[i].Name < tools[j].Name })
	return tools
}

// FormatForPrompt generates a concise tool catalogue for the LLM prompt.
// Compact format: name — description (params) to reduce token usage.
func (r *ToolRegistry) FormatForPrompt() string {
	var b strings.Builder
	b.WriteString("Available Tools:\n")
	for _, tool := range r.ListTools() {
		paramsList := ""
		if len(tool.Parameters.Properties) > 0 {
			names := make([]string, 0, len(tool.Parameters.Properties))
			for pName := range tool.Parameters.Properties {
				names = append(names, pName)
			}
			sort.Strings(names)
			parts := make([]string, 0, len(names))
			for _, pName := range names {
				parts = append(parts, pName+":"+tool.Parameters.Properties[pName].Type)
			}
			paramsList = " | params: {" + strings.Join(parts, ", ") + "}"
		}
		reqParams := ""
		if len(tool.Parameters.Required) > 0 {
			reqParams = " | required: " + strings.Join(tool.Parameters.Required, ", ")
		}
		fmt.Fprintf(&b, "- %s: %s%s%s\n", tool.Name, tool.Description, paramsList, reqParams)
	}
	return b.String()
}

// FilterByNames returns a new registry containing only the named tools.
// The new registry shares Tool pointers with the original.
func (r *ToolRegistry) FilterByNames(names []string) *ToolRegistry {
	allowed := make(map[string]struct{}, len(names))
	for _, n := range names {
		allowed[n] = struct{}{}
	}
	filtered := NewToolRegistry()
	for name, tool := range r.tools {
		if _, ok := allowed[name]; ok {
			filtered.tools[name] = tool
		}
	}
	return filtered
}
