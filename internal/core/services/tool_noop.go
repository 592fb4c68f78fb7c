package services

import (
	"context"

	"github.com/kweiss-dev/minerva/internal/core/domain"
)

// NoOpToolName is the explicit "nothing to do" signal. The loop treats it the
// same as an empty next action.
const NoOpToolName = "no_op"

// NewNoOpTool returns the explicit do-nothing tool. Always succeeds.
func NewNoOpTool() *domain.Tool {
	return &domain.Tool{
		Name:        NoOpToolName,
		Description: "Signals that no external information is needed. Use when the answer can be given directly.",
		Parameters: domain.ToolParameters{
			Properties: map[string]domain.ParamSpec{
				"reason": {
					Type:        "string",
					Description: "Why no action is needed.",
				},
			},
		},
		Execute: func(ctx context.Context, params map[string]any) (any, error) {
			reason, _ := params["reason"].(string)
			return map[string]any{"status": "noop", "reason": reason}, nil
		},
	}
}
