package services

import (
	"context"
	"fmt"
	"time"

	"github.com/kweiss-dev/minerva/internal/core/domain"
)

// NewCurrentTimeTool returns the wall-clock lookup tool.
func NewCurrentTimeTool() *domain.Tool {
	return &domain.Tool{
		Name:        "current_time",
		Description: "Returns the current wall-clock time, optionally in a given IANA timezone.",
		Parameters: domain.ToolParameters{
			Properties: map[string]domain.ParamSpec{
				"timezone": {
					Type:        "string",
					Description: "IANA timezone identifier (e.g. 'Europe/Berlin'). Defaults to UTC.",
					Default:     "UTC",
				},
				"format": {
					Type:        "string",
					Description: "Which part of the timestamp to return.",
					Enum:        []string{"full", "date", "time"},
					Default:     "full",
				},
			},
		},
		Execute: func(ctx context.Context, params map[string]any) (any, error) {
			tz, _ := params["timezone"].(string)
			if tz == "" {
				tz = "UTC"
			}
			loc, err := time.LoadLocation(tz)
			if err != nil {
				return nil, fmt.Errorf("unknown timezone: %s", tz)
			}

			format, _ := params["format"].(string)
			now := time.Now().In(loc)

			var formatted string
			switch format {
			case "date":
				formatted = now.Format("2006-01-02")
			case "time":
				formatted = now.Format("15:04:05")
			default:
				formatted = now.Format(time.RFC3339)
			}

			return map[string]any{
				"time":     formatted,
				"timezone": tz,
			}, nil
		},
	}
}
