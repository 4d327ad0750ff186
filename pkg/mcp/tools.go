package mcp

import (
	"context"
	"encoding/json"

	"github.com/lectio-ai/lectio/pkg/models"
)

// Tool names.
const (
	ToolReadingPlan = "reading_plan"
	ToolCacheStats  = "cache_stats"
)

type readingPlanArgs struct {
	AgeGroup string `json:"age_group"`
	Gender   string `json:"gender"`
}

type toolHandler func(ctx context.Context, s *Server, args json.RawMessage) ToolCallResult

var toolHandlers = map[string]toolHandler{
	ToolReadingPlan: handleReadingPlan,
	ToolCacheStats:  handleCacheStats,
}

var allTools = []ToolDefinition{
	{
		Name:        ToolReadingPlan,
		Description: "Generate this week's 7-day Bible reading plan for an audience.",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"age_group": map[string]any{
					"type":        "string",
					"description": "Child, Teen, YoungAdult, Adult, or Senior (optional, defaults to Adult)",
				},
				"gender": map[string]any{
					"type":        "string",
					"description": "Audience gender, or All for no gender framing (optional, defaults to All)",
				},
			},
		},
	},
	{
		Name:        ToolCacheStats,
		Description: "Show plan cache and planner statistics (entries, hits, misses, provider calls, fallbacks).",
		InputSchema: map[string]any{
			"type":       "object",
			"properties": map[string]any{},
		},
	},
}

func handleReadingPlan(ctx context.Context, s *Server, raw json.RawMessage) ToolCallResult {
	var args readingPlanArgs
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &args); err != nil {
			return errorResult("Invalid arguments: " + err.Error())
		}
	}
	if args.AgeGroup == "" {
		args.AgeGroup = models.AgeAdult
	}
	if args.Gender == "" {
		args.Gender = models.GenderAll
	}

	plan := models.ReadingPlan{
		Week:     models.WeekNumber(s.clock.Now()),
		AgeGroup: args.AgeGroup,
		Gender:   args.Gender,
		Readings: s.planner.GenerateReadings(ctx, args.AgeGroup, args.Gender),
	}
	return textResult(formatPlan(plan))
}

func handleCacheStats(ctx context.Context, s *Server, _ json.RawMessage) ToolCallResult {
	stats, err := s.planner.CacheStats(ctx)
	if err != nil {
		return errorResult("Error fetching cache stats: " + err.Error())
	}
	return textResult(formatStats(stats, s.planner.Stats()))
}

func textResult(text string) ToolCallResult {
	return ToolCallResult{
		Content: []ContentBlock{{Type: "text", Text: text}},
	}
}

func errorResult(text string) ToolCallResult {
	return ToolCallResult{
		Content: []ContentBlock{{Type: "text", Text: text}},
		IsError: true,
	}
}
