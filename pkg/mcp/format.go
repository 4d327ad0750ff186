package mcp

import (
	"fmt"
	"strings"

	"github.com/lectio-ai/lectio/pkg/models"
)

// formatPlan formats a reading plan as a text table.
func formatPlan(plan models.ReadingPlan) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Week %d reading plan (%s, %s)\n\n", plan.Week, plan.AgeGroup, plan.Gender)
	if len(plan.Readings) == 0 {
		b.WriteString("No readings.\n")
		return b.String()
	}
	fmt.Fprintf(&b, "%-10s %-28s %s\n", "Day", "Reading", "Notes")
	b.WriteString(strings.Repeat("-", 72) + "\n")
	for _, r := range plan.Readings {
		fmt.Fprintf(&b, "%-10s %-28s %s\n", r.Day, r.Reading, r.Notes)
	}
	return b.String()
}

// formatStats formats cache and planner stats as text.
func formatStats(cache models.CacheStats, planner models.PlannerStats) string {
	total := cache.Hits + cache.Misses
	hitRate := float64(0)
	if total > 0 {
		hitRate = float64(cache.Hits) / float64(total) * 100
	}
	return fmt.Sprintf("Cache Statistics\n"+
		"  Entries:  %d\n"+
		"  Hits:     %d\n"+
		"  Misses:   %d\n"+
		"  Hit Rate: %.1f%%\n"+
		"Planner Statistics\n"+
		"  Requests:       %d\n"+
		"  Cache Hits:     %d\n"+
		"  Provider Calls: %d\n"+
		"  Fallbacks:      %d\n",
		cache.Entries, cache.Hits, cache.Misses, hitRate,
		planner.Requests, planner.CacheHits, planner.ProviderCalls, planner.Fallbacks)
}
