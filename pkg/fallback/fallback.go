// Package fallback holds the built-in plan served when no generated plan is available.
package fallback

import "github.com/lectio-ai/lectio/pkg/models"

var plan = []models.ReadingEntry{
	{Day: "Monday", Reading: "Psalm 23", Notes: "The Lord is my shepherd"},
	{Day: "Tuesday", Reading: "John 3:16-21", Notes: "God's love for the world"},
	{Day: "Wednesday", Reading: "Philippians 4:4-13", Notes: "Rejoice in the Lord always"},
	{Day: "Thursday", Reading: "Matthew 5:1-12", Notes: "The Beatitudes"},
	{Day: "Friday", Reading: "Romans 8:28-39", Notes: "More than conquerors"},
	{Day: "Saturday", Reading: "Ephesians 6:10-18", Notes: "The armor of God"},
	{Day: "Sunday", Reading: "1 Corinthians 13", Notes: "The greatest is love"},
}

// Plan returns a fresh copy of the built-in seven-day plan.
func Plan() []models.ReadingEntry {
	return models.ClonePlan(plan)
}
