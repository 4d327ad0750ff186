// Package prompt builds the instruction sent to the language model.
package prompt

import (
	"fmt"
	"strings"

	"github.com/lectio-ai/lectio/pkg/models"
)

// SystemPersona frames the model for every provider.
const SystemPersona = "You are a biblical scholar and pastor who creates meaningful Bible reading plans."

const defaultAudience = "adults"

var audiences = map[string]string{
	models.AgeChild:      "children aged 5-12",
	models.AgeTeen:       "teenagers aged 13-17",
	models.AgeYoungAdult: "young adults aged 18-30",
	models.AgeAdult:      "adults aged 31-60",
	models.AgeSenior:     "seniors aged 60+",
}

// Audience returns the human-readable description of an age group.
// Unknown groups get a generic adult description.
func Audience(ageGroup string) string {
	if desc, ok := audiences[ageGroup]; ok {
		return desc
	}
	return defaultAudience
}

// Build returns the user prompt for a 7-day plan.
func Build(ageGroup, gender string) string {
	focus := ""
	if gender != models.GenderAll {
		focus = fmt.Sprintf(" Focus on themes relevant to %s readers.", strings.ToLower(gender))
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Create a 7-day Bible reading plan for %s.%s\n\n", Audience(ageGroup), focus)
	b.WriteString("For each day (Monday through Sunday), provide:\n")
	b.WriteString("1. A specific Bible passage reference (book, chapter, and verses)\n")
	b.WriteString("2. A brief theme or note about the passage (one sentence, under 60 characters)\n\n")
	b.WriteString("Format each day exactly as:\n")
	fmt.Fprintf(&b, "%s [Day of week]\n", models.DayLabel)
	fmt.Fprintf(&b, "%s [Bible reference]\n", models.ReadingLabel)
	fmt.Fprintf(&b, "%s [Brief theme]\n\n", models.NotesLabel)
	b.WriteString("Make the readings age-appropriate, meaningful, and encourage spiritual growth.")
	return b.String()
}
