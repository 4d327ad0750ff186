package prompt

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildChildAll(t *testing.T) {
	p := Build("Child", "All")

	assert.Contains(t, p, "children aged 5-12")
	assert.NotContains(t, p, "Focus on themes")
}

func TestBuildAdultFemale(t *testing.T) {
	p := Build("Adult", "Female")

	assert.Contains(t, p, "adults aged 31-60")
	assert.Contains(t, p, "Focus on themes relevant to female readers.")
}

func TestBuildMandatesFormat(t *testing.T) {
	p := Build("Teen", "All")

	assert.Contains(t, p, "Day: [Day of week]\nReading: [Bible reference]\nNotes: [Brief theme]")
	assert.Contains(t, p, "Monday through Sunday")
}

func TestAudience(t *testing.T) {
	tests := map[string]string{
		"Child":      "children aged 5-12",
		"Teen":       "teenagers aged 13-17",
		"YoungAdult": "young adults aged 18-30",
		"Adult":      "adults aged 31-60",
		"Senior":     "seniors aged 60+",
		"child":      "adults",
		"Toddler":    "adults",
		"":           "adults",
	}
	for group, want := range tests {
		assert.Equal(t, want, Audience(group), "age group %q", group)
	}
}

func TestBuildUnknownAgeGroup(t *testing.T) {
	p := Build("Martian", "All")

	assert.Contains(t, p, "plan for adults.")
}
