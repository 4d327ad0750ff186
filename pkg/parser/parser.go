// Package parser turns free-form model output into reading entries.
//
// The parser is strict about order: an entry is only emitted when a Notes
// line arrives after both a Day and a Reading line. It does not reorder,
// guess, or complete missing fields.
package parser

import (
	"strings"

	"github.com/lectio-ai/lectio/pkg/models"
)

// Parse extracts reading entries from text in the Day/Reading/Notes format.
// The result may hold fewer than seven entries; callers decide whether that is usable.
func Parse(text string) []models.ReadingEntry {
	var (
		entries      []models.ReadingEntry
		day, reading string
	)

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if v, ok := cutLabel(line, models.DayLabel); ok {
			day = v
			continue
		}
		if v, ok := cutLabel(line, models.ReadingLabel); ok {
			reading = v
			continue
		}
		if notes, ok := cutLabel(line, models.NotesLabel); ok {
			if day != "" && reading != "" {
				entries = append(entries, models.ReadingEntry{
					Day:     day,
					Reading: reading,
					Notes:   notes,
				})
			}
			day, reading = "", ""
		}
	}

	return entries
}

// cutLabel reports whether line starts with label, ignoring case, and
// returns the trimmed remainder.
func cutLabel(line, label string) (string, bool) {
	if len(line) < len(label) || !strings.EqualFold(line[:len(label)], label) {
		return "", false
	}
	return strings.TrimSpace(line[len(label):]), true
}
