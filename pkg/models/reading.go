package models

import "time"

// Field labels of the per-day output format. The prompt asks the model to
// emit exactly these labels and the parser keys on them.
const (
	DayLabel     = "Day:"
	ReadingLabel = "Reading:"
	NotesLabel   = "Notes:"
)

// GenderAll means the plan carries no gender-specific framing.
const GenderAll = "All"

// Known age groups. Any other value is accepted and treated as a generic adult audience.
const (
	AgeChild      = "Child"
	AgeTeen       = "Teen"
	AgeYoungAdult = "YoungAdult"
	AgeAdult      = "Adult"
	AgeSenior     = "Senior"
)

// AgeGroups lists the known age groups in display order.
var AgeGroups = []string{AgeChild, AgeTeen, AgeYoungAdult, AgeAdult, AgeSenior}

// ReadingEntry is one day of a reading plan.
type ReadingEntry struct {
	Day       string `json:"day"`
	Reading   string `json:"reading"`
	Notes     string `json:"notes"`
	Completed bool   `json:"completed"`
}

// ReadingRequest identifies the audience a plan is generated for.
// It is comparable and used directly as a cache key.
type ReadingRequest struct {
	AgeGroup string `json:"age_group"`
	Gender   string `json:"gender"`
}

// ReadingPlan is the envelope handed to external callers.
type ReadingPlan struct {
	Week     int            `json:"week"`
	AgeGroup string         `json:"age_group"`
	Gender   string         `json:"gender"`
	Readings []ReadingEntry `json:"readings"`
}

// ClonePlan returns an independent copy of plan.
func ClonePlan(plan []ReadingEntry) []ReadingEntry {
	if plan == nil {
		return nil
	}
	out := make([]ReadingEntry, len(plan))
	copy(out, plan)
	return out
}

// WeekNumber returns the week of the year for t. Week one starts on the
// Monday of the week holding January 1st, or on January 2nd when the year
// starts on a Sunday.
func WeekNumber(t time.Time) int {
	y, m, d := t.Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	jan1 := time.Date(y, time.January, 1, 0, 0, 0, 0, time.UTC)
	offset := int(time.Monday) - int(jan1.Weekday())
	firstMonday := jan1.AddDate(0, 0, offset)
	days := int(today.Sub(firstMonday).Hours() / 24)
	return days/7 + 1
}
