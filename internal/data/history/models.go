package history

import "time"

const SchemaVersion = 1

// Run is one persisted analysis run: headline counts plus per-rule
// diagnostic totals.
type Run struct {
	ID         string         `json:"id"`
	Timestamp  time.Time      `json:"timestamp"`
	Root       string         `json:"root,omitempty"`
	Files      int            `json:"files"`
	Modules    int            `json:"modules"`
	Edges      int            `json:"edges"`
	Cyclic     int            `json:"cyclic_modules"`
	Errors     int            `json:"errors"`
	Warnings   int            `json:"warnings"`
	Duration   time.Duration  `json:"duration"`
	RuleCounts map[string]int `json:"rule_counts,omitempty"`
}

// TrendPoint is one run in a trend series, annotated with deltas against
// the previous run and a moving average of cyclic modules.
type TrendPoint struct {
	Timestamp     time.Time `json:"timestamp"`
	RunID         string    `json:"run_id"`
	Files         int       `json:"files"`
	Modules       int       `json:"modules"`
	Edges         int       `json:"edges"`
	Cyclic        int       `json:"cyclic_modules"`
	Errors        int       `json:"errors"`
	Warnings      int       `json:"warnings"`
	DeltaFiles    int       `json:"delta_files"`
	DeltaModules  int       `json:"delta_modules"`
	DeltaCyclic   int       `json:"delta_cyclic"`
	DeltaErrors   int       `json:"delta_errors"`
	DeltaWarnings int       `json:"delta_warnings"`
	AvgCyclic     float64   `json:"avg_cyclic"`
	WindowHours   float64   `json:"window_hours"`
}

type TrendReport struct {
	SchemaVersion int          `json:"schema_version"`
	Since         time.Time    `json:"since"`
	Until         time.Time    `json:"until"`
	Window        string       `json:"window"`
	RunCount      int          `json:"run_count"`
	Points        []TrendPoint `json:"points"`
}
