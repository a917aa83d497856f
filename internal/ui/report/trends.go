package report

import (
	"encoding/json"
	"fmt"
	"strings"

	"pycheck/internal/data/history"
)

// RenderTrendsText writes one tab-separated row per recorded run, newest
// last, for terminal reading or cutting into spreadsheets.
func RenderTrendsText(report history.TrendReport) ([]byte, error) {
	var buf strings.Builder

	buf.WriteString("Timestamp\tRunID\tFiles\tModules\tImports\tCyclic\tErrors\tWarnings\tDeltaFiles\tDeltaModules\tDeltaCyclic\tDeltaErrors\tDeltaWarnings\tAvgCyclic\tWindowHours\n")
	for _, point := range report.Points {
		buf.WriteString(fmt.Sprintf(
			"%s\t%s\t%d\t%d\t%d\t%d\t%d\t%d\t%d\t%d\t%d\t%d\t%d\t%.2f\t%.2f\n",
			point.Timestamp.Format("2006-01-02T15:04:05Z07:00"),
			point.RunID,
			point.Files,
			point.Modules,
			point.Edges,
			point.Cyclic,
			point.Errors,
			point.Warnings,
			point.DeltaFiles,
			point.DeltaModules,
			point.DeltaCyclic,
			point.DeltaErrors,
			point.DeltaWarnings,
			point.AvgCyclic,
			point.WindowHours,
		))
	}

	return []byte(buf.String()), nil
}

// RenderTrendsJSON writes the full trend report as indented JSON.
func RenderTrendsJSON(report history.TrendReport) ([]byte, error) {
	return json.MarshalIndent(report, "", "  ")
}
