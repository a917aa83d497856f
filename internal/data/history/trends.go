package history

import (
	"fmt"
	"math"
	"time"
)

// BuildTrendReport turns a timestamp-ordered run series into trend points
// with per-run deltas and a moving average of cyclic modules over window.
func BuildTrendReport(runs []Run, window time.Duration) (TrendReport, error) {
	if len(runs) == 0 {
		return TrendReport{}, fmt.Errorf("no runs recorded")
	}

	points := make([]TrendPoint, 0, len(runs))
	for i, current := range runs {
		point := TrendPoint{
			Timestamp: current.Timestamp,
			RunID:     current.ID,
			Files:     current.Files,
			Modules:   current.Modules,
			Edges:     current.Edges,
			Cyclic:    current.Cyclic,
			Errors:    current.Errors,
			Warnings:  current.Warnings,
		}

		if i > 0 {
			prev := runs[i-1]
			point.DeltaFiles = current.Files - prev.Files
			point.DeltaModules = current.Modules - prev.Modules
			point.DeltaCyclic = current.Cyclic - prev.Cyclic
			point.DeltaErrors = current.Errors - prev.Errors
			point.DeltaWarnings = current.Warnings - prev.Warnings
		}

		point.AvgCyclic = round2(movingAvgCyclic(runs, i, window))
		point.WindowHours = round2(window.Hours())
		points = append(points, point)
	}

	return TrendReport{
		SchemaVersion: SchemaVersion,
		Since:         runs[0].Timestamp,
		Until:         runs[len(runs)-1].Timestamp,
		Window:        window.String(),
		RunCount:      len(points),
		Points:        points,
	}, nil
}

func movingAvgCyclic(runs []Run, index int, window time.Duration) float64 {
	if window <= 0 {
		return float64(runs[index].Cyclic)
	}

	cutoff := runs[index].Timestamp.Add(-window)
	total, count := 0, 0
	for i := index; i >= 0; i-- {
		if runs[i].Timestamp.Before(cutoff) {
			break
		}
		total += runs[i].Cyclic
		count++
	}
	if count == 0 {
		return 0
	}
	return float64(total) / float64(count)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
