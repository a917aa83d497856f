package report

import (
	"encoding/json"
	"io"
	"time"

	"pycheck/internal/core/app"
)

// jsonSchemaVersion guards consumers of the machine-readable report against
// silent field changes.
const jsonSchemaVersion = 1

type jsonDocument struct {
	SchemaVersion int              `json:"schema_version"`
	RunID         string           `json:"run_id"`
	Root          string           `json:"root"`
	Timestamp     time.Time        `json:"timestamp"`
	DurationMS    int64            `json:"duration_ms"`
	Summary       jsonSummary      `json:"summary"`
	Diagnostics   []jsonDiagnostic `json:"diagnostics"`
	Warnings      []string         `json:"warnings,omitempty"`
}

type jsonSummary struct {
	Files         int `json:"files"`
	Modules       int `json:"modules"`
	Imports       int `json:"imports"`
	CyclicModules int `json:"cyclic_modules"`
	Errors        int `json:"errors"`
	Warnings      int `json:"warnings"`
}

type jsonDiagnostic struct {
	Rule     string `json:"rule"`
	Name     string `json:"name"`
	Severity string `json:"severity"`
	Message  string `json:"message"`
	File     string `json:"file"`
	Line     int    `json:"line"`
	Column   int    `json:"column"`
}

// JSONRenderer writes the full report as an indented JSON document.
type JSONRenderer struct{}

func (r *JSONRenderer) Render(w io.Writer, report *app.Report) error {
	errors, warnings := report.Counts()

	doc := jsonDocument{
		SchemaVersion: jsonSchemaVersion,
		RunID:         report.RunID,
		Root:          report.Root,
		Timestamp:     report.StartedAt,
		DurationMS:    report.Duration.Milliseconds(),
		Summary: jsonSummary{
			Files:         report.Files,
			Modules:       report.Modules,
			Imports:       report.Edges,
			CyclicModules: report.Cyclic,
			Errors:        errors,
			Warnings:      warnings,
		},
		Diagnostics: make([]jsonDiagnostic, 0, len(report.Diagnostics)),
		Warnings:    report.Warnings,
	}

	for _, diag := range report.Diagnostics {
		doc.Diagnostics = append(doc.Diagnostics, jsonDiagnostic{
			Rule:     diag.Rule,
			Name:     diag.Name,
			Severity: string(diag.Severity),
			Message:  diag.Message,
			File:     relPath(report.Root, diag.Location.File),
			Line:     diag.Location.Line,
			Column:   diag.Location.Column,
		})
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	_, err = w.Write(data)
	return err
}
