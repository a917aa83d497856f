package report

import (
	"encoding/json"
	"io"
	"strings"

	"pycheck/internal/core/app"
	"pycheck/internal/engine/rules"
	"pycheck/internal/shared/version"
)

// The shapes below cover the slice of SARIF v2.1.0 this tool emits; the
// full JSON schema lives at sarifSchema.

const (
	sarifSchema  = "https://schemastore.azurewebsites.net/schemas/json/sarif-2.1.0-rtm.5.json"
	sarifVersion = "2.1.0"
)

// sarifLog is the top-level object of a SARIF document.
type sarifLog struct {
	Schema  string     `json:"$schema"`
	Version string     `json:"version"`
	Runs    []sarifRun `json:"runs"`
}

type sarifRun struct {
	Tool    sarifTool     `json:"tool"`
	Results []sarifResult `json:"results"`
}

type sarifTool struct {
	Driver sarifToolComponent `json:"driver"`
}

type sarifToolComponent struct {
	Name    string                     `json:"name"`
	Version string                     `json:"version"`
	Rules   []sarifReportingDescriptor `json:"rules"`
}

type sarifReportingDescriptor struct {
	ID               string               `json:"id"`
	Name             string               `json:"name"`
	ShortDescription sarifMessage         `json:"shortDescription"`
	DefaultConfig    sarifReportingConfig `json:"defaultConfiguration"`
}

type sarifReportingConfig struct {
	Level string `json:"level"`
}

type sarifResult struct {
	RuleID    string          `json:"ruleId"`
	Level     string          `json:"level"`
	Message   sarifMessage    `json:"message"`
	Locations []sarifLocation `json:"locations,omitempty"`
}

type sarifMessage struct {
	Text string `json:"text"`
}

type sarifLocation struct {
	PhysicalLocation sarifPhysicalLocation `json:"physicalLocation"`
}

type sarifPhysicalLocation struct {
	ArtifactLocation sarifArtifactLocation `json:"artifactLocation"`
	Region           *sarifRegion          `json:"region,omitempty"`
}

type sarifArtifactLocation struct {
	URI       string `json:"uri"`
	URIBaseID string `json:"uriBaseId"`
}

type sarifRegion struct {
	StartLine   int `json:"startLine,omitempty"`
	StartColumn int `json:"startColumn,omitempty"`
}

var sarifRuleDescriptions = map[string]string{
	"PC001": "Project modules import each other in a cycle.",
	"PC002": "Assignment replaces os.environ instead of updating it.",
	"PC003": "An except block returns an error value instead of raising.",
	"PC004": "__init__ returns a value other than None.",
}

// SARIFRenderer writes diagnostics as a SARIF v2.1.0 document for code
// scanning integrations. File URIs are made relative to the project root;
// absolute paths are never included so reports are safe to share.
type SARIFRenderer struct{}

func (r *SARIFRenderer) Render(w io.Writer, report *app.Report) error {
	results := make([]sarifResult, 0, len(report.Diagnostics))
	seen := make(map[string]bool, len(report.Diagnostics))

	for _, diag := range report.Diagnostics {
		seen[diag.Rule] = true
		result := sarifResult{
			RuleID:  diag.Rule,
			Level:   string(diag.Severity),
			Message: sarifMessage{Text: diag.Message},
		}
		if diag.Location.File != "" {
			loc := sarifLocation{
				PhysicalLocation: sarifPhysicalLocation{
					ArtifactLocation: sarifArtifactLocation{
						URI:       relPath(report.Root, diag.Location.File),
						URIBaseID: "%SRCROOT%",
					},
				},
			}
			if diag.Location.Line > 0 {
				loc.PhysicalLocation.Region = &sarifRegion{
					StartLine:   diag.Location.Line,
					StartColumn: diag.Location.Column,
				}
			}
			result.Locations = []sarifLocation{loc}
		}
		results = append(results, result)
	}

	doc := sarifLog{
		Schema:  sarifSchema,
		Version: sarifVersion,
		Runs: []sarifRun{
			{
				Tool: sarifTool{
					Driver: sarifToolComponent{
						Name:    "pycheck",
						Version: version.Version,
						Rules:   buildSARIFRules(seen),
					},
				},
				Results: results,
			},
		},
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}

// buildSARIFRules returns metadata for the rules that produced results, in
// catalog order.
func buildSARIFRules(seen map[string]bool) []sarifReportingDescriptor {
	out := make([]sarifReportingDescriptor, 0, len(seen))
	for _, info := range rules.CatalogInfo() {
		if !seen[info.ID] {
			continue
		}
		out = append(out, sarifReportingDescriptor{
			ID:               info.ID,
			Name:             camelName(info.Name),
			ShortDescription: sarifMessage{Text: sarifRuleDescriptions[info.ID]},
			DefaultConfig:    sarifReportingConfig{Level: string(info.Severity)},
		})
	}
	return out
}

// camelName converts a dashed rule name to the CamelCase form SARIF rule
// names conventionally use.
func camelName(name string) string {
	parts := strings.Split(name, "-")
	for i, part := range parts {
		parts[i] = titleCaser.String(part)
	}
	return strings.Join(parts, "")
}
