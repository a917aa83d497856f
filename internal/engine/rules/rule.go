package rules

import (
	"sort"

	"pycheck/internal/engine/parser"
)

type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Info identifies a rule: a stable ID for reports and a human name used in
// configuration.
type Info struct {
	ID       string
	Name     string
	Severity Severity
}

const (
	NameCyclicImport            = "cyclic-import"
	NameEnvironAssignment       = "environ-assignment"
	NameErrorInsteadOfException = "error-instead-of-exception"
	NameReturnInInit            = "return-in-init"
)

// CatalogInfo lists every shipped rule's identity in ID order.
func CatalogInfo() []Info {
	return []Info{
		{ID: "PC001", Name: NameCyclicImport, Severity: SeverityWarning},
		{ID: "PC002", Name: NameEnvironAssignment, Severity: SeverityWarning},
		{ID: "PC003", Name: NameErrorInsteadOfException, Severity: SeverityWarning},
		{ID: "PC004", Name: NameReturnInInit, Severity: SeverityError},
	}
}

// Catalog lists every shipped rule name, for configuration validation.
func Catalog() []string {
	infos := CatalogInfo()
	out := make([]string, len(infos))
	for i, info := range infos {
		out[i] = info.Name
	}
	return out
}

// Diagnostic is one finding of one rule at one source location.
type Diagnostic struct {
	Rule     string // rule ID, e.g. PC001
	Name     string // rule name, e.g. cyclic-import
	Severity Severity
	Message  string
	Location parser.Location
}

func (i Info) diag(msg string, loc parser.Location) Diagnostic {
	return Diagnostic{
		Rule:     i.ID,
		Name:     i.Name,
		Severity: i.Severity,
		Message:  msg,
		Location: loc,
	}
}

// Rule checks one parsed file. Checks run concurrently across files and must
// be safe for use from multiple goroutines. An error means the run is in an
// inconsistent state and must abort; findings are never reported as errors.
type Rule interface {
	Info() Info
	Check(file *parser.File) ([]Diagnostic, error)
}

// Registry holds the rules enabled for a run, in stable ID order.
type Registry struct {
	rules []Rule
}

func NewRegistry(rules ...Rule) *Registry {
	out := &Registry{rules: append([]Rule(nil), rules...)}
	sort.Slice(out.rules, func(i, j int) bool {
		return out.rules[i].Info().ID < out.rules[j].Info().ID
	})
	return out
}

func (r *Registry) Rules() []Rule {
	return r.rules
}

func (r *Registry) Lookup(name string) (Rule, bool) {
	for _, rule := range r.rules {
		if info := rule.Info(); info.Name == name || info.ID == name {
			return rule, true
		}
	}
	return nil, false
}

// Sort orders diagnostics by file, line, column, then rule ID, so repeated
// runs over the same tree render identically.
func Sort(diags []Diagnostic) {
	sort.Slice(diags, func(i, j int) bool {
		a, b := diags[i], diags[j]
		if a.Location.File != b.Location.File {
			return a.Location.File < b.Location.File
		}
		if a.Location.Line != b.Location.Line {
			return a.Location.Line < b.Location.Line
		}
		if a.Location.Column != b.Location.Column {
			return a.Location.Column < b.Location.Column
		}
		return a.Rule < b.Rule
	})
}
