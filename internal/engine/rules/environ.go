package rules

import (
	"pycheck/internal/engine/parser"
)

// EnvironAssignmentRule flags plain assignments to os.environ. Replacing the
// mapping wholesale leaves variables from the old environment in place for
// child processes; callers almost always want item assignment instead.
type EnvironAssignmentRule struct {
	info Info
}

func NewEnvironAssignmentRule() *EnvironAssignmentRule {
	return &EnvironAssignmentRule{
		info: Info{ID: "PC002", Name: NameEnvironAssignment, Severity: SeverityWarning},
	}
}

func (r *EnvironAssignmentRule) Info() Info { return r.info }

func (r *EnvironAssignmentRule) Check(file *parser.File) ([]Diagnostic, error) {
	var out []Diagnostic
	for _, assign := range file.AttrAssigns {
		if assign.Target != "os.environ" {
			continue
		}
		out = append(out, r.info.diag("Assigning to `os.environ` doesn't clear the environment", assign.Location))
	}
	return out, nil
}
