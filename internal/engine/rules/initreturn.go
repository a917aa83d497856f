package rules

import (
	"pycheck/internal/engine/parser"
)

// ReturnInInitRule flags __init__ methods returning a value. __init__ must
// return None; any other value raises TypeError at instantiation. A bare
// return or an explicit `return None` is fine.
type ReturnInInitRule struct {
	info Info
}

func NewReturnInInitRule() *ReturnInInitRule {
	return &ReturnInInitRule{
		info: Info{ID: "PC004", Name: NameReturnInInit, Severity: SeverityError},
	}
}

func (r *ReturnInInitRule) Info() Info { return r.info }

func (r *ReturnInInitRule) Check(file *parser.File) ([]Diagnostic, error) {
	var out []Diagnostic
	for _, ret := range file.Returns {
		if ret.Function != "__init__" || ret.Scope != "method" {
			continue
		}
		if !ret.HasValue || ret.Value == "None" {
			continue
		}
		out = append(out, r.info.diag("Explicit return in `__init__`", ret.Location))
	}
	return out, nil
}
