package rules

import (
	"strings"

	"pycheck/internal/engine/parser"
)

// ErrorInsteadOfExceptionRule flags logger .error() calls inside except
// clauses, where .exception() would capture the active traceback for free.
type ErrorInsteadOfExceptionRule struct {
	info Info
}

func NewErrorInsteadOfExceptionRule() *ErrorInsteadOfExceptionRule {
	return &ErrorInsteadOfExceptionRule{
		info: Info{ID: "PC003", Name: NameErrorInsteadOfException, Severity: SeverityWarning},
	}
}

func (r *ErrorInsteadOfExceptionRule) Info() Info { return r.info }

func (r *ErrorInsteadOfExceptionRule) Check(file *parser.File) ([]Diagnostic, error) {
	var out []Diagnostic
	for _, call := range file.Calls {
		if !call.InExcept {
			continue
		}
		if !isLoggerErrorCall(call.Callee) {
			continue
		}
		out = append(out, r.info.diag("Use `logging.exception` instead of `logging.error`", call.Location))
	}
	return out, nil
}

// isLoggerErrorCall matches <receiver>.error where the receiver is the
// logging module or named like a logger (logger.error, self.log.error,
// LOG.error). Bare error() calls and unrelated receivers are left alone.
func isLoggerErrorCall(callee string) bool {
	dot := strings.LastIndexByte(callee, '.')
	if dot < 0 {
		return false
	}
	if callee[:dot] == "" || callee[dot+1:] != "error" {
		return false
	}
	receiver := strings.ToLower(callee[:dot])
	return receiver == "logging" || strings.Contains(receiver, "log")
}
