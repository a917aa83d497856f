package parser

import (
	"time"
)

type File struct {
	Path        string
	Module      string // Fully qualified dotted module name, set by the resolver
	Imports     []Import
	Definitions []Definition
	Calls       []Call
	AttrAssigns []AttrAssign
	Returns     []Return
	ParsedAt    time.Time
}

type Import struct {
	Module     string   // Imported module as written ("" for bare "from . import x")
	RawImport  string   // Original import text
	Alias      string   // Optional alias
	Items      []string // For "from X import Y, Z"
	IsRelative bool
	Level      int // Leading dots on a relative import
	Location   Location
}

type Definition struct {
	Name       string
	FullName   string // module.name once the module is known
	Kind       DefinitionKind
	Scope      string // global, class, method, nested
	Decorators []string
	Location   Location
}

// Call is a call expression with a dotted callee, tagged with whether it
// occurs inside an except clause of its enclosing function.
type Call struct {
	Callee   string
	InExcept bool
	Location Location
}

// AttrAssign is a plain assignment whose left side is an attribute
// expression, e.g. `os.environ = {...}`.
type AttrAssign struct {
	Target   string
	Location Location
}

// Return is an explicit return statement together with the function it
// returns from.
type Return struct {
	Function string
	Scope    string // scope of the enclosing function: global, method, nested
	HasValue bool
	Value    string // source text of the returned expression, "" on bare return
	Location Location
}

type Location struct {
	File   string
	Line   int // 1-based
	Column int // 1-based
}

type DefinitionKind int

const (
	KindFunction DefinitionKind = iota
	KindClass
)

func (k DefinitionKind) String() string {
	switch k {
	case KindFunction:
		return "function"
	case KindClass:
		return "class"
	default:
		return "unknown"
	}
}
