package parser

import (
	"strings"
	"time"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

// PythonExtractor reads the facts the rules need out of a parsed Python
// tree: imports, definitions, attribute assignments, returns, and calls.
type PythonExtractor struct {
	engine *ExtractorEngine
}

func NewPythonExtractor() *PythonExtractor {
	e := &PythonExtractor{}
	e.engine = NewExtractorEngine(map[string]NodeHandler{
		"import_statement":      e.extractImport,
		"import_from_statement": e.extractFromImport,
		"function_definition":   e.extractFunction,
		"class_definition":      e.extractClass,
		"assignment":            e.extractAssignment,
		"return_statement":      e.extractReturn,
		"call":                  e.extractCall,
	})
	return e
}

func (e *PythonExtractor) Extract(root *sitter.Node, source []byte, filePath string) (*File, error) {
	file := &File{
		Path:     filePath,
		ParsedAt: time.Now(),
	}
	e.engine.Walk(&ExtractionContext{Source: source, File: file}, root)
	return file, nil
}

func (e *PythonExtractor) extractImport(ctx *ExtractionContext, node *sitter.Node) bool {
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		switch child.Kind() {
		case "dotted_name", "identifier":
			appendImport(ctx, node, ctx.Text(child), "")
		case "aliased_import":
			appendImport(ctx, node,
				ctx.Text(child.ChildByFieldName("name")),
				ctx.Text(child.ChildByFieldName("alias")))
		}
	}
	return true
}

func appendImport(ctx *ExtractionContext, node *sitter.Node, module, alias string) {
	ctx.File.Imports = append(ctx.File.Imports, Import{
		Module:    module,
		RawImport: module,
		Alias:     alias,
		Location:  ctx.Location(node),
	})
}

func (e *PythonExtractor) extractFromImport(ctx *ExtractionContext, node *sitter.Node) bool {
	imp := Import{Location: ctx.Location(node)}

	if mod := node.ChildByFieldName("module_name"); mod != nil {
		text := ctx.Text(mod)
		if mod.Kind() == "relative_import" {
			imp.IsRelative = true
			imp.Module = strings.TrimLeft(text, ".")
			imp.Level = len(text) - len(imp.Module)
		} else {
			imp.Module = text
		}
	}
	imp.RawImport = imp.Module
	imp.Items = fromImportItems(ctx, node)

	ctx.File.Imports = append(ctx.File.Imports, imp)
	return true
}

// fromImportItems collects the names after the import keyword, parenthesized
// or not. The module_name child sits before the keyword, so keying on it
// keeps module and members apart.
func fromImportItems(ctx *ExtractionContext, node *sitter.Node) []string {
	var items []string
	seenImport := false
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		switch {
		case child.Kind() == "import":
			seenImport = true
		case !seenImport:
		case child.Kind() == "dotted_name" || child.Kind() == "identifier":
			items = append(items, ctx.Text(child))
		case child.Kind() == "aliased_import":
			// "from x import y as z": only y names a member of x.
			if name := child.ChildByFieldName("name"); name != nil {
				items = append(items, ctx.Text(name))
			}
		case child.Kind() == "wildcard_import":
			items = append(items, "*")
		}
	}
	return items
}

func (e *PythonExtractor) extractFunction(ctx *ExtractionContext, node *sitter.Node) bool {
	return e.recordDefinition(ctx, node, KindFunction)
}

func (e *PythonExtractor) extractClass(ctx *ExtractionContext, node *sitter.Node) bool {
	return e.recordDefinition(ctx, node, KindClass)
}

func (e *PythonExtractor) recordDefinition(ctx *ExtractionContext, node *sitter.Node, kind DefinitionKind) bool {
	name := ctx.ChildText(node, "identifier")
	if name == "" {
		return false
	}

	ctx.File.Definitions = append(ctx.File.Definitions, Definition{
		Name:       name,
		FullName:   qualifyName(ctx.File.Module, name),
		Kind:       kind,
		Scope:      enclosingScope(node),
		Decorators: e.pythonDecorators(ctx, node),
		Location:   ctx.Location(node),
	})
	return false
}

func qualifyName(module, name string) string {
	if module == "" {
		return name
	}
	return module + "." + name
}

func (e *PythonExtractor) extractAssignment(ctx *ExtractionContext, node *sitter.Node) bool {
	left := node.ChildByFieldName("left")
	if left == nil || left.Kind() != "attribute" {
		return false
	}
	ctx.File.AttrAssigns = append(ctx.File.AttrAssigns, AttrAssign{
		Target:   ctx.Text(left),
		Location: ctx.Location(node),
	})
	return false
}

func (e *PythonExtractor) extractReturn(ctx *ExtractionContext, node *sitter.Node) bool {
	fn := enclosingFunction(node)
	if fn == nil {
		return false
	}
	ret := Return{
		Function: ctx.ChildText(fn, "identifier"),
		Scope:    enclosingScope(fn),
		Location: ctx.Location(node),
	}
	if node.NamedChildCount() > 0 {
		ret.HasValue = true
		ret.Value = ctx.Text(node.NamedChild(0))
	}
	ctx.File.Returns = append(ctx.File.Returns, ret)
	return false
}

func (e *PythonExtractor) extractCall(ctx *ExtractionContext, node *sitter.Node) bool {
	fn := node.ChildByFieldName("function")
	if fn == nil {
		return false
	}
	if kind := fn.Kind(); kind != "attribute" && kind != "identifier" {
		return false
	}
	ctx.File.Calls = append(ctx.File.Calls, Call{
		Callee:   ctx.Text(fn),
		InExcept: inExceptClause(node),
		Location: ctx.Location(node),
	})
	return false
}

func (e *PythonExtractor) pythonDecorators(ctx *ExtractionContext, node *sitter.Node) []string {
	if node == nil {
		return nil
	}
	parent := node.Parent()
	if parent == nil || parent.Kind() != "decorated_definition" {
		return nil
	}

	var decorators []string
	for i := uint(0); i < parent.ChildCount(); i++ {
		child := parent.Child(i)
		if child.Kind() != "decorator" {
			continue
		}
		if dec := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(ctx.Text(child)), "@")); dec != "" {
			decorators = append(decorators, dec)
		}
	}
	return decorators
}

// enclosingFunction returns the nearest function_definition ancestor, or nil
// for module-level code.
func enclosingFunction(node *sitter.Node) *sitter.Node {
	for p := node.Parent(); p != nil; p = p.Parent() {
		if p.Kind() == "function_definition" {
			return p
		}
	}
	return nil
}

// enclosingScope classifies where a definition lives by its nearest enclosing
// definition: directly inside a class is "method", inside another function is
// "nested", otherwise "global".
func enclosingScope(node *sitter.Node) string {
	for p := node.Parent(); p != nil; p = p.Parent() {
		switch p.Kind() {
		case "class_definition":
			return "method"
		case "function_definition":
			return "nested"
		}
	}
	return "global"
}

// inExceptClause reports whether node sits inside an except handler of its
// own function. The walk stops at function or class boundaries so that code
// in a def nested under an except block is not treated as handler code.
func inExceptClause(node *sitter.Node) bool {
	for p := node.Parent(); p != nil; p = p.Parent() {
		switch p.Kind() {
		case "except_clause":
			return true
		case "function_definition", "class_definition":
			return false
		}
	}
	return false
}
