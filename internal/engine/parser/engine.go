package parser

import (
	sitter "github.com/tree-sitter/go-tree-sitter"
)

// NodeHandler reacts to one syntax node. Returning true claims the node's
// subtree and stops the walker from descending into it.
type NodeHandler func(ctx *ExtractionContext, node *sitter.Node) bool

// ExtractionContext carries the source text and the fact sheet one
// extraction fills in.
type ExtractionContext struct {
	Source []byte
	File   *File
}

// ExtractorEngine drives a pre-order walk over the syntax tree and hands
// nodes to the handler registered for their kind.
type ExtractorEngine struct {
	byKind map[string]NodeHandler
}

func NewExtractorEngine(handlers map[string]NodeHandler) *ExtractorEngine {
	return &ExtractorEngine{byKind: handlers}
}

// Walk visits node and its subtree in source order.
func (e *ExtractorEngine) Walk(ctx *ExtractionContext, node *sitter.Node) {
	if node == nil {
		return
	}

	stack := []*sitter.Node{node}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if handler, ok := e.byKind[n.Kind()]; ok && handler(ctx, n) {
			continue
		}
		for i := n.ChildCount(); i > 0; i-- {
			if child := n.Child(i - 1); child != nil {
				stack = append(stack, child)
			}
		}
	}
}

// Text returns node's source text, empty for nil nodes.
func (c *ExtractionContext) Text(node *sitter.Node) string {
	if node == nil {
		return ""
	}
	start, end := node.StartByte(), node.EndByte()
	return string(c.Source[start:end])
}

// Location converts node's start position to the 1-based form diagnostics
// carry.
func (c *ExtractionContext) Location(node *sitter.Node) Location {
	pos := node.StartPosition()
	return Location{
		File:   c.File.Path,
		Line:   int(pos.Row) + 1,
		Column: int(pos.Column) + 1,
	}
}

// ChildText returns the text of node's first direct child of the given
// kind, empty when there is none.
func (c *ExtractionContext) ChildText(node *sitter.Node, kind string) string {
	if node == nil {
		return ""
	}
	for i := uint(0); i < node.ChildCount(); i++ {
		if child := node.Child(i); child.Kind() == kind {
			return c.Text(child)
		}
	}
	return ""
}
