package parser

import (
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_python "github.com/tree-sitter/tree-sitter-python/bindings/go"

	"pycheck/internal/core/errors"
)

// Parser turns Python source files into File facts. It owns the tree-sitter
// grammar and a pool of parser instances; one Parser serves all workers.
type Parser struct {
	lang      *sitter.Language
	pool      *ParserPool
	extractor *PythonExtractor
}

func NewParser() *Parser {
	lang := sitter.NewLanguage(tree_sitter_python.Language())
	return &Parser{
		lang:      lang,
		pool:      NewParserPool(lang),
		extractor: NewPythonExtractor(),
	}
}

// Supports reports whether path looks like a Python source file.
func (p *Parser) Supports(path string) bool {
	return strings.HasSuffix(strings.ToLower(path), ".py")
}

func (p *Parser) ParseFile(path string, content []byte) (*File, error) {
	if !p.Supports(path) {
		return nil, errors.New(errors.CodeNotSupported, "not a python file")
	}

	sp := p.pool.Get()
	defer p.pool.Put(sp)

	tree := sp.Parse(content, nil)
	if tree == nil {
		return nil, errors.Newf(errors.CodeParseError, "parse failed: %s", path)
	}
	defer tree.Close()

	file, err := p.extractor.Extract(tree.RootNode(), content, path)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeParseError, "extraction failed")
	}
	return file, nil
}

// ActiveParsers reports how many pooled parsers are currently leased.
func (p *Parser) ActiveParsers() int {
	return p.pool.Active()
}
