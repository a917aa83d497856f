package parser

import (
	"sync"
	"sync/atomic"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

// ParserPool hands out tree-sitter parsers configured for one grammar.
// Parsers are recycled through a sync.Pool, so a scan parses thousands of
// files without paying for NewParser on each. Callers pair every Get with
// a Put once the parse tree has been consumed.
//
// Safe for concurrent use.
type ParserPool struct {
	lang   *sitter.Language
	pool   sync.Pool
	active atomic.Int64
}

// NewParserPool builds a pool for lang, which must stay valid for the
// pool's lifetime.
func NewParserPool(lang *sitter.Language) *ParserPool {
	p := &ParserPool{lang: lang}
	p.pool.New = func() any {
		sp := sitter.NewParser()
		sp.SetLanguage(lang)
		return sp
	}
	return p
}

// Get leases a parser that is ready to parse the pool's language.
func (p *ParserPool) Get() *sitter.Parser {
	sp := p.pool.Get().(*sitter.Parser)
	// The language survives Reset, but not an external SetLanguage.
	sp.SetLanguage(p.lang)
	p.active.Add(1)
	return sp
}

// Put resets sp and returns it to the pool. sp must not be used afterwards;
// a nil sp is ignored.
func (p *ParserPool) Put(sp *sitter.Parser) {
	if sp == nil {
		return
	}
	p.active.Add(-1)
	sp.Reset()
	p.pool.Put(sp)
}

// Active reports the number of currently leased parsers.
func (p *ParserPool) Active() int {
	return int(p.active.Load())
}
