package parser

import (
	"cratedeps/internal/shared/observability"
	"fmt"
	"sync"
	"sync/atomic"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

// parserPool hands out tree-sitter parsers configured for one grammar and
// recycles them after use. Safe for concurrent use.
type parserPool struct {
	idle   sync.Pool
	leased atomic.Int64
}

// newParserPool builds a pool for lang. It fails when the grammar's ABI is
// not supported by the linked tree-sitter runtime.
func newParserPool(lang *sitter.Language) (*parserPool, error) {
	return newPoolWithSetup(func(sp *sitter.Parser) error {
		return sp.SetLanguage(lang)
	})
}

// newPoolWithSetup configures one parser up front so a setup failure surfaces
// here instead of on every later parse.
func newPoolWithSetup(setup func(*sitter.Parser) error) (*parserPool, error) {
	first := sitter.NewParser()
	if err := setup(first); err != nil {
		first.Close()
		return nil, fmt.Errorf("configure tree-sitter parser: %w", err)
	}

	p := &parserPool{}
	p.idle.New = func() any {
		sp := sitter.NewParser()
		if err := setup(sp); err != nil {
			panic(fmt.Errorf("configure tree-sitter parser: %w", err))
		}
		return sp
	}
	p.idle.Put(first)
	return p, nil
}

// lease returns a ready parser and a release func that must be called
// exactly once when the caller is done with it.
func (p *parserPool) lease() (*sitter.Parser, func()) {
	sp := p.idle.Get().(*sitter.Parser)
	observability.ParserPoolActive.Set(float64(p.leased.Add(1)))

	var once sync.Once
	return sp, func() {
		once.Do(func() {
			observability.ParserPoolActive.Set(float64(p.leased.Add(-1)))
			sp.Reset()
			p.idle.Put(sp)
		})
	}
}

func (p *parserPool) active() int {
	return int(p.leased.Load())
}
