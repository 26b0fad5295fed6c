package parser

import (
	"context"
	"cratedeps/internal/core/errors"
	"cratedeps/internal/shared/observability"
	"time"
)

// Parser turns Rust source text into syntax trees. It is safe for concurrent
// use; every call leases its own tree-sitter parser from the pool.
type Parser struct {
	pool *parserPool
}

// NewParser returns a Rust parser. It panics when the bundled grammar is
// incompatible with the linked tree-sitter runtime.
func NewParser() *Parser {
	pool, err := newParserPool(RustLanguage())
	if err != nil {
		panic(err)
	}
	return &Parser{pool: pool}
}

// Parse parses source into a complete syntax tree. Sources that produce any
// ERROR or MISSING node fail with a CodeParse error wrapping *ParseError; no
// partial tree is returned.
func (p *Parser) Parse(ctx context.Context, source []byte) (*Tree, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	start := time.Now()
	sp, release := p.pool.lease()
	tree := sp.Parse(source, nil)
	release()
	observability.ParsingDuration.WithLabelValues(LanguageRust).Observe(time.Since(start).Seconds())

	if tree == nil {
		return nil, errors.New(errors.CodeInternal, "parse failed")
	}

	root := tree.RootNode()
	if root.HasError() {
		perr := newParseError(root, source)
		tree.Close()
		derr := &errors.DomainError{Code: errors.CodeParse, Message: "malformed rust source", Err: perr}
		return nil, derr.WithContext(errors.CtxLine, perr.Line).WithContext(errors.CtxColumn, perr.Column)
	}

	if err := ctx.Err(); err != nil {
		tree.Close()
		return nil, err
	}
	return &Tree{tree: tree, source: source}, nil
}

// ActiveParsers returns the number of parsers currently leased.
func (p *Parser) ActiveParsers() int {
	return p.pool.active()
}
