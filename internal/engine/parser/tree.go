package parser

import (
	"fmt"
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

// Tree is a fully parsed, error-free syntax tree together with the source it
// was parsed from. Close must be called once the tree is no longer needed.
type Tree struct {
	tree   *sitter.Tree
	source []byte
}

// Root returns the source_file node.
func (t *Tree) Root() *sitter.Node {
	return t.tree.RootNode()
}

// Source returns the bytes the tree was parsed from.
func (t *Tree) Source() []byte {
	return t.source
}

// Text returns the source text spanned by node.
func (t *Tree) Text(node *sitter.Node) string {
	if node == nil {
		return ""
	}
	return string(t.source[node.StartByte():node.EndByte()])
}

// Close releases the underlying tree-sitter tree. It is safe to call twice.
func (t *Tree) Close() {
	if t != nil && t.tree != nil {
		t.tree.Close()
		t.tree = nil
	}
}

// ParseError describes the first syntax error found in a source file.
// Line and Column are 1-based.
type ParseError struct {
	Line    int
	Column  int
	Missing bool
	Near    string
}

func (e *ParseError) Error() string {
	if e.Missing {
		return fmt.Sprintf("missing %s at %d:%d", e.Near, e.Line, e.Column)
	}
	if e.Near == "" {
		return fmt.Sprintf("syntax error at %d:%d", e.Line, e.Column)
	}
	return fmt.Sprintf("syntax error at %d:%d near %q", e.Line, e.Column, e.Near)
}

const maxSnippet = 40

func newParseError(root *sitter.Node, source []byte) *ParseError {
	node := firstErrorNode(root)
	if node == nil {
		node = root
	}
	pos := node.StartPosition()
	perr := &ParseError{
		Line:    int(pos.Row) + 1,
		Column:  int(pos.Column) + 1,
		Missing: node.IsMissing(),
	}
	if perr.Missing {
		perr.Near = node.Kind()
		return perr
	}
	snippet := strings.TrimSpace(string(source[node.StartByte():node.EndByte()]))
	if i := strings.IndexByte(snippet, '\n'); i >= 0 {
		snippet = snippet[:i]
	}
	if len(snippet) > maxSnippet {
		snippet = snippet[:maxSnippet]
	}
	perr.Near = snippet
	return perr
}

// firstErrorNode returns the first ERROR or MISSING node in document order.
func firstErrorNode(node *sitter.Node) *sitter.Node {
	if node == nil {
		return nil
	}
	if node.IsError() || node.IsMissing() {
		return node
	}
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		if child == nil || !(child.HasError() || child.IsMissing()) {
			continue
		}
		if found := firstErrorNode(child); found != nil {
			return found
		}
	}
	return nil
}
