package imports

import (
	"cratedeps/internal/engine/parser"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

const entryPointName = "main"

type walker struct {
	tree   *parser.Tree
	scopes *ScopeStack
	refs   *Classifier
	hints  Hints
}

func newWalker(tree *parser.Tree) *walker {
	scopes := NewScopeStack()
	return &walker{
		tree:   tree,
		scopes: scopes,
		refs:   NewClassifier(scopes),
	}
}

// walk visits node depth-first, pre-order.
func (w *walker) walk(node *sitter.Node) {
	if node == nil {
		return
	}

	switch node.Kind() {
	case "use_declaration":
		if arg := node.ChildByFieldName("argument"); arg != nil {
			w.useTree(arg, false)
		}
		return
	case "extern_crate_declaration":
		if name := node.ChildByFieldName("name"); isIdentifier(name) {
			w.refs.Record(w.tree.Text(name))
		}
		return
	case "block":
		w.scopes.Push(false)
		w.walkChildren(node)
		w.scopes.Pop()
		return
	case "mod_item":
		w.module(node)
		return
	case "function_item":
		if isItemFunction(node) {
			w.function(node)
			return
		}
	case "attribute_item":
		if w.ownsAttributes(attributedItem(node)) {
			// walked inside the item's own scope
			return
		}
	case "scoped_identifier", "scoped_type_identifier":
		if segmentCount(node) > 1 {
			w.recordRoot(node)
		}
	}

	w.walkChildren(node)
}

func (w *walker) walkChildren(node *sitter.Node) {
	for i := uint(0); i < node.ChildCount(); i++ {
		w.walk(node.Child(i))
	}
}

func (w *walker) recordRoot(path *sitter.Node) {
	if first := firstSegment(path); isIdentifier(first) {
		w.refs.Record(w.tree.Text(first))
	}
}

// useTree handles one node of a use tree. prefixed is true below a
// `path::{...}` group, where names are members rather than crate roots.
func (w *walker) useTree(node *sitter.Node, prefixed bool) {
	switch node.Kind() {
	case "identifier", "scoped_identifier":
		if !prefixed {
			w.recordRoot(node)
		}
		// `use a::b;` brings `b` into scope
		w.declareLeaf(node)
	case "use_wildcard":
		if path := node.NamedChild(0); path != nil && !prefixed {
			w.recordRoot(path)
		}
	case "use_as_clause":
		if path := node.ChildByFieldName("path"); path != nil && !prefixed {
			w.recordRoot(path)
		}
		if alias := node.ChildByFieldName("alias"); alias != nil {
			w.scopes.Declare(w.tree.Text(alias))
		}
	case "scoped_use_list":
		path := node.ChildByFieldName("path")
		list := node.ChildByFieldName("list")
		if path != nil && !prefixed {
			w.recordRoot(path)
		}
		if path != nil && list != nil && listImportsSelf(list) {
			// `a::b::{self, ..}` brings `b` itself into scope
			w.declareLeaf(path)
		}
		if list != nil {
			w.useTree(list, prefixed || path != nil)
		}
	case "use_list":
		for i := uint(0); i < node.NamedChildCount(); i++ {
			w.useTree(node.NamedChild(i), prefixed)
		}
	}
}

// declareLeaf declares the last segment of a use path unless it is a path
// keyword.
func (w *walker) declareLeaf(path *sitter.Node) {
	leaf := lastSegment(path)
	if leaf == nil {
		return
	}
	if name := w.tree.Text(leaf); !selfKeywords[name] {
		w.scopes.Declare(name)
	}
}

func listImportsSelf(list *sitter.Node) bool {
	for i := uint(0); i < list.NamedChildCount(); i++ {
		if list.NamedChild(i).Kind() == "self" {
			return true
		}
	}
	return false
}

func (w *walker) module(node *sitter.Node) {
	attrs := outerAttributes(node)
	testOnly := false
	for _, attr := range attrs {
		if w.isCfgTest(attr) {
			testOnly = true
		}
	}

	// the module name is visible in the enclosing scope
	if name := node.ChildByFieldName("name"); name != nil {
		w.scopes.Declare(w.tree.Text(name))
	}

	w.scopes.Push(testOnly)
	for _, attr := range attrs {
		w.walkChildren(attr)
	}
	w.walkChildren(node)
	w.scopes.Pop()
}

func (w *walker) function(node *sitter.Node) {
	attrs := outerAttributes(node)
	testOnly := false

	name := w.tree.Text(node.ChildByFieldName("name"))
	if w.scopes.IsRoot() && name == entryPointName {
		w.hints.HasMain = true
	} else {
		for _, attr := range attrs {
			switch w.singleSegmentName(attr) {
			case attrTest:
				w.hints.HasTest = true
				testOnly = true
			case attrProcMacro:
				w.hints.HasProcMacro = true
			}
		}
	}

	w.scopes.Push(testOnly)
	for _, attr := range attrs {
		w.walkChildren(attr)
	}
	w.walkChildren(node)
	w.scopes.Pop()
}

// ownsAttributes reports whether item walks its outer attributes itself.
func (w *walker) ownsAttributes(item *sitter.Node) bool {
	if item == nil {
		return false
	}
	switch item.Kind() {
	case "mod_item":
		return true
	case "function_item":
		return isItemFunction(item)
	}
	return false
}

// isItemFunction distinguishes free functions (file, module or block level)
// from associated functions in impl and trait bodies.
func isItemFunction(node *sitter.Node) bool {
	parent := node.Parent()
	if parent == nil {
		return false
	}
	switch parent.Kind() {
	case "source_file", "block":
		return true
	case "declaration_list":
		owner := parent.Parent()
		return owner != nil && owner.Kind() == "mod_item"
	}
	return false
}
