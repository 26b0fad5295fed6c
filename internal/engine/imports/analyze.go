// Package imports resolves which crates a Rust source file depends on.
//
// Analyze walks a parsed tree once while keeping a stack of lexical scopes.
// Paths whose first segment is not shadowed by a local module or rename are
// recorded as crate references, and references made under `#[test]`
// functions or `#[cfg(test)]` modules are reported separately as test-only.
package imports

import (
	"cratedeps/internal/core/errors"
	"cratedeps/internal/engine/parser"
	stderrors "errors"
)

// Analyze classifies the crate references of tree. The tree is not retained.
func Analyze(tree *parser.Tree) (res Result, err error) {
	if tree == nil {
		return Result{}, errors.New(errors.CodeInternal, "nil syntax tree")
	}

	defer func() {
		r := recover()
		if r == nil {
			return
		}
		if e, ok := r.(error); ok && stderrors.Is(e, ErrScopeUnderflow) {
			res = Result{}
			err = errors.Wrap(e, errors.CodeInternal, "import traversal aborted")
			return
		}
		panic(r)
	}()

	w := newWalker(tree)
	w.walk(tree.Root())
	if depth := w.scopes.Depth(); depth != 1 {
		return Result{}, errors.AddContext(errors.New(errors.CodeInternal, "unbalanced scope stack after traversal"), "depth", depth)
	}
	return w.refs.result(w.hints), nil
}
