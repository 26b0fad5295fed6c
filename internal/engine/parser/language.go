package parser

import (
	"path/filepath"
	"strings"
	"sync"

	sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_rust "github.com/tree-sitter/tree-sitter-rust/bindings/go"
)

const (
	LanguageRust  = "rust"
	RustExtension = ".rs"
)

var rustLanguage = sync.OnceValue(func() *sitter.Language {
	return sitter.NewLanguage(tree_sitter_rust.Language())
})

// RustLanguage returns the shared tree-sitter Rust grammar.
func RustLanguage() *sitter.Language {
	return rustLanguage()
}

// IsRustSource reports whether path names a Rust source file.
func IsRustSource(path string) bool {
	return strings.EqualFold(filepath.Ext(path), RustExtension)
}
