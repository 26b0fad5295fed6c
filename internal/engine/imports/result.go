package imports

import (
	"sort"
	"unicode"
	"unicode/utf8"
)

// Hints are structural facts about a source file.
type Hints struct {
	HasMain      bool `json:"has_main" toml:"has_main"`
	HasTest      bool `json:"has_test" toml:"has_test"`
	HasProcMacro bool `json:"has_proc_macro" toml:"has_proc_macro"`
}

// Result is the dependency summary of one source file. Both lists are sorted
// and hold only crate-like (lowercase-leading) names; TestImports never
// contains a name that is also in Imports.
type Result struct {
	Imports     []string `json:"imports" toml:"imports"`
	TestImports []string `json:"test_imports" toml:"test_imports"`
	Hints       Hints    `json:"hints" toml:"hints"`
}

func (c *Classifier) result(hints Hints) Result {
	testOnly := make(map[string]struct{}, len(c.testOnly))
	for name := range c.testOnly {
		if _, ok := c.normal[name]; ok {
			continue
		}
		testOnly[name] = struct{}{}
	}
	return Result{
		Imports:     crateNames(c.normal),
		TestImports: crateNames(testOnly),
		Hints:       hints,
	}
}

// crateNames drops names that do not start with a lowercase letter; by Rust
// naming convention those are types, not crates.
func crateNames(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for name := range set {
		first, _ := utf8.DecodeRuneInString(name)
		if !unicode.IsLower(first) {
			continue
		}
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
