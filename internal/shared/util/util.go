package util

import (
	"maps"
	"slices"
)

// SortedStringKeys returns the keys of m in ascending order. The result is
// never nil.
func SortedStringKeys[T any](m map[string]T) []string {
	keys := slices.AppendSeq(make([]string, 0, len(m)), maps.Keys(m))
	slices.Sort(keys)
	return keys
}
