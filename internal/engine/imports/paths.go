package imports

import sitter "github.com/tree-sitter/go-tree-sitter"

// segmentCount returns the number of `::`-separated segments in a path node.
// A leading `::` does not add a segment.
func segmentCount(node *sitter.Node) int {
	switch node.Kind() {
	case "scoped_identifier", "scoped_type_identifier":
		path := node.ChildByFieldName("path")
		if path == nil {
			return 1
		}
		return 1 + segmentCount(path)
	case "generic_type":
		if inner := node.ChildByFieldName("type"); inner != nil {
			return segmentCount(inner)
		}
	}
	return 1
}

// firstSegment returns the leftmost segment of a path node.
func firstSegment(node *sitter.Node) *sitter.Node {
	switch node.Kind() {
	case "scoped_identifier", "scoped_type_identifier":
		path := node.ChildByFieldName("path")
		if path == nil {
			return node.ChildByFieldName("name")
		}
		return firstSegment(path)
	case "generic_type":
		if inner := node.ChildByFieldName("type"); inner != nil {
			return firstSegment(inner)
		}
	}
	return node
}

// lastSegment returns the rightmost named segment of a use path.
func lastSegment(node *sitter.Node) *sitter.Node {
	switch node.Kind() {
	case "scoped_identifier":
		return node.ChildByFieldName("name")
	case "identifier":
		return node
	}
	return nil
}

func isIdentifier(node *sitter.Node) bool {
	if node == nil {
		return false
	}
	kind := node.Kind()
	return kind == "identifier" || kind == "type_identifier"
}
