package imports

import sitter "github.com/tree-sitter/go-tree-sitter"

const (
	attrCfg       = "cfg"
	attrTest      = "test"
	attrProcMacro = "proc_macro"
)

func isComment(node *sitter.Node) bool {
	kind := node.Kind()
	return kind == "line_comment" || kind == "block_comment"
}

// outerAttributes returns the attribute_item siblings directly preceding
// item, in source order. Tree-sitter places outer attributes next to the item
// rather than inside it.
func outerAttributes(item *sitter.Node) []*sitter.Node {
	var attrs []*sitter.Node
	for prev := item.PrevSibling(); prev != nil; prev = prev.PrevSibling() {
		if isComment(prev) {
			continue
		}
		if prev.Kind() != "attribute_item" {
			break
		}
		attrs = append(attrs, prev)
	}
	for i, j := 0, len(attrs)-1; i < j; i, j = i+1, j-1 {
		attrs[i], attrs[j] = attrs[j], attrs[i]
	}
	return attrs
}

// attributedItem returns the item an attribute_item is attached to.
func attributedItem(attr *sitter.Node) *sitter.Node {
	for next := attr.NextSibling(); next != nil; next = next.NextSibling() {
		if isComment(next) || next.Kind() == "attribute_item" {
			continue
		}
		return next
	}
	return nil
}

func attributeBody(item *sitter.Node) *sitter.Node {
	for i := uint(0); i < item.NamedChildCount(); i++ {
		child := item.NamedChild(i)
		if child.Kind() == "attribute" {
			return child
		}
	}
	return nil
}

// singleSegmentName returns the attribute's name when its path is one bare
// identifier (`#[test]`, `#[cfg(...)]`) and "" otherwise (`#[tokio::test]`).
func (w *walker) singleSegmentName(item *sitter.Node) string {
	attr := attributeBody(item)
	if attr == nil || attr.NamedChildCount() == 0 {
		return ""
	}
	path := attr.NamedChild(0)
	if path.Kind() != "identifier" {
		return ""
	}
	return w.tree.Text(path)
}

// isCfgTest matches exactly `#[cfg(test)]`.
func (w *walker) isCfgTest(item *sitter.Node) bool {
	if w.singleSegmentName(item) != attrCfg {
		return false
	}
	attr := attributeBody(item)
	args := attr.ChildByFieldName("arguments")
	if args == nil {
		args = lastNamedChild(attr)
	}
	if args == nil || args.Kind() != "token_tree" {
		return false
	}
	count := args.ChildCount()
	if count != 3 || args.Child(0).Kind() != "(" || args.Child(2).Kind() != ")" {
		return false
	}
	token := args.Child(1)
	return token.Kind() == "identifier" && w.tree.Text(token) == attrTest
}

func lastNamedChild(node *sitter.Node) *sitter.Node {
	count := node.NamedChildCount()
	if count == 0 {
		return nil
	}
	return node.NamedChild(count - 1)
}
