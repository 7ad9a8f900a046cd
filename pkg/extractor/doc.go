package extractor

import (
	"sort"
	"strings"

	ts "github.com/tree-sitter/go-tree-sitter"
)

// docComment returns the first block comment attached to decl, delimiters
// included, or "".
//
// Attached comments are the run of comments directly in front of the
// declaration's anchor (decorators in between are skipped), followed by
// comments inside the anchor that precede the declaration's name, as in
// "export /** doc */ class A".
func (u *unit) docComment(decl *ts.Node) string {
	for _, c := range u.attachedComments(decl) {
		if text := u.text(c); strings.HasPrefix(text, "/*") {
			return text
		}
	}
	return ""
}

func (u *unit) attachedComments(decl *ts.Node) []*ts.Node {
	top := anchor(decl)

	var comments []*ts.Node
	for prev := top.PrevSibling(); prev != nil; prev = prev.PrevSibling() {
		if prev.Kind() == "decorator" {
			continue
		}
		if prev.Kind() != "comment" {
			break
		}
		comments = append(comments, prev)
	}
	// collected back to front
	for i, j := 0, len(comments)-1; i < j; i, j = i+1, j-1 {
		comments[i], comments[j] = comments[j], comments[i]
	}

	limit := decl.StartByte()
	if name := decl.ChildByFieldName("name"); name != nil {
		limit = name.StartByte()
	}
	var inner []*ts.Node
	for n := decl; n != nil; n = n.Parent() {
		for i := uint(0); i < n.ChildCount(); i++ {
			c := n.Child(i)
			if c.StartByte() >= limit {
				break
			}
			if c.Kind() == "comment" {
				inner = append(inner, c)
			}
		}
		if n.Id() == top.Id() {
			break
		}
	}
	sort.Slice(inner, func(i, j int) bool { return inner[i].StartByte() < inner[j].StartByte() })
	return append(comments, inner...)
}
