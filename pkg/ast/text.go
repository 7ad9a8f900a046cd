package ast

import (
	"strconv"
	"strings"
	"unicode/utf8"

	ts "github.com/tree-sitter/go-tree-sitter"
)

// Text returns the source text of n, or "" for a nil node.
func Text(n *ts.Node, src []byte) string {
	if n == nil {
		return ""
	}
	return n.Utf8Text(src)
}

// ChildOfKind returns the first direct child (named or anonymous) whose kind
// is one of kinds.
func ChildOfKind(n *ts.Node, kinds ...string) *ts.Node {
	if n == nil {
		return nil
	}
	for i := uint(0); i < n.ChildCount(); i++ {
		child := n.Child(i)
		if child == nil {
			continue
		}
		for _, k := range kinds {
			if child.Kind() == k {
				return child
			}
		}
	}
	return nil
}

// ChildrenOfKind returns every direct child of the given kind, in order.
func ChildrenOfKind(n *ts.Node, kind string) []*ts.Node {
	if n == nil {
		return nil
	}
	var out []*ts.Node
	for i := uint(0); i < n.ChildCount(); i++ {
		if child := n.Child(i); child != nil && child.Kind() == kind {
			out = append(out, child)
		}
	}
	return out
}

// NamedChildren returns the named direct children of n, skipping comments.
func NamedChildren(n *ts.Node) []*ts.Node {
	if n == nil {
		return nil
	}
	var out []*ts.Node
	for i := uint(0); i < n.NamedChildCount(); i++ {
		if child := n.NamedChild(i); child != nil && child.Kind() != "comment" {
			out = append(out, child)
		}
	}
	return out
}

// HasToken reports whether n has a direct anonymous child with the given text,
// e.g. "async", "get" or "?".
func HasToken(n *ts.Node, token string) bool {
	if n == nil {
		return false
	}
	for i := uint(0); i < n.ChildCount(); i++ {
		if child := n.Child(i); child != nil && !child.IsNamed() && child.Kind() == token {
			return true
		}
	}
	return false
}

// Ancestor returns the nearest proper ancestor of n whose kind is one of kinds.
func Ancestor(n *ts.Node, kinds ...string) *ts.Node {
	for p := n.Parent(); p != nil; p = p.Parent() {
		for _, k := range kinds {
			if p.Kind() == k {
				return p
			}
		}
	}
	return nil
}

// StringValue returns the cooked value of a string or template_string node.
// Any other node yields its raw text with one layer of quotes removed.
func StringValue(n *ts.Node, src []byte) string {
	if n == nil {
		return ""
	}
	switch n.Kind() {
	case "string", "template_string":
		var b strings.Builder
		for i := uint(0); i < n.NamedChildCount(); i++ {
			child := n.NamedChild(i)
			switch child.Kind() {
			case "string_fragment":
				b.WriteString(child.Utf8Text(src))
			case "escape_sequence":
				b.WriteString(unescape(child.Utf8Text(src)))
			}
		}
		return b.String()
	}
	return Unquote(n.Utf8Text(src))
}

// Unquote strips one pair of matching ', " or ` quotes from s.
func Unquote(s string) string {
	if len(s) >= 2 {
		first, last := s[0], s[len(s)-1]
		if first == last && (first == '\'' || first == '"' || first == '`') {
			return s[1 : len(s)-1]
		}
	}
	return s
}

func unescape(seq string) string {
	if len(seq) < 2 || seq[0] != '\\' {
		return seq
	}
	switch seq[1] {
	case 'n':
		return "\n"
	case 't':
		return "\t"
	case 'r':
		return "\r"
	case 'b':
		return "\b"
	case 'f':
		return "\f"
	case 'v':
		return "\v"
	case '0':
		if len(seq) == 2 {
			return "\x00"
		}
	case 'u', 'x':
		hex := strings.Trim(seq[2:], "{}")
		if code, err := strconv.ParseUint(hex, 16, 32); err == nil && utf8.ValidRune(rune(code)) {
			return string(rune(code))
		}
	case '\n', '\r':
		// line continuation
		return ""
	}
	return seq[1:]
}

// FullStart returns the offset where n's leading trivia begins: the end of
// the closest preceding sibling that is neither a comment nor one of skip,
// or n's own start when there is none. Spans starting here include the
// whitespace, comments and skipped siblings in front of n.
func FullStart(n *ts.Node, skip ...string) int {
	start := int(n.StartByte())
	for prev := n.PrevSibling(); prev != nil; prev = prev.PrevSibling() {
		kind := prev.Kind()
		if kind == "comment" || contains(skip, kind) {
			start = int(prev.StartByte())
			continue
		}
		return int(prev.EndByte())
	}
	return start
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
