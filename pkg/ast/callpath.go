package ast

import (
	"strings"

	ts "github.com/tree-sitter/go-tree-sitter"
)

// PathNode is one segment of a fluent call chain. Arguments and Call are nil
// when the segment is a plain property access.
type PathNode struct {
	Name      string
	Arguments []*ts.Node
	Call      *ts.Node
	node      *ts.Node
}

// Called reports whether the segment was invoked.
func (p *PathNode) Called() bool { return p.Call != nil }

// CallPath is a chain such as api.users.get(1).send() rooted at an identifier.
type CallPath struct {
	Base string
	Path []*PathNode

	baseNode *ts.Node
}

// Start is the byte offset of the root identifier.
func (c *CallPath) Start() int { return int(c.baseNode.StartByte()) }

// End is the byte offset after the last call, or Start when nothing was called.
func (c *CallPath) End() int {
	if len(c.Path) > 0 {
		if call := c.Path[len(c.Path)-1].Call; call != nil {
			return int(call.EndByte())
		}
	}
	return c.Start()
}

// StartLocation returns the 0-based row/column of Start.
func (c *CallPath) StartLocation() ts.Point { return c.baseNode.StartPosition() }

// EndLocation returns the 0-based row/column of End.
func (c *CallPath) EndLocation() ts.Point {
	if len(c.Path) > 0 {
		if call := c.Path[len(c.Path)-1].Call; call != nil {
			return call.EndPosition()
		}
	}
	return c.StartLocation()
}

// String joins the segment names with dots, without the base.
func (c *CallPath) String() string {
	names := make([]string, len(c.Path))
	for i, p := range c.Path {
		names[i] = p.Name
	}
	return strings.Join(names, ".")
}

// Contains reports whether some prefix of the chain, taken with or without
// its call, is accepted by m. For api.users.get(1).send() the prefixes are
// api.users, api.users.get, api.users.get(1) and so on.
func (c *CallPath) Contains(m Matcher, src []byte) bool {
	for _, seg := range c.Path {
		if seg.node == nil {
			continue
		}
		if _, ok := m.Match(seg.node.Parent(), src); ok {
			return true
		}
		if seg.Call != nil {
			if _, ok := m.Match(seg.Call, src); ok {
				return true
			}
		}
	}
	return false
}

// CallBaseMatcher recognizes fluent call chains whose root identifier is
// accepted by a root matcher.
type CallBaseMatcher struct {
	root Matcher
}

// CallBase returns a matcher for call chains rooted at an identifier
// accepted by root.
func CallBase(root Matcher) *CallBaseMatcher {
	return &CallBaseMatcher{root: root}
}

// Match implements Matcher; the value is a *CallPath.
func (m *CallBaseMatcher) Match(n *ts.Node, src []byte) (any, bool) {
	if p := m.MatchPath(n, src); p != nil {
		return p, true
	}
	return nil, false
}

// MatchPath returns the chain rooted at n, or nil.
func (m *CallBaseMatcher) MatchPath(n *ts.Node, src []byte) *CallPath {
	if n == nil {
		return nil
	}
	switch n.Kind() {
	case "call_expression":
		res := m.MatchPath(n.ChildByFieldName("function"), src)
		if res == nil || len(res.Path) == 0 {
			return nil
		}
		last := res.Path[len(res.Path)-1]
		if last.Call != nil {
			// a(...)(...) is not a fluent chain
			return nil
		}
		last.Call = n
		last.Arguments = callArguments(n)
		return res

	case "member_expression":
		res := m.MatchPath(n.ChildByFieldName("object"), src)
		if res == nil {
			return nil
		}
		prop := n.ChildByFieldName("property")
		if prop == nil || prop.Kind() != "property_identifier" {
			return nil
		}
		res.Path = append(res.Path, &PathNode{Name: prop.Utf8Text(src), node: prop})
		return res

	case "identifier":
		if _, ok := m.root.Match(n, src); ok {
			return &CallPath{Base: n.Utf8Text(src), baseNode: n}
		}
	}
	return nil
}

func callArguments(call *ts.Node) []*ts.Node {
	args := call.ChildByFieldName("arguments")
	if args == nil {
		return []*ts.Node{}
	}
	if args.Kind() != "arguments" {
		// tagged template: the template is the only argument
		return []*ts.Node{args}
	}
	return NamedChildren(args)
}

// FindCallPaths returns the outermost call chains under root whose base is
// accepted by rootMatcher, in source order.
func FindCallPaths(root *ts.Node, rootMatcher Matcher, src []byte) []*CallPath {
	m := CallBase(rootMatcher)
	var paths []*CallPath
	_ = Walk(root, func(n *ts.Node) error {
		switch n.Kind() {
		case "call_expression", "member_expression":
			if p := m.MatchPath(n, src); p != nil && len(p.Path) > 0 {
				paths = append(paths, p)
				return SkipChildren
			}
		}
		return nil
	})
	return paths
}
