package extractor

import (
	"math"
	"strconv"
	"strings"

	ts "github.com/tree-sitter/go-tree-sitter"

	"github.com/gnana997/tsstruct/pkg/ast"
	"github.com/gnana997/tsstruct/pkg/model"
)

// enum records an enum declaration. Member values are kept only for numeric
// and string literal initializers.
func (u *unit) enum(n *ts.Node) {
	name := n.ChildByFieldName("name")
	if name == nil {
		return
	}
	e := &model.Enum{
		Name:    u.text(name),
		Doc:     u.docComment(n),
		Members: []*model.EnumMember{},
	}
	for _, m := range ast.NamedChildren(n.ChildByFieldName("body")) {
		member := &model.EnumMember{Doc: u.docComment(m)}
		switch m.Kind() {
		case "enum_assignment":
			member.Name = u.memberName(m.ChildByFieldName("name"))
			member.Value = u.enumValue(m.ChildByFieldName("value"))
		default:
			member.Name = u.memberName(m)
		}
		e.Members = append(e.Members, member)
	}
	u.module.Enums = append(u.module.Enums, e)
}

func (u *unit) memberName(n *ts.Node) string {
	if n != nil && n.Kind() == "string" {
		return ast.StringValue(n, u.src)
	}
	return u.text(n)
}

func (u *unit) enumValue(v *ts.Node) any {
	if v == nil {
		return nil
	}
	switch v.Kind() {
	case "number":
		if i, ok := parseInt(u.text(v)); ok {
			return i
		}
	case "string":
		return ast.StringValue(v, u.src)
	}
	return nil
}

// parseInt reads a numeric literal as the integer it denotes, truncated
// toward zero: "0b11" is 3, "0o17" and "017" are 15, "1e3" and "1_000" are
// 1000, and "1.9" is 1.
func parseInt(text string) (int, bool) {
	s := strings.ReplaceAll(strings.TrimSpace(text), "_", "")
	s = strings.TrimSuffix(s, "n")
	if s == "" {
		return 0, false
	}

	if len(s) > 1 && s[0] == '0' {
		switch s[1] {
		case 'x', 'X', 'o', 'O', 'b', 'B':
			i, err := strconv.ParseInt(s, 0, 64)
			return int(i), err == nil
		}
		if strings.Trim(s, "01234567") == "" {
			i, err := strconv.ParseInt(s[1:], 8, 64)
			return int(i), err == nil
		}
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, false
	}
	return int(f), true
}
