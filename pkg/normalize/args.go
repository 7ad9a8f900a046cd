package normalize

import (
	"log/slog"
	"math"
	"strconv"
	"strings"

	ts "github.com/tree-sitter/go-tree-sitter"

	"github.com/gnana997/tsstruct/pkg/ast"
	"github.com/gnana997/tsstruct/pkg/normalize/jsonfix"
	"github.com/gnana997/tsstruct/pkg/util"
)

// Normalizer turns argument and initializer expressions into plain values.
type Normalizer struct {
	logger *slog.Logger
}

// New creates a Normalizer. A nil logger uses slog.Default().
func New(logger *slog.Logger) *Normalizer {
	return &Normalizer{logger: util.OrDefault(logger)}
}

// ParseArg evaluates an argument expression.
//
// Strings, booleans, null, numbers and arrays become their Go values;
// identifiers become their names and member chains are joined with dots.
// Binary expressions are folded with JavaScript + semantics. Object
// literals go through jsonfix and may come back nil. Anything else is
// returned as raw source text.
func (nz *Normalizer) ParseArg(n *ts.Node, src []byte) any {
	if n == nil {
		return nil
	}
	switch n.Kind() {
	case "string":
		return ast.StringValue(n, src)

	case "template_string":
		if ast.ChildOfKind(n, "template_substitution") == nil {
			return ast.StringValue(n, src)
		}

	case "array":
		values := []any{}
		for _, el := range ast.NamedChildren(n) {
			values = append(values, nz.ParseArg(el, src))
		}
		return values

	case "true":
		return true
	case "false":
		return false
	case "null":
		return nil

	case "identifier", "undefined", "property_identifier":
		return n.Utf8Text(src)

	case "number":
		return parseNumber(n.Utf8Text(src))

	case "member_expression":
		object := nz.ParseArg(n.ChildByFieldName("object"), src)
		return jsString(object) + "." + ast.Text(n.ChildByFieldName("property"), src)

	case "binary_expression":
		if op := n.ChildByFieldName("operator"); op != nil && op.Kind() != "+" {
			nz.logger.Debug("binary expression folded as +",
				"operator", op.Kind(),
				"offset", n.StartByte())
		}
		left := nz.ParseArg(n.ChildByFieldName("left"), src)
		right := nz.ParseArg(n.ChildByFieldName("right"), src)
		return plus(left, right)

	case "object":
		return jsonfix.Decode(string(src[ast.FullStart(n):n.EndByte()]), nz.logger)
	}
	return n.Utf8Text(src)
}

// parseNumber reads a numeric literal. Literals Go cannot represent, such as
// bigints, are returned as text.
func parseNumber(text string) any {
	s := strings.ReplaceAll(text, "_", "")
	if len(s) > 2 && s[0] == '0' {
		switch s[1] {
		case 'x', 'X', 'o', 'O', 'b', 'B':
			if v, err := strconv.ParseInt(s, 0, 64); err == nil {
				return float64(v)
			}
			return text
		}
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return text
	}
	return v
}

// plus applies JavaScript's + to two evaluated operands.
func plus(left, right any) any {
	l, lok := toNumber(left)
	r, rok := toNumber(right)
	if lok && rok {
		return l + r
	}
	return jsString(left) + jsString(right)
}

func toNumber(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case bool:
		if x {
			return 1, true
		}
		return 0, true
	case nil:
		return 0, true
	}
	return 0, false
}

// jsString converts an evaluated value to the string JavaScript would
// produce for it.
func jsString(v any) string {
	switch x := v.(type) {
	case nil:
		return "null"
	case string:
		return x
	case bool:
		return strconv.FormatBool(x)
	case float64:
		return formatNumber(x)
	case []any:
		parts := make([]string, len(x))
		for i, el := range x {
			if el != nil {
				parts[i] = jsString(el)
			}
		}
		return strings.Join(parts, ",")
	}
	return "[object Object]"
}

func formatNumber(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	case math.Abs(f) < 1e21:
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}
