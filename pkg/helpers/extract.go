package helpers

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"regexp"
	"sort"
	"strings"

	"github.com/buger/jsonparser"
	ts "github.com/tree-sitter/go-tree-sitter"
	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/gnana997/tsstruct/pkg/ast"
	"github.com/gnana997/tsstruct/pkg/normalize"
	"github.com/gnana997/tsstruct/pkg/normalize/jsonfix"
	"github.com/gnana997/tsstruct/pkg/parser"
	"github.com/gnana997/tsstruct/pkg/parser/queries"
	"github.com/gnana997/tsstruct/pkg/util"
)

const (
	helperMarker = "__$helperMethod__"
	metaMarker   = "__$meta__"
)

var (
	commentOpen  = regexp.MustCompile(`^\s*/\*+`)
	commentClose = regexp.MustCompile(`\*+/\s*$`)
	lineSlashes  = regexp.MustCompile(`^\s*//`)
	lineStar     = regexp.MustCompile(`^\s*\* ?`)
)

// Extractor finds helper methods in source files.
type Extractor struct {
	parserManager *parser.ParserManager
	queryManager  *queries.QueryManager
	normalizer    *normalize.Normalizer
	logger        *slog.Logger
}

// NewExtractor creates a helper-method extractor.
func NewExtractor(pm *parser.ParserManager, qm *queries.QueryManager, logger *slog.Logger) *Extractor {
	logger = util.OrDefault(logger)
	return &Extractor{
		parserManager: pm,
		queryManager:  qm,
		normalizer:    normalize.New(logger),
		logger:        logger,
	}
}

// Extract returns the helper methods declared in src, in source order.
func (e *Extractor) Extract(src []byte, path string) ([]*Method, error) {
	lang := parser.DetectLanguage(path)
	if lang == parser.LanguageUnknown {
		lang = parser.LanguageTypeScript
	}
	isTSX := parser.IsTSXFile(path)

	tree, err := e.parserManager.Parse(src, lang, isTSX)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	defer tree.Close()

	matches, err := e.queryManager.Execute(tree, lang, isTSX, queries.QueryTypeFunctions, src)
	if err != nil {
		return nil, fmt.Errorf("failed to run function query on %s: %w", path, err)
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return definitionStart(matches[i]) < definitionStart(matches[j])
	})

	methods := []*Method{}
	for _, m := range matches {
		def, name := m.Capture("function.definition"), m.Capture("function.name")
		if def == nil || name == nil {
			continue
		}
		meta := e.meta(leadingComments(def.Node, src), path)
		if meta == nil {
			continue
		}
		if meta.Name == "" {
			meta.Name = name.Text
		}
		methods = append(methods, &Method{
			OriginalName:      name.Text,
			WrapperMethodName: meta.Name,
			ReturnType:        normalize.ParseType(def.Node.ChildByFieldName("return_type"), src, path),
			Args:              e.args(def.Node.ChildByFieldName("parameters"), src, path),
			Meta:              meta,
		})
	}
	return methods, nil
}

func definitionStart(m queries.QueryMatch) uint32 {
	if c := m.Capture("function.definition"); c != nil {
		return c.Location.StartByte
	}
	return 0
}

// leadingComments joins the comments directly preceding a declaration,
// looking past an export keyword.
func leadingComments(decl *ts.Node, src []byte) string {
	anchor := decl
	if p := anchor.Parent(); p != nil && p.Kind() == "export_statement" {
		anchor = p
	}
	var comments []string
	for prev := anchor.PrevSibling(); prev != nil && prev.Kind() == "comment"; prev = prev.PrevSibling() {
		comments = append([]string{ast.Text(prev, src)}, comments...)
	}
	return strings.Join(comments, "\n")
}

// meta parses the helper marker out of comment. It returns nil when the
// comment does not mark a helper method.
func (e *Extractor) meta(comment, path string) *Meta {
	ind := strings.Index(comment, helperMarker)
	if ind < 0 {
		return nil
	}
	ind += len(helperMarker)

	indMeta := strings.Index(comment, metaMarker)
	if indMeta < 0 {
		text := refineComment(comment[ind:])
		return &Meta{Comment: &text}
	}

	text := ""
	if ind <= indMeta {
		text = refineComment(comment[ind:indMeta])
	}
	indObj := strings.Index(comment[indMeta:], "{")
	if indObj < 0 {
		return &Meta{Comment: &text}
	}

	data := []byte(refineComment(comment[indMeta+indObj:]))
	if !json.Valid(data) {
		e.logger.Warn("invalid helper meta", "path", path, "meta", string(data))
		return &Meta{}
	}

	meta := &Meta{}
	if name, err := jsonparser.GetString(data, "name"); err == nil {
		meta.Name = name
	}
	if strings.TrimSpace(text) != "" {
		meta.Comment = &text
	}
	meta.Override = truthy(data, "override")
	meta.Primary = truthy(data, "primary")
	meta.Deprecated = truthy(data, "deprecated")
	meta.Extra = extraMeta(data)
	return meta
}

var metaKeys = map[string]bool{"name": true, "override": true, "primary": true, "deprecated": true}

// extraMeta returns the keys of a meta object that Meta has no field for,
// or nil when there are none.
func extraMeta(data []byte) *jsonfix.Object {
	v, err := jsonfix.Parse(string(data))
	if err != nil {
		return nil
	}
	obj, ok := v.(*jsonfix.Object)
	if !ok {
		return nil
	}
	extra := orderedmap.New[string, any]()
	for pair := obj.Oldest(); pair != nil; pair = pair.Next() {
		if !metaKeys[pair.Key] {
			extra.Set(pair.Key, pair.Value)
		}
	}
	if extra.Len() == 0 {
		return nil
	}
	return extra
}

func truthy(data []byte, key string) bool {
	value, dataType, _, err := jsonparser.Get(data, key)
	if err != nil {
		return false
	}
	switch dataType {
	case jsonparser.Boolean:
		b, _ := jsonparser.ParseBoolean(value)
		return b
	case jsonparser.Number:
		f, _ := jsonparser.ParseFloat(value)
		return f != 0
	case jsonparser.String:
		return len(value) != 0
	case jsonparser.Object, jsonparser.Array:
		return true
	}
	return false
}

// refineComment strips comment delimiters and leading stars.
func refineComment(comment string) string {
	comment = commentOpen.ReplaceAllString(comment, "")
	comment = commentClose.ReplaceAllString(comment, "")
	lines := strings.Split(comment, "\n")
	for i, line := range lines {
		line = lineSlashes.ReplaceAllString(line, "")
		lines[i] = lineStar.ReplaceAllString(line, "")
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

func (e *Extractor) args(params *ts.Node, src []byte, path string) []*Arg {
	args := []*Arg{}
	for _, p := range ast.NamedChildren(params) {
		var pattern *ts.Node
		switch p.Kind() {
		case "required_parameter", "optional_parameter":
			pattern = p.ChildByFieldName("pattern")
		case "identifier", "assignment_pattern", "rest_pattern":
			pattern = p
		default:
			continue
		}

		arg := &Arg{
			Name:     argName(pattern, src),
			Type:     normalize.ParseType(p.ChildByFieldName("type"), src, path),
			Optional: p.Kind() == "optional_parameter",
		}
		value := p.ChildByFieldName("value")
		if value == nil && pattern != nil && pattern.Kind() == "assignment_pattern" {
			value = pattern.ChildByFieldName("right")
		}
		if value != nil {
			arg.DefaultValue = e.normalizer.ParseArg(value, src)
			arg.Optional = true
		}
		args = append(args, arg)
	}
	return args
}

func argName(pattern *ts.Node, src []byte) string {
	if pattern == nil {
		return ""
	}
	switch pattern.Kind() {
	case "assignment_pattern":
		return argName(pattern.ChildByFieldName("left"), src)
	case "rest_pattern":
		if id := ast.ChildOfKind(pattern, "identifier"); id != nil {
			return ast.Text(id, src)
		}
	}
	return ast.Text(pattern, src)
}
