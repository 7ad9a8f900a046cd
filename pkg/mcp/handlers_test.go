package mcp

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnana997/tsstruct/pkg/extractor"
	"github.com/gnana997/tsstruct/pkg/helpers"
	"github.com/gnana997/tsstruct/pkg/parser"
	"github.com/gnana997/tsstruct/pkg/parser/queries"
	"github.com/gnana997/tsstruct/pkg/source"
)

// --- helpers ---

var testFiles = map[string]string{
	"/proj/model.ts": `
import Base = require('./base');

namespace api {
	/** A resource. */
	@Entity("resources")
	export class Resource extends Base.Node implements Named {
		name: string;
		$name = [Required()];
		get path(): string { return ''; }
		load(): void {}
	}
}

interface Named {
	name: string;
}
`,
	"/proj/base.ts": `export class Node {}`,
	"/proj/helpers.ts": `
/**
 * __$helperMethod__
 * Resolves the full path.
 * __$meta__={"name":"fullPath"}
 */
export function completePath(res: RamlWrapper.Resource, sep: string = '/'): string {
	return '';
}
`,
}

func testServer(t *testing.T, callLog *CallLog) *Server {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	pm := parser.NewParserManager(logger)
	qm := queries.NewQueryManager(pm, logger)
	t.Cleanup(func() {
		qm.Close()
		pm.Close()
	})
	ex := extractor.NewExtractor(pm, qm, extractor.Options{BaseDir: "/proj"}, logger)
	hx := helpers.NewExtractor(pm, qm, logger)
	return NewServer(ex, hx, source.NewMemStore(testFiles), callLog, logger)
}

func callTool(t *testing.T, s *Server, req mcp.CallToolRequest) *mcp.CallToolResult {
	t.Helper()
	result, err := s.HandleToolCall(context.Background(), req)
	require.NoError(t, err)
	require.NotNil(t, result)
	return result
}

func makeRequest(toolName string, args map[string]any) mcp.CallToolRequest {
	var arguments any
	if args != nil {
		arguments = args
	}
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      toolName,
			Arguments: arguments,
		},
	}
}

func resultJSON(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, result.Content)
	textContent, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok, "expected TextContent, got %T", result.Content[0])
	return textContent.Text
}

// --- extract_module ---

func TestHandleExtractModule(t *testing.T) {
	s := testServer(t, nil)
	result := callTool(t, s, makeRequest(ToolExtractModule, map[string]any{"path": "model.ts"}))
	require.False(t, result.IsError, resultJSON(t, result))

	var module map[string]any
	require.NoError(t, json.Unmarshal([]byte(resultJSON(t, result)), &module))
	assert.Equal(t, "/proj/model.ts", module["name"])

	classes := module["classes"].([]any)
	require.Len(t, classes, 2)
	resource := classes[0].(map[string]any)
	assert.Equal(t, "Resource", resource["name"])
	assert.Equal(t, "A resource.", resource["doc"])

	imports := module["imports"].(map[string]any)
	require.Contains(t, imports, "Base")
	assert.Equal(t, "/proj/base.ts", imports["Base"].(map[string]any)["name"])
}

func TestHandleExtractModule_Pretty(t *testing.T) {
	s := testServer(t, nil)
	result := callTool(t, s, makeRequest(ToolExtractModule, map[string]any{"path": "/proj/base.ts", "pretty": true}))
	require.False(t, result.IsError)
	assert.Contains(t, resultJSON(t, result), "\n  \"classes\": [")
}

func TestHandleExtractModule_InlineContent(t *testing.T) {
	s := testServer(t, nil)
	result := callTool(t, s, makeRequest(ToolExtractModule, map[string]any{
		"path":    "/proj/scratch.ts",
		"content": "import Base = require('./base');\nenum E { A = 1 }",
	}))
	require.False(t, result.IsError, resultJSON(t, result))
	text := resultJSON(t, result)
	assert.Contains(t, text, `"enumDeclarations":[{"name":"E"`)
	assert.Contains(t, text, `"name":"/proj/base.ts"`)
}

func TestHandleExtractModule_Errors(t *testing.T) {
	s := testServer(t, nil)

	result := callTool(t, s, makeRequest(ToolExtractModule, nil))
	assert.True(t, result.IsError)

	result = callTool(t, s, makeRequest(ToolExtractModule, map[string]any{"path": "/proj/missing.ts"}))
	assert.True(t, result.IsError)

	result = callTool(t, s, makeRequest(ToolExtractModule, map[string]any{
		"path":    "/proj/bad.ts",
		"content": "import Gone = require('./gone');",
	}))
	assert.True(t, result.IsError)
	assert.Contains(t, resultJSON(t, result), "import path not found")
}

// --- list_classes ---

func TestHandleListClasses(t *testing.T) {
	s := testServer(t, nil)
	result := callTool(t, s, makeRequest(ToolListClasses, map[string]any{"path": "model.ts"}))
	require.False(t, result.IsError, resultJSON(t, result))

	var out struct {
		Path    string         `json:"path"`
		Classes []ClassSummary `json:"classes"`
	}
	require.NoError(t, json.Unmarshal([]byte(resultJSON(t, result)), &out))
	assert.Equal(t, "/proj/model.ts", out.Path)
	require.Len(t, out.Classes, 2)

	res := out.Classes[0]
	assert.Equal(t, "Resource", res.Name)
	assert.Equal(t, "api", res.ModuleName)
	assert.Equal(t, []string{"Base.Node"}, res.Extends)
	assert.Equal(t, []string{"Named"}, res.Implements)
	assert.Equal(t, []string{"Entity"}, res.Decorators)
	assert.Equal(t, []string{"name"}, res.Fields)
	assert.Equal(t, []string{"load"}, res.Methods)
	assert.Equal(t, []string{"get path"}, res.Accessors)

	named := out.Classes[1]
	assert.Equal(t, "Named", named.Name)
	assert.True(t, named.IsInterface)
}

// --- list_helper_methods ---

func TestHandleListHelperMethods(t *testing.T) {
	s := testServer(t, nil)
	result := callTool(t, s, makeRequest(ToolListHelperMethods, map[string]any{"path": "helpers.ts"}))
	require.False(t, result.IsError, resultJSON(t, result))

	var out struct {
		Path    string `json:"path"`
		Helpers []struct {
			OriginalName      string   `json:"originalName"`
			WrapperMethodName string   `json:"wrapperMethodName"`
			TargetWrappers    []string `json:"targetWrappers"`
			Args              []struct {
				Name         string `json:"name"`
				DefaultValue any    `json:"defaultValue"`
				Optional     bool   `json:"optional"`
			} `json:"args"`
		} `json:"helpers"`
	}
	require.NoError(t, json.Unmarshal([]byte(resultJSON(t, result)), &out))
	assert.Equal(t, "/proj/helpers.ts", out.Path)
	require.Len(t, out.Helpers, 1)

	h := out.Helpers[0]
	assert.Equal(t, "completePath", h.OriginalName)
	assert.Equal(t, "fullPath", h.WrapperMethodName)
	assert.Equal(t, []string{"Resource"}, h.TargetWrappers)
	require.Len(t, h.Args, 2)
	assert.Equal(t, "/", h.Args[1].DefaultValue)
	assert.True(t, h.Args[1].Optional)
}

func TestHandleListHelperMethods_MissingFile(t *testing.T) {
	s := testServer(t, nil)
	result := callTool(t, s, makeRequest(ToolListHelperMethods, map[string]any{"path": "nope.ts"}))
	assert.True(t, result.IsError)
	assert.Contains(t, resultJSON(t, result), "failed to read /proj/nope.ts")
}

func TestHandleToolCall_UnknownTool(t *testing.T) {
	s := testServer(t, nil)
	result := callTool(t, s, makeRequest("get_tokens", nil))
	assert.True(t, result.IsError)
	assert.Contains(t, resultJSON(t, result), "unknown tool: get_tokens")
}

func TestRegisteredTools(t *testing.T) {
	tools := RegisteredTools()
	require.Len(t, tools, 3)
	for _, def := range tools {
		assert.Equal(t, def.Name, def.Tool.Name)
		assert.Contains(t, def.Tool.InputSchema.Required, "path")
	}

	s := testServer(t, nil)
	assert.NotNil(t, s.MCPServer())
	assert.Len(t, s.handlers(), len(tools))
}
