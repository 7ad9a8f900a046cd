package mcp

import "github.com/mark3labs/mcp-go/mcp"

// Tool names.
const (
	ToolExtractModule     = "extract_module"
	ToolListClasses       = "list_classes"
	ToolListHelperMethods = "list_helper_methods"
)

// ToolDefinition defines an MCP tool exposed by the server.
type ToolDefinition struct {
	Name string
	Tool mcp.Tool
}

// RegisteredTools returns the MCP tool definitions.
func RegisteredTools() []ToolDefinition {
	return []ToolDefinition{
		{Name: ToolExtractModule, Tool: extractModuleTool()},
		{Name: ToolListClasses, Tool: listClassesTool()},
		{Name: ToolListHelperMethods, Tool: listHelperMethodsTool()},
	}
}

func pathOptions() []mcp.ToolOption {
	return []mcp.ToolOption{
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Source file path, absolute or relative to the project root")),
		mcp.WithString("content",
			mcp.Description("Optional file content to use instead of reading path; imports are still read from disk")),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
	}
}

func extractModuleTool() mcp.Tool {
	opts := append([]mcp.ToolOption{
		mcp.WithDescription("Extract the structural model of a TypeScript file: classes, interfaces, fields with decorators and annotations, methods, enums, aliases, functions and imports. Old-style imports are resolved and nested."),
		mcp.WithBoolean("pretty",
			mcp.Description("Indent the JSON output")),
	}, pathOptions()...)
	return mcp.NewTool(ToolExtractModule, opts...)
}

func listClassesTool() mcp.Tool {
	opts := append([]mcp.ToolOption{
		mcp.WithDescription("Compact summary of the classes and interfaces declared in a TypeScript file: heritage, decorators, field and method names."),
	}, pathOptions()...)
	return mcp.NewTool(ToolListClasses, opts...)
}

func listHelperMethodsTool() mcp.Tool {
	opts := append([]mcp.ToolOption{
		mcp.WithDescription("List functions marked with a __$helperMethod__ comment, with their wrapper names, arguments, target wrapper types and meta data."),
	}, pathOptions()...)
	return mcp.NewTool(ToolListHelperMethods, opts...)
}
