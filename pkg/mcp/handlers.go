package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/gnana997/tsstruct/pkg/helpers"
	"github.com/gnana997/tsstruct/pkg/model"
	"github.com/gnana997/tsstruct/pkg/resolver"
)

func (s *Server) handlers() map[string]server.ToolHandlerFunc {
	return map[string]server.ToolHandlerFunc{
		ToolExtractModule:     s.handleExtractModule,
		ToolListClasses:       s.handleListClasses,
		ToolListHelperMethods: s.handleListHelperMethods,
	}
}

// HandleToolCall dispatches a tool call to the appropriate handler.
func (s *Server) HandleToolCall(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	handler, ok := s.handlers()[req.Params.Name]
	if !ok {
		return mcp.NewToolResultError(fmt.Sprintf("unknown tool: %s", req.Params.Name)), nil
	}
	return handler(ctx, req)
}

// extract resolves the requested module in a fresh session.
func (s *Server) extract(req mcp.CallToolRequest) (*model.Module, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return nil, err
	}
	session := resolver.NewSession(s.extractor, s.store, s.logger)
	if content := req.GetString("content", ""); content != "" {
		return session.ResolveSource(path, []byte(content))
	}
	return session.Resolve(path)
}

func (s *Server) handleExtractModule(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	module, err := s.extract(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	statsFrom(ctx).module(module)

	var data []byte
	if req.GetBool("pretty", false) {
		data, err = json.MarshalIndent(module, "", "  ")
	} else {
		data, err = json.Marshal(module)
	}
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to serialize module: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

// ClassSummary is the list_classes view of a class or interface.
type ClassSummary struct {
	Name        string   `json:"name"`
	IsInterface bool     `json:"isInterface,omitempty"`
	ModuleName  string   `json:"moduleName,omitempty"`
	Extends     []string `json:"extends,omitempty"`
	Implements  []string `json:"implements,omitempty"`
	Decorators  []string `json:"decorators,omitempty"`
	Fields      []string `json:"fields"`
	Methods     []string `json:"methods"`
	Accessors   []string `json:"accessors,omitempty"`
}

func summarize(c *model.Class) ClassSummary {
	sum := ClassSummary{
		Name:        c.Name,
		IsInterface: c.IsInterface,
		Fields:      []string{},
		Methods:     []string{},
	}
	if c.ModuleName != nil {
		sum.ModuleName = *c.ModuleName
	}
	for _, t := range c.Extends {
		sum.Extends = append(sum.Extends, helpers.Flatten(t, nil)...)
	}
	for _, t := range c.Implements {
		sum.Implements = append(sum.Implements, helpers.Flatten(t, nil)...)
	}
	for _, d := range c.Decorators {
		sum.Decorators = append(sum.Decorators, d.Name)
	}
	for _, f := range c.Fields {
		sum.Fields = append(sum.Fields, f.Name)
	}
	for _, m := range c.Methods {
		sum.Methods = append(sum.Methods, m.Name)
	}
	for _, a := range c.Accessors {
		sum.Accessors = append(sum.Accessors, string(a.Kind)+" "+a.Name)
	}
	return sum
}

func (s *Server) handleListClasses(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	module, err := s.extract(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	statsFrom(ctx).module(module)

	classes := make([]ClassSummary, 0, len(module.Classes))
	for _, c := range module.Classes {
		classes = append(classes, summarize(c))
	}
	return jsonResult(map[string]any{
		"path":    module.Name,
		"classes": classes,
	})
}

// helperSummary adds the derived wrapper data to a helper method.
type helperSummary struct {
	*helpers.Method
	TargetWrappers []string `json:"targetWrappers"`
}

func (s *Server) handleListHelperMethods(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if !filepath.IsAbs(path) {
		if base := s.extractor.Options().BaseDir; base != "" {
			path = filepath.Join(base, path)
		}
	}

	src := []byte(req.GetString("content", ""))
	if len(src) == 0 {
		if src, err = s.store.ReadFile(path); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to read %s: %v", path, err)), nil
		}
	}

	methods, err := s.helpers.Extract(src, path)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	statsFrom(ctx).helperFile(path, len(methods))
	out := make([]helperSummary, 0, len(methods))
	for _, m := range methods {
		out = append(out, helperSummary{Method: m, TargetWrappers: m.TargetWrappers()})
	}
	return jsonResult(map[string]any{
		"path":    path,
		"helpers": out,
	})
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to serialize result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}
