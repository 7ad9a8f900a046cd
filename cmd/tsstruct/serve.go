package main

import (
	"github.com/spf13/cobra"

	"github.com/gnana997/tsstruct/pkg/mcp"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the MCP server on stdio",
	Long: `Serve exposes extract_module, list_classes and list_helper_methods as
Model Context Protocol tools over stdin/stdout. Relative paths in tool
calls are resolved against the project directory.

Set mcp.call_log in the configuration to record every tool call as a
JSONL line.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()
		return runServe(a)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(a *app) error {
	callLog, err := mcp.OpenCallLog(a.cfg.MCP.CallLog)
	if err != nil {
		return err
	}
	if callLog != nil {
		defer callLog.Close()
	}

	srv := mcp.NewServer(a.extractor, a.helpers(), a.store, callLog, a.logger)
	a.logger.Info("starting MCP server", "base_dir", a.cfg.Resolve.BaseDir)
	return srv.ServeStdio()
}
