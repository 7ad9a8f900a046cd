package main

import (
	"io"

	"github.com/spf13/cobra"
)

var (
	extractOutput string
	extractPretty bool
)

var extractCmd = &cobra.Command{
	Use:   "extract <file>",
	Short: "Extract the structural model of one file",
	Long: `Extract parses a TypeScript file and prints its module model as JSON.
Old-style imports are resolved and nested under "imports"; import cycles
are cut with a {"name": path} reference.

Examples:
  tsstruct extract src/model.ts --pretty
  tsstruct extract src/model.ts -o model.json`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()
		return runExtract(a, cmd.OutOrStdout(), args[0], extractOutput, extractPretty)
	},
}

func init() {
	rootCmd.AddCommand(extractCmd)
	extractCmd.Flags().StringVarP(&extractOutput, "output", "o", "", "write JSON to this file instead of stdout")
	extractCmd.Flags().BoolVar(&extractPretty, "pretty", false, "indent the JSON output")
}

func runExtract(a *app, out io.Writer, file, output string, pretty bool) error {
	paths, err := absPaths([]string{file})
	if err != nil {
		return err
	}
	module, err := a.session().Resolve(paths[0])
	if err != nil {
		return err
	}
	return writeJSON(out, output, module, pretty)
}
