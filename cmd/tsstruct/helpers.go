package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gnana997/tsstruct/pkg/helpers"
	"github.com/gnana997/tsstruct/pkg/model"
)

var helpersJSON bool

var helpersCmd = &cobra.Command{
	Use:   "helpers <file>",
	Short: "List the helper methods declared in a file",
	Long: `Helpers lists free functions whose leading comment contains the
__$helperMethod__ marker, with their wrapper name, arguments and the
metadata following __$meta__.

Examples:
  tsstruct helpers src/helpers.ts
  tsstruct helpers src/helpers.ts --json`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()
		return runHelpers(a, cmd.OutOrStdout(), args[0], helpersJSON)
	},
}

func init() {
	rootCmd.AddCommand(helpersCmd)
	helpersCmd.Flags().BoolVar(&helpersJSON, "json", false, "print the methods as JSON")
}

func runHelpers(a *app, out io.Writer, file string, asJSON bool) error {
	paths, err := absPaths([]string{file})
	if err != nil {
		return err
	}
	src, err := a.store.ReadFile(paths[0])
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", file, err)
	}
	methods, err := a.helpers().Extract(src, paths[0])
	if err != nil {
		return err
	}

	if asJSON {
		return writeJSON(out, "", methods, true)
	}
	if len(methods) == 0 {
		fmt.Fprintln(out, "Helper methods  (none)")
		return nil
	}
	for i, m := range methods {
		if i > 0 {
			fmt.Fprintln(out)
		}
		printHelper(out, m)
	}
	return nil
}

func typeString(t model.Type) string {
	if t == nil {
		return "any"
	}
	return strings.Join(helpers.Flatten(t, nil), " | ")
}

// printHelper renders one method with an argument table.
func printHelper(out io.Writer, m *helpers.Method) {
	header := m.WrapperMethodName
	if header != m.OriginalName {
		header += " (" + m.OriginalName + ")"
	}
	fmt.Fprintf(out, "%s: %s\n", header, typeString(m.ReturnType))

	if m.Meta != nil {
		var flags []string
		if m.Meta.Override {
			flags = append(flags, "override")
		}
		if m.Meta.Primary {
			flags = append(flags, "primary")
		}
		if m.Meta.Deprecated {
			flags = append(flags, "deprecated")
		}
		if len(flags) > 0 {
			fmt.Fprintf(out, "  [%s]\n", strings.Join(flags, "] ["))
		}
		if m.Meta.Comment != nil {
			fmt.Fprintf(out, "  %s\n", *m.Meta.Comment)
		}
	}
	if targets := m.TargetWrappers(); len(targets) > 0 {
		fmt.Fprintf(out, "  targets: %s\n", strings.Join(targets, ", "))
	}
	if len(m.Args) == 0 {
		return
	}

	nameW, typeW := len("NAME"), len("TYPE")
	for _, arg := range m.Args {
		nameW = max(nameW, len(arg.Name))
		typeW = max(typeW, len(typeString(arg.Type)))
	}
	fmt.Fprintf(out, "  %-*s  %-*s  %s\n", nameW, "NAME", typeW, "TYPE", "DEFAULT")
	for _, arg := range m.Args {
		def := "-"
		if arg.DefaultValue != nil {
			def = fmt.Sprintf("%v", arg.DefaultValue)
		} else if arg.Optional {
			def = "(optional)"
		}
		fmt.Fprintf(out, "  %-*s  %-*s  %s\n", nameW, arg.Name, typeW, typeString(arg.Type), def)
	}
}
