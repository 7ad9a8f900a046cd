package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gnana997/tsstruct/pkg/ast"
	"github.com/gnana997/tsstruct/pkg/normalize"
)

var (
	callsRoot  string
	callsMatch string
	callsJSON  bool
)

var callsCmd = &cobra.Command{
	Use:   "calls <file>",
	Short: "List fluent call chains rooted at an identifier",
	Long: `Calls finds the outermost call chains such as api.users.get(1).send()
whose base is the identifier given by --root, in source order.

--match keeps only chains containing a dotted pattern that starts at the
root. A "*" segment matches any name and a "(*)" suffix requires a call.

Examples:
  tsstruct calls src/client.ts --root api
  tsstruct calls src/client.ts --root api --match 'api.*.get(*)'
  tsstruct calls src/client.ts --root api --json`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()
		return runCalls(a, cmd.OutOrStdout(), args[0], callsRoot, callsMatch, callsJSON)
	},
}

func init() {
	rootCmd.AddCommand(callsCmd)
	callsCmd.Flags().StringVar(&callsRoot, "root", "", "identifier the call chains start from")
	callsCmd.Flags().StringVar(&callsMatch, "match", "", "only chains containing this pattern, e.g. api.*.get(*)")
	callsCmd.Flags().BoolVar(&callsJSON, "json", false, "print the chains as JSON")
	_ = callsCmd.MarkFlagRequired("root")
}

// CallSegment is one property access or call in a chain.
type CallSegment struct {
	Name      string `json:"name"`
	Called    bool   `json:"called"`
	Arguments []any  `json:"arguments,omitempty"`
}

// CallChain is a call path as printed by the calls command.
type CallChain struct {
	Base  string        `json:"base"`
	Path  []CallSegment `json:"path"`
	Line  int           `json:"line"`
	Start int           `json:"start"`
	End   int           `json:"end"`
	Text  string        `json:"text"`
}

func runCalls(a *app, out io.Writer, file, root, match string, asJSON bool) error {
	paths, err := absPaths([]string{file})
	if err != nil {
		return err
	}
	src, err := a.store.ReadFile(paths[0])
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", file, err)
	}
	tree, err := a.parsers.ParseFile(src, paths[0])
	if err != nil {
		return err
	}
	defer tree.Close()

	nz := normalize.New(a.logger)
	var pattern ast.Matcher
	if match != "" {
		pattern = ast.MemberFromExp(match, nil)
	}

	found := ast.FindCallPaths(tree.RootNode(), ast.Ident(root), src)
	chains := make([]CallChain, 0, len(found))
	for _, p := range found {
		if pattern != nil && !p.Contains(pattern, src) {
			continue
		}
		chain := CallChain{
			Base:  p.Base,
			Path:  make([]CallSegment, 0, len(p.Path)),
			Line:  int(p.StartLocation().Row) + 1,
			Start: p.Start(),
			End:   p.End(),
		}
		var text strings.Builder
		text.WriteString(p.Base)
		for _, seg := range p.Path {
			s := CallSegment{Name: seg.Name, Called: seg.Called()}
			text.WriteString("." + seg.Name)
			if s.Called {
				args := make([]string, len(seg.Arguments))
				for i, arg := range seg.Arguments {
					s.Arguments = append(s.Arguments, nz.ParseArg(arg, src))
					args[i] = ast.Text(arg, src)
				}
				text.WriteString("(" + strings.Join(args, ", ") + ")")
			}
			chain.Path = append(chain.Path, s)
		}
		chain.Text = text.String()
		chains = append(chains, chain)
	}

	if asJSON {
		return writeJSON(out, "", chains, true)
	}
	for _, c := range chains {
		fmt.Fprintf(out, "%4d  %s\n", c.Line, c.Text)
	}
	return nil
}
