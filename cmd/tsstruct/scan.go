package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/gnana997/tsstruct/pkg/batch"
)

var (
	scanOutDir string
	scanQuiet  bool
	scanPretty bool
)

var scanCmd = &cobra.Command{
	Use:   "scan <dir>",
	Short: "Extract every matching file under a directory",
	Long: `Scan discovers source files under a directory with the include and
exclude patterns from the scan section of the configuration, extracts them
in parallel and prints a summary. With --out, each module is written to
<out>/<relative path>.json.

Examples:
  tsstruct scan src
  tsstruct scan src --out build/models --quiet`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		stats, err := runScan(ctx, a, cmd.OutOrStdout(), cmd.ErrOrStderr(), args[0], scanOutDir, scanPretty, scanQuiet)
		if err != nil {
			return err
		}
		if stats.FilesFailed > 0 {
			return fmt.Errorf("%d of %d files failed", stats.FilesFailed, stats.FilesDiscovered)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(scanCmd)
	scanCmd.Flags().StringVar(&scanOutDir, "out", "", "write one JSON file per module under this directory")
	scanCmd.Flags().BoolVarP(&scanQuiet, "quiet", "q", false, "disable the progress bar and summary")
	scanCmd.Flags().BoolVar(&scanPretty, "pretty", false, "indent the JSON output")
}

// newScanner builds a scanner over the app's store with a fresh result cache.
func newScanner(a *app) (*batch.Scanner, error) {
	cache, err := batch.NewResultCache(a.cfg.Cache.MaxEntries, a.logger)
	if err != nil {
		return nil, err
	}
	return batch.NewScanner(a.extractor, a.store, cache, a.cfg.Scan.Workers, a.logger), nil
}

func runScan(ctx context.Context, a *app, out, progressOut io.Writer, dir, outDir string, pretty, quiet bool) (*batch.ScanStats, error) {
	root, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", dir, err)
	}
	files, err := batch.Discover(root, a.cfg.ScanOptions(), a.logger)
	if err != nil {
		return nil, err
	}

	scanner, err := newScanner(a)
	if err != nil {
		return nil, err
	}
	results, stats, err := scanner.Scan(ctx, files, newProgress(progressOut, len(files), quiet))
	if err != nil {
		return stats, err
	}

	if outDir != "" {
		for _, r := range results {
			if err := writeJSON(out, outputPath(root, outDir, r.Path), r.Module, pretty); err != nil {
				return stats, err
			}
		}
	}
	if !quiet {
		printSummary(out, root, stats)
	}
	return stats, nil
}

// printSummary renders scan statistics and per-file failures.
func printSummary(out io.Writer, root string, stats *batch.ScanStats) {
	fmt.Fprintf(out, "Extracted %d of %d files in %dms (%.1f files/s, %d workers)\n",
		stats.FilesExtracted, stats.FilesDiscovered, stats.TotalTimeMs, stats.FilesPerSecond, stats.WorkerCount)
	fmt.Fprintf(out, "  classes    %d\n", stats.Classes)
	fmt.Fprintf(out, "  functions  %d\n", stats.Functions)
	fmt.Fprintf(out, "  enums      %d\n", stats.Enums)
	fmt.Fprintf(out, "  aliases    %d\n", stats.Aliases)
	if stats.CacheHits > 0 {
		fmt.Fprintf(out, "  cached     %d\n", stats.CacheHits)
	}

	if len(stats.Errors) == 0 {
		return
	}
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Failures")

	rels := make([]string, len(stats.Errors))
	width := 0
	for i, e := range stats.Errors {
		rel, err := filepath.Rel(root, e.FilePath)
		if err != nil {
			rel = e.FilePath
		}
		rels[i] = filepath.ToSlash(rel)
		width = max(width, len(rels[i]))
	}
	for i, e := range stats.Errors {
		padding := strings.Repeat(" ", width-len(rels[i]))
		fmt.Fprintf(out, "  %s%s  %v\n", rels[i], padding, e.Error)
	}
}
