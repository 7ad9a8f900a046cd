package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/gnana997/tsstruct/pkg/batch"
)

var (
	watchOutDir string
	watchPretty bool
)

var watchCmd = &cobra.Command{
	Use:   "watch <dir>",
	Short: "Re-extract files as they change",
	Long: `Watch extracts matching files under a directory whenever they are
written, after the debounce delay from the watch section of the
configuration. Without --out, one line is printed per event.

Only the changed file is re-extracted; modules importing it keep their
previous output until they change themselves.

Examples:
  tsstruct watch src --out build/models`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		return runWatch(ctx, a, cmd.OutOrStdout(), args[0], watchOutDir, watchPretty)
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
	watchCmd.Flags().StringVar(&watchOutDir, "out", "", "write one JSON file per module under this directory")
	watchCmd.Flags().BoolVar(&watchPretty, "pretty", false, "indent the JSON output")
}

// changeHandler re-extracts changed files and mirrors them into outDir.
type changeHandler struct {
	mu      sync.Mutex
	scanner *batch.Scanner
	out     io.Writer
	root    string
	outDir  string
	pretty  bool
	app     *app
}

func (h *changeHandler) handle(path string, removed bool) {
	h.scanner.Forget(path)

	h.mu.Lock()
	defer h.mu.Unlock()

	if removed {
		if h.outDir != "" {
			if err := os.Remove(outputPath(h.root, h.outDir, path)); err != nil && !os.IsNotExist(err) {
				h.app.logger.Warn("failed to remove output", "path", path, "error", err)
			}
			return
		}
		fmt.Fprintf(h.out, "removed  %s\n", h.rel(path))
		return
	}

	result, err := h.scanner.ExtractFile(path)
	if err != nil {
		h.app.logger.Warn("file extraction failed", "path", path, "error", err)
		if h.outDir == "" {
			fmt.Fprintf(h.out, "failed   %s: %v\n", h.rel(path), err)
		}
		return
	}
	if h.outDir != "" {
		if err := writeJSON(h.out, outputPath(h.root, h.outDir, path), result.Module, h.pretty); err != nil {
			h.app.logger.Warn("failed to write output", "path", path, "error", err)
		}
		return
	}
	fmt.Fprintf(h.out, "updated  %s (%d classes, %d functions)\n",
		h.rel(path), len(result.Module.Classes), len(result.Module.Functions))
}

func (h *changeHandler) rel(path string) string {
	if rel, err := filepath.Rel(h.root, path); err == nil {
		return filepath.ToSlash(rel)
	}
	return path
}

// runWatch blocks until ctx is cancelled.
func runWatch(ctx context.Context, a *app, out io.Writer, dir, outDir string, pretty bool) error {
	root, err := filepath.Abs(dir)
	if err != nil {
		return fmt.Errorf("failed to resolve %s: %w", dir, err)
	}
	scanner, err := newScanner(a)
	if err != nil {
		return err
	}

	h := &changeHandler{scanner: scanner, out: out, root: root, outDir: outDir, pretty: pretty, app: a}
	w, err := batch.NewWatcher(a.cfg.WatchOptions(), h.handle, a.logger)
	if err != nil {
		return err
	}
	defer w.Stop()

	if err := w.Start(root); err != nil {
		return err
	}
	a.logger.Info("watching for changes", "root", root, "debounce", a.cfg.Watch.Debounce)

	<-ctx.Done()
	return nil
}
