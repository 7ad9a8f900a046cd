package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const header = `# tsstruct configuration.
# Every key can be overridden with an environment variable, e.g.
# TSSTRUCT_LOG_LEVEL=debug or TSSTRUCT_RESOLVE_APPLY_PENDING_OVERRIDES=true.
`

// comments are attached to the top-level sections of the written file.
var comments = map[string]string{
	"log":     "level: debug|info|warn|error, format: text|json",
	"resolve": "import resolution; base_dir defaults to the project root",
	"scan":    "doublestar patterns relative to the scanned directory",
	"cache":   "result LRU entries and memory-mapped file store limits",
	"watch":   "delay before a changed file is re-extracted",
	"mcp":     "call_log: JSONL file recording MCP tool calls",
}

// WriteDefault writes the default configuration to path, creating parent
// directories. An existing file is not overwritten unless force is set.
func WriteDefault(path string, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s already exists", path)
		}
	}

	var node yaml.Node
	if err := node.Encode(Default()); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		if c, ok := comments[node.Content[i].Value]; ok {
			node.Content[i].HeadComment = c
		}
	}

	var buf bytes.Buffer
	buf.WriteString(header)
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(&node); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// DefaultPath returns the config file location for a project root.
func DefaultPath(rootDir string) string {
	return filepath.Join(rootDir, Dir, "config.yaml")
}
