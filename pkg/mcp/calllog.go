package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/gnana997/tsstruct/pkg/model"
)

// CallLogEntry is the schema for one JSONL line written per tool call.
// Path is the absolute module path the tool resolved; the counts are set
// only by tools that produced them.
type CallLogEntry struct {
	Ts            string         `json:"ts"`
	Tool          string         `json:"tool"`
	Params        map[string]any `json:"params"`
	Path          string         `json:"path,omitempty"`
	Classes       *int           `json:"classes,omitempty"`
	Imports       *int           `json:"imports,omitempty"`
	Helpers       *int           `json:"helpers,omitempty"`
	DurationMs    int64          `json:"duration_ms"`
	ResponseBytes int            `json:"response_bytes"`
	TokensEst     int            `json:"tokens_est"`
	Error         *string        `json:"error"`
}

// callStats carries what a handler learned about the module it served back
// to the logging middleware.
type callStats struct {
	path    string
	classes *int
	imports *int
	helpers *int
}

type callStatsKey struct{}

func withCallStats(ctx context.Context) (context.Context, *callStats) {
	stats := &callStats{}
	return context.WithValue(ctx, callStatsKey{}, stats), stats
}

// statsFrom returns the stats of the current call, or nil when the call is
// not logged. Its methods accept a nil receiver.
func statsFrom(ctx context.Context) *callStats {
	stats, _ := ctx.Value(callStatsKey{}).(*callStats)
	return stats
}

func (c *callStats) module(m *model.Module) {
	if c == nil || m == nil {
		return
	}
	classes, imports := len(m.Classes), len(m.ImportNames())
	c.path, c.classes, c.imports = m.Name, &classes, &imports
}

func (c *callStats) helperFile(path string, count int) {
	if c == nil {
		return
	}
	c.path, c.helpers = path, &count
}

func (c *callStats) apply(entry *CallLogEntry) {
	entry.Path = c.path
	entry.Classes = c.classes
	entry.Imports = c.imports
	entry.Helpers = c.helpers
}

// CallLog appends JSONL entries to a file. It is safe for concurrent use.
type CallLog struct {
	mu  sync.Mutex
	f   *os.File
	enc *json.Encoder
}

// OpenCallLog opens (or creates) path for appending, creating parent
// directories. It returns nil, nil for an empty path; a nil CallLog
// disables logging.
func OpenCallLog(path string) (*CallLog, error) {
	if path == "" {
		return nil, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create call log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open call log: %w", err)
	}
	return &CallLog{f: f, enc: json.NewEncoder(f)}, nil
}

// Write appends one entry.
func (l *CallLog) Write(entry CallLogEntry) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.enc.Encode(entry)
}

// Close closes the log file.
func (l *CallLog) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.f.Close()
}

// SanitizeParams returns a copy of args safe for logging. Strings longer
// than 64 bytes, such as inline file content, are replaced by a
// "{key}_len" entry holding their length.
func SanitizeParams(args map[string]any) map[string]any {
	const shortStringMax = 64
	out := make(map[string]any, len(args))
	for k, v := range args {
		if s, ok := v.(string); ok && len(s) > shortStringMax {
			out[k+"_len"] = len(s)
		} else {
			out[k] = v
		}
	}
	return out
}

// ResponseBytes returns the serialized length of a result's content, or 0.
func ResponseBytes(result *mcp.CallToolResult) int {
	if result == nil {
		return 0
	}
	b, err := json.Marshal(result.Content)
	if err != nil {
		return 0
	}
	return len(b)
}

// Now is a replaceable clock for testing.
var Now = func() time.Time { return time.Now() }
