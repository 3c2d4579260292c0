// Package turnlog writes one JSON file per orchestrator/subagent turn plus
// a final summary, for post-hoc inspection of a run. Logging is a no-op
// when no directory is configured.
package turnlog

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// Logger writes {prefix}_turn_{NNN}.json and {prefix}_summary.json files
// under dir. A zero-value Logger (empty dir) is disabled.
type Logger struct {
	dir     string
	prefix  string
	runID   string
	enabled bool
}

// New returns a Logger writing under dir with the given filename prefix.
// If dir is empty, logging is disabled and every call is a no-op. Every
// Logger gets its own short run ID, stamped on every record it writes, so
// turn files from concurrent or successive runs under the same prefix can
// still be told apart.
func New(dir, prefix string) *Logger {
	l := &Logger{dir: dir, prefix: prefix, runID: uuid.NewString()[:8], enabled: dir != ""}
	if l.enabled {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			slog.Error("turnlog: failed to create log dir, disabling", "dir", dir, "error", err)
			l.enabled = false
		}
	}
	return l
}

// LogTurn writes one turn's data to {prefix}_turn_{NNN}.json.
func (l *Logger) LogTurn(turnNum int, data map[string]any) {
	if !l.enabled {
		return
	}
	data["turn_number"] = turnNum
	data["timestamp"] = time.Now().Format(time.RFC3339)
	data["prefix"] = l.prefix
	data["run_id"] = l.runID

	path := filepath.Join(l.dir, fmt.Sprintf("%s_turn_%03d.json", l.prefix, turnNum))
	l.write(path, data)
}

// LogSummary writes a final summary to {prefix}_summary.json.
func (l *Logger) LogSummary(data map[string]any) {
	if !l.enabled {
		return
	}
	data["timestamp"] = time.Now().Format(time.RFC3339)
	data["prefix"] = l.prefix
	data["run_id"] = l.runID

	path := filepath.Join(l.dir, l.prefix+"_summary.json")
	l.write(path, data)
}

func (l *Logger) write(path string, data map[string]any) {
	sanitized := sanitize(data)

	encoded, err := json.MarshalIndent(sanitized, "", "  ")
	if err != nil {
		slog.Error("turnlog: marshal failed", "path", path, "error", err)
		return
	}
	if err := os.WriteFile(path, encoded, 0o644); err != nil {
		slog.Error("turnlog: write failed", "path", path, "error", err)
	}
}

// sanitize walks data and replaces errors, fmt.Stringers, and any other
// value json.Marshal would choke on with its string form, rather than
// letting one bad field abort the whole log write.
func sanitize(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, vv := range val {
			out[k] = sanitize(vv)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, vv := range val {
			out[i] = sanitize(vv)
		}
		return out
	case string, int, int64, float64, bool, nil:
		return val
	case error:
		return val.Error()
	case fmt.Stringer:
		return val.String()
	default:
		if _, err := json.Marshal(val); err == nil {
			return val
		}
		return fmt.Sprintf("%v", val)
	}
}
