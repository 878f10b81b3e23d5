package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want LogLevel
		err  bool
	}{
		{"debug", LogLevelDebug, false},
		{"INFO", LogLevelInfo, false},
		{"", LogLevelInfo, false},
		{"warning", LogLevelWarn, false},
		{" error ", LogLevelError, false},
		{"verbose", LogLevelInfo, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if tt.err {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
	assert.Equal(t, "WARN", LogLevelWarn.String())
	assert.Equal(t, "UNKNOWN", LogLevel(42).String())
}

func TestNewJSONLogger(t *testing.T) {
	var buf bytes.Buffer
	l := New(&Config{Level: LogLevelInfo, Format: "json", Output: &buf})

	l.Debug("hidden")
	l.Info("visible", "node", "Supervisor")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)

	var rec map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &rec))
	assert.Equal(t, "visible", rec["msg"])
	assert.Equal(t, "Supervisor", rec["node"])
}

func TestWith(t *testing.T) {
	t.Run("slog", func(t *testing.T) {
		var buf bytes.Buffer
		l := With(New(&Config{Format: "text", Output: &buf}), "component", "worker")
		l.Info("attempt")
		assert.Contains(t, buf.String(), "component=worker")
	})

	t.Run("custom logger", func(t *testing.T) {
		rec := &recorder{}
		l := With(rec, "component", "graph")
		l.Warn("x", "k", "v")
		require.Len(t, rec.args, 1)
		assert.Equal(t, []any{"component", "graph", "k", "v"}, rec.args[0])
	})

	t.Run("nil", func(t *testing.T) {
		assert.IsType(t, NoOpLogger{}, With(nil, "a", 1))
		assert.IsType(t, NoOpLogger{}, OrNoOp(nil))
	})
}

func TestDomainHelpers(t *testing.T) {
	var buf bytes.Buffer
	l := New(&Config{Level: LogLevelDebug, Format: "text", Output: &buf})

	LogToolCall(l, "duckduckgo", 10*time.Millisecond, nil)
	LogModelCall(l, "llama3.1", time.Second, errors.New("boom"))
	LogRun(l, "run-1", 4, time.Second, nil)

	out := buf.String()
	assert.Contains(t, out, "Tool execution completed")
	assert.Contains(t, out, "Model call failed")
	assert.Contains(t, out, "error=boom")
	assert.Contains(t, out, "run_id=run-1")
}

type recorder struct {
	args [][]any
}

func (r *recorder) Debug(_ string, args ...any) { r.args = append(r.args, args) }
func (r *recorder) Info(_ string, args ...any)  { r.args = append(r.args, args) }
func (r *recorder) Warn(_ string, args ...any)  { r.args = append(r.args, args) }
func (r *recorder) Error(_ string, args ...any) { r.args = append(r.args, args) }
