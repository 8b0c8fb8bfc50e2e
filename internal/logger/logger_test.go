package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ============================================================================
// Test Helper Functions
// ============================================================================

// captureOutput redirects logger output to a buffer for testing.
// Returns the buffer and a cleanup function to restore original output.
func captureOutput(level, format string) (*bytes.Buffer, func()) {
	buf := new(bytes.Buffer)

	mu.RLock()
	originalOutput := output
	mu.RUnlock()
	originalLevel := Level(currentLevel.Load()).String()
	originalFormat, _ := currentFormat.Load().(string)

	InitWithWriter(buf, level, format)

	cleanup := func() {
		InitWithWriter(originalOutput, originalLevel, originalFormat)
	}
	return buf, cleanup
}

// ============================================================================
// Level Filtering Tests
// ============================================================================

func TestLevelFiltering(t *testing.T) {
	t.Run("DebugLevelShowsAllMessages", func(t *testing.T) {
		buf, cleanup := captureOutput("DEBUG", "text")
		defer cleanup()

		Debug("debug message")
		Info("info message")
		Warn("warn message")
		Error("error message")

		out := buf.String()
		assert.Contains(t, out, "debug message")
		assert.Contains(t, out, "info message")
		assert.Contains(t, out, "warn message")
		assert.Contains(t, out, "error message")
	})

	t.Run("WarnLevelFiltersInfo", func(t *testing.T) {
		buf, cleanup := captureOutput("WARN", "text")
		defer cleanup()

		Debug("debug message")
		Info("info message")
		Warn("warn message")

		out := buf.String()
		assert.NotContains(t, out, "debug message")
		assert.NotContains(t, out, "info message")
		assert.Contains(t, out, "warn message")
	})

	t.Run("InvalidLevelIgnored", func(t *testing.T) {
		buf, cleanup := captureOutput("INFO", "text")
		defer cleanup()

		SetLevel("verbose")
		Debug("still filtered")
		assert.Empty(t, buf.String())
	})
}

// ============================================================================
// Format Tests
// ============================================================================

func TestJSONFormat(t *testing.T) {
	buf, cleanup := captureOutput("INFO", "json")
	defer cleanup()

	Info("record saved", KeyRecordID, 42, KeyStore, "metadata")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "record saved", entry["msg"])
	assert.Equal(t, float64(42), entry[KeyRecordID])
	assert.Equal(t, "metadata", entry[KeyStore])
}

func TestContextFields(t *testing.T) {
	buf, cleanup := captureOutput("DEBUG", "json")
	defer cleanup()

	lc := NewLogContext("req-1").WithOperation("update_owner", 42).WithStore("metadata_draft")
	ctx := WithContext(context.Background(), lc)

	DebugCtx(ctx, "routed", Owner(7))

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "req-1", entry[KeyRequestID])
	assert.Equal(t, "update_owner", entry[KeyOperation])
	assert.Equal(t, float64(42), entry[KeyRecordID])
	assert.Equal(t, "metadata_draft", entry[KeyStore])
	assert.Equal(t, float64(7), entry[KeyOwner])
}

func TestErrAttr(t *testing.T) {
	buf, cleanup := captureOutput("INFO", "text")
	defer cleanup()

	Error("failed", Err(errors.New("boom")))
	Info("fine", Err(nil))

	out := buf.String()
	assert.Contains(t, out, "error=boom")
	assert.Equal(t, 2, strings.Count(out, "\n"))
}

// ============================================================================
// Context Tests
// ============================================================================

func TestLogContext(t *testing.T) {
	t.Parallel()

	assert.Nil(t, FromContext(context.Background()))

	ctx := EnsureContext(context.Background())
	lc := FromContext(ctx)
	require.NotNil(t, lc)
	assert.NotEmpty(t, lc.RequestID)
	assert.Same(t, ctx, EnsureContext(ctx))

	clone := lc.WithStore("metadata")
	assert.Empty(t, lc.Store)
	assert.Equal(t, "metadata", clone.Store)
	assert.Equal(t, lc.RequestID, clone.RequestID)

	var nilLC *LogContext
	assert.Nil(t, nilLC.WithOperation("x", 1))
	assert.Zero(t, nilLC.DurationMs())
}

func TestInitFileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.log")
	_, cleanup := captureOutput("INFO", "text")
	defer cleanup()

	require.NoError(t, Init(Config{Level: "INFO", Format: "text", Output: path}))
	Info("to file")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "to file")
}
