package log

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// The package logger is a process-wide singleton, so one test drives the
// whole lifecycle: init, levels, field formatting, and the pubsub tap.
func TestLogger(t *testing.T) {
	path := filepath.Join(t.TempDir(), "assetdb.log")

	cleanup, err := Init(path)
	require.NoError(t, err)
	t.Cleanup(cleanup)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	events := NewListener(ctx)
	require.NotNil(t, events)

	Info(CatLoader, "load started", "label", "core", "items", 3)
	ErrorErr(CatSource, "decode failed", os.ErrNotExist, "name", "broadsword")
	Warn(CatConfig, "odd fields", "orphan")

	SetMinLevel(LevelInfo)
	Debug(CatCache, "suppressed below min level")
	SetMinLevel(LevelDebug)

	SetEnabled(false)
	Info(CatLoader, "suppressed while disabled")
	SetEnabled(true)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	content := string(data)

	require.Contains(t, content, "[INFO] [loader] load started label=core items=3")
	require.Contains(t, content, "[ERROR] [source] decode failed")
	require.Contains(t, content, "error=file does not exist")
	require.Contains(t, content, "odd fields orphan=<missing>")
	require.NotContains(t, content, "suppressed")

	var lines []string
	deadline := time.After(2 * time.Second)
	for len(lines) < 3 {
		select {
		case ev := <-events:
			lines = append(lines, ev.Payload)
		case <-deadline:
			t.Fatalf("got %d log events, want 3", len(lines))
		}
	}
	require.True(t, strings.Contains(lines[0], "load started"))
}

func TestLevelString(t *testing.T) {
	require.Equal(t, "DEBUG", LevelDebug.String())
	require.Equal(t, "INFO", LevelInfo.String())
	require.Equal(t, "WARN", LevelWarn.String())
	require.Equal(t, "ERROR", LevelError.String())
	require.Equal(t, "UNKNOWN", Level(42).String())
}
