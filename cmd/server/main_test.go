package main

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"autonotes/internal/config"
	"autonotes/internal/notes"
)

func TestReadTranscript(t *testing.T) {
	got, err := readTranscript(strings.NewReader("from stdin"), nil)
	require.NoError(t, err)
	assert.Equal(t, "from stdin", got)

	got, err = readTranscript(strings.NewReader("dash"), []string{"-"})
	require.NoError(t, err)
	assert.Equal(t, "dash", got)

	path := filepath.Join(t.TempDir(), "meeting.txt")
	require.NoError(t, os.WriteFile(path, []byte("from file"), 0o644))
	got, err = readTranscript(nil, []string{path})
	require.NoError(t, err)
	assert.Equal(t, "from file", got)

	_, err = readTranscript(nil, []string{filepath.Join(t.TempDir(), "missing.txt")})
	assert.Error(t, err)
}

func TestNewLogger(t *testing.T) {
	ctx := context.Background()

	assert.True(t, newLogger("warn", "text", false).Enabled(ctx, slog.LevelWarn))
	assert.False(t, newLogger("warn", "text", false).Enabled(ctx, slog.LevelInfo))
	assert.True(t, newLogger("warn", "json", true).Enabled(ctx, slog.LevelDebug))
	assert.True(t, newLogger("bogus", "text", false).Enabled(ctx, slog.LevelInfo))
}

func TestNewRepository(t *testing.T) {
	_, ok := newRepository(&config.Config{StoreBackend: config.BackendSQLite, SQLitePath: "x.db"}).(*notes.SQLiteRepo)
	assert.True(t, ok)

	_, ok = newRepository(&config.Config{StoreBackend: config.BackendMongo}).(*notes.Repo)
	assert.True(t, ok)
}

func TestNewGeneratorRejectsUnknownProvider(t *testing.T) {
	_, err := newGenerator(&config.Config{LLMProvider: "nope"}, slog.Default())
	assert.Error(t, err)
}

func TestVersionCommand(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"version"})
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
	})

	require.NoError(t, rootCmd.Execute())
	assert.Equal(t, "autonotes version "+version+"\n", out.String())
}
