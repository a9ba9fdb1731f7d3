// Package testutils holds fixtures shared by the package tests.
package testutils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/conneroisu/stegtext/internal/config"
	"github.com/stretchr/testify/require"
)

// Prose is ordinary English that the detector scores as clean and that has
// room for a short homoglyph payload.
const Prose = "The quick brown fox jumps over the lazy dog while the farmer sleeps soundly. " +
	"Every morning he wakes up early, opens the barn doors and feeds the animals before breakfast. " +
	"In the afternoon he repairs old fences, mends the roof, and writes long letters to his sister."

// TestIterations keeps key derivation fast in tests.
const TestIterations = 1000

// CreateTestConfig returns the default configuration tuned for tests: cheap
// key derivation, no rate limiting and a system assigned port.
func CreateTestConfig() *config.Config {
	cfg := config.Default()
	cfg.Crypto.Iterations = TestIterations
	cfg.Server.Port = 0
	cfg.Server.RateLimit = 0
	return cfg
}

// WriteFile creates path with content, making missing parent directories,
// and returns path.
func WriteFile(t *testing.T, path, content string) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// AssertFilePermissions checks the permission bits of path.
func AssertFilePermissions(t *testing.T, path string, expectedMode os.FileMode) {
	t.Helper()
	info, err := os.Stat(path)
	require.NoError(t, err)

	actualMode := info.Mode()
	require.Equal(t, expectedMode, actualMode&os.FileMode(0o777),
		"File %s has incorrect permissions: got %o, want %o",
		path, actualMode&os.FileMode(0o777), expectedMode)
}
