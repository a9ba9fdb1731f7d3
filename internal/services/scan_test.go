package services

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/conneroisu/stegtext/internal/errors"
	"github.com/conneroisu/stegtext/internal/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const prose = "The old man walked slowly to the end of the long pier and sat down on a wooden bench. " +
	"He watched the fishing boats come in as the sun went down over the quiet harbour."

func scanFixture(t *testing.T) string {
	t.Helper()
	svc := newTestService()

	stego, err := svc.Hide(context.Background(), HideRequest{Method: MethodZeroWidth, Cover: prose, Secret: "HI"})
	require.NoError(t, err)

	dir := t.TempDir()
	testutils.WriteFile(t, filepath.Join(dir, "clean.txt"), prose)
	testutils.WriteFile(t, filepath.Join(dir, "notes", "stego.md"), stego)
	testutils.WriteFile(t, filepath.Join(dir, "page.html"),
		"<html><body><p>"+prose+"</p><script>var marker = '\u200b\u200d';</script></body></html>")
	testutils.WriteFile(t, filepath.Join(dir, "image.bin"), "\x00\x01")
	testutils.WriteFile(t, filepath.Join(dir, ".git", "hidden.txt"), stego)
	testutils.WriteFile(t, filepath.Join(dir, "binary.txt"), "\xff\xfe")
	return dir
}

func TestScanService_Scan(t *testing.T) {
	dir := scanFixture(t)
	scanner := NewScanService(newTestService(), nil)

	for _, workers := range []int{1, 4} {
		result, err := scanner.Scan(context.Background(), ScanOptions{Paths: []string{dir}, Workers: workers})
		require.NoError(t, err)

		require.Len(t, result.Files, 4)
		assert.Equal(t, filepath.Join(dir, "binary.txt"), result.Files[0].Path)
		assert.Contains(t, result.Files[0].Error, "not UTF-8")
		assert.Nil(t, result.Files[0].Detection)

		assert.Equal(t, filepath.Join(dir, "clean.txt"), result.Files[1].Path)
		assert.False(t, result.Files[1].Detection.Detected)

		assert.Equal(t, filepath.Join(dir, "notes", "stego.md"), result.Files[2].Path)
		assert.True(t, result.Files[2].Detection.HasZeroWidth)

		assert.Equal(t, filepath.Join(dir, "page.html"), result.Files[3].Path)
		assert.False(t, result.Files[3].Detection.HasZeroWidth)

		assert.Equal(t, 1, result.Flagged)
		assert.Equal(t, 1, result.Failed)
	}
}

func TestScanService_ExplicitFilesAndExtensions(t *testing.T) {
	dir := scanFixture(t)
	scanner := NewScanService(newTestService(), nil)

	result, err := scanner.Scan(context.Background(), ScanOptions{
		Paths:      []string{filepath.Join(dir, "image.bin"), dir, filepath.Join(dir, "clean.txt")},
		Extensions: []string{".TXT"},
	})
	require.NoError(t, err)

	var paths []string
	for _, f := range result.Files {
		paths = append(paths, f.Path)
	}
	assert.Equal(t, []string{
		filepath.Join(dir, "binary.txt"),
		filepath.Join(dir, "clean.txt"),
		filepath.Join(dir, "image.bin"),
	}, paths)
}

func TestScanService_Limits(t *testing.T) {
	dir := scanFixture(t)
	scanner := NewScanService(newTestService(), nil)

	result, err := scanner.Scan(context.Background(), ScanOptions{
		Paths:        []string{filepath.Join(dir, "clean.txt")},
		MaxFileBytes: 10,
	})
	require.NoError(t, err)
	require.Len(t, result.Files, 1)
	assert.Contains(t, result.Files[0].Error, "larger than 10 bytes")
}

func TestScanService_MissingPath(t *testing.T) {
	dir := scanFixture(t)
	scanner := NewScanService(newTestService(), nil)

	result, err := scanner.Scan(context.Background(), ScanOptions{
		Paths: []string{filepath.Join(dir, "missing"), filepath.Join(dir, "clean.txt")},
	})
	require.Error(t, err)
	assert.Equal(t, errors.ErrorTypeIO, errors.TypeOf(err))
	require.NotNil(t, result)
	assert.Len(t, result.Files, 1)
}

func TestScanService_Cancelled(t *testing.T) {
	dir := scanFixture(t)
	scanner := NewScanService(newTestService(), nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := scanner.Scan(ctx, ScanOptions{Paths: []string{dir}})
	assert.ErrorIs(t, err, context.Canceled)
}
