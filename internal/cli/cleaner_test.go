package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	lyterrors "github.com/lytical/app/internal/errors"
)

func TestCleaner_RemovesGeneratedFile(t *testing.T) {
	dir := writeProject(t, defaultManifest)
	require.NoError(t, NewGenerator(nil).Generate(Config{Dir: dir}))

	removed, err := NewCleaner().Clean(Config{Dir: dir})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "cmd", "shop", "lyt_modules_gen.go"), removed)
	assert.NoFileExists(t, removed)

	removed, err = NewCleaner().Clean(Config{Dir: dir})
	require.NoError(t, err)
	assert.Empty(t, removed, "nothing left to clean")
}

func TestCleaner_KeepsHandWrittenFile(t *testing.T) {
	dir := writeProject(t, defaultManifest)
	out := filepath.Join(dir, "cmd", "shop", "lyt_modules_gen.go")
	require.NoError(t, os.MkdirAll(filepath.Dir(out), 0o755))
	require.NoError(t, os.WriteFile(out, []byte("package main\n"), 0o644))

	_, err := NewCleaner().Clean(Config{Dir: dir})
	require.Error(t, err)
	assert.Equal(t, lyterrors.GenerationErrorCode, lyterrors.CodeOf(err))
	assert.FileExists(t, out)
}
