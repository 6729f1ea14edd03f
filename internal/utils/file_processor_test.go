package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
}

func TestFileProcessor_ExpandPatterns(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"api/users.go":           "package api",
		"api/v2/items.go":        "package v2",
		"vendor/x/x.go":          "package x",
		".hidden/h.go":           "package h",
		"_examples/e.go":         "package e",
		"api/testdata/fixture.go": "package fixture",
	})

	fp := NewFileProcessor()

	dirs, err := fp.ExpandPatterns([]string{filepath.Join(root, "...")})
	require.NoError(t, err)
	assert.Equal(t, []string{
		root,
		filepath.Join(root, "api"),
		filepath.Join(root, "api", "v2"),
	}, dirs)

	dirs, err = fp.ExpandPatterns([]string{filepath.Join(root, "api"), filepath.Join(root, "api")})
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(root, "api")}, dirs)

	_, err = fp.ExpandPatterns([]string{filepath.Join(root, "missing")})
	assert.Error(t, err)

	_, err = fp.ExpandPatterns([]string{filepath.Join(root, "api", "users.go")})
	assert.ErrorContains(t, err, "not a directory")
}

func TestFileProcessor_SourceAndGeneratedFiles(t *testing.T) {
	dir := t.TempDir()
	writeTree(t, dir, map[string]string{
		"users.go":         "package api",
		"users_test.go":    "package api",
		"users_gen.go":     GeneratedHeader + "\n\npackage api\n",
		"users_gen.yaml":   "handlers: []\n",
		"manual_gen.go":    "package api // hand written\n",
		"notes.txt":        "",
	})

	fp := NewFileProcessor()

	sources, err := fp.SourceFiles(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "users.go")}, sources)

	generated, err := fp.GeneratedFiles(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "users_gen.go"),
		filepath.Join(dir, "users_gen.yaml"),
	}, generated)
}

func TestIsGeneratedFile(t *testing.T) {
	dir := t.TempDir()
	writeTree(t, dir, map[string]string{
		"gen.go":   GeneratedHeader + "\n",
		"plain.go": "package plain\n",
		"empty.go": "",
	})

	for name, expected := range map[string]bool{"gen.go": true, "plain.go": false, "empty.go": false} {
		generated, err := IsGeneratedFile(filepath.Join(dir, name))
		require.NoError(t, err)
		assert.Equal(t, expected, generated, name)
	}

	_, err := IsGeneratedFile(filepath.Join(dir, "missing.go"))
	assert.Error(t, err)
}
