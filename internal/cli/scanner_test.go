package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toyz/synapse/internal/errors"
	"github.com/toyz/synapse/internal/utils"
)

func writeFiles(t *testing.T, files map[string]string) {
	t.Helper()
	for path, content := range files {
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}
}

func TestDirectoryScanner_ScanDirectories(t *testing.T) {
	// tempDir/
	//   controllers/   users.go, users_gen.go, users_test.go
	//   services/      user_service.go
	//     subservice/  helper.go
	//   vendor/        dependency.go (skipped)
	//   _scratch/      ignored.go (skipped)
	//   empty_dir/
	tempDir := t.TempDir()
	controllersDir := filepath.Join(tempDir, "controllers")
	servicesDir := filepath.Join(tempDir, "services")
	subserviceDir := filepath.Join(servicesDir, "subservice")

	writeFiles(t, map[string]string{
		filepath.Join(controllersDir, "users.go"):         "package controllers\n",
		filepath.Join(controllersDir, "users_gen.go"):     utils.GeneratedHeader + "\npackage controllers\n",
		filepath.Join(controllersDir, "users_test.go"):    "package controllers\n",
		filepath.Join(servicesDir, "user_service.go"):     "package services\n",
		filepath.Join(subserviceDir, "helper.go"):         "package subservice\n",
		filepath.Join(tempDir, "vendor", "dependency.go"): "package vendor\n",
		filepath.Join(tempDir, "_scratch", "ignored.go"):  "package scratch\n",
	})
	require.NoError(t, os.MkdirAll(filepath.Join(tempDir, "empty_dir"), 0755))

	scanner := NewDirectoryScanner()

	t.Run("recursive pattern", func(t *testing.T) {
		dirs, err := scanner.ScanDirectories([]string{tempDir + "/..."})
		require.NoError(t, err)
		assert.Equal(t, []string{controllersDir, servicesDir, subserviceDir}, dirs)
	})

	t.Run("single directory", func(t *testing.T) {
		dirs, err := scanner.ScanDirectories([]string{servicesDir})
		require.NoError(t, err)
		assert.Equal(t, []string{servicesDir}, dirs)
	})

	t.Run("duplicates collapse", func(t *testing.T) {
		dirs, err := scanner.ScanDirectories([]string{controllersDir, controllersDir + "/", tempDir + "/..."})
		require.NoError(t, err)
		assert.Len(t, dirs, 3)
	})

	t.Run("source files skip tests and generated files", func(t *testing.T) {
		files, err := scanner.SourceFiles([]string{controllersDir})
		require.NoError(t, err)
		assert.Equal(t, []string{filepath.Join(controllersDir, "users.go")}, files)
	})

	t.Run("missing directory", func(t *testing.T) {
		_, err := scanner.ScanDirectories([]string{filepath.Join(tempDir, "missing")})
		require.Error(t, err)

		var synErr errors.SynapseError
		require.ErrorAs(t, err, &synErr)
		assert.Equal(t, errors.FileSystemErrorCode, synErr.ErrorCode())
		assert.Contains(t, err.Error(), "does not exist")
	})
}

func TestCleaner_CleanGeneratedFiles(t *testing.T) {
	tempDir := t.TempDir()
	pkgDir := filepath.Join(tempDir, "users")
	nestedDir := filepath.Join(pkgDir, "admin")

	generated := filepath.Join(pkgDir, "users_gen.go")
	metadata := filepath.Join(pkgDir, "users_gen.yaml")
	nestedGenerated := filepath.Join(nestedDir, "admin_gen.go")
	handWritten := filepath.Join(pkgDir, "legacy_gen.go")
	source := filepath.Join(pkgDir, "users.go")

	writeFiles(t, map[string]string{
		generated:       utils.GeneratedHeader + "\n\npackage users\n",
		metadata:        "source: users.go\n",
		nestedGenerated: utils.GeneratedHeader + "\n\npackage admin\n",
		handWritten:     "package users\n",
		source:          "package users\n",
	})

	cleaner := NewCleaner()

	t.Run("non-recursive leaves subdirectories", func(t *testing.T) {
		removed, err := cleaner.CleanGeneratedFiles([]string{pkgDir})
		require.NoError(t, err)
		assert.Equal(t, []string{generated, metadata}, removed)

		assert.NoFileExists(t, generated)
		assert.NoFileExists(t, metadata)
		assert.FileExists(t, nestedGenerated)
		assert.FileExists(t, handWritten)
		assert.FileExists(t, source)
	})

	t.Run("recursive", func(t *testing.T) {
		removed, err := cleaner.CleanGeneratedFiles([]string{tempDir + "/..."})
		require.NoError(t, err)
		assert.Equal(t, []string{nestedGenerated}, removed)
		assert.FileExists(t, handWritten)
	})

	t.Run("nothing to clean", func(t *testing.T) {
		removed, err := cleaner.CleanGeneratedFiles([]string{tempDir + "/..."})
		require.NoError(t, err)
		assert.Empty(t, removed)
	})
}
