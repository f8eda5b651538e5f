// Package testutil holds helpers shared by the generator tests.
package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// Setup writes files, keyed by slash separated relative path, below a fresh
// temporary directory and returns the directory.
func Setup(tb testing.TB, files map[string]string) string {
	tb.Helper()

	root := tb.TempDir()

	for relPath, content := range files {
		fullPath := filepath.Join(root, filepath.FromSlash(relPath))

		dir := filepath.Dir(fullPath)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			tb.Fatalf("creating directory %s: %v", dir, err)
		}

		if err := os.WriteFile(fullPath, []byte(content), 0o600); err != nil {
			tb.Fatalf("writing file %s: %v", fullPath, err)
		}
	}

	return root
}

// ReadFile returns the content of a file below root.
func ReadFile(tb testing.TB, root, relPath string) string {
	tb.Helper()

	data, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(relPath)))
	if err != nil {
		tb.Fatalf("reading file %s: %v", relPath, err)
	}
	return string(data)
}
