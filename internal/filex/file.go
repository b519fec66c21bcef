// Package filex holds small helpers for the files the client keeps on disk.
package filex

import (
	"fmt"
	"os"
	"path/filepath"
)

// EnsureParentDir creates the directory that will hold path, readable only
// by the current user, and returns it.
func EnsureParentDir(path string) (string, error) {
	dir := filepath.Dir(path)

	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", fmt.Errorf("mkdir %s: %w", dir, err)
	}

	return dir, nil
}

// OpenAppend opens path for appending, creating it and its parent directory
// when missing. New files are private to the current user.
func OpenAppend(path string) (*os.File, error) {
	if _, err := EnsureParentDir(path); err != nil {
		return nil, err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	return f, nil
}
