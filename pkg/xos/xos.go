//go:build !windows
// +build !windows

// Package xos provides atomic file operations for build outputs.
// Writes go through a temp file plus rename so a crashed or cancelled
// build never leaves a half-written artifact behind.
package xos

import (
	"io"
	"os"

	"github.com/google/renameio/v2"
)

// WriteFile writes data to the named file atomically using rename.
// If the file does not exist, WriteFile creates it with permissions perm;
// otherwise WriteFile replaces it in a single rename.
func WriteFile(filename string, data []byte, perm os.FileMode) error {
	return renameio.WriteFile(filename, data, perm)
}

// WriteReader streams data from r into the named file atomically.
func WriteReader(filename string, r io.Reader, perm os.FileMode) error {
	t, err := renameio.TempFile("", filename)
	if err != nil {
		return err
	}
	defer t.Cleanup()

	if _, err := io.Copy(t, r); err != nil {
		return err
	}

	if err := t.Chmod(perm); err != nil {
		return err
	}

	return t.CloseAtomicallyReplace()
}

// CopyFile copies src to dst atomically.
func CopyFile(src, dst string, perm os.FileMode) error {
	f, err := os.Open(src)
	if err != nil {
		return err
	}
	defer f.Close()

	return WriteReader(dst, f, perm)
}

// EnsureDir creates a directory and all necessary parents.
func EnsureDir(path string, perm os.FileMode) error {
	return os.MkdirAll(path, perm)
}
