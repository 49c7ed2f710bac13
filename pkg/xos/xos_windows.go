//go:build windows
// +build windows

// Package xos provides atomic file operations for build outputs.
// On Windows a same-directory temp file plus rename is used, since
// cross-drive atomic rename is not available.
package xos

import (
	"io"
	"os"
	"path/filepath"
)

// WriteFile writes data to the named file using a temp file + rename
// within the target directory.
func WriteFile(filename string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(filename)
	tempFile, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return err
	}
	tempName := tempFile.Name()

	success := false
	defer func() {
		if !success {
			os.Remove(tempName)
		}
	}()

	if _, err := tempFile.Write(data); err != nil {
		tempFile.Close()
		return err
	}
	if err := tempFile.Sync(); err != nil {
		tempFile.Close()
		return err
	}
	if err := tempFile.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tempName, perm); err != nil {
		return err
	}
	if err := os.Rename(tempName, filename); err != nil {
		return err
	}

	success = true
	return nil
}

// WriteReader streams data from r into the named file.
func WriteReader(filename string, r io.Reader, perm os.FileMode) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	return WriteFile(filename, data, perm)
}

// CopyFile copies src to dst.
func CopyFile(src, dst string, perm os.FileMode) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	return WriteFile(dst, data, perm)
}

// EnsureDir creates a directory and all necessary parents.
func EnsureDir(path string, perm os.FileMode) error {
	return os.MkdirAll(path, perm)
}
