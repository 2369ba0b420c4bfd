// Package storage keeps uploaded assets on the local filesystem.
package storage

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

var (
	ErrExtensionNotAllowed = errors.New("jpg or png image only.")
	ErrInvalidName         = errors.New("invalid file name")
	ErrNotFound            = errors.New("file not found")
)

// AllowedExtensions lists accepted upload extensions, lower case.
var AllowedExtensions = map[string]bool{
	"jpg": true,
	"png": true,
}

// Files stores assets flat under a single directory.
type Files struct {
	dir string
}

// NewFiles creates dir if needed.
func NewFiles(dir string) (*Files, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &Files{dir: dir}, nil
}

// Allowed reports whether the text after the last dot of filename is an
// allowed extension, ignoring case.
func Allowed(filename string) bool {
	i := strings.LastIndex(filename, ".")
	if i < 0 {
		return false
	}
	return AllowedExtensions[strings.ToLower(filename[i+1:])]
}

// Sanitize reduces filename to its base name.
func Sanitize(filename string) (string, error) {
	name := filepath.Base(strings.ReplaceAll(filename, "\\", "/"))
	name = strings.TrimSpace(name)
	if name == "" || name == "." || name == ".." || name == "/" || strings.HasPrefix(name, ".") {
		return "", ErrInvalidName
	}
	return name, nil
}

// Save writes r under the sanitized filename, replacing any earlier file of
// the same name, and returns the stored name.
func (f *Files) Save(filename string, r io.Reader) (string, error) {
	if !Allowed(filename) {
		return "", ErrExtensionNotAllowed
	}
	name, err := Sanitize(filename)
	if err != nil {
		return "", err
	}

	tmp, err := os.CreateTemp(f.dir, ".upload-*")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		return "", fmt.Errorf("write upload: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("close upload: %w", err)
	}
	if err := os.Rename(tmp.Name(), filepath.Join(f.dir, name)); err != nil {
		return "", fmt.Errorf("store upload: %w", err)
	}
	return name, nil
}

// Path returns the on-disk path of a stored asset.
func (f *Files) Path(name string) (string, error) {
	clean, err := Sanitize(name)
	if err != nil || clean != name {
		return "", ErrNotFound
	}
	path := filepath.Join(f.dir, clean)
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return "", ErrNotFound
	}
	return path, nil
}
