package pictemplate

import (
	_ "embed"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// defaultTemplate is the built-in template document: eight compressed
// pages covering 1 to 4 captures in portrait and landscape.
//
//go:embed default_template.xml
var defaultTemplate []byte

// DefaultTemplate returns a copy of the built-in template document.
func DefaultTemplate() []byte {
	out := make([]byte, len(defaultTemplate))
	copy(out, defaultTemplate)
	return out
}

// WriteDefault writes the built-in template document to w.
func WriteDefault(w io.Writer) error {
	_, err := w.Write(defaultTemplate)
	return err
}

// SaveDefault writes the built-in template document to path, creating the
// parent directory if needed.
func SaveDefault(path string) error {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}

	writeErr := WriteDefault(f)
	closeErr := f.Close()

	if writeErr != nil {
		// Attempt cleanup on write failure
		os.Remove(path)
		return writeErr
	}
	return closeErr
}

// EnsureTemplate writes the built-in template to path when the file does
// not exist, or unconditionally when force is set. It reports whether the
// file was written.
func EnsureTemplate(path string, force bool) (bool, error) {
	if !force {
		info, err := os.Stat(path)
		if err == nil {
			if info.IsDir() {
				return false, fmt.Errorf("template path %s is a directory", path)
			}
			return false, nil
		}
		if !os.IsNotExist(err) {
			return false, err
		}
	}
	Logger().Info("generate picture template file", "path", path)
	if err := SaveDefault(path); err != nil {
		return false, err
	}
	return true, nil
}
