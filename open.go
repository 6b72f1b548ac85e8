package pictemplate

import (
	"fmt"
	"io"
	"os"
)

// Parse decodes a template document. Decoding is a pure function of the
// document bytes: parsing the same data twice gives identical indexes.
func Parse(data []byte) (*Index, error) {
	info, pages, err := readDocument(data)
	if err != nil {
		return nil, err
	}
	return buildIndex(info, pages)
}

// ParseReader reads a template document from r and decodes it.
func ParseReader(r io.Reader) (*Index, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxDocumentSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read template: %w", err)
	}
	return Parse(data)
}

// Open reads a template file from disk and decodes it.
func Open(path string) (*Index, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open template: %w", err)
	}
	defer f.Close()

	Logger().Info("parsing pictures template file", "path", path)
	idx, err := ParseReader(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return idx, nil
}

// Default decodes the built-in template document, which defines 1 to 4
// captures in both orientations.
func Default() (*Index, error) {
	return Parse(defaultTemplate)
}

// Load returns the index for the template at path. An empty path selects
// the built-in template; a missing file is first created from it.
func Load(path string) (*Index, error) {
	if path == "" {
		return Default()
	}
	if _, err := EnsureTemplate(path, false); err != nil {
		return nil, err
	}
	return Open(path)
}
