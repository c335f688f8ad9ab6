package reader

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrUnsupportedFormat is returned by Inspect for files no registered format
// claims.
var ErrUnsupportedFormat = errors.New("unsupported document format")

// Format defines a paged document type.
type Format interface {
	Name() string
	Extensions() []string
	PageCount(filename string) (int, error)
}

var registry []Format

// Register adds a format to the registry.
func Register(f Format) {
	registry = append(registry, f)
}

// Lookup finds the format registered for filename's extension.
func Lookup(filename string) (Format, bool) {
	ext := strings.ToLower(filepath.Ext(filename))
	for _, f := range registry {
		for _, e := range f.Extensions() {
			if ext == e {
				return f, true
			}
		}
	}
	return nil, false
}

// Document describes an openable file.
type Document struct {
	Location  string
	Title     string
	PageCount int
}

// Inspect opens filename just far enough to count its pages.
func Inspect(filename string) (Document, error) {
	f, ok := Lookup(filename)
	if !ok {
		return Document{}, fmt.Errorf("%s: %w", filepath.Base(filename), ErrUnsupportedFormat)
	}
	if _, err := os.Stat(filename); err != nil {
		return Document{}, err
	}

	n, err := f.PageCount(filename)
	if err != nil {
		return Document{}, err
	}
	if n < 1 {
		return Document{}, fmt.Errorf("%s has no pages", filepath.Base(filename))
	}
	return Document{
		Location:  filename,
		Title:     filepath.Base(filename),
		PageCount: n,
	}, nil
}

// SupportedFormats returns registered format names with their extensions.
func SupportedFormats() []string {
	var out []string
	for _, f := range registry {
		out = append(out, f.Name()+" ("+strings.Join(f.Extensions(), ", ")+")")
	}
	return out
}

// Extensions lists every registered extension, for file pickers.
func Extensions() []string {
	var out []string
	for _, f := range registry {
		out = append(out, f.Extensions()...)
	}
	return out
}
