package parser

import (
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"strings"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported document format")
	ErrPageOutOfRange    = errors.New("page out of range")
	ErrMalformed         = errors.New("malformed document")
)

// Document is an opened document whose text can be read page by page.
// Pages are numbered from 1. Close must be called when done.
type Document interface {
	NumPages() int
	PageText(n int) (string, error)
	Close() error
}

// Parser opens documents of one format
type Parser interface {
	Open(path string) (Document, error)
}

// SupportedExtensions lists the file extensions that have a parser
var SupportedExtensions = map[string]bool{
	".pdf":      true,
	".docx":     true,
	".txt":      true,
	".md":       true,
	".markdown": true,
	".html":     true,
	".htm":      true,
}

// ForFile returns the parser for a path based on its extension
func ForFile(path string) (Parser, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".pdf":
		return &PDFParser{}, nil
	case ".docx":
		return &DOCXParser{}, nil
	case ".txt":
		return &TextParser{}, nil
	case ".md", ".markdown":
		return &MarkdownParser{}, nil
	case ".html", ".htm":
		return &HTMLParser{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
}

// IsSupported reports whether path has a supported extension
func IsSupported(path string) bool {
	return SupportedExtensions[strings.ToLower(filepath.Ext(path))]
}

// Extensions returns the supported extensions in sorted order
func Extensions() []string {
	exts := make([]string, 0, len(SupportedExtensions))
	for ext := range SupportedExtensions {
		exts = append(exts, ext)
	}
	slices.Sort(exts)
	return exts
}

// pagedDocument holds pages already decoded into memory
type pagedDocument struct {
	pages []string
}

func (d *pagedDocument) NumPages() int {
	return len(d.pages)
}

func (d *pagedDocument) PageText(n int) (string, error) {
	if n < 1 || n > len(d.pages) {
		return "", fmt.Errorf("%w: %d of %d", ErrPageOutOfRange, n, len(d.pages))
	}
	return d.pages[n-1], nil
}

func (d *pagedDocument) Close() error {
	return nil
}
