package parser

import (
	"fmt"
	"os"
	"strings"
)

// PageSeparator splits plain-text files into pages
const PageSeparator = "\f"

// TextParser handles plain text files. Form feeds separate pages.
type TextParser struct{}

func (p *TextParser) Open(path string) (Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read text: %w", err)
	}
	return &pagedDocument{pages: strings.Split(string(data), PageSeparator)}, nil
}
