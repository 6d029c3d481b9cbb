package parser

import (
	"fmt"
	"os"
	"strings"

	"github.com/fumiama/go-docx"
)

// DOCXParser handles .docx files. Explicit page breaks start a new page.
type DOCXParser struct{}

func (p *DOCXParser) Open(path string) (Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open docx: %w", err)
	}
	defer func() {
		_ = f.Close()
	}()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat docx: %w", err)
	}

	doc, err := docx.Parse(f, info.Size())
	if err != nil {
		return nil, fmt.Errorf("parse docx: %w", err)
	}

	return &pagedDocument{pages: docxPages(doc)}, nil
}

func docxPages(doc *docx.Docx) []string {
	var pages []string
	var current []string
	var para strings.Builder

	flushPara := func() {
		if t := strings.TrimSpace(para.String()); t != "" {
			current = append(current, t)
		}
		para.Reset()
	}
	flushPage := func() {
		flushPara()
		pages = append(pages, strings.Join(current, "\n"))
		current = nil
	}

	for _, item := range doc.Document.Body.Items {
		p, ok := item.(*docx.Paragraph)
		if !ok {
			continue
		}
		for _, child := range p.Children {
			run, ok := child.(*docx.Run)
			if !ok {
				continue
			}
			for _, rc := range run.Children {
				switch v := rc.(type) {
				case *docx.Text:
					para.WriteString(v.Text)
				case *docx.Tab:
					para.WriteByte('\t')
				case *docx.BarterRabbet:
					if v.Type == "page" {
						flushPage()
					} else {
						para.WriteByte('\n')
					}
				}
			}
		}
		flushPara()
	}
	flushPage()

	return pages
}
