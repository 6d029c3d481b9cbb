// Package parser opens documents and exposes their text page by page.
//
// Each supported format has a Parser whose Open returns a Document:
//
//	p, err := parser.ForFile("guide.pdf")
//	doc, err := p.Open("guide.pdf")
//	defer doc.Close()
//	for n := 1; n <= doc.NumPages(); n++ {
//	    text, err := doc.PageText(n)
//	}
//
// Formats and page boundaries:
//   - .pdf: physical pages (github.com/ledongthuc/pdf)
//   - .docx: explicit page breaks (github.com/fumiama/go-docx)
//   - .txt: form feed characters
//   - .md, .markdown: one page (github.com/yuin/goldmark)
//   - .html, .htm: one page (golang.org/x/net/html)
//
// Open fails for missing or unreadable files and invalid headers. PageText
// may fail for a single page without affecting the others.
package parser
