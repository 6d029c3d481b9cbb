package parser

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	pdflib "github.com/ledongthuc/pdf"
)

// PDFParser reads PDF files one page at a time.
type PDFParser struct{}

// Open reads the PDF cross-reference table. Page content is decoded lazily
// by PageText.
func (p *PDFParser) Open(path string) (Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("open pdf: %w", err)
	}
	return openReader(f, info.Size())
}

type pdfSource interface {
	io.ReaderAt
	io.Closer
}

// openReader owns src: it is closed on every failure path.
func openReader(src pdfSource, size int64) (doc Document, err error) {
	// The library panics on some malformed inputs
	defer func() {
		if r := recover(); r != nil {
			src.Close()
			doc = nil
			err = fmt.Errorf("%w: %v", ErrMalformed, r)
		}
	}()

	reader, err := pdflib.NewReader(src, size)
	if err != nil {
		src.Close()
		return nil, fmt.Errorf("open pdf: %w", err)
	}

	return &pdfDocument{file: src, reader: reader}, nil
}

type pdfDocument struct {
	file   io.Closer
	reader *pdflib.Reader
}

func (d *pdfDocument) NumPages() (n int) {
	defer func() {
		if recover() != nil {
			n = 0
		}
	}()
	return d.reader.NumPage()
}

// PageText rebuilds the page line by line: rows from top to bottom, text
// runs within a row from left to right. It falls back to the library's
// plain-text extraction when no rows are found.
func (d *pdfDocument) PageText(n int) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			text = ""
			err = fmt.Errorf("%w: page %d: %v", ErrMalformed, n, r)
		}
	}()

	if n < 1 || n > d.NumPages() {
		return "", fmt.Errorf("%w: %d", ErrPageOutOfRange, n)
	}

	page := d.reader.Page(n)
	if page.V.IsNull() {
		return "", nil
	}

	rows, err := page.GetTextByRow()
	if err == nil && len(rows) > 0 {
		if text := joinRows(rows); strings.TrimSpace(text) != "" {
			return text, nil
		}
	}

	plain, err := page.GetPlainText(nil)
	if err != nil {
		return "", fmt.Errorf("extract page %d: %w", n, err)
	}
	return plain, nil
}

func (d *pdfDocument) Close() error {
	return d.file.Close()
}

func joinRows(rows pdflib.Rows) string {
	// PDF y grows upward
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Position > rows[j].Position
	})

	lines := make([]string, 0, len(rows))
	for _, row := range rows {
		sort.Sort(row.Content)

		var line strings.Builder
		var prevEnd float64
		for i, t := range row.Content {
			if i > 0 && needsSpace(prevEnd, t) && !strings.HasSuffix(line.String(), " ") && !strings.HasPrefix(t.S, " ") {
				line.WriteByte(' ')
			}
			line.WriteString(t.S)
			prevEnd = t.X + t.W
		}
		if s := strings.TrimRight(line.String(), " "); s != "" {
			lines = append(lines, s)
		}
	}

	return strings.Join(lines, "\n")
}

// needsSpace reports whether the gap before t is wider than a fraction of
// its font size.
func needsSpace(prevEnd float64, t pdflib.Text) bool {
	gap := t.X - prevEnd
	threshold := t.FontSize * 0.15
	if threshold <= 0 {
		threshold = 1
	}
	return gap > threshold
}
