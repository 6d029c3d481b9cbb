package parser

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/fumiama/go-docx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/docrank/internal/parser/pdftest"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func readPages(t *testing.T, path string) []string {
	t.Helper()
	p, err := ForFile(path)
	require.NoError(t, err)

	doc, err := p.Open(path)
	require.NoError(t, err)
	defer doc.Close()

	pages := make([]string, 0, doc.NumPages())
	for n := 1; n <= doc.NumPages(); n++ {
		text, err := doc.PageText(n)
		require.NoError(t, err)
		pages = append(pages, text)
	}
	return pages
}

func TestForFile(t *testing.T) {
	tests := []struct {
		path string
		want Parser
	}{
		{"a.pdf", &PDFParser{}},
		{"A.PDF", &PDFParser{}},
		{"b.docx", &DOCXParser{}},
		{"c.txt", &TextParser{}},
		{"d.md", &MarkdownParser{}},
		{"d.markdown", &MarkdownParser{}},
		{"e.html", &HTMLParser{}},
		{"e.htm", &HTMLParser{}},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, err := ForFile(tt.path)
			require.NoError(t, err)
			assert.IsType(t, tt.want, got)
			assert.True(t, IsSupported(tt.path))
		})
	}

	_, err := ForFile("notes.odt")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
	assert.False(t, IsSupported("notes.odt"))
	assert.Contains(t, Extensions(), ".pdf")
}

func TestTextParser(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "a.txt", "Page one\nline two\fPage two\f\f  \fLast")

	pages := readPages(t, path)
	assert.Equal(t, []string{"Page one\nline two", "Page two", "", "  ", "Last"}, pages)

	p := &TextParser{}
	doc, err := p.Open(path)
	require.NoError(t, err)
	_, err = doc.PageText(0)
	assert.ErrorIs(t, err, ErrPageOutOfRange)
	_, err = doc.PageText(6)
	assert.ErrorIs(t, err, ErrPageOutOfRange)

	_, err = p.Open(filepath.Join(dir, "missing.txt"))
	assert.Error(t, err)
}

func TestMarkdownParser(t *testing.T) {
	path := writeFile(t, t.TempDir(), "guide.md", "# Coastal Adventures\n\nThe *south* of France\nhas beaches.\n\n- Nice\n- Marseille\n\n```\ncode\n```\n")

	pages := readPages(t, path)
	require.Len(t, pages, 1)
	assert.Contains(t, pages[0], "Coastal Adventures\n")
	assert.Contains(t, pages[0], "The south of France\nhas beaches.")
	assert.Contains(t, pages[0], "Nice\nMarseille")
	assert.Contains(t, pages[0], "code")
	assert.NotContains(t, pages[0], "#")
	assert.NotContains(t, pages[0], "*")
}

func TestHTMLParser(t *testing.T) {
	content := `<html><head><title>Ignored</title><style>p{}</style></head>
<body>
<h1>Cities of the South</h1>
<p>Nice is   on the <b>coast</b>.</p>
<script>alert("x")</script>
<ul><li>Marseille</li><li>Toulon</li></ul>
<div>Loose text</div>
</body></html>`
	path := writeFile(t, t.TempDir(), "cities.html", content)

	pages := readPages(t, path)
	require.Len(t, pages, 1)
	assert.Equal(t, "Cities of the South\nNice is on the coast.\nMarseille\nToulon\nLoose text", pages[0])
}

func TestPDFParserRejectsInvalidFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "broken.pdf", "this is not a pdf")

	_, err := (&PDFParser{}).Open(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a PDF")

	_, err = (&PDFParser{}).Open(filepath.Join(dir, "missing.pdf"))
	assert.Error(t, err)
}

func TestPDFParser(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "fruit.pdf")
	require.NoError(t, os.WriteFile(path, pdftest.Build(pdftest.Line("Apples are fruit."), nil), 0o644))

	assert.Equal(t, []string{"Apples are fruit.", ""}, readPages(t, path))

	doc, err := (&PDFParser{}).Open(path)
	require.NoError(t, err)
	defer doc.Close()
	_, err = doc.PageText(3)
	assert.ErrorIs(t, err, ErrPageOutOfRange)
}

func TestPDFParserRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rows.pdf")
	page := []pdftest.Text{
		{X: 72, Y: 700, S: "second line"},
		{X: 150, Y: 720, S: "fruit"},
		{X: 72, Y: 720, S: "Apples"},
	}
	require.NoError(t, os.WriteFile(path, pdftest.Build(page), 0o644))

	assert.Equal(t, []string{"Apples fruit\nsecond line"}, readPages(t, path))
}

type panickySource struct {
	closed bool
}

func (s *panickySource) ReadAt([]byte, int64) (int, error) { panic("bad xref") }

func (s *panickySource) Close() error {
	s.closed = true
	return nil
}

func TestPDFOpenClosesOnPanic(t *testing.T) {
	src := &panickySource{}
	_, err := openReader(src, 1024)
	assert.ErrorIs(t, err, ErrMalformed)
	assert.True(t, src.closed)
}

func TestDOCXPages(t *testing.T) {
	doc := docx.New().WithDefaultTheme()
	doc.AddParagraph().AddText("Page one")
	doc.AddParagraph().AddText("still one")
	doc.AddParagraph().AddPageBreaks()
	doc.AddParagraph().AddText("Page two")

	assert.Equal(t, []string{"Page one\nstill one", "Page two"}, docxPages(doc))

	path := filepath.Join(t.TempDir(), "two.docx")
	f, err := os.Create(path)
	require.NoError(t, err)
	_, err = doc.WriteTo(f)
	require.NoError(t, err)
	require.NoError(t, f.Close())

	assert.Equal(t, []string{"Page one\nstill one", "Page two"}, readPages(t, path))
}

func TestDOCXParserRejectsInvalidFile(t *testing.T) {
	path := writeFile(t, t.TempDir(), "broken.docx", "PK not really a zip")
	_, err := (&DOCXParser{}).Open(path)
	assert.Error(t, err)
}
