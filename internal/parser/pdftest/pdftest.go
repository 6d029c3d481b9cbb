// Package pdftest builds small text-only PDF files for tests.
package pdftest

import (
	"bytes"
	"fmt"
	"strings"
)

// Text is a run of text drawn at (X, Y) in PDF user space, y growing upward.
type Text struct {
	X, Y float64
	S    string
}

var escaper = strings.NewReplacer(`\`, `\\`, `(`, `\(`, `)`, `\)`)

// Build returns a PDF with one page per argument. Runs are drawn in
// Helvetica with WinAnsi encoding; a page without runs has no content stream.
func Build(pages ...[]Text) []byte {
	// 1 catalog, 2 page tree, 3 font, then a page object and optionally its
	// content stream for every page
	var objects []string
	kids := make([]string, 0, len(pages))

	next := 4
	for _, runs := range pages {
		pageNum := next
		next++
		kids = append(kids, fmt.Sprintf("%d 0 R", pageNum))

		if len(runs) == 0 {
			objects = append(objects,
				"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << /Font << /F1 3 0 R >> >> >>")
			continue
		}

		var content strings.Builder
		for _, r := range runs {
			fmt.Fprintf(&content, "BT /F1 12 Tf 1 0 0 1 %g %g Tm (%s) Tj ET\n", r.X, r.Y, escaper.Replace(r.S))
		}
		objects = append(objects,
			fmt.Sprintf("<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << /Font << /F1 3 0 R >> >> /Contents %d 0 R >>", next),
			fmt.Sprintf("<< /Length %d >>\nstream\n%sendstream", content.Len(), content.String()),
		)
		next++
	}

	objects = append([]string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, " "), len(pages)),
		"<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding >>",
	}, objects...)

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")

	offsets := make([]int, len(objects))
	for i, obj := range objects {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(objects)+1)
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xref)

	return buf.Bytes()
}

// Line is a page with a single run at the top left.
func Line(s string) []Text {
	return []Text{{X: 72, Y: 720, S: s}}
}
