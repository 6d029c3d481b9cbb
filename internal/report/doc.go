// Package report builds and writes the ranked-sections JSON report.
//
// The output has three parts: metadata about the run, extracted_sections
// (document, title, rank, page) and subsection_analysis (document, excerpt,
// page). The two arrays are index-aligned and hold min(topK, sections)
// entries. Titles are the first line of a section cut to 100 characters;
// excerpts are the first 1500 characters.
package report
