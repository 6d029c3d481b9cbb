// Package extractor reads documents into page sections.
//
// Each page with non-blank text becomes one types.Section, identified by the
// document's base name and its 1-based page number. Blank pages and pages
// that fail to extract are skipped.
//
// ExtractAll reads documents in parallel, bounded by Config.Workers, and
// still returns sections in document order, then page order. A document that
// cannot be opened, or that exceeds Config.DocumentTimeout, is reported as a
// *types.DocumentParseError and the others continue.
package extractor
