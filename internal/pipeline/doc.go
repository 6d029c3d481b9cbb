// Package pipeline runs a ranking request end to end: it builds the query,
// extracts sections from the input documents, ranks them with the
// configured embedder, assembles the top-k report and optionally stores it.
package pipeline
