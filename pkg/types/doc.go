// Package types provides the shared domain types for docrank.
//
// A Section is a single page of text taken from one input document. Sections
// carry a similarity Score once the ranking engine has compared them with a
// Query, which is the persona and job-to-be-done combined into one sentence:
//
//	q, err := types.BuildQuery("Travel Planner", "Plan a 4-day trip")
//	// q.CombinedText == "Travel Planner. Task: Plan a 4-day trip"
//
// # Errors
//
// The error taxonomy used across packages lives here:
//
//   - ErrInvalidInput / *InputError: bad persona, job or top-k. Fatal.
//   - *DocumentParseError: one document could not be read. Skipped.
//   - *EmbeddingError (matches ErrEmbeddingFailed): provider failure. Fatal.
//   - ErrNoSections: nothing to rank. A report with empty arrays is still written.
package types
