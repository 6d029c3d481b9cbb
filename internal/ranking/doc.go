// Package ranking scores document sections against a query and orders them.
//
// Scores are cosine similarities between the query embedding and each section
// embedding. Sections are embedded in one batched pass and the query in one
// more call, then sorted with a stable sort so ties keep document order, then
// page order:
//
//	engine := ranking.NewEngine(emb, logger)
//	ranked, err := engine.Rank(ctx, sections, query)
//
// Embedding failures are returned as *types.EmbeddingError.
package ranking
