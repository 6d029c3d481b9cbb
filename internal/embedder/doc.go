// Package embedder turns text into fixed-length vectors.
//
// Four providers implement the Embedder interface:
//
//   - local: offline feature-hashing model (default, deterministic, 384 dims)
//   - ollama: a local Ollama server, default model all-minilm
//   - jina, openai: hosted embedding APIs, selected by API key
//
// All providers share the LRU Cache (keyed by provider, model and text hash)
// and the HTTP providers retry transient failures with exponential backoff.
//
// # Batching
//
// EmbedTexts is the entry point used by ranking. It splits the input into
// MaxBatchSize chunks, keeps the output aligned with the input and checks that
// every vector has the same length:
//
//	vectors, err := embedder.EmbedTexts(ctx, emb, texts)
//
// Embedding a text alone or inside a batch yields the same vector.
//
// # Provider Selection
//
// NewFromEnv picks a provider from the environment:
//
//  1. DOCRANK_EMBEDDING_PROVIDER, when set
//  2. JINA_API_KEY present: jina
//  3. OPENAI_API_KEY present: openai
//  4. otherwise local
package embedder
