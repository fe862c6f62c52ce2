package core

import "context"

// Generator is the language-model backend. The router treats a completion
// as a single opaque call; streaming and tool protocols are out of scope.
type Generator interface {
	Complete(ctx context.Context, messages []Message) (string, error)
}

type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// MemoryStore reads and writes long-term fact records. Queries are always
// scoped by user: implementations must never return another user's records.
type MemoryStore interface {
	Query(ctx context.Context, userID int64, vector []float32, k int) ([]ScoredRecord, error)
	Insert(ctx context.Context, record MemoryRecord) error
}

type SearchClient interface {
	Search(ctx context.Context, query string, n int) (SearchResult, error)
}
