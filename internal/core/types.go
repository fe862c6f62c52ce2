package core

import "time"

const (
	BotName       = "RecallBot"
	BotUserAgent  = "RecallBot/0.1"
	RepositoryURL = "https://github.com/sandevgo/recallbot"
	Version       = "0.1.0"
)

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Turn is a single incoming user message. It lives for one routing cycle
// and is never persisted by the core.
type Turn struct {
	UserID  int64
	Text    string
	At      time.Time
	Channel string // "telegram" or "http"
}

// MemoryRecord is a persisted, embedding-indexed fact about one user.
// Records are append-only: the core never mutates or deletes them.
type MemoryRecord struct {
	ID        string    `json:"id"`
	UserID    int64     `json:"user_id"`
	Fact      string    `json:"fact"`
	Embedding []float32 `json:"-"`
	CreatedAt time.Time `json:"created_at"`
}

// ScoredRecord pairs a retrieved record with its similarity to the query
// embedding. Score is in [0, 1], higher is closer.
type ScoredRecord struct {
	Record MemoryRecord
	Score  float64
}

type SearchHit struct {
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
	URL     string `json:"url"`
}

// SearchResult holds the ordered hits for one query, provider-rank order.
// AnswerBox, when present, is the provider's direct answer and outranks
// every organic hit.
type SearchResult struct {
	Query     string
	AnswerBox string
	Hits      []SearchHit
}

func (r SearchResult) Empty() bool {
	return r.AnswerBox == "" && len(r.Hits) == 0
}
