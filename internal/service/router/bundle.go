package router

import (
	"fmt"
	"strings"
	"sync"

	"github.com/pkoukk/tiktoken-go"
	"github.com/sandevgo/recallbot/internal/core"
)

// Bundle is the ephemeral aggregate for one turn: retrieved memories
// (most-similar first), search output (provider-rank order) and the raw
// user message. It is built, rendered and discarded within the turn.
type Bundle struct {
	Instructions string
	Memories     []core.ScoredRecord
	Search       core.SearchResult
	UserText     string
}

// Assembler renders a Bundle into chat messages within a token budget.
// When over budget it trims search hits first (lowest rank first), then
// the answer box, then memories (lowest similarity first). Instructions
// and the user message are never trimmed.
type Assembler struct {
	budget int
}

func NewAssembler(budgetTokens int) *Assembler {
	return &Assembler{budget: budgetTokens}
}

func (a *Assembler) Build(b Bundle) []core.Message {
	for {
		messages := render(b)
		if countTokens(messages) <= a.budget {
			return messages
		}

		switch {
		case len(b.Search.Hits) > 0:
			b.Search.Hits = b.Search.Hits[:len(b.Search.Hits)-1]
		case b.Search.AnswerBox != "":
			b.Search.AnswerBox = ""
		case len(b.Memories) > 0:
			b.Memories = b.Memories[:len(b.Memories)-1]
		default:
			// Nothing left to trim.
			return messages
		}
	}
}

func render(b Bundle) []core.Message {
	messages := []core.Message{
		{Role: core.RoleSystem, Content: b.Instructions},
	}

	if section := renderMemories(b.Memories); section != "" {
		messages = append(messages, core.Message{Role: core.RoleSystem, Content: section})
	}
	if section := renderSearch(b.Search); section != "" {
		messages = append(messages, core.Message{Role: core.RoleSystem, Content: section})
	}

	messages = append(messages, core.Message{Role: core.RoleUser, Content: b.UserText})
	return messages
}

func renderMemories(memories []core.ScoredRecord) string {
	if len(memories) == 0 {
		return ""
	}

	var sb strings.Builder
	sb.WriteString("MEMORY from past conversations:\n")
	for _, m := range memories {
		sb.WriteString("- ")
		sb.WriteString(m.Record.Fact)
		sb.WriteByte('\n')
	}
	return sb.String()
}

func renderSearch(result core.SearchResult) string {
	if result.Empty() {
		return ""
	}

	var sb strings.Builder
	sb.WriteString("WEB SEARCH RESULTS:\n")
	if result.AnswerBox != "" {
		sb.WriteString("- ")
		sb.WriteString(result.AnswerBox)
		sb.WriteByte('\n')
	}
	for _, hit := range result.Hits {
		sb.WriteString(fmt.Sprintf("- %s: %s (%s)\n", hit.Title, hit.Snippet, hit.URL))
	}
	return sb.String()
}

var (
	tokenizerOnce sync.Once
	tokenizer     *tiktoken.Tiktoken
)

// countTokens measures content with cl100k_base, falling back to a
// bytes/4 estimate when the encoding cannot be loaded.
func countTokens(messages []core.Message) int {
	tokenizerOnce.Do(func() {
		tk, err := tiktoken.GetEncoding("cl100k_base")
		if err == nil {
			tokenizer = tk
		}
	})

	total := 0
	for _, msg := range messages {
		if tokenizer != nil {
			total += len(tokenizer.Encode(msg.Content, nil, nil))
		} else {
			total += len(msg.Content) / 4
		}
		total += 4 // per-message wrapping overhead
	}
	return total
}
