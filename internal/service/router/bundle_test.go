package router

import (
	"fmt"
	"strings"
	"testing"

	"github.com/sandevgo/recallbot/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func wideBundle() Bundle {
	b := Bundle{
		Instructions: "Be helpful.",
		UserText:     "what should I cook tonight?",
		Search: core.SearchResult{
			Query:     "dinner ideas",
			AnswerBox: strings.Repeat("answer box text ", 20),
		},
	}
	for i := 0; i < 5; i++ {
		b.Memories = append(b.Memories, core.ScoredRecord{
			Record: core.MemoryRecord{Fact: fmt.Sprintf("memory fact %d %s", i, strings.Repeat("detail ", 30))},
			Score:  1.0 - float64(i)*0.1,
		})
		b.Search.Hits = append(b.Search.Hits, core.SearchHit{
			Title:   fmt.Sprintf("result %d", i),
			Snippet: strings.Repeat("snippet text ", 30),
			URL:     "https://example.com",
		})
	}
	return b
}

func TestAssembler_WithinBudgetKeepsEverything(t *testing.T) {
	t.Parallel()

	a := NewAssembler(100_000)
	msgs := a.Build(wideBundle())

	joined := joinContent(msgs)
	assert.Contains(t, joined, "MEMORY from past conversations")
	assert.Contains(t, joined, "WEB SEARCH RESULTS")
	assert.Contains(t, joined, "result 4")
	assert.Contains(t, joined, "memory fact 4")
}

func TestAssembler_NeverExceedsBudget(t *testing.T) {
	t.Parallel()

	for _, budget := range []int{100_000, 2000, 500, 200, 50} {
		a := NewAssembler(budget)
		msgs := a.Build(wideBundle())

		// The floor is instructions + user message, which are never trimmed.
		floor := countTokens(render(Bundle{
			Instructions: wideBundle().Instructions,
			UserText:     wideBundle().UserText,
		}))
		got := countTokens(msgs)
		if got > budget && got > floor {
			t.Errorf("budget %d: bundle is %d tokens over a trimmable floor of %d", budget, got, floor)
		}
	}
}

func TestAssembler_TrimsSearchBeforeMemory(t *testing.T) {
	t.Parallel()

	b := wideBundle()

	// Budget sized so that something has to go, but not everything.
	full := countTokens(render(b))
	a := NewAssembler(full * 2 / 3)
	msgs := a.Build(b)

	joined := joinContent(msgs)
	require.Less(t, countTokens(msgs), full)

	// Memory facts survive as long as any search content remains.
	if strings.Contains(joined, "WEB SEARCH RESULTS") {
		assert.Contains(t, joined, "memory fact 0")
		assert.Contains(t, joined, "memory fact 4")
	}
	// Search hits are trimmed from the lowest rank upward.
	if strings.Contains(joined, "result 4") {
		assert.Contains(t, joined, "result 0")
	}
}

func TestAssembler_TinyBudgetKeepsUserMessage(t *testing.T) {
	t.Parallel()

	a := NewAssembler(1)
	msgs := a.Build(wideBundle())

	require.Len(t, msgs, 2)
	assert.Equal(t, core.RoleSystem, msgs[0].Role)
	assert.Equal(t, "what should I cook tonight?", msgs[1].Content)
}

func TestRender_EmptySections(t *testing.T) {
	t.Parallel()

	msgs := render(Bundle{Instructions: "inst", UserText: "hi"})
	require.Len(t, msgs, 2)
	assert.Equal(t, "inst", msgs[0].Content)
	assert.Equal(t, "hi", msgs[1].Content)
}

func joinContent(msgs []core.Message) string {
	var sb strings.Builder
	for _, m := range msgs {
		sb.WriteString(m.Content)
		sb.WriteByte('\n')
	}
	return sb.String()
}
