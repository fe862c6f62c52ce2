package router

import (
	"context"
	"errors"
	"testing"

	"github.com/sandevgo/recallbot/internal/core"
)

func TestHeuristic_Classify(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		text        string
		needsMemory bool
		needsSearch bool
	}{
		{
			name:        "small talk",
			text:        "hello there",
			needsMemory: false,
			needsSearch: false,
		},
		{
			name:        "current information only",
			text:        "What's the weather in Tokyo right now?",
			needsMemory: false,
			needsSearch: true,
		},
		{
			name:        "personal statement",
			text:        "I'm allergic to peanuts",
			needsMemory: true,
			needsSearch: false,
		},
		{
			name:        "personal recall question",
			text:        "what's my name?",
			needsMemory: true,
			needsSearch: false,
		},
		{
			name:        "both axes",
			text:        "any news about my favorite team today?",
			needsMemory: true,
			needsSearch: true,
		},
		{
			name:        "word boundary does not fire on Tokyo",
			text:        "tell us about restaurants in Tokyo",
			needsMemory: false,
			needsSearch: false,
		},
	}

	h := NewHeuristic()
	ctx := context.Background()

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := h.Classify(ctx, tt.text)
			if p.NeedsMemory != tt.needsMemory {
				t.Errorf("NeedsMemory = %v, want %v", p.NeedsMemory, tt.needsMemory)
			}
			if p.NeedsSearch != tt.needsSearch {
				t.Errorf("NeedsSearch = %v, want %v", p.NeedsSearch, tt.needsSearch)
			}
			if p.SearchQuery != tt.text {
				t.Errorf("SearchQuery = %q, want raw text", p.SearchQuery)
			}
		})
	}
}

func TestParsePlannerReply(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		reply     string
		wantTool  string
		wantQuery string
		wantErr   bool
	}{
		{
			name:      "plain search decision",
			reply:     `{"tool": "web_search", "query": "tokyo weather"}`,
			wantTool:  "web_search",
			wantQuery: "tokyo weather",
		},
		{
			name:     "none decision",
			reply:    `{"tool": "none"}`,
			wantTool: "none",
		},
		{
			name:      "fenced JSON",
			reply:     "Sure!\n```json\n{\"tool\": \"web_search\", \"query\": \"bitcoin price\"}\n```",
			wantTool:  "web_search",
			wantQuery: "bitcoin price",
		},
		{
			name:    "no JSON at all",
			reply:   "I think you should search the web.",
			wantErr: true,
		},
		{
			name:    "missing tool field",
			reply:   `{"query": "something"}`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := parsePlannerReply(tt.reply)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if d.Tool != tt.wantTool {
				t.Errorf("Tool = %q, want %q", d.Tool, tt.wantTool)
			}
			if d.Query != tt.wantQuery {
				t.Errorf("Query = %q, want %q", d.Query, tt.wantQuery)
			}
		})
	}
}

type scriptedGen struct {
	reply string
	err   error
}

func (g *scriptedGen) Complete(ctx context.Context, messages []core.Message) (string, error) {
	return g.reply, g.err
}

func TestPlanner_Classify(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("search decision overrides heuristic", func(t *testing.T) {
		p := NewPlanner(&scriptedGen{reply: `{"tool": "web_search", "query": "openai ceo"}`})
		profile := p.Classify(ctx, "who runs OpenAI?")
		if !profile.NeedsSearch {
			t.Error("expected NeedsSearch")
		}
		if profile.SearchQuery != "openai ceo" {
			t.Errorf("SearchQuery = %q, want reformulated query", profile.SearchQuery)
		}
	})

	t.Run("none decision suppresses search", func(t *testing.T) {
		p := NewPlanner(&scriptedGen{reply: `{"tool": "none"}`})
		profile := p.Classify(ctx, "what's the latest on my project?")
		if profile.NeedsSearch {
			t.Error("expected no search")
		}
		if !profile.NeedsMemory {
			t.Error("memory axis stays keyword-based")
		}
	})

	t.Run("backend failure falls back to heuristic", func(t *testing.T) {
		p := NewPlanner(&scriptedGen{err: errors.New("down")})
		profile := p.Classify(ctx, "What's the weather in Tokyo right now?")
		if !profile.NeedsSearch {
			t.Error("heuristic fallback should flag search")
		}
	})
}
