package router

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/sandevgo/recallbot/internal/core"
	"github.com/sandevgo/recallbot/pkg/log"
)

// Profile is the need profile of one turn: two independent axes decided
// once, before any auxiliary call.
type Profile struct {
	NeedsMemory bool
	NeedsSearch bool
	SearchQuery string
}

type Classifier interface {
	Classify(ctx context.Context, text string) Profile
}

// searchMarkers signal questions about current or external information.
var searchMarkers = []string{
	"weather", "news", "today", "tonight", "tomorrow",
	"current", "currently", "latest", "right now", "recent",
	"price", "stock", "score", "happening", "update",
	"election", "release", "schedule", "open now",
}

// memoryMarkers matches first-person references and recall requests on
// word boundaries, so "in Tokyo" never reads as "I".
var memoryMarkers = regexp.MustCompile(`\b(i|me|my|mine|myself|we|our|remember|remind)\b`)

// Heuristic is the default keyword classifier. It never touches the
// network, so classification costs zero round-trips.
type Heuristic struct{}

func NewHeuristic() *Heuristic {
	return &Heuristic{}
}

func (h *Heuristic) Classify(ctx context.Context, text string) Profile {
	lower := " " + strings.ToLower(strings.TrimSpace(text)) + " "

	p := Profile{SearchQuery: strings.TrimSpace(text)}
	for _, m := range searchMarkers {
		if strings.Contains(lower, m) {
			p.NeedsSearch = true
			break
		}
	}
	p.NeedsMemory = memoryMarkers.MatchString(lower)
	return p
}

// Planner asks the generation backend, in a single JSON call, whether a
// web search is warranted and with what query. The memory axis stays
// keyword-based so the decision never needs a second round-trip. Any
// planner failure degrades to the heuristic.
type Planner struct {
	gen       core.Generator
	heuristic *Heuristic
}

func NewPlanner(gen core.Generator) *Planner {
	return &Planner{
		gen:       gen,
		heuristic: NewHeuristic(),
	}
}

const plannerPrompt = `You are a smart router. Based on the user's message, decide if you need to search the web. ` +
	`If the question is about current events, news, recent information, specific facts about companies/people, ` +
	`weather, or requires up-to-date information, you should search. ` +
	`If the user is asking about themselves, chatting casually, or the question can be answered from memory, you don't need to search. ` +
	`Respond with a JSON object: {"tool": "web_search", "query": "search query"} or {"tool": "none"}.`

func (p *Planner) Classify(ctx context.Context, text string) Profile {
	fallback := p.heuristic.Classify(ctx, text)

	reply, err := p.gen.Complete(ctx, []core.Message{
		{Role: core.RoleSystem, Content: plannerPrompt},
		{Role: core.RoleUser, Content: fmt.Sprintf("User message: '%s'", text)},
	})
	if err != nil {
		log.FromCtx(ctx).Warn().Err(err).Msg("planner call failed, using heuristic")
		return fallback
	}

	decision, err := parsePlannerReply(reply)
	if err != nil {
		log.FromCtx(ctx).Warn().Err(err).Str("reply", reply).Msg("unparseable planner reply, using heuristic")
		return fallback
	}

	profile := Profile{
		NeedsMemory: fallback.NeedsMemory,
		SearchQuery: fallback.SearchQuery,
	}
	if decision.Tool == "web_search" {
		profile.NeedsSearch = true
		if decision.Query != "" {
			profile.SearchQuery = decision.Query
		}
	}
	return profile
}

type plannerDecision struct {
	Tool  string `json:"tool"`
	Query string `json:"query"`
}

func parsePlannerReply(reply string) (plannerDecision, error) {
	var d plannerDecision

	jsonStr := extractJSONObject(reply)
	if jsonStr == "" {
		return d, fmt.Errorf("no JSON object found in reply")
	}
	if err := json.Unmarshal([]byte(jsonStr), &d); err != nil {
		return d, fmt.Errorf("unmarshal decision: %w", err)
	}
	if d.Tool == "" {
		return d, fmt.Errorf("decision has no tool field")
	}
	return d, nil
}

func extractJSONObject(content string) string {
	start := strings.Index(content, "{")
	if start == -1 {
		return ""
	}
	end := strings.LastIndex(content[start:], "}")
	if end == -1 {
		return ""
	}
	return content[start : start+end+1]
}
