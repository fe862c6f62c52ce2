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

// Extractor decides whether a turn contains durable, user-specific facts
// worth remembering, and rewrites them as self-contained statements.
type Extractor interface {
	Extract(ctx context.Context, text string) []string
}

type factPattern struct {
	re     *regexp.Regexp
	render func(groups []string) string
}

var factPatterns = []factPattern{
	{
		re: regexp.MustCompile(`(?i)\bi'?\s?a?m allergic to ([a-z][a-z ]*)`),
		render: func(g []string) string {
			return "The user is allergic to " + g[1]
		},
	},
	{
		re: regexp.MustCompile(`(?i)\bmy name is (\w+)`),
		render: func(g []string) string {
			return "The user's name is " + title(g[1])
		},
	},
	{
		re: regexp.MustCompile(`(?i)\bcall me (\w+)`),
		render: func(g []string) string {
			return "The user's name is " + title(g[1])
		},
	},
	{
		re: regexp.MustCompile(`(?i)\bi live in ([a-z][a-z ,]*)`),
		render: func(g []string) string {
			return "The user lives in " + title(g[1])
		},
	},
	{
		re: regexp.MustCompile(`(?i)\bmy favou?rite ([a-z ]+?) is ([a-z][a-z ]*)`),
		render: func(g []string) string {
			return fmt.Sprintf("The user's favorite %s is %s", g[1], g[2])
		},
	},
	{
		re: regexp.MustCompile(`(?i)\bi (love|hate) ([a-z][a-z ]*)`),
		render: func(g []string) string {
			return fmt.Sprintf("The user %ss %s", strings.ToLower(g[1]), g[2])
		},
	},
}

// Patterns matches self-descriptions like "my name is X" or "I'm
// allergic to Y" without any model call.
type Patterns struct{}

func NewPatterns() *Patterns {
	return &Patterns{}
}

func (p *Patterns) Extract(ctx context.Context, text string) []string {
	var facts []string
	seen := make(map[string]struct{})

	for _, fp := range factPatterns {
		m := fp.re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		for i := range m {
			m[i] = strings.TrimRight(strings.TrimSpace(m[i]), ".!?,")
		}
		fact := fp.render(m)
		if _, dup := seen[fact]; dup {
			continue
		}
		seen[fact] = struct{}{}
		facts = append(facts, fact)
	}
	return facts
}

func title(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + strings.ToLower(s[1:])
}

// LLMExtractor asks the generation backend for durable facts as a JSON
// array, degrading to pattern matching when the call or the parse fails.
// The reply path never depends on this.
type LLMExtractor struct {
	gen      core.Generator
	patterns *Patterns
}

func NewLLMExtractor(gen core.Generator) *LLMExtractor {
	return &LLMExtractor{gen: gen, patterns: NewPatterns()}
}

const extractionSystemPrompt = "You are a knowledge extraction system. Output only valid JSON."

func buildExtractionPrompt(text string) string {
	return fmt.Sprintf(
		`Extract distinct, permanent facts about the user from the message. Output format: JSON list of objects {fact}. Rules: 1. Ignore greetings, questions and small talk. 2. Facts must be self-contained (say "The user" instead of "I"). 3. Output [] when nothing is worth remembering. Message: %s`,
		text,
	)
}

func (e *LLMExtractor) Extract(ctx context.Context, text string) []string {
	logger := log.FromCtx(ctx)

	reply, err := e.gen.Complete(ctx, []core.Message{
		{Role: core.RoleSystem, Content: extractionSystemPrompt},
		{Role: core.RoleUser, Content: buildExtractionPrompt(text)},
	})
	if err != nil {
		logger.Warn().Err(err).Msg("fact extraction call failed, using patterns")
		return e.patterns.Extract(ctx, text)
	}

	facts, err := parseExtractionReply(reply)
	if err != nil {
		logger.Warn().Err(err).Str("reply", reply).Msg("unparseable extraction reply, using patterns")
		return e.patterns.Extract(ctx, text)
	}
	return facts
}

func parseExtractionReply(reply string) ([]string, error) {
	jsonStr := extractJSONArray(reply)
	if jsonStr == "" {
		return nil, fmt.Errorf("no JSON array found in reply")
	}

	var items []struct {
		Fact string `json:"fact"`
	}
	if err := json.Unmarshal([]byte(jsonStr), &items); err != nil {
		return nil, fmt.Errorf("unmarshal facts: %w", err)
	}

	var facts []string
	for _, item := range items {
		if strings.TrimSpace(item.Fact) == "" {
			continue
		}
		facts = append(facts, strings.TrimSpace(item.Fact))
	}
	return facts, nil
}

func extractJSONArray(content string) string {
	start := strings.Index(content, "[")
	if start == -1 {
		return ""
	}
	end := strings.LastIndex(content[start:], "]")
	if end == -1 {
		return ""
	}
	return content[start : start+end+1]
}
