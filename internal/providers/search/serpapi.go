package search

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/sandevgo/recallbot/internal/config"
	"github.com/sandevgo/recallbot/internal/core"
	"github.com/sandevgo/recallbot/pkg/log"
)

// SerpAPI implements core.SearchClient against serpapi.com. The answer
// box, when present, is surfaced separately because it outranks every
// organic result.
type SerpAPI struct {
	client  *http.Client
	baseURL string
	apiKey  string
	engine  string
}

func NewSerpAPI(cfg *config.SearchConfig) *SerpAPI {
	return &SerpAPI{
		client: &http.Client{
			Timeout: 15 * time.Second,
		},
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		engine:  cfg.Engine,
	}
}

func (s *SerpAPI) Search(ctx context.Context, query string, n int) (core.SearchResult, error) {
	result := core.SearchResult{Query: query}
	if query == "" {
		return result, fmt.Errorf("empty search query")
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("engine", s.engine)
	params.Set("api_key", s.apiKey)
	params.Set("num", strconv.Itoa(n))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/search.json?"+params.Encode(), nil)
	if err != nil {
		return result, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", core.BotUserAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return result, fmt.Errorf("request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return result, fmt.Errorf("read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return result, fmt.Errorf("http %d: %s", resp.StatusCode, string(body))
	}

	var payload struct {
		AnswerBox struct {
			Snippet string `json:"snippet"`
		} `json:"answer_box"`
		OrganicResults []struct {
			Title   string `json:"title"`
			Snippet string `json:"snippet"`
			Link    string `json:"link"`
		} `json:"organic_results"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return result, fmt.Errorf("decode: %w", err)
	}

	result.AnswerBox = payload.AnswerBox.Snippet
	for _, r := range payload.OrganicResults {
		if r.Snippet == "" {
			continue
		}
		result.Hits = append(result.Hits, core.SearchHit{
			Title:   r.Title,
			Snippet: r.Snippet,
			URL:     r.Link,
		})
		if len(result.Hits) == n {
			break
		}
	}

	log.FromCtx(ctx).Debug().
		Str("query", query).
		Int("hits", len(result.Hits)).
		Bool("answer_box", result.AnswerBox != "").
		Msg("web search completed")

	return result, nil
}
