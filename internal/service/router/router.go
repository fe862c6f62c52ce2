package router

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/sandevgo/recallbot/internal/config"
	"github.com/sandevgo/recallbot/internal/core"
	"github.com/sandevgo/recallbot/pkg/log"
	"github.com/sandevgo/recallbot/pkg/retry"
)

// Router drives one routing cycle per incoming turn: classify the need
// profile, fetch auxiliary context, assemble a bounded bundle, generate
// the reply and persist any durable facts off the reply path.
//
// Per turn it makes at most one memory query, one search call and one
// generation call. There is no tool-calling loop.
type Router struct {
	cfg        *config.AppConfig
	store      core.MemoryStore
	search     core.SearchClient
	gen        core.Generator
	embedder   core.Embedder
	classifier Classifier
	extractor  Extractor
	assembler  *Assembler
	retrier    *retry.Retrier

	instructions string
	writes       sync.WaitGroup
}

func NewRouter(
	cfg *config.AppConfig,
	store core.MemoryStore,
	search core.SearchClient,
	gen core.Generator,
	embedder core.Embedder,
	classifier Classifier,
	extractor Extractor,
) *Router {
	return &Router{
		cfg:          cfg,
		store:        store,
		search:       search,
		gen:          gen,
		embedder:     embedder,
		classifier:   classifier,
		extractor:    extractor,
		assembler:    NewAssembler(cfg.ContextBudgetTokens),
		retrier:      retry.NewDefaultRetrier(),
		instructions: LoadInstructions(cfg.GetSystemPromptPath()),
	}
}

// HandleTurn runs one full routing cycle and returns the reply text.
// Auxiliary source failures degrade the context but never fail the turn;
// a generation failure after the retry budget returns core.ErrUpstream.
func (r *Router) HandleTurn(ctx context.Context, turn core.Turn) (string, error) {
	logger := log.FromCtx(ctx).With().
		Int64("user_id", turn.UserID).
		Str("channel", turn.Channel).
		Logger()
	ctx = logger.WithContext(ctx)

	profile := r.classifier.Classify(ctx, turn.Text)
	logger.Debug().
		Bool("needs_memory", profile.NeedsMemory).
		Bool("needs_search", profile.NeedsSearch).
		Msg("turn classified")

	// Memory and search reads are independent, so they run concurrently.
	var (
		wg       sync.WaitGroup
		memories []core.ScoredRecord
		searched core.SearchResult
	)
	if profile.NeedsMemory {
		wg.Add(1)
		go func() {
			defer wg.Done()
			memories = r.fetchMemories(ctx, turn)
		}()
	}
	if profile.NeedsSearch {
		wg.Add(1)
		go func() {
			defer wg.Done()
			searched = r.fetchSearch(ctx, profile.SearchQuery)
		}()
	}
	wg.Wait()

	messages := r.assembler.Build(Bundle{
		Instructions: r.instructions,
		Memories:     memories,
		Search:       searched,
		UserText:     turn.Text,
	})

	var reply string
	err := r.retrier.Do(ctx, func() error {
		genCtx, cancel := context.WithTimeout(ctx, r.cfg.GenerationTimeout)
		defer cancel()

		var genErr error
		reply, genErr = r.gen.Complete(genCtx, messages)
		return genErr
	})
	if err != nil {
		logger.Error().Err(err).Msg("generation failed after retries")
		return "", fmt.Errorf("%w: %v", core.ErrUpstream, err)
	}

	r.scheduleWriteBack(ctx, turn)

	return reply, nil
}

// Drain blocks until pending memory write-backs finish. Called on
// shutdown so in-flight facts are not lost.
func (r *Router) Drain() {
	r.writes.Wait()
}

func (r *Router) fetchMemories(ctx context.Context, turn core.Turn) []core.ScoredRecord {
	logger := log.FromCtx(ctx)

	memCtx, cancel := context.WithTimeout(ctx, r.cfg.MemoryTimeout)
	defer cancel()

	vector, err := r.embedder.Embed(memCtx, turn.Text)
	if err != nil {
		logger.Warn().Err(err).Msg("query embedding failed, proceeding without memory")
		return nil
	}

	records, err := r.store.Query(memCtx, turn.UserID, vector, r.cfg.MemoryTopK)
	if err != nil {
		logger.Warn().Err(err).Msg("memory query failed, proceeding without memory")
		return nil
	}

	kept := records[:0]
	for _, rec := range records {
		if rec.Score >= r.cfg.MemoryThreshold {
			kept = append(kept, rec)
		}
	}
	logger.Debug().Int("retrieved", len(records)).Int("kept", len(kept)).Msg("memories fetched")
	return kept
}

func (r *Router) fetchSearch(ctx context.Context, query string) core.SearchResult {
	logger := log.FromCtx(ctx)

	searchCtx, cancel := context.WithTimeout(ctx, r.cfg.SearchTimeout)
	defer cancel()

	result, err := r.search.Search(searchCtx, query, r.cfg.SearchTopN)
	if err != nil {
		logger.Warn().Err(err).Str("query", query).Msg("web search failed, proceeding without results")
		return core.SearchResult{}
	}
	return result
}

// scheduleWriteBack persists durable facts from the turn without
// delaying the reply. The goroutine survives the request context; a
// failed insert is retried once, then logged and dropped.
func (r *Router) scheduleWriteBack(ctx context.Context, turn core.Turn) {
	writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.cfg.MemoryTimeout+r.cfg.GenerationTimeout)

	r.writes.Add(1)
	go func() {
		defer r.writes.Done()
		defer cancel()
		r.writeBack(writeCtx, turn)
	}()
}

func (r *Router) writeBack(ctx context.Context, turn core.Turn) {
	logger := log.FromCtx(ctx)

	facts := r.extractor.Extract(ctx, turn.Text)
	if len(facts) == 0 {
		return
	}

	for _, fact := range facts {
		vector, err := r.embedder.Embed(ctx, fact)
		if err != nil {
			logger.Warn().Err(err).Str("fact", fact).Msg("failed to embed fact")
			continue
		}

		record := core.MemoryRecord{
			ID:        uuid.NewString(),
			UserID:    turn.UserID,
			Fact:      fact,
			Embedding: vector,
		}

		if err := r.store.Insert(ctx, record); err != nil {
			// One retry, then give up. Never surfaced to the user.
			if err = r.store.Insert(ctx, record); err != nil {
				logger.Warn().Err(err).Str("fact", fact).Msg("memory write failed")
				continue
			}
		}
		logger.Info().Str("fact", fact).Msg("memory saved")
	}
}
