package main

import (
	"context"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/sandevgo/recallbot/internal/config"
	"github.com/sandevgo/recallbot/internal/core"
	"github.com/sandevgo/recallbot/internal/providers/embed"
	"github.com/sandevgo/recallbot/internal/providers/llm"
	"github.com/sandevgo/recallbot/internal/providers/search"
	"github.com/sandevgo/recallbot/internal/service/router"
	"github.com/sandevgo/recallbot/internal/storage/sqlite"
	"github.com/sandevgo/recallbot/internal/transport/httpapi"
	"github.com/sandevgo/recallbot/internal/transport/telegram"
	"github.com/sandevgo/recallbot/pkg/log"
	"github.com/sandevgo/recallbot/pkg/srv"
)

// NewServices wires the whole process: clients are built once here and
// injected into the router, never looked up ad hoc.
func NewServices(ctx context.Context) []srv.Service {
	logger := log.FromCtx(ctx)
	services := make([]srv.Service, 0)

	if err := initEnv(ctx, config.GetRuntimePath()); err != nil {
		logger.Fatal().Err(err).Msg("failed to init env")
	}

	// 1. Configuration
	appCfg := config.NewAppConfig(ctx)
	embedCfg := config.NewEmbeddingConfig(ctx)
	searchCfg := config.NewSearchConfig(ctx)

	// 2. Memory store
	db, err := sqlite.NewDB(ctx, appCfg.GetDatabasePath())
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize storage")
	}
	services = append(services, srv.NewCleanup(db.Close))
	store := sqlite.NewMemoriesRepo(db, embedCfg.Dimension)

	// 3. Generation client
	generator, err := llm.NewGenerator(ctx, appCfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize LLM provider")
	}

	// 4. Embedder
	embedder := embed.NewEmbedder(embedCfg)

	// 5. Web search client, cached
	searcher, err := search.NewCached(search.NewSerpAPI(searchCfg), searchCfg.CacheTTL)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize search client")
	}

	// 6. Router core. The planner classifies with a single JSON call;
	// fact extraction runs off the reply path.
	r := router.NewRouter(
		appCfg,
		store,
		searcher,
		generator,
		embedder,
		router.NewPlanner(generator),
		router.NewLLMExtractor(generator),
	)
	services = append(services, srv.NewCleanup(func() error {
		r.Drain()
		return nil
	}))

	// 7. Transports
	transports, err := initTransports(ctx, appCfg, r)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize transports")
	}
	services = append(services, transports...)

	return services
}

func initTransports(ctx context.Context, cfg *config.AppConfig, r *router.Router) ([]srv.Service, error) {
	var services []srv.Service

	if cfg.EnableTelegram {
		tgCfg := config.NewTelegramConfig(ctx)
		bot, err := telegram.NewBot(ctx, tgCfg, r)
		if err != nil {
			return nil, err
		}
		services = append(services, bot)
	}

	if cfg.EnableHTTP {
		httpCfg := config.NewHTTPConfig(ctx)
		services = append(services, httpapi.NewServer(ctx, httpCfg, r))
	}

	return services, nil
}

func initEnv(ctx context.Context, runtimePath string) error {
	logger := log.FromCtx(ctx)
	envFile := filepath.Join(runtimePath, ".env")

	if _, err := os.Stat(envFile); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	if err := godotenv.Load(envFile); err != nil {
		logger.Warn().Err(err).Str("path", envFile).Msg("failed to load .env file")
		return err
	}

	logger.Debug().Str("path", envFile).Str("bot", core.BotName).Msg("loaded .env file")
	return nil
}
