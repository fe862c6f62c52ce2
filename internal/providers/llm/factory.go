package llm

import (
	"context"
	"fmt"

	"github.com/sandevgo/recallbot/internal/config"
	"github.com/sandevgo/recallbot/internal/core"
	"github.com/sandevgo/recallbot/pkg/log"
)

// NewGenerator creates the configured generation backend.
func NewGenerator(ctx context.Context, cfg *config.AppConfig) (core.Generator, error) {
	logger := log.FromCtx(ctx)

	switch cfg.LLMProvider {
	case "mistral":
		mc := config.NewMistralConfig(ctx)
		logger.Info().Str("provider", "mistral").Str("model", mc.Model).Msg("starting llm provider")
		return NewMistral(mc.BaseURL, mc.APIKey, mc.Model), nil
	case "openrouter":
		oc := config.NewOpenRouterConfig(ctx)
		logger.Info().Str("provider", "openrouter").Str("model", oc.Model).Msg("starting llm provider")
		return NewOpenRouter(oc.BaseURL, oc.APIKey, oc.Model), nil
	default:
		return nil, fmt.Errorf("unknown llm provider: %s", cfg.LLMProvider)
	}
}
