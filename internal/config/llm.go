package config

import (
	"context"

	"github.com/caarlos0/env/v11"
	"github.com/sandevgo/recallbot/pkg/log"
)

type MistralConfig struct {
	APIKey  string `env:"MISTRAL_API_KEY,required,notEmpty"`
	Model   string `env:"MISTRAL_MODEL" envDefault:"mistral-small-latest"`
	BaseURL string `env:"MISTRAL_BASE_URL" envDefault:"https://api.mistral.ai"`
}

func NewMistralConfig(ctx context.Context) *MistralConfig {
	c := &MistralConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse Mistral config")
	}
	return c
}

type OpenRouterConfig struct {
	APIKey  string `env:"OPENROUTER_API_KEY,required,notEmpty"`
	Model   string `env:"OPENROUTER_MODEL" envDefault:"google/gemma-3-27b-it:free"`
	BaseURL string `env:"OPENROUTER_BASE_URL" envDefault:"https://openrouter.ai/api"`
}

func NewOpenRouterConfig(ctx context.Context) *OpenRouterConfig {
	c := &OpenRouterConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse OpenRouter config")
	}
	return c
}
