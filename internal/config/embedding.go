package config

import (
	"context"

	"github.com/caarlos0/env/v11"
	"github.com/sandevgo/recallbot/pkg/log"
)

// EmbeddingDim must match the FLOAT[...] declaration in the memories_vec
// migration. Changing it requires a new migration.
type EmbeddingConfig struct {
	APIKey    string `env:"EMBEDDING_API_KEY,required,notEmpty"`
	Model     string `env:"EMBEDDING_MODEL" envDefault:"mistral-embed"`
	BaseURL   string `env:"EMBEDDING_BASE_URL" envDefault:"https://api.mistral.ai"`
	Dimension int    `env:"EMBEDDING_DIM" envDefault:"1024"`
}

func NewEmbeddingConfig(ctx context.Context) *EmbeddingConfig {
	c := &EmbeddingConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse Embedding config")
	}
	return c
}
