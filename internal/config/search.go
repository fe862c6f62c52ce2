package config

import (
	"context"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/sandevgo/recallbot/pkg/log"
)

type SearchConfig struct {
	APIKey   string        `env:"SERPAPI_API_KEY,required,notEmpty"`
	BaseURL  string        `env:"SERPAPI_BASE_URL" envDefault:"https://serpapi.com"`
	Engine   string        `env:"SERPAPI_ENGINE" envDefault:"google"`
	CacheTTL time.Duration `env:"SEARCH_CACHE_TTL" envDefault:"5m"`
}

func NewSearchConfig(ctx context.Context) *SearchConfig {
	c := &SearchConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse Search config")
	}
	return c
}
