package config

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/sandevgo/recallbot/pkg/log"
)

type AppConfig struct {
	RuntimePath string `env:"RECALL_RUNTIME_PATH" envDefault:".recallbot"`
	LLMProvider string `env:"LLM_PROVIDER" envDefault:"mistral"`

	// Transport flags
	EnableTelegram bool `env:"ENABLE_TELEGRAM" envDefault:"false"`
	EnableHTTP     bool `env:"ENABLE_HTTP" envDefault:"true"`

	// Router tuning
	ContextBudgetTokens int     `env:"CONTEXT_BUDGET_TOKENS" envDefault:"3000"`
	MemoryTopK          int     `env:"MEMORY_TOP_K" envDefault:"5"`
	MemoryThreshold     float64 `env:"MEMORY_THRESHOLD" envDefault:"0.3"`
	SearchTopN          int     `env:"SEARCH_TOP_N" envDefault:"4"`

	// Per-call timeouts. Exceeding one counts as that source failing.
	MemoryTimeout     time.Duration `env:"MEMORY_TIMEOUT" envDefault:"5s"`
	SearchTimeout     time.Duration `env:"SEARCH_TIMEOUT" envDefault:"10s"`
	GenerationTimeout time.Duration `env:"GENERATION_TIMEOUT" envDefault:"60s"`
}

func NewAppConfig(ctx context.Context) *AppConfig {
	c := &AppConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse App config")
	}
	if !filepath.IsAbs(c.RuntimePath) {
		home, _ := os.UserHomeDir()
		c.RuntimePath = filepath.Join(home, c.RuntimePath)
	}
	return c
}

func (c AppConfig) GetDatabasePath() string {
	return filepath.Join(c.RuntimePath, "recallbot.db")
}

func (c AppConfig) GetSystemPromptPath() string {
	return filepath.Join(c.RuntimePath, "SYSTEM.md")
}
