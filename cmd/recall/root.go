package main

import (
	"context"
	"os"

	"github.com/sandevgo/recallbot/internal/config"
	"github.com/sandevgo/recallbot/pkg/log"
	"github.com/spf13/cobra"
)

var debug bool

var rootCmd = &cobra.Command{
	Use:   "recall",
	Short: "RecallBot, a chat assistant with long-term memory and web search",
	Long:  `RecallBot answers chat messages using an LLM backend augmented with per-user long-term memory and live web search.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", config.IsDebug(), "enable debug logging")
}

func setupLogger(ctx context.Context) (context.Context, func()) {
	return log.NewContextWithLogger(ctx, debug || config.IsDebug())
}
