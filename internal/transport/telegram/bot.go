package telegram

import (
	"context"
	"fmt"
	"time"

	"github.com/sandevgo/recallbot/internal/config"
	"github.com/sandevgo/recallbot/internal/core"
	"github.com/sandevgo/recallbot/internal/service/router"
	"github.com/sandevgo/recallbot/pkg/log"
	tele "gopkg.in/telebot.v3"
)

const baseContextKey = "base_context"

type Bot struct {
	bot    *tele.Bot
	router *router.Router
	sender *sender
}

func NewBot(
	ctx context.Context,
	cfg *config.TelegramConfig,
	r *router.Router,
) (*Bot, error) {
	pref := tele.Settings{
		Token:  cfg.Token,
		Poller: &tele.LongPoller{Timeout: 10 * time.Second},
	}

	b, err := tele.NewBot(pref)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}

	bot := &Bot{
		bot:    b,
		router: r,
		sender: newSender(b),
	}

	// Propagate the process context with logger into every handler.
	b.Use(func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			c.Set(baseContextKey, ctx)
			return next(c)
		}
	})

	b.Handle("/start", bot.handleStart)
	b.Handle(tele.OnText, bot.handleMessage)

	return bot, nil
}

func (b *Bot) Start(ctx context.Context) error {
	log.FromCtx(ctx).Info().Msg("starting telegram bot")
	b.bot.Start()
	return nil
}

func (b *Bot) Shutdown(ctx context.Context) error {
	b.bot.Stop()
	return nil
}

func (b *Bot) handleStart(c tele.Context) error {
	name := c.Sender().FirstName
	return c.Send(fmt.Sprintf(
		"Hi %s! I can remember our conversations and search the web. Ask me anything!", name,
	))
}

func (b *Bot) handleMessage(c tele.Context) error {
	ctx := c.Get(baseContextKey).(context.Context)
	logger := log.FromCtx(ctx)

	_ = c.Notify(tele.Typing)

	reply, err := b.router.HandleTurn(ctx, core.Turn{
		UserID:  c.Sender().ID,
		Text:    c.Text(),
		At:      time.Now(),
		Channel: "telegram",
	})
	if err != nil {
		logger.Error().Err(err).Int64("user_id", c.Sender().ID).Msg("turn failed")
		return c.Send(core.FallbackReply)
	}

	return b.sender.sendMarkdown(ctx, c.Recipient(), reply)
}
