// Package bot is the Telegram transport over the attendance engine.
// Commands mutate through app.Engine only; this package owns message
// formatting and the polling loop.
package bot

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/cat-time-bot/cattime/internal/app"
)

// Bot wraps the Telegram API client and routes commands.
type Bot struct {
	api    *tgbotapi.BotAPI
	engine *app.Engine
	chatID int64 // shared group chat for announcements
	log    *zap.Logger
}

// New creates the bot from a token.
func New(token string, engine *app.Engine, chatID int64, debug bool, log *zap.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create bot: %w", err)
	}
	api.Debug = debug

	log.Info("authorized", zap.String("account", api.Self.UserName))

	return &Bot{api: api, engine: engine, chatID: chatID, log: log}, nil
}

// Start runs the long-polling loop until ctx is canceled.
func (b *Bot) Start(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30

	updates := b.api.GetUpdatesChan(u)
	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			if update.Message == nil || !update.Message.IsCommand() {
				continue
			}
			b.dispatch(update.Message)
		}
	}
}

func (b *Bot) dispatch(msg *tgbotapi.Message) {
	switch msg.Command() {
	case "help", "start":
		b.handleHelp(msg)
	case "join":
		b.handleJoin(msg)
	case "leave":
		b.handleLeave(msg)
	case "edit":
		b.handleEditJoin(msg)
	case "editleave":
		b.handleEditLeave(msg)
	case "profile":
		b.handleProfile(msg)
	case "top":
		b.handleTop(msg)
	case "mew":
		b.handleMew(msg)
	}
}

// Announce sends text to the shared group chat. Implements
// domain.Notifier.
func (b *Bot) Announce(text string) error {
	if b.chatID == 0 {
		return nil
	}
	msg := tgbotapi.NewMessage(b.chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	_, err := b.api.Send(msg)
	return err
}

func (b *Bot) reply(msg *tgbotapi.Message, text string) {
	out := tgbotapi.NewMessage(msg.Chat.ID, text)
	out.ParseMode = tgbotapi.ModeMarkdown
	if _, err := b.api.Send(out); err != nil {
		b.log.Error("send failed", zap.Int64("chat_id", msg.Chat.ID), zap.Error(err))
	}
}
