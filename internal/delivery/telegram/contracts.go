package telegram

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/aliskhannn/lwopan/internal/domain/entities"
)

// Resolver answers a raw query.
type Resolver interface {
	Resolve(ctx context.Context, q string) []entities.ResultEntry
}

// Bot is the part of the Telegram API client the handler uses.
// *tgbotapi.BotAPI satisfies it.
type Bot interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}
