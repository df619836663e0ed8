package telegram

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// Commands registered with Telegram on startup.
var Commands = []tgbotapi.BotCommand{
	{
		Command:     "start",
		Description: "Start the bot",
	},
	{
		Command:     "help",
		Description: "How to search",
	},
}

type Handler struct {
	bot      Bot
	logger   *zap.Logger
	resolver Resolver
}

func NewHandler(bot Bot, logger *zap.Logger, resolver Resolver) *Handler {
	return &Handler{
		bot:      bot,
		logger:   logger,
		resolver: resolver,
	}
}

// Run consumes updates until ctx is cancelled or the update channel closes.
func (h *Handler) Run(ctx context.Context) error {
	h.logger.Info("telegram handler started")
	defer h.logger.Info("telegram handler stopped")

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := h.bot.GetUpdatesChan(u)
	defer h.bot.StopReceivingUpdates()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			h.handleUpdate(ctx, update)
		}
	}
}

func (h *Handler) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	if update.Message == nil {
		h.logger.Debug("update without message")
		return
	}

	h.logger.Debug("update received",
		zap.Int64("chat_id", update.Message.Chat.ID),
		zap.String("text", update.Message.Text),
	)

	chatID := update.Message.Chat.ID

	if update.Message.IsCommand() {
		switch update.Message.Command() {
		case "start", "help":
			h.send(newMessage(chatID, welcomeMarkdownV2()))
		default:
			h.send(newPlainMessage(chatID, msgUnknownCommand))
		}
		return
	}

	_ = h.withErrorHandling("search", h.searchHandler(update.Message.Text))(ctx, chatID)
}

// searchHandler resolves text and replies with the results, split to fit
// Telegram's message size limit.
func (h *Handler) searchHandler(text string) HandlerFunc {
	return func(ctx context.Context, chatID int64) error {
		if text == "" {
			return h.sendChecked(newPlainMessage(chatID, msgEmptyQuery))
		}

		results := h.resolver.Resolve(ctx, text)
		for _, chunk := range renderResults(results) {
			if err := h.sendChecked(newMessage(chatID, chunk)); err != nil {
				return err
			}
		}

		return nil
	}
}

func (h *Handler) sendChecked(c tgbotapi.Chattable) error {
	_, err := h.bot.Send(c)
	return err
}

func (h *Handler) sendError(chatID int64, err string) {
	h.send(newPlainMessage(chatID, err))
}

func (h *Handler) send(c tgbotapi.Chattable) {
	if _, err := h.bot.Send(c); err != nil {
		h.logger.Error("failed to send telegram message",
			zap.Error(err),
		)
	}
}
