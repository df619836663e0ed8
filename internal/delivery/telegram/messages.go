// messages.go contains message templates and formatting functions for Telegram.

package telegram

import (
	"strings"
	"unicode/utf8"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/aliskhannn/lwopan/internal/domain/entities"
)

// Error messages.
const (
	msgEmptyQuery     = "Send a question number, a phrase from the question, or a happyread collection link."
	msgInternalError  = "Something went wrong. Please try again later."
	msgUnknownCommand = "Unknown command. Available commands:\n\n/start — how to search\n/help — how to search"
)

// maxMessageRunes stays under Telegram's 4096 character limit.
const maxMessageRunes = 4000

// md escapes plain text for MarkdownV2.
func md(s string) string {
	return tgbotapi.EscapeText(tgbotapi.ModeMarkdownV2, s)
}

func bold(s string) string {
	return "*" + md(s) + "*"
}

// newMessage creates a message with MarkdownV2 parse mode.
func newMessage(chatID int64, text string) tgbotapi.MessageConfig {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdownV2
	return msg
}

// newPlainMessage creates a plain message without MarkdownV2 parse mode.
func newPlainMessage(chatID int64, text string) tgbotapi.MessageConfig {
	return tgbotapi.NewMessage(chatID, text)
}

// welcomeMarkdownV2 builds the welcome message safely for MarkdownV2.
func welcomeMarkdownV2() string {
	var sb strings.Builder

	sb.WriteString(bold("lwopan"))
	sb.WriteString(md(" finds answers to happyread reading questions."))
	sb.WriteString("\n\n")

	sb.WriteString(md("You can send:"))
	sb.WriteString("\n\n")
	sb.WriteString(md("1. A question number, e.g. 42."))
	sb.WriteString("\n")
	sb.WriteString(md("2. Any part of the question text."))
	sb.WriteString("\n")
	sb.WriteString(md("3. A book link from happyread.kh.edu.tw containing id=, to get every answered question of that book."))

	return sb.String()
}

// formatResult renders one entry as a bold question followed by its answer.
func formatResult(e entities.ResultEntry) string {
	return bold(e.Question) + "\n" + md(e.Answer)
}

// renderResults packs entries into as few MarkdownV2 messages as fit the size limit.
func renderResults(results []entities.ResultEntry) []string {
	var (
		chunks []string
		sb     strings.Builder
		size   int
	)

	flush := func() {
		if sb.Len() > 0 {
			chunks = append(chunks, sb.String())
			sb.Reset()
			size = 0
		}
	}

	for _, e := range results {
		block := formatResult(e)
		n := utf8.RuneCountInString(block)
		if n > maxMessageRunes {
			block = formatResult(fitResult(e))
			n = utf8.RuneCountInString(block)
		}

		if size > 0 && size+2+n > maxMessageRunes {
			flush()
		}
		if size > 0 {
			sb.WriteString("\n\n")
			size += 2
		}
		sb.WriteString(block)
		size += n
	}
	flush()

	return chunks
}

// fitResult shortens an entry so that its escaped block stays within
// maxMessageRunes. Escaping at most doubles the length, and the bold markers
// and the separating newline add three runes.
func fitResult(e entities.ResultEntry) entities.ResultEntry {
	e.Question = truncateRunes(e.Question, maxMessageRunes/4)
	e.Answer = truncateRunes(e.Answer, (maxMessageRunes-3)/2-utf8.RuneCountInString(e.Question))
	return e
}

func truncateRunes(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= limit {
		return s
	}

	runes := []rune(s)
	return string(runes[:limit-1]) + "…"
}
