package telegram

import (
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"go-jobposting-collector/internal/models"
)

// previewRunes bounds the description excerpt of a notification.
const previewRunes = 2000

type Bot struct {
	api    *tgbotapi.BotAPI
	chatID int64
}

func NewBot(token string, chatID int64) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to init telegram bot: %w", err)
	}
	return &Bot{
		api:    api,
		chatID: chatID,
	}, nil
}

var markdownReplacer = strings.NewReplacer(
	"_", "\\_", "*", "\\*", "[", "\\[", "]", "\\]", "(", "\\(",
	")", "\\)", "~", "\\~", "`", "\\`", ">", "\\>", "#", "\\#",
	"+", "\\+", "-", "\\-", "=", "\\=", "|", "\\|", "{", "\\{",
	"}", "\\}", ".", "\\.", "!", "\\!",
)

func escapeMarkdown(text string) string {
	return markdownReplacer.Replace(text)
}

// FormatPosting renders a stored posting as a MarkdownV2 message body.
func FormatPosting(p models.StoredPosting) string {
	rec := p.Record
	var b strings.Builder
	fmt.Fprintf(&b, "🆕 *%s*\n", escapeMarkdown(rec.Position))
	fmt.Fprintf(&b, "🏢 %s\n", escapeMarkdown(rec.Company))

	loc := strings.Trim(strings.Join([]string{rec.City, rec.Country}, ", "), ", ")
	if loc == "" {
		loc = "N/A"
	}
	fmt.Fprintf(&b, "📍 %s\n", escapeMarkdown(loc))

	if rec.WorkArrangement != "" {
		fmt.Fprintf(&b, "🏠 %s\n", escapeMarkdown(string(rec.WorkArrangement)))
	}
	if rec.Demand != "" {
		fmt.Fprintf(&b, "👥 %s applicants\n", escapeMarkdown(string(rec.Demand)))
	}
	if rec.Match != "" {
		fmt.Fprintf(&b, "🎯 Match: %s\n", escapeMarkdown(string(rec.Match)))
	}
	if rec.Budget != nil {
		fmt.Fprintf(&b, "💰 %s\n", escapeMarkdown(fmt.Sprintf("%g", *rec.Budget)))
	}
	if chunks := models.ChunkText(rec.JobDescription, previewRunes); len(chunks) > 0 {
		excerpt := chunks[0]
		if len(chunks) > 1 {
			excerpt += "…"
		}
		fmt.Fprintf(&b, "📄 %s\n", escapeMarkdown(excerpt))
	}
	fmt.Fprintf(&b, "🔖 Source: %s\n", escapeMarkdown(string(rec.Origin)))
	return b.String()
}

// SendPosting announces a newly stored posting. recordURL links the stored
// record and may be empty.
func (b *Bot) SendPosting(p models.StoredPosting, recordURL string) error {
	buttons := []tgbotapi.InlineKeyboardButton{
		tgbotapi.NewInlineKeyboardButtonURL("🔗 View Job", p.Record.PostingURL),
	}
	if recordURL != "" {
		buttons = append(buttons, tgbotapi.NewInlineKeyboardButtonURL("🗂️ Open Record", recordURL))
	}

	msg := tgbotapi.NewMessage(b.chatID, FormatPosting(p))
	msg.ParseMode = "MarkdownV2"
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(tgbotapi.NewInlineKeyboardRow(buttons...))

	_, err := b.api.Send(msg)
	return err
}

func (b *Bot) SendError(err error) error {
	msg := tgbotapi.NewMessage(b.chatID, fmt.Sprintf("❌ Error: %v", err))
	_, sendErr := b.api.Send(msg)
	return sendErr
}
