package telegram

import (
	"context"

	"github.com/rs/zerolog"

	"telegram-job-scout/internal/domain/ports/adapter"
)

var _ adapter.TelegramBotAdapter = (*NoopBotAdapter)(nil)

// NoopBotAdapter logs outbound messages instead of sending them. Used in
// local runs without a bot token.
type NoopBotAdapter struct {
	log *zerolog.Logger
}

func NewNoopBotAdapter(logger *zerolog.Logger) *NoopBotAdapter {
	compLog := logger.With().Str("component", "noop-bot").Logger()
	return &NoopBotAdapter{log: &compLog}
}

func (n *NoopBotAdapter) SendMessage(ctx context.Context, chatID int64, text string) error {
	n.log.Info().Int64("chat_id", chatID).Int("len", len(text)).Msg("message suppressed")
	return nil
}
