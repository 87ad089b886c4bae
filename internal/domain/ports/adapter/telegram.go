package adapter

import "context"

// TelegramBotAdapter is the outbound notification port. Implementations must
// split texts that exceed the transport's message size limit.
type TelegramBotAdapter interface {
	SendMessage(ctx context.Context, chatID int64, text string) error
}
