// Package telegram polls chat updates and forwards commands to the
// application facade. It also implements the outbound notification port.
package telegram

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
	"unicode/utf8"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"telegram-job-scout/internal/application"
	"telegram-job-scout/internal/config"
	"telegram-job-scout/internal/domain/ports/adapter"
	red "telegram-job-scout/internal/infra/redis"
)

// telegramMaxMessageLen is the transport's hard limit per message.
const telegramMaxMessageLen = 4096

const (
	rateLimitPerMinute = 10
	rateLimitWindow    = time.Minute
)

var _ adapter.TelegramBotAdapter = (*RealTelegramBotAdapter)(nil)

// RealTelegramBotAdapter uses tgbotapi to poll updates and delegates to BotFacade.
type RealTelegramBotAdapter struct {
	bot         *tgbotapi.BotAPI
	cfg         *config.BotConfig
	facade      *application.BotFacade
	rateLimiter *red.RateLimiter

	adminIDsMap   map[int64]struct{}
	updateWorkers int
	cancelPolling context.CancelFunc
	log           *zerolog.Logger
}

func NewRealTelegramBotAdapter(cfg *config.BotConfig, facade *application.BotFacade, rateLimiter *red.RateLimiter, logger *zerolog.Logger) (*RealTelegramBotAdapter, error) {
	if cfg == nil {
		return nil, errors.New("bot config is nil")
	}
	if facade == nil {
		return nil, errors.New("bot facade is nil")
	}
	workers := cfg.Workers
	if workers <= 0 {
		workers = 5
	}

	bot, err := tgbotapi.NewBotAPI(cfg.Token)
	if err != nil {
		return nil, err
	}

	adminMap := map[int64]struct{}{}
	for _, id := range cfg.AdminIDs {
		adminMap[id] = struct{}{}
	}

	compLog := logger.With().Str("component", "telegram-bot").Logger()
	return &RealTelegramBotAdapter{
		bot:           bot,
		cfg:           cfg,
		facade:        facade,
		rateLimiter:   rateLimiter,
		adminIDsMap:   adminMap,
		updateWorkers: workers,
		log:           &compLog,
	}, nil
}

func (r *RealTelegramBotAdapter) StartPolling(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := r.bot.GetUpdatesChan(u)

	ctx, cancel := context.WithCancel(ctx)
	r.cancelPolling = cancel

	var wg sync.WaitGroup
	updateChan := make(chan tgbotapi.Update, 100)

	for i := 0; i < r.updateWorkers; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case up := <-updateChan:
					if err := r.handleUpdate(ctx, up); err != nil {
						r.log.Error().Err(err).Int("worker", id).Msg("update failed")
					}
				}
			}
		}(i)
	}

	for {
		select {
		case <-ctx.Done():
			close(updateChan)
			wg.Wait()
			return ctx.Err()
		case up := <-updates:
			updateChan <- up
		}
	}
}

func (r *RealTelegramBotAdapter) StopPolling() {
	if r.cancelPolling != nil {
		r.cancelPolling()
	}
}

func (r *RealTelegramBotAdapter) handleUpdate(ctx context.Context, up tgbotapi.Update) error {
	msg := up.Message
	if msg == nil {
		return nil
	}
	if !msg.IsCommand() {
		return r.SendMessage(ctx, msg.Chat.ID, "Send /help to see the available commands.")
	}

	cmd := msg.Command()
	handler, ok := r.commandRoutes()[cmd]
	if !ok {
		return r.SendMessage(ctx, msg.Chat.ID, "Unknown command. Send /help to see the available commands.")
	}

	if r.rateLimiter != nil {
		key := red.UserCommandKey(msg.From.ID, cmd)
		ok, err := r.rateLimiter.Allow(ctx, key, rateLimitPerMinute, rateLimitWindow)
		if err != nil {
			r.log.Warn().Err(err).Msg("rate limiter unavailable, allowing")
		} else if !ok {
			return r.SendMessage(ctx, msg.Chat.ID, "Slow down a little. Try again in a minute.")
		}
	}

	return handler(ctx, msg)
}

// SendMessage implements the notification port. Long texts are split at the
// transport limit and delivered in order.
func (r *RealTelegramBotAdapter) SendMessage(ctx context.Context, chatID int64, text string) error {
	for _, part := range splitMessage(text, telegramMaxMessageLen) {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if _, err := r.bot.Send(tgbotapi.NewMessage(chatID, part)); err != nil {
			return fmt.Errorf("send to chat %d: %w", chatID, err)
		}
	}
	return nil
}

// splitMessage cuts text into chunks of at most limit bytes, preferring
// newline boundaries and never cutting inside a UTF-8 sequence.
func splitMessage(text string, limit int) []string {
	if len(text) <= limit {
		return []string{text}
	}
	var parts []string
	for len(text) > limit {
		cut := 0
		for i := limit; i > limit/2; i-- {
			if text[i-1] == '\n' {
				cut = i
				break
			}
		}
		if cut == 0 {
			cut = limit
			for cut > limit/2 && !utf8.RuneStart(text[cut]) {
				cut--
			}
		}
		parts = append(parts, text[:cut])
		text = text[cut:]
	}
	if len(text) > 0 {
		parts = append(parts, text)
	}
	return parts
}

// domainUserID derives the stable domain user id for a chat sender.
func domainUserID(tgID int64) string {
	return fmt.Sprintf("tg-%d", tgID)
}
