// Package sched hosts background workers driven by tickers and stopped via
// context.
package sched

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"telegram-job-scout/internal/domain"
	"telegram-job-scout/internal/domain/model"
	"telegram-job-scout/internal/domain/ports/adapter"
	"telegram-job-scout/internal/domain/ports/repository"
	"telegram-job-scout/internal/infra/metrics"
	"telegram-job-scout/internal/usecase"
)

// NotifyWorker surfaces one unread posting per tick: it analyzes the oldest
// unread posting against a user's resume and delivers the report to the
// notification chat. Delivery happens only inside the configured local-time
// window. A posting is marked read once surfaced, whether or not the
// analysis succeeded; when the report cannot be delivered, a fallback
// message carrying the raw posting fields is attempted before giving up.
type NotifyWorker struct {
	interval time.Duration
	window   Window

	postings repository.JobPostingRepository
	analysis usecase.AnalysisUseCase
	bot      adapter.TelegramBotAdapter
	chatID   int64
	userID   string // pinned target user; empty means random per run

	log *zerolog.Logger
}

// Window is a daily delivery window: hours [Start, End) evaluated in a fixed
// UTC offset.
type Window struct {
	StartHour int
	EndHour   int
	UTCOffset int
}

// Contains reports whether now falls inside the window.
func (w Window) Contains(now time.Time) bool {
	zone := time.FixedZone("notify", w.UTCOffset*3600)
	h := now.In(zone).Hour()
	return h >= w.StartHour && h < w.EndHour
}

func NewNotifyWorker(
	interval time.Duration,
	window Window,
	postings repository.JobPostingRepository,
	analysis usecase.AnalysisUseCase,
	bot adapter.TelegramBotAdapter,
	chatID int64,
	userID string,
	logger *zerolog.Logger,
) *NotifyWorker {
	compLog := logger.With().Str("component", "NotifyWorker").Logger()
	return &NotifyWorker{
		interval: interval,
		window:   window,
		postings: postings,
		analysis: analysis,
		bot:      bot,
		chatID:   chatID,
		userID:   userID,
		log:      &compLog,
	}
}

func (w *NotifyWorker) Run(ctx context.Context) error {
	w.log.Info().Msg("Starting notify worker")
	// Run once on startup, then on every tick
	w.runOnce(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Stopping notify worker")
			return ctx.Err()
		case <-ticker.C:
			w.runOnce(ctx)
		}
	}
}

func (w *NotifyWorker) runOnce(ctx context.Context) {
	if err := w.RunOnce(ctx, time.Now()); err != nil {
		w.log.Error().Err(err).Msg("notify run failed")
	}
}

// RunOnce performs a single delivery attempt at the given wall-clock time.
// Outside the window, and with an empty queue, it is a no-op.
func (w *NotifyWorker) RunOnce(ctx context.Context, now time.Time) error {
	if !w.window.Contains(now) {
		w.log.Debug().Time("now", now).Msg("outside delivery window")
		return nil
	}

	posting, err := w.postings.FindOldestUnread(ctx, repository.NoTX)
	if err != nil {
		if errors.Is(err, domain.ErrNoUnread) {
			return nil
		}
		return err
	}

	text := ""
	kind := "report"
	res, err := w.analysis.RunForPosting(ctx, posting, w.userID)
	if err != nil {
		w.log.Warn().Err(err).Str("posting", posting.ID).Msg("analysis failed, sending fallback")
		text = fallbackMessage(posting)
		kind = "fallback"
	} else {
		text = res.Report
	}

	sendErr := w.bot.SendMessage(ctx, w.chatID, text)
	if sendErr != nil && kind == "report" {
		// The report could not go out; the minimal message still must.
		w.log.Warn().Err(sendErr).Str("posting", posting.ID).Msg("report delivery failed, sending fallback")
		if ferr := w.bot.SendMessage(ctx, w.chatID, fallbackMessage(posting)); ferr == nil {
			kind = "fallback"
			sendErr = nil
		}
	}
	if sendErr == nil {
		metrics.IncPostingNotified(kind)
	}

	// A posting is surfaced at most once: it is marked read after the
	// delivery attempts even if both failed.
	if merr := w.postings.MarkRead(ctx, repository.NoTX, posting.URL); merr != nil {
		return merr
	}
	if sendErr != nil {
		return fmt.Errorf("%s delivery: %w", kind, sendErr)
	}
	return nil
}

// fallbackMessage renders the raw posting fields when no analysis report is
// available.
func fallbackMessage(p *model.JobPosting) string {
	return fmt.Sprintf("New job posting\n\n%s\n%s · %s\n\n%s\n\n%s",
		p.Title, p.Company, p.Location, p.Description, p.URL)
}
