package ai

import (
	"context"
	"strings"
	"time"

	"telegram-job-scout/internal/domain/ports/adapter"
	"telegram-job-scout/internal/infra/metrics"
)

// Compile-time check
var _ adapter.AIServiceAdapter = (*limitedAI)(nil)

// limitedAI bounds concurrent provider calls with a semaphore and records
// call metrics. It wraps the outermost adapter in the chain.
type limitedAI struct {
	inner    adapter.AIServiceAdapter
	provider string
	sem      chan struct{}
}

func NewLimitedAI(inner adapter.AIServiceAdapter, provider string, maxConcurrent int) adapter.AIServiceAdapter {
	if maxConcurrent <= 0 {
		return inner
	}
	return &limitedAI{
		inner:    inner,
		provider: provider,
		sem:      make(chan struct{}, maxConcurrent),
	}
}

func (l *limitedAI) acquire(ctx context.Context) error {
	select {
	case l.sem <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (l *limitedAI) ListModels(ctx context.Context) ([]string, error) {
	return l.inner.ListModels(ctx)
}

func (l *limitedAI) GetModelInfo(model string) (adapter.ModelInfo, error) {
	return l.inner.GetModelInfo(model)
}

func (l *limitedAI) CountTokens(ctx context.Context, model string, messages []adapter.Message) (int, error) {
	if err := l.acquire(ctx); err != nil {
		return 0, err
	}
	defer func() { <-l.sem }()
	return l.inner.CountTokens(ctx, model, messages)
}

func (l *limitedAI) Chat(ctx context.Context, model string, messages []adapter.Message) (string, error) {
	if err := l.acquire(ctx); err != nil {
		return "", err
	}
	defer func() { <-l.sem }()

	start := time.Now()
	reply, err := l.inner.Chat(ctx, model, messages)
	metrics.ObserveAICall(l.providerFor(model), model, time.Since(start).Milliseconds(), err == nil)
	return reply, err
}

func (l *limitedAI) ChatJSON(ctx context.Context, model string, messages []adapter.Message) (string, error) {
	if err := l.acquire(ctx); err != nil {
		return "", err
	}
	defer func() { <-l.sem }()

	start := time.Now()
	reply, err := l.inner.ChatJSON(ctx, model, messages)
	metrics.ObserveAICall(l.providerFor(model), model, time.Since(start).Milliseconds(), err == nil)
	return reply, err
}

func (l *limitedAI) providerFor(model string) string {
	if l.provider != "" {
		return l.provider
	}
	if strings.HasPrefix(strings.ToLower(model), "gemini") {
		return "gemini"
	}
	return "openai"
}
