// Package browser renders JavaScript-heavy pages in headless Chrome. It
// backs the extraction and search flows when a plain HTTP fetch returns a
// mostly empty shell.
package browser

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/rs/zerolog"

	"telegram-job-scout/internal/domain/ports/adapter"
)

var _ adapter.Browser = (*ChromeRenderer)(nil)

type ChromeRenderer struct {
	timeout time.Duration
	log     *zerolog.Logger
}

func NewChromeRenderer(timeout time.Duration, logger *zerolog.Logger) *ChromeRenderer {
	if timeout <= 0 {
		timeout = 90 * time.Second
	}
	l := logger.With().Str("component", "browser").Logger()
	return &ChromeRenderer{timeout: timeout, log: &l}
}

// Render navigates to url, waits for the document to settle and returns the
// rendered HTML. Requires Chrome or Chromium on the host.
func (r *ChromeRenderer) Render(ctx context.Context, url string) (string, error) {
	r.log.Debug().Str("url", url).Msg("rendering page")

	allocCtx, cancel := chromedp.NewExecAllocator(ctx,
		append(chromedp.DefaultExecAllocatorOptions[:],
			chromedp.Flag("headless", true),
			chromedp.Flag("disable-gpu", true),
			chromedp.Flag("no-sandbox", true),
			chromedp.Flag("disable-dev-shm-usage", true),
		)...,
	)
	defer cancel()

	browserCtx, cancel := chromedp.NewContext(allocCtx)
	defer cancel()

	browserCtx, cancel = context.WithTimeout(browserCtx, r.timeout)
	defer cancel()

	var html string
	err := chromedp.Run(browserCtx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body"),
		// Give client-side rendering a moment to fill the DOM.
		chromedp.Sleep(3*time.Second),
		chromedp.ActionFunc(func(ctx context.Context) error {
			// Dismiss cookie banners when present; ignore failures.
			_ = chromedp.Click(`button[id*="accept"], button[class*="accept"]`, chromedp.NodeVisible).Do(ctx)
			return nil
		}),
		chromedp.Sleep(time.Second),
		chromedp.OuterHTML("html", &html),
	)
	if err != nil {
		return "", fmt.Errorf("render %s: %w", url, err)
	}

	r.log.Debug().Str("url", url).Int("bytes", len(html)).Msg("page rendered")
	return html, nil
}

// NoopBrowser satisfies adapter.Browser without launching Chrome; it always
// reports the page as unrenderable. Used when no browser is installed.
type NoopBrowser struct{}

func (NoopBrowser) Render(ctx context.Context, url string) (string, error) {
	return "", fmt.Errorf("browser rendering disabled")
}
