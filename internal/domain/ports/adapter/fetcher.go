package adapter

import "context"

// FetchResult holds the raw and derived content from a URL fetch.
type FetchResult struct {
	URL        string
	HTML       string
	StatusCode int
}

// Fetcher retrieves raw page content over plain HTTP.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*FetchResult, error)
}

// Browser renders pages that need JavaScript and returns the rendered HTML.
// Considerably slower than Fetcher; callers fall back to it only when the
// plain fetch yields too little text.
type Browser interface {
	Render(ctx context.Context, url string) (string, error)
}
