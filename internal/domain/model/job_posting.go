package model

import (
	"strings"
	"time"

	"telegram-job-scout/internal/domain"

	"github.com/oklog/ulid/v2"
)

// JobPosting is a scraped job advertisement. URL is the natural dedup key;
// the store enforces its uniqueness, never the application code.
type JobPosting struct {
	ID          string
	Title       string
	Company     string
	Location    string
	Description string
	URL         string
	PostedAt    string
	CreatedAt   time.Time
	ReadAt      *time.Time
	ContentDoc  string
}

func NewJobPosting(title, company, location, description, url string) (*JobPosting, error) {
	if strings.TrimSpace(url) == "" {
		return nil, domain.ErrInvalidArgument
	}
	return &JobPosting{
		ID:          ulid.Make().String(),
		Title:       title,
		Company:     company,
		Location:    location,
		Description: description,
		URL:         url,
		CreatedAt:   time.Now(),
	}, nil
}

// Unread reports whether the posting has not yet been surfaced by the notifier.
func (p *JobPosting) Unread() bool { return p != nil && p.ReadAt == nil }

// JobPostingUserMap associates a posting with the user whose search surfaced it.
// The (UserID, JobPostingID) pair is the primary key.
type JobPostingUserMap struct {
	UserID       string
	JobPostingID string
}
