package repository

import (
	"context"

	"telegram-job-scout/internal/domain/model"
)

// JobPostingRepository is the only write path into the job_postings table.
//
// SaveMany is insert-or-ignore keyed on url: a duplicate URL is a no-op, not
// an error, and nothing is reported about which rows were new. Callers that
// need the stored row must re-query by URL.
//
// MarkRead is idempotent: re-marking a read posting is a no-op that keeps
// the original read timestamp. Only an unknown url is ErrNotFound.
type JobPostingRepository interface {
	SaveMany(ctx context.Context, tx Tx, postings []*model.JobPosting) error
	FindOldestUnread(ctx context.Context, tx Tx) (*model.JobPosting, error)
	MarkRead(ctx context.Context, tx Tx, url string) error
	UpdateContentDoc(ctx context.Context, tx Tx, id, contentDoc string) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.JobPosting, error)
	FindByURL(ctx context.Context, tx Tx, url string) (*model.JobPosting, error)
	Latest(ctx context.Context, tx Tx, limit int) ([]*model.JobPosting, error)
	ListByUser(ctx context.Context, tx Tx, userID string) ([]*model.JobPosting, error)
}

// JobPostingUserMapRepository links postings to the users whose searches
// surfaced them. Save is insert-or-ignore on the pair.
type JobPostingUserMapRepository interface {
	Save(ctx context.Context, tx Tx, m *model.JobPostingUserMap) error
	ListPostingIDs(ctx context.Context, tx Tx, userID string) ([]string, error)
}
