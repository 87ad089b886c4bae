package usecase

import (
	"context"

	"github.com/rs/zerolog"

	"telegram-job-scout/internal/domain/model"
	"telegram-job-scout/internal/domain/ports/repository"
	"telegram-job-scout/internal/infra/logging"
)

// Compile-time check
var _ PostingUseCase = (*postingUC)(nil)

// PostingUseCase is the read path over stored postings.
type PostingUseCase interface {
	Latest(ctx context.Context, limit int) ([]*model.JobPosting, error)
	ListByUser(ctx context.Context, userID string) ([]*model.JobPosting, error)
	Get(ctx context.Context, id string) (*model.JobPosting, error)
}

type postingUC struct {
	postings repository.JobPostingRepository
	log      *zerolog.Logger
}

func NewPostingUseCase(postings repository.JobPostingRepository, logger *zerolog.Logger) *postingUC {
	l := logger.With().Str("component", "posting-uc").Logger()
	return &postingUC{postings: postings, log: &l}
}

func (p *postingUC) Latest(ctx context.Context, limit int) ([]*model.JobPosting, error) {
	defer logging.TraceDuration(p.log, "PostingUC.Latest")()
	return p.postings.Latest(ctx, repository.NoTX, limit)
}

func (p *postingUC) ListByUser(ctx context.Context, userID string) ([]*model.JobPosting, error) {
	defer logging.TraceDuration(p.log, "PostingUC.ListByUser")()
	return p.postings.ListByUser(ctx, repository.NoTX, userID)
}

func (p *postingUC) Get(ctx context.Context, id string) (*model.JobPosting, error) {
	defer logging.TraceDuration(p.log, "PostingUC.Get")()
	return p.postings.FindByID(ctx, repository.NoTX, id)
}
