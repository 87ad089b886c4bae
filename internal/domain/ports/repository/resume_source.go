package repository

import (
	"context"

	"telegram-job-scout/internal/domain/model"
)

type ResumeSourceRepository interface {
	Save(ctx context.Context, tx Tx, src *model.ResumeSource) error
	ListByUser(ctx context.Context, tx Tx, userID string) ([]*model.ResumeSource, error)
}
