package repository

import (
	"context"

	"telegram-job-scout/internal/domain/model"
)

type UserRepository interface {
	Save(ctx context.Context, tx Tx, u *model.User) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.User, error)
	ListAll(ctx context.Context, tx Tx) ([]*model.User, error)
	UpdateResumeFile(ctx context.Context, tx Tx, id, resumeFile string) error
	Delete(ctx context.Context, tx Tx, id string) error
	CountUsers(ctx context.Context, tx Tx) (int, error)
}
