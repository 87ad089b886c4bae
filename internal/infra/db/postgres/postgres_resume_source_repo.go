package postgres

import (
	"context"

	"github.com/jackc/pgx/v4/pgxpool"

	"telegram-job-scout/internal/domain/model"
	"telegram-job-scout/internal/domain/ports/repository"
)

var _ repository.ResumeSourceRepository = (*PostgresResumeSourceRepo)(nil)

type PostgresResumeSourceRepo struct {
	pool *pgxpool.Pool
}

func NewPostgresResumeSourceRepo(pool *pgxpool.Pool) *PostgresResumeSourceRepo {
	return &PostgresResumeSourceRepo{pool: pool}
}

func (r *PostgresResumeSourceRepo) Save(ctx context.Context, tx repository.Tx, src *model.ResumeSource) error {
	const q = `
INSERT INTO resume_sources (id, user_id, source_file, original_file, created_at)
VALUES ($1,$2,$3,$4,$5);
`
	ex, err := pick(r.pool, tx)
	if err != nil {
		return err
	}
	if _, err = ex.Exec(ctx, q, src.ID, src.UserID, src.SourceFile, src.OriginalFile, src.CreatedAt); err != nil {
		return mapConstraintErr(err)
	}
	return nil
}

func (r *PostgresResumeSourceRepo) ListByUser(ctx context.Context, tx repository.Tx, userID string) ([]*model.ResumeSource, error) {
	const q = `
SELECT id, user_id, source_file, original_file, created_at
  FROM resume_sources WHERE user_id=$1 ORDER BY created_at;
`
	ex, err := pick(r.pool, tx)
	if err != nil {
		return nil, err
	}
	rows, err := ex.Query(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.ResumeSource
	for rows.Next() {
		var s model.ResumeSource
		if err := rows.Scan(&s.ID, &s.UserID, &s.SourceFile, &s.OriginalFile, &s.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, &s)
	}
	return out, rows.Err()
}
