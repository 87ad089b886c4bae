package postgres

import (
	"context"

	"github.com/jackc/pgx/v4/pgxpool"

	"telegram-job-scout/internal/domain/model"
	"telegram-job-scout/internal/domain/ports/repository"
)

var _ repository.JobPostingUserMapRepository = (*PostgresPostingUserMapRepo)(nil)

type PostgresPostingUserMapRepo struct {
	pool *pgxpool.Pool
}

func NewPostgresPostingUserMapRepo(pool *pgxpool.Pool) *PostgresPostingUserMapRepo {
	return &PostgresPostingUserMapRepo{pool: pool}
}

func (r *PostgresPostingUserMapRepo) Save(ctx context.Context, tx repository.Tx, m *model.JobPostingUserMap) error {
	const q = `
INSERT INTO job_postings_users_map (user_id, job_posting_id)
VALUES ($1,$2)
ON CONFLICT (user_id, job_posting_id) DO NOTHING;
`
	ex, err := pick(r.pool, tx)
	if err != nil {
		return err
	}
	if _, err = ex.Exec(ctx, q, m.UserID, m.JobPostingID); err != nil {
		return mapConstraintErr(err)
	}
	return nil
}

func (r *PostgresPostingUserMapRepo) ListPostingIDs(ctx context.Context, tx repository.Tx, userID string) ([]string, error) {
	ex, err := pick(r.pool, tx)
	if err != nil {
		return nil, err
	}
	rows, err := ex.Query(ctx, `SELECT job_posting_id FROM job_postings_users_map WHERE user_id=$1;`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}
