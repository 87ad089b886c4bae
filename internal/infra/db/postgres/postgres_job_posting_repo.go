package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"telegram-job-scout/internal/domain"
	"telegram-job-scout/internal/domain/model"
	"telegram-job-scout/internal/domain/ports/repository"
)

var _ repository.JobPostingRepository = (*PostgresJobPostingRepo)(nil)

type PostgresJobPostingRepo struct {
	pool *pgxpool.Pool
}

func NewPostgresJobPostingRepo(pool *pgxpool.Pool) *PostgresJobPostingRepo {
	return &PostgresJobPostingRepo{pool: pool}
}

const postingColumns = `id, title, company, location, description, url, posted_at, created_at, read_at, content_doc`

func scanPosting(row pgx.Row) (*model.JobPosting, error) {
	var p model.JobPosting
	err := row.Scan(&p.ID, &p.Title, &p.Company, &p.Location, &p.Description,
		&p.URL, &p.PostedAt, &p.CreatedAt, &p.ReadAt, &p.ContentDoc)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

// SaveMany inserts postings one by one, skipping rows whose url already
// exists. Duplicates are silent; callers never learn which rows were new.
func (r *PostgresJobPostingRepo) SaveMany(ctx context.Context, tx repository.Tx, postings []*model.JobPosting) error {
	const q = `
INSERT INTO job_postings (id, title, company, location, description, url, posted_at, created_at, read_at, content_doc)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
ON CONFLICT (url) DO NOTHING;
`
	ex, err := pick(r.pool, tx)
	if err != nil {
		return err
	}
	for _, p := range postings {
		if _, err := ex.Exec(ctx, q, p.ID, p.Title, p.Company, p.Location, p.Description,
			p.URL, p.PostedAt, p.CreatedAt, p.ReadAt, p.ContentDoc); err != nil {
			return fmt.Errorf("save posting %s: %w", p.URL, err)
		}
	}
	return nil
}

func (r *PostgresJobPostingRepo) FindOldestUnread(ctx context.Context, tx repository.Tx) (*model.JobPosting, error) {
	q := `SELECT ` + postingColumns + ` FROM job_postings WHERE read_at IS NULL ORDER BY created_at ASC LIMIT 1;`
	ex, err := pick(r.pool, tx)
	if err != nil {
		return nil, err
	}
	p, err := scanPosting(ex.QueryRow(ctx, q))
	if err == domain.ErrNotFound {
		return nil, domain.ErrNoUnread
	}
	return p, err
}

// MarkRead is idempotent: re-marking an already read posting is a no-op,
// and the original read_at timestamp is kept. Only an unknown url errors.
func (r *PostgresJobPostingRepo) MarkRead(ctx context.Context, tx repository.Tx, url string) error {
	ex, err := pick(r.pool, tx)
	if err != nil {
		return err
	}
	tag, err := ex.Exec(ctx, `UPDATE job_postings SET read_at=now() WHERE url=$1 AND read_at IS NULL;`, url)
	if err != nil {
		return err
	}
	if tag.RowsAffected() > 0 {
		return nil
	}
	var exists bool
	if err := ex.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM job_postings WHERE url=$1);`, url).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return domain.ErrNotFound
	}
	return nil
}

func (r *PostgresJobPostingRepo) UpdateContentDoc(ctx context.Context, tx repository.Tx, id, contentDoc string) error {
	ex, err := pick(r.pool, tx)
	if err != nil {
		return err
	}
	tag, err := ex.Exec(ctx, `UPDATE job_postings SET content_doc=$2 WHERE id=$1;`, id, contentDoc)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *PostgresJobPostingRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.JobPosting, error) {
	q := `SELECT ` + postingColumns + ` FROM job_postings WHERE id=$1;`
	ex, err := pick(r.pool, tx)
	if err != nil {
		return nil, err
	}
	return scanPosting(ex.QueryRow(ctx, q, id))
}

func (r *PostgresJobPostingRepo) FindByURL(ctx context.Context, tx repository.Tx, url string) (*model.JobPosting, error) {
	q := `SELECT ` + postingColumns + ` FROM job_postings WHERE url=$1;`
	ex, err := pick(r.pool, tx)
	if err != nil {
		return nil, err
	}
	return scanPosting(ex.QueryRow(ctx, q, url))
}

func (r *PostgresJobPostingRepo) Latest(ctx context.Context, tx repository.Tx, limit int) ([]*model.JobPosting, error) {
	if limit <= 0 {
		limit = 10
	}
	q := `SELECT ` + postingColumns + ` FROM job_postings ORDER BY created_at DESC LIMIT $1;`
	ex, err := pick(r.pool, tx)
	if err != nil {
		return nil, err
	}
	rows, err := ex.Query(ctx, q, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectPostings(rows)
}

func (r *PostgresJobPostingRepo) ListByUser(ctx context.Context, tx repository.Tx, userID string) ([]*model.JobPosting, error) {
	q := `
SELECT p.id, p.title, p.company, p.location, p.description, p.url, p.posted_at, p.created_at, p.read_at, p.content_doc
  FROM job_postings p
  JOIN job_postings_users_map m ON m.job_posting_id = p.id
 WHERE m.user_id = $1
 ORDER BY p.created_at DESC;
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
	return collectPostings(rows)
}

func collectPostings(rows pgx.Rows) ([]*model.JobPosting, error) {
	var out []*model.JobPosting
	for rows.Next() {
		var p model.JobPosting
		if err := rows.Scan(&p.ID, &p.Title, &p.Company, &p.Location, &p.Description,
			&p.URL, &p.PostedAt, &p.CreatedAt, &p.ReadAt, &p.ContentDoc); err != nil {
			return nil, err
		}
		out = append(out, &p)
	}
	return out, rows.Err()
}
