package store

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jimezsa/jobwatch/internal/models"
)

//go:embed schema.sql
var schema string

const uniqueViolation = "23505"

const jobColumns = `j.id, j.company_id, c.name, COALESCE(j.external_id, ''), j.title,
	COALESCE(j.url, ''), COALESCE(j.description, ''), j.posted_at, j.first_seen_at, j.is_new`

// Postgres stores state in PostgreSQL through a pgx pool.
type Postgres struct {
	pool *pgxpool.Pool
}

// OpenPostgres connects, verifies the connection and applies the schema.
func OpenPostgres(ctx context.Context, databaseURL string) (*Postgres, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}
	return &Postgres{pool: pool}, nil
}

func (p *Postgres) ListCompanies(ctx context.Context) ([]models.Company, error) {
	rows, err := p.pool.Query(ctx,
		`SELECT id, name, career_url, created_at, last_checked_at FROM companies ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query companies: %w", err)
	}
	defer rows.Close()

	companies := []models.Company{}
	for rows.Next() {
		var c models.Company
		if err := rows.Scan(&c.ID, &c.Name, &c.CareerURL, &c.CreatedAt, &c.LastCheckedAt); err != nil {
			return nil, fmt.Errorf("scan company: %w", err)
		}
		companies = append(companies, c)
	}
	return companies, rows.Err()
}

func (p *Postgres) GetCompany(ctx context.Context, id int64) (*models.Company, error) {
	var c models.Company
	err := p.pool.QueryRow(ctx,
		`SELECT id, name, career_url, created_at, last_checked_at FROM companies WHERE id = $1`, id,
	).Scan(&c.ID, &c.Name, &c.CareerURL, &c.CreatedAt, &c.LastCheckedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get company %d: %w", id, err)
	}
	return &c, nil
}

func (p *Postgres) AddCompany(ctx context.Context, name, careerURL string) (*models.Company, error) {
	c := models.Company{Name: name, CareerURL: careerURL}
	err := p.pool.QueryRow(ctx,
		`INSERT INTO companies (name, career_url) VALUES ($1, $2) RETURNING id, created_at`,
		name, careerURL,
	).Scan(&c.ID, &c.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, ErrDuplicateURL
		}
		return nil, fmt.Errorf("insert company: %w", err)
	}
	return &c, nil
}

func (p *Postgres) RemoveCompany(ctx context.Context, id int64) error {
	tag, err := p.pool.Exec(ctx, `DELETE FROM companies WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete company %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (p *Postgres) JobsForCompany(ctx context.Context, companyID int64) ([]models.StoredJob, error) {
	return p.queryJobs(ctx,
		`SELECT `+jobColumns+` FROM jobs j JOIN companies c ON c.id = j.company_id
		 WHERE j.company_id = $1 ORDER BY j.id`, companyID)
}

func (p *Postgres) ListJobs(ctx context.Context, onlyNew bool) ([]models.StoredJob, error) {
	return p.queryJobs(ctx,
		`SELECT `+jobColumns+` FROM jobs j JOIN companies c ON c.id = j.company_id
		 WHERE NOT $1 OR j.is_new ORDER BY j.id`, onlyNew)
}

func (p *Postgres) queryJobs(ctx context.Context, sql string, args ...any) ([]models.StoredJob, error) {
	rows, err := p.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("query jobs: %w", err)
	}
	defer rows.Close()

	jobs := []models.StoredJob{}
	for rows.Next() {
		var j models.StoredJob
		if err := rows.Scan(
			&j.ID, &j.CompanyID, &j.CompanyName, &j.ExternalID, &j.Title,
			&j.URL, &j.Description, &j.PostedAt, &j.FirstSeenAt, &j.IsNew,
		); err != nil {
			return nil, fmt.Errorf("scan job: %w", err)
		}
		jobs = append(jobs, j)
	}
	return jobs, rows.Err()
}

func (p *Postgres) MarkJobsSeen(ctx context.Context, ids []int64) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	tag, err := p.pool.Exec(ctx, `UPDATE jobs SET is_new = FALSE WHERE is_new AND id = ANY($1)`, ids)
	if err != nil {
		return 0, fmt.Errorf("mark jobs seen: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

func (p *Postgres) CommitScan(ctx context.Context, batch ScanBatch) (int, error) {
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin scan commit: %w", err)
	}
	defer tx.Rollback(ctx)

	inserted := 0
	for _, scan := range batch.Companies {
		for _, l := range scan.Listings {
			tag, err := tx.Exec(ctx,
				`INSERT INTO jobs (company_id, external_id, title, url, description, posted_at, first_seen_at, is_new)
				 VALUES ($1, NULLIF($2, ''), $3, NULLIF($4, ''), NULLIF($5, ''), $6, $7, TRUE)
				 ON CONFLICT (company_id, external_id) DO NOTHING`,
				scan.CompanyID, l.ExternalID, l.Title, l.URL, l.Description, l.PostedAt, batch.CheckedAt,
			)
			if err != nil {
				return 0, fmt.Errorf("insert job for company %d: %w", scan.CompanyID, err)
			}
			inserted += int(tag.RowsAffected())
		}

		if _, err := tx.Exec(ctx,
			`UPDATE companies SET last_checked_at = $1 WHERE id = $2`, batch.CheckedAt, scan.CompanyID,
		); err != nil {
			return 0, fmt.Errorf("update company %d: %w", scan.CompanyID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit scan: %w", err)
	}
	return inserted, nil
}

func (p *Postgres) Resume(ctx context.Context) (*models.Resume, error) {
	var r models.Resume
	err := p.pool.QueryRow(ctx,
		`SELECT COALESCE(filename, ''), content, uploaded_at FROM resumes WHERE id = 1`,
	).Scan(&r.Filename, &r.Content, &r.UploadedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get resume: %w", err)
	}
	return &r, nil
}

func (p *Postgres) SaveResume(ctx context.Context, resume models.Resume) error {
	_, err := p.pool.Exec(ctx,
		`INSERT INTO resumes (id, filename, content, uploaded_at)
		 VALUES (1, NULLIF($1, ''), $2, COALESCE($3, NOW()))
		 ON CONFLICT (id) DO UPDATE
		 SET filename = EXCLUDED.filename, content = EXCLUDED.content, uploaded_at = EXCLUDED.uploaded_at`,
		resume.Filename, resume.Content, nullTime(resume.UploadedAt),
	)
	if err != nil {
		return fmt.Errorf("save resume: %w", err)
	}
	return nil
}

func (p *Postgres) Close() error {
	p.pool.Close()
	return nil
}

func nullTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
