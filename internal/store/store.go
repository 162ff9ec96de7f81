// Package store persists tracked companies, their jobs and the resume.
package store

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jimezsa/jobwatch/internal/models"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrDuplicateURL = errors.New("career url is already tracked")
)

// Store is the persistence collaborator used by the tracker.
type Store interface {
	ListCompanies(ctx context.Context) ([]models.Company, error)
	GetCompany(ctx context.Context, id int64) (*models.Company, error)
	AddCompany(ctx context.Context, name, careerURL string) (*models.Company, error)
	// RemoveCompany deletes the company and all of its jobs.
	RemoveCompany(ctx context.Context, id int64) error

	JobsForCompany(ctx context.Context, companyID int64) ([]models.StoredJob, error)
	ListJobs(ctx context.Context, onlyNew bool) ([]models.StoredJob, error)
	// MarkJobsSeen clears the new flag and reports how many jobs changed.
	MarkJobsSeen(ctx context.Context, ids []int64) (int, error)
	// CommitScan stores every new listing and stamps every scanned company
	// in one atomic step. It reports how many jobs were inserted.
	CommitScan(ctx context.Context, batch ScanBatch) (int, error)

	// Resume returns ErrNotFound until a resume is saved.
	Resume(ctx context.Context) (*models.Resume, error)
	SaveResume(ctx context.Context, resume models.Resume) error

	Close() error
}

// ScanBatch is the outcome of one scan, committed all at once.
type ScanBatch struct {
	CheckedAt time.Time
	Companies []CompanyScan
}

// CompanyScan holds the new listings of a company that was fetched
// successfully. Companies whose fetch failed are left out.
type CompanyScan struct {
	CompanyID int64
	Listings  []models.Listing
}

type Options struct {
	DatabaseURL string
	Path        string
}

// Open returns a Postgres store when a database URL is configured and the
// JSON file store otherwise.
func Open(ctx context.Context, opts Options) (Store, error) {
	if dsn := strings.TrimSpace(opts.DatabaseURL); dsn != "" {
		return OpenPostgres(ctx, dsn)
	}
	return OpenFile(opts.Path)
}
