package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/jimezsa/jobwatch/internal/models"
)

// File keeps the whole state in a single JSON document. Every mutation
// rewrites the document through a temp file and rename.
type File struct {
	path string
	now  func() time.Time

	mu  sync.Mutex
	doc fileDocument
}

type fileDocument struct {
	NextCompanyID int64              `json:"next_company_id"`
	NextJobID     int64              `json:"next_job_id"`
	Companies     []models.Company   `json:"companies"`
	Jobs          []models.StoredJob `json:"jobs"`
	Resume        *models.Resume     `json:"resume,omitempty"`
}

func OpenFile(path string) (*File, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("store path is required")
	}

	f := &File{path: path, now: time.Now}
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("read store: %w", err)
	case len(strings.TrimSpace(string(data))) > 0:
		if err := json.Unmarshal(data, &f.doc); err != nil {
			return nil, fmt.Errorf("decode store %s: %w", path, err)
		}
	}
	return f, nil
}

func (f *File) ListCompanies(_ context.Context) ([]models.Company, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]models.Company, len(f.doc.Companies))
	copy(out, f.doc.Companies)
	return out, nil
}

func (f *File) GetCompany(_ context.Context, id int64) (*models.Company, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	idx := f.companyIndex(id)
	if idx < 0 {
		return nil, ErrNotFound
	}
	company := f.doc.Companies[idx]
	return &company, nil
}

func (f *File) AddCompany(_ context.Context, name, careerURL string) (*models.Company, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, c := range f.doc.Companies {
		if c.CareerURL == careerURL {
			return nil, ErrDuplicateURL
		}
	}

	f.doc.NextCompanyID++
	company := models.Company{
		ID:        f.doc.NextCompanyID,
		Name:      name,
		CareerURL: careerURL,
		CreatedAt: f.now().UTC(),
	}
	f.doc.Companies = append(f.doc.Companies, company)
	if err := f.flush(); err != nil {
		return nil, err
	}
	return &company, nil
}

func (f *File) RemoveCompany(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	idx := f.companyIndex(id)
	if idx < 0 {
		return ErrNotFound
	}
	f.doc.Companies = append(f.doc.Companies[:idx:idx], f.doc.Companies[idx+1:]...)

	jobs := f.doc.Jobs[:0:0]
	for _, job := range f.doc.Jobs {
		if job.CompanyID != id {
			jobs = append(jobs, job)
		}
	}
	f.doc.Jobs = jobs
	return f.flush()
}

func (f *File) JobsForCompany(_ context.Context, companyID int64) ([]models.StoredJob, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := []models.StoredJob{}
	for _, job := range f.doc.Jobs {
		if job.CompanyID == companyID {
			out = append(out, f.withCompanyName(job))
		}
	}
	return out, nil
}

func (f *File) ListJobs(_ context.Context, onlyNew bool) ([]models.StoredJob, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := []models.StoredJob{}
	for _, job := range f.doc.Jobs {
		if onlyNew && !job.IsNew {
			continue
		}
		out = append(out, f.withCompanyName(job))
	}
	return out, nil
}

func (f *File) MarkJobsSeen(_ context.Context, ids []int64) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	wanted := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		wanted[id] = struct{}{}
	}

	changed := 0
	for i := range f.doc.Jobs {
		if _, ok := wanted[f.doc.Jobs[i].ID]; ok && f.doc.Jobs[i].IsNew {
			f.doc.Jobs[i].IsNew = false
			changed++
		}
	}
	if changed == 0 {
		return 0, nil
	}
	return changed, f.flush()
}

func (f *File) CommitScan(_ context.Context, batch ScanBatch) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	snapshot := f.doc
	snapshot.Companies = append([]models.Company(nil), f.doc.Companies...)
	snapshot.Jobs = append([]models.StoredJob(nil), f.doc.Jobs...)

	checkedAt := batch.CheckedAt.UTC()
	inserted := 0
	for _, scan := range batch.Companies {
		idx := f.companyIndex(scan.CompanyID)
		if idx < 0 {
			continue
		}
		for _, listing := range scan.Listings {
			if listing.ExternalID != "" && f.hasExternalID(scan.CompanyID, listing.ExternalID) {
				continue
			}
			f.doc.NextJobID++
			f.doc.Jobs = append(f.doc.Jobs, models.StoredJob{
				ID:          f.doc.NextJobID,
				CompanyID:   scan.CompanyID,
				ExternalID:  listing.ExternalID,
				Title:       listing.Title,
				URL:         listing.URL,
				Description: listing.Description,
				PostedAt:    listing.PostedAt,
				FirstSeenAt: checkedAt,
				IsNew:       true,
			})
			inserted++
		}
		f.doc.Companies[idx].LastCheckedAt = &checkedAt
	}

	if err := f.flush(); err != nil {
		f.doc = snapshot
		return 0, err
	}
	return inserted, nil
}

func (f *File) Resume(_ context.Context) (*models.Resume, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.doc.Resume == nil {
		return nil, ErrNotFound
	}
	resume := *f.doc.Resume
	return &resume, nil
}

func (f *File) SaveResume(_ context.Context, resume models.Resume) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	previous := f.doc.Resume
	if resume.UploadedAt.IsZero() {
		resume.UploadedAt = f.now().UTC()
	}
	f.doc.Resume = &resume
	if err := f.flush(); err != nil {
		f.doc.Resume = previous
		return err
	}
	return nil
}

func (f *File) Close() error {
	return nil
}

func (f *File) companyIndex(id int64) int {
	for i, c := range f.doc.Companies {
		if c.ID == id {
			return i
		}
	}
	return -1
}

func (f *File) hasExternalID(companyID int64, externalID string) bool {
	for _, job := range f.doc.Jobs {
		if job.CompanyID == companyID && job.ExternalID == externalID {
			return true
		}
	}
	return false
}

func (f *File) withCompanyName(job models.StoredJob) models.StoredJob {
	if idx := f.companyIndex(job.CompanyID); idx >= 0 {
		job.CompanyName = f.doc.Companies[idx].Name
	}
	return job
}

// flush writes the document. Callers hold f.mu.
func (f *File) flush() error {
	sort.SliceStable(f.doc.Jobs, func(i, j int) bool { return f.doc.Jobs[i].ID < f.doc.Jobs[j].ID })

	data, err := json.MarshalIndent(f.doc, "", "  ")
	if err != nil {
		return err
	}

	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create store dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".jobwatch-*.json")
	if err != nil {
		return fmt.Errorf("create temp store: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(append(data, '\n')); err != nil {
		tmp.Close()
		return fmt.Errorf("write store: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write store: %w", err)
	}
	if err := os.Rename(tmp.Name(), f.path); err != nil {
		return fmt.Errorf("replace store: %w", err)
	}
	return nil
}
