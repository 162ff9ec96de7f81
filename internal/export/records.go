package export

import (
	"io"
	"strconv"
	"time"

	"github.com/jimezsa/jobwatch/internal/models"
	"github.com/jimezsa/jobwatch/internal/oracle"
)

func WriteListings(w io.Writer, listings []models.Listing, format Format, opts WriteOptions) error {
	s := sheet{
		columns: []column{{name: "title"}, {name: "url", link: true}, {name: "external_id"}, {name: "posted_at"}, {name: "description", wide: true}},
		heading: 0,
		sub:     -1,
	}
	for _, l := range listings {
		s.rows = append(s.rows, []string{l.Title, l.URL, l.ExternalID, timeString(l.PostedAt), l.Description})
	}
	return write(w, nonNil(listings), s, format, opts)
}

func WriteNewJobs(w io.Writer, jobs []models.NewJob, format Format, opts WriteOptions) error {
	s := sheet{
		columns: []column{{name: "company"}, {name: "title"}, {name: "url", link: true}, {name: "posted_at"}},
		heading: 1,
		sub:     0,
	}
	for _, j := range jobs {
		s.rows = append(s.rows, []string{j.Company, j.Title, j.URL, timeString(j.PostedAt)})
	}
	return write(w, nonNil(jobs), s, format, opts)
}

func WriteRanked(w io.Writer, results []models.RankedResult, format Format, opts WriteOptions) error {
	s := sheet{
		columns: []column{
			{name: "rank"}, {name: "combined_score"}, {name: "score"}, {name: "title"}, {name: "company"},
			{name: "url", link: true}, {name: "reason"}, {name: "posted_at", wide: true}, {name: "job_id", wide: true},
		},
		heading: 3,
		sub:     4,
	}
	for i, r := range results {
		s.rows = append(s.rows, []string{
			strconv.Itoa(i + 1),
			strconv.FormatFloat(r.CombinedScore, 'f', 1, 64),
			strconv.FormatFloat(r.RelevanceScore, 'f', -1, 64),
			r.Title,
			r.Company,
			r.URL,
			r.Reason,
			timeString(r.PostedAt),
			strconv.FormatInt(r.JobID, 10),
		})
	}
	return write(w, nonNil(results), s, format, opts)
}

func WriteCompanies(w io.Writer, companies []models.Company, format Format, opts WriteOptions) error {
	s := sheet{
		columns: []column{{name: "id"}, {name: "name"}, {name: "career_url", link: true}, {name: "last_checked_at"}, {name: "created_at", wide: true}},
		heading: 1,
		sub:     -1,
	}
	for _, c := range companies {
		created := ""
		if !c.CreatedAt.IsZero() {
			created = c.CreatedAt.Format(time.RFC3339)
		}
		s.rows = append(s.rows, []string{strconv.FormatInt(c.ID, 10), c.Name, c.CareerURL, timeString(c.LastCheckedAt), created})
	}
	return write(w, nonNil(companies), s, format, opts)
}

func WriteStoredJobs(w io.Writer, jobs []models.StoredJob, format Format, opts WriteOptions) error {
	s := sheet{
		columns: []column{
			{name: "id"}, {name: "new"}, {name: "company"}, {name: "title"}, {name: "url", link: true},
			{name: "posted_at"}, {name: "first_seen_at", wide: true}, {name: "external_id", wide: true},
		},
		heading: 3,
		sub:     2,
	}
	for _, j := range jobs {
		s.rows = append(s.rows, []string{
			strconv.FormatInt(j.ID, 10),
			boolString(j.IsNew),
			j.CompanyName,
			j.Title,
			j.URL,
			timeString(j.PostedAt),
			j.FirstSeenAt.Format(time.RFC3339),
			j.ExternalID,
		})
	}
	return write(w, nonNil(jobs), s, format, opts)
}

func WriteTitleMatches(w io.Writer, matches []oracle.TitleMatch, format Format, opts WriteOptions) error {
	s := sheet{
		columns: []column{{name: "title"}, {name: "relevance"}, {name: "url", link: true}},
		heading: 0,
		sub:     1,
	}
	for _, m := range matches {
		s.rows = append(s.rows, []string{m.Title, m.Relevance, m.URL})
	}
	return write(w, nonNil(matches), s, format, opts)
}

// ProxyCheck is the outcome of probing one proxy.
type ProxyCheck struct {
	Proxy     string `json:"proxy"`
	Status    string `json:"status"`
	LatencyMS int64  `json:"latency_ms"`
	Error     string `json:"error,omitempty"`
}

func WriteProxyChecks(w io.Writer, checks []ProxyCheck, format Format, opts WriteOptions) error {
	s := sheet{
		columns: []column{{name: "proxy"}, {name: "status"}, {name: "latency_ms"}, {name: "error"}},
		heading: 0,
		sub:     1,
	}
	for _, c := range checks {
		s.rows = append(s.rows, []string{c.Proxy, c.Status, strconv.FormatInt(c.LatencyMS, 10), c.Error})
	}
	return write(w, nonNil(checks), s, format, opts)
}

func timeString(t *time.Time) string {
	if t == nil || t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339)
}

func boolString(value bool) string {
	if value {
		return "true"
	}
	return "false"
}

// nonNil makes empty results encode as [] rather than null.
func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
