package seen

import "github.com/jimezsa/jobwatch/internal/models"

const (
	externalPrefix = "eid:"
	titleURLPrefix = "tu:"
	keySeparator   = "\x00"
)

// Stats captures counts for one novelty pass.
type Stats struct {
	Scraped    int
	Known      int
	Duplicates int
	New        int
}

// MergeStats captures stats for offline history updates.
type MergeStats struct {
	TotalSeen  int
	TotalInput int
	Added      int
	TotalOut   int
}

// Key builds the identity key for a posting. A non-empty external id wins;
// otherwise title and url are compared exactly, without normalization. A
// stored job without an external id never matches a listing that has one.
func Key(externalID, title, url string) string {
	if externalID != "" {
		return externalPrefix + externalID
	}
	return titleURLPrefix + title + keySeparator + url
}

func KeyForListing(l models.Listing) string {
	return Key(l.ExternalID, l.Title, l.URL)
}

func KeyForStored(j models.StoredJob) string {
	return Key(j.ExternalID, j.Title, j.URL)
}

// DetectNew returns the scraped listings whose identity key is absent from
// existing, in scrape order. Repeats within scraped keep the first occurrence.
func DetectNew(existing []models.StoredJob, scraped []models.Listing) ([]models.Listing, Stats) {
	stats := Stats{Scraped: len(scraped)}

	known := make(map[string]struct{}, len(existing))
	for _, job := range existing {
		known[KeyForStored(job)] = struct{}{}
	}

	batch := make(map[string]struct{}, len(scraped))
	fresh := make([]models.Listing, 0, len(scraped))
	for _, listing := range scraped {
		key := KeyForListing(listing)
		if _, ok := known[key]; ok {
			stats.Known++
			continue
		}
		if _, ok := batch[key]; ok {
			stats.Duplicates++
			continue
		}
		batch[key] = struct{}{}
		fresh = append(fresh, listing)
	}

	stats.New = len(fresh)
	return fresh, stats
}

// Merge appends listings not yet in history. Existing entries win collisions.
func Merge(history []models.Listing, input []models.Listing) ([]models.Listing, MergeStats) {
	stats := MergeStats{
		TotalSeen:  len(history),
		TotalInput: len(input),
	}

	keys := make(map[string]struct{}, len(history)+len(input))
	out := make([]models.Listing, 0, len(history)+len(input))
	for _, listing := range history {
		key := KeyForListing(listing)
		if _, ok := keys[key]; ok {
			continue
		}
		keys[key] = struct{}{}
		out = append(out, listing)
	}

	for _, listing := range input {
		key := KeyForListing(listing)
		if _, ok := keys[key]; ok {
			continue
		}
		keys[key] = struct{}{}
		out = append(out, listing)
		stats.Added++
	}

	stats.TotalOut = len(out)
	return out, stats
}

// AsStored views listings as stored jobs so DetectNew can diff two listing
// files.
func AsStored(listings []models.Listing) []models.StoredJob {
	out := make([]models.StoredJob, 0, len(listings))
	for _, l := range listings {
		out = append(out, models.StoredJob{ExternalID: l.ExternalID, Title: l.Title, URL: l.URL})
	}
	return out
}
