package scraper

import "regexp"

var (
	pathIDPattern  = regexp.MustCompile(`/(?:jobs?|positions?|openings?)/(\w+-?\w+)`)
	queryIDPattern = regexp.MustCompile(`[?&](?:id|jobId|job_id)=(\w+)`)
)

// ExternalIDFromURL pulls a posting id from common career-site URL shapes
// such as /jobs/12345 or ?jobId=12345. The path form wins over the query form.
func ExternalIDFromURL(link string) string {
	if m := pathIDPattern.FindStringSubmatch(link); m != nil {
		return m[1]
	}
	if m := queryIDPattern.FindStringSubmatch(link); m != nil {
		return m[1]
	}
	return ""
}
