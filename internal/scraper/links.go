package scraper

import (
	"net/url"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/jimezsa/jobwatch/internal/models"
)

const (
	minTitleRunes = 4
	maxTitleRunes = 199
)

var jobHintPattern = regexp.MustCompile(`(?i)job|posting|position|opening|career|vacancy|role`)

// LinkHeuristic treats anchors that look job-related (by their own or their
// parent's class, or by the href) as listings.
type LinkHeuristic struct{}

func (LinkHeuristic) Name() string {
	return "links"
}

func (LinkHeuristic) Extract(doc *goquery.Document, base *url.URL) []models.Listing {
	var listings []models.Listing

	doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href := strings.TrimSpace(a.AttrOr("href", ""))
		classes := a.AttrOr("class", "") + " " + a.Parent().AttrOr("class", "")
		if !jobHintPattern.MatchString(classes) && !jobHintPattern.MatchString(href) {
			return
		}

		// Whitespace runs inside the anchor text collapse to one space.
		title := cleanText(a.Text())
		if n := utf8.RuneCountInString(title); n < minTitleRunes || n > maxTitleRunes {
			return
		}

		link := resolveRootRelative(base, href)
		listings = append(listings, models.Listing{
			Title:      title,
			URL:        link,
			ExternalID: ExternalIDFromURL(link),
		})
	})

	return listings
}
