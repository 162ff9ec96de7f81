package scraper

import (
	"net/url"

	"github.com/PuerkitoBio/goquery"
	"github.com/jimezsa/jobwatch/internal/models"
)

// Strategy pulls candidate listings out of a parsed page. base is nil when
// no usable base URL was supplied.
type Strategy interface {
	Name() string
	Extract(doc *goquery.Document, base *url.URL) []models.Listing
}
