package crawler

import (
	"strings"

	"sjsage522/contestharvester/helpers"
	apperrors "sjsage522/contestharvester/pkg/errors"

	"github.com/PuerkitoBio/goquery"
)

// ICSExtractor reads one div.middle-wrapper card of the competitionsciences.org listing.
type ICSExtractor struct {
	Source  string
	BaseURL string
}

// Extract implements Extractor
func (e ICSExtractor) Extract(s *goquery.Selection) (*ListingRecord, error) {
	anchor := s.Find("h3").First().Find("a").First()
	title := strings.TrimSpace(anchor.Text())
	href, _ := anchor.Attr("href")
	link := resolveURL(e.BaseURL, href)
	if title == "" || link == "" {
		return nil, apperrors.NewExtraction(e.Source, "title or link not found")
	}

	return &ListingRecord{
		Category:     helpers.OrNotAvailable(helpers.CollapseSpaces(s.Find("p.categories span").First().Text())),
		Title:        helpers.CollapseSpaces(title),
		Organization: helpers.NotAvailable,
		Target:       helpers.OrNotAvailable(helpers.CollapseSpaces(s.Find("p.ages span").First().Text())),
		DateInfo:     helpers.NotAvailable,
		DaysLeft:     0,
		Link:         link,
	}, nil
}
