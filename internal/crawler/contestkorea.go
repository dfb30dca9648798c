package crawler

import (
	"strings"

	"sjsage522/contestharvester/helpers"
	apperrors "sjsage522/contestharvester/pkg/errors"

	"github.com/PuerkitoBio/goquery"
)

// ContestKoreaExtractor reads one <li> of the contestkorea.com list page.
type ContestKoreaExtractor struct {
	Source  string
	BaseURL string
	// LinkPrefix is the path every detail link lives under, e.g. "/sub/"
	LinkPrefix string
	// Labels stripped from the host block entries
	OrganizationLabel string
	TargetLabel       string
}

// Extract implements Extractor
func (e ContestKoreaExtractor) Extract(s *goquery.Selection) (*ListingRecord, error) {
	titleLink := s.Find("div.title").First().Find("a").First()
	if titleLink.Length() == 0 {
		return nil, apperrors.NewExtraction(e.Source, "title link not found")
	}

	categorySel := titleLink.Find("span.category").First()
	titleSel := titleLink.Find("span.txt").First()
	if categorySel.Length() == 0 || titleSel.Length() == 0 {
		return nil, apperrors.NewExtraction(e.Source, "category or title not found")
	}

	title := strings.TrimSpace(titleSel.Text())
	if title == "" {
		return nil, apperrors.NewExtraction(e.Source, "empty title")
	}

	href, _ := titleLink.Attr("href")
	link := e.resolveLink(href)
	if link == "" {
		return nil, apperrors.NewExtraction(e.Source, "empty link")
	}

	organization, target := e.hostInfo(s)

	return &ListingRecord{
		Category:     helpers.OrNotAvailable(strings.TrimSpace(categorySel.Text())),
		Title:        title,
		Organization: organization,
		Target:       target,
		DateInfo:     e.dateInfo(s),
		DaysLeft:     helpers.ParseDaysLeft(s.Find("div.d-day span.day").First().Text()),
		Link:         link,
	}, nil
}

// resolveLink puts relative hrefs under LinkPrefix, once, and makes them absolute.
func (e ContestKoreaExtractor) resolveLink(href string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return ""
	}
	if strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://") {
		return href
	}

	path := "/" + strings.TrimLeft(href, "/")
	if e.LinkPrefix != "" && !strings.HasPrefix(path, e.LinkPrefix) {
		path = strings.TrimRight(e.LinkPrefix, "/") + path
	}
	return resolveURL(e.BaseURL, path)
}

func (e ContestKoreaExtractor) hostInfo(s *goquery.Selection) (string, string) {
	organization, target := helpers.NotAvailable, helpers.NotAvailable

	host := s.Find("ul.host").First()
	if host.Length() == 0 {
		return organization, target
	}
	if li := host.Find("li.icon_1").First(); li.Length() > 0 {
		organization = helpers.OrNotAvailable(helpers.StripLabel(li.Text(), e.OrganizationLabel))
	}
	if li := host.Find("li.icon_2").First(); li.Length() > 0 {
		target = helpers.OrNotAvailable(helpers.StripLabel(li.Text(), e.TargetLabel))
	}
	return organization, target
}

// dateInfo joins the "<stage>: <date>" pairs of the date block with " | ".
func (e ContestKoreaExtractor) dateInfo(s *goquery.Selection) string {
	var dates []string
	s.Find("div.date").First().Find("span").Each(func(_ int, span *goquery.Selection) {
		step := span.Find("em").First()
		if step.Length() == 0 {
			return
		}
		stepText := strings.TrimSpace(step.Text())
		date := span.Text()
		if stepText != "" {
			date = strings.ReplaceAll(date, stepText, "")
		}
		dates = append(dates, stepText+": "+strings.TrimSpace(date))
	})

	if len(dates) == 0 {
		return helpers.NotAvailable
	}
	return strings.Join(dates, " | ")
}
