package crawler

import (
	"bytes"
	"errors"
	"net/url"
	"strings"

	apperrors "sjsage522/contestharvester/pkg/errors"

	"github.com/PuerkitoBio/goquery"
)

// BaseCrawler provides common functionality for all page walkers
type BaseCrawler struct {
	Source  string
	BaseURL string
	Fetcher PageFetcher
}

// fetchDocument fetches one page and parses it. End-of-results is returned
// unchanged; every other failure is tagged with the source and page.
func (c *BaseCrawler) fetchDocument(pageURL string, page int) (*goquery.Document, error) {
	body, err := c.Fetcher.FetchPage(pageURL)
	if err != nil {
		if errors.Is(err, apperrors.ErrEndOfResults) {
			return nil, err
		}
		var he *apperrors.HarvestError
		if errors.As(err, &he) {
			he.Source = c.Source
			return nil, he.AtPage(page)
		}
		return nil, apperrors.NewNetwork(c.Source, "fetch failed", err).AtPage(page)
	}

	return c.createDocument(body, page)
}

// createDocument creates a goquery document from a page body
func (c *BaseCrawler) createDocument(body []byte, page int) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, apperrors.NewParsing(c.Source, "HTML parsing failed", err).AtPage(page)
	}
	return doc, nil
}

// resolveURL makes href absolute against base. Absolute hrefs are kept and
// scheme-relative ones take the base scheme. An empty href stays empty.
func resolveURL(base, href string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return ""
	}

	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	if ref.IsAbs() {
		return ref.String()
	}

	baseURL, err := url.Parse(base)
	if err != nil || base == "" {
		return href
	}
	return baseURL.ResolveReference(ref).String()
}
