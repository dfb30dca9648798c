package crawler

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// ListParamPaginator numbers pages through a query parameter. Every other
// parameter is fixed, so requests differ only in the page number.
type ListParamPaginator struct {
	URL       string
	Params    url.Values
	PageParam string
}

// First returns the URL of page 1
func (p ListParamPaginator) First() string {
	return p.PageURL(1)
}

// Next always offers the following page; the walker stops on end-of-results.
func (p ListParamPaginator) Next(_ *goquery.Document, _ string, page int) (string, bool) {
	return p.PageURL(page + 1), true
}

// PageURL builds the URL for the given page number.
func (p ListParamPaginator) PageURL(page int) string {
	params := url.Values{}
	for k, v := range p.Params {
		params[k] = append([]string(nil), v...)
	}
	params.Set(p.PageParam, strconv.Itoa(page))

	sep := "?"
	if strings.Contains(p.URL, "?") {
		sep = "&"
	}
	// Encode sorts by key
	return p.URL + sep + params.Encode()
}

// NextLinkPaginator follows the "next page" link of each page's navigation block.
type NextLinkPaginator struct {
	StartURL     string
	NextSelector string
}

// First returns the start URL
func (p NextLinkPaginator) First() string {
	return p.StartURL
}

// Next returns the resolved next-page link. A missing link, or one pointing
// back at the current page, ends pagination.
func (p NextLinkPaginator) Next(doc *goquery.Document, current string, _ int) (string, bool) {
	href, exists := doc.Find(p.NextSelector).First().Attr("href")
	if !exists {
		return "", false
	}

	next := resolveURL(current, href)
	if next == "" || next == current {
		return "", false
	}
	return next, true
}
