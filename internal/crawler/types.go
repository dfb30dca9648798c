package crawler

import "github.com/PuerkitoBio/goquery"

// ListingRecord represents one scraped contest or competition.
// JSON keys match the snapshot files written by earlier versions of the tool.
type ListingRecord struct {
	Category     string `json:"Category"`
	Title        string `json:"Title"`
	Organization string `json:"Organization"`
	Target       string `json:"Target"`
	DateInfo     string `json:"Date Info"`
	DaysLeft     int    `json:"D-Day"`
	Link         string `json:"Link"`
}

// Harvester interface defines the contract for all source harvesters
type Harvester interface {
	// Harvest walks every page of a source and returns the complete record set.
	// On error nothing is returned; partial results are dropped.
	Harvest() ([]ListingRecord, error)

	// GetName returns the harvester's name for logging and identification
	GetName() string

	// GetSource returns the source key, e.g. "contestkorea"
	GetSource() string
}

// PageFetcher fetches the UTF-8 body of one listing page.
type PageFetcher interface {
	FetchPage(url string) ([]byte, error)
}

// Extractor turns one listing element into a record. An error rejects the item.
type Extractor interface {
	Extract(s *goquery.Selection) (*ListingRecord, error)
}

// Paginator yields the page URLs of one source.
type Paginator interface {
	// First returns the URL of page 1
	First() string

	// Next returns the URL following the given page, or false when there is none
	Next(doc *goquery.Document, current string, page int) (string, bool)
}

// Selectors contains CSS selectors locating listing items on a page
type Selectors struct {
	// Container must match for the page to count as a listing page. Empty means the whole document.
	Container string
	// Item matches the listing elements inside the container
	Item string
	// ExcludeClasses drops items carrying any of these classes (icons, decorations)
	ExcludeClasses []string
}
