package crawler

import (
	"errors"
	"time"

	"sjsage522/contestharvester/logger"
	apperrors "sjsage522/contestharvester/pkg/errors"

	"github.com/PuerkitoBio/goquery"
)

// WalkStatus tells how a walk ended
type WalkStatus int

const (
	// WalkEndOfResults means the source ran out of pages
	WalkEndOfResults WalkStatus = iota
	// WalkBudgetExhausted means MaxPages pages were fetched
	WalkBudgetExhausted
	// WalkAborted means a hard failure stopped the walk
	WalkAborted
)

func (s WalkStatus) String() string {
	switch s {
	case WalkEndOfResults:
		return "end_of_results"
	case WalkBudgetExhausted:
		return "budget_exhausted"
	case WalkAborted:
		return "aborted"
	default:
		return "unknown"
	}
}

// WalkResult is what a walk accumulated
type WalkResult struct {
	Records []ListingRecord
	// Pages counts fetches issued, including the one that signalled the end
	Pages  int
	Status WalkStatus
}

// Walker visits the pages of one source in order and extracts every listing.
type Walker struct {
	BaseCrawler
	Paginator Paginator
	Selectors Selectors
	Extractor Extractor
	// MaxPages bounds the number of fetches; 0 means unbounded
	MaxPages int
	// PageDelay is the pause before every fetch after the first
	PageDelay time.Duration

	sleep func(time.Duration)
}

// Walk runs the walk with the source logger.
func (w *Walker) Walk() (WalkResult, error) {
	return w.walk(logger.ForSource(w.Source))
}

func (w *Walker) walk(log *logger.Logger) (WalkResult, error) {
	result := WalkResult{Records: []ListingRecord{}}
	pageURL := w.Paginator.First()
	visited := map[string]bool{pageURL: true}

	for page := 1; ; page++ {
		if w.MaxPages > 0 && page > w.MaxPages {
			log.Info().Int("max_pages", w.MaxPages).Msg("Page budget exhausted")
			result.Status = WalkBudgetExhausted
			return result, nil
		}

		if page > 1 && w.PageDelay > 0 {
			w.pause(w.PageDelay)
		}

		result.Pages++
		log.Debug().Int("page", page).Str("url", pageURL).Msg("Fetching page")

		doc, err := w.fetchDocument(pageURL, page)
		if errors.Is(err, apperrors.ErrEndOfResults) {
			log.Info().Int("page", page).Msg("Reached end of available pages")
			result.Status = WalkEndOfResults
			return result, nil
		}
		if err != nil {
			log.Error().Err(err).Int("page", page).Msg("Page fetch failed")
			result.Status = WalkAborted
			return result, err
		}

		items, found := w.findItems(doc)
		if !found {
			log.Info().Int("page", page).Msg("No listing container found")
			result.Status = WalkEndOfResults
			return result, nil
		}
		if items.Length() == 0 {
			log.Info().Int("page", page).Msg("No listing items found")
			result.Status = WalkEndOfResults
			return result, nil
		}

		log.Info().Int("page", page).Int("items", items.Length()).Msg("Found listing items")
		result.Records = append(result.Records, w.extractAll(log, items, page)...)

		next, ok := w.Paginator.Next(doc, pageURL, page)
		if !ok {
			log.Info().Int("page", page).Msg("No next page link")
			result.Status = WalkEndOfResults
			return result, nil
		}
		// unbounded walks must not follow a link cycle
		if visited[next] {
			log.Warn().Int("page", page).Str("url", next).Msg("Next page already visited")
			result.Status = WalkEndOfResults
			return result, nil
		}
		visited[next] = true
		pageURL = next
	}
}

// findItems locates the container and the non-excluded items inside it.
func (w *Walker) findItems(doc *goquery.Document) (*goquery.Selection, bool) {
	container := doc.Selection
	if w.Selectors.Container != "" {
		container = doc.Find(w.Selectors.Container).First()
		if container.Length() == 0 {
			return nil, false
		}
	}

	items := container.Find(w.Selectors.Item).FilterFunction(func(_ int, s *goquery.Selection) bool {
		for _, class := range w.Selectors.ExcludeClasses {
			if s.HasClass(class) {
				return false
			}
		}
		return true
	})
	return items, true
}

// extractAll runs the extractor over items in document order. Rejected items
// are logged and skipped.
func (w *Walker) extractAll(log *logger.Logger, items *goquery.Selection, page int) []ListingRecord {
	var records []ListingRecord
	items.Each(func(i int, s *goquery.Selection) {
		record, err := w.Extractor.Extract(s)
		if err != nil {
			log.Warn().Err(err).Int("page", page).Int("item", i).Msg("Skipping listing item")
			return
		}
		if record == nil {
			return
		}
		log.Debug().Str("title", record.Title).Msg("Processed listing")
		records = append(records, *record)
	})
	return records
}

func (w *Walker) pause(d time.Duration) {
	if w.sleep != nil {
		w.sleep(d)
		return
	}
	time.Sleep(d)
}
