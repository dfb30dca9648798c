package crawler

import (
	"fmt"
	"net/url"

	"sjsage522/contestharvester/config"
	"sjsage522/contestharvester/logger"
)

// Source keys, also used on the command line
const (
	SourceContestKorea = "contestkorea"
	SourceICS          = "ics"
)

// SourceKeys lists the sources in the order they are harvested
var SourceKeys = []string{SourceContestKorea, SourceICS}

// CreateHarvesters creates one harvester per source, primary source first
func CreateHarvesters(cfg *config.Config, fetcher PageFetcher) []Harvester {
	harvesters := []Harvester{
		NewContestKoreaHarvester(cfg, fetcher),
		NewICSHarvester(cfg, fetcher),
	}

	for i, h := range harvesters {
		logger.Debug("Harvester %d: %s (%s)", i, h.GetName(), h.GetSource())
	}

	return harvesters
}

// CreateHarvester creates the harvester for a single source key
func CreateHarvester(cfg *config.Config, fetcher PageFetcher, source string) (Harvester, error) {
	switch source {
	case SourceContestKorea:
		return NewContestKoreaHarvester(cfg, fetcher), nil
	case SourceICS:
		return NewICSHarvester(cfg, fetcher), nil
	default:
		return nil, fmt.Errorf("unknown source %q (want one of %v)", source, SourceKeys)
	}
}

// NewContestKoreaHarvester walks the contestkorea.com list with a page parameter
func NewContestKoreaHarvester(cfg *config.Config, fetcher PageFetcher) *SourceHarvester {
	return NewSourceHarvester("ContestKoreaHarvester", &Walker{
		BaseCrawler: BaseCrawler{
			Source:  SourceContestKorea,
			BaseURL: cfg.ContestKoreaBaseURL,
			Fetcher: fetcher,
		},
		Paginator: ListParamPaginator{
			URL:       cfg.ContestKoreaURL,
			Params:    contestKoreaParams(),
			PageParam: "page",
		},
		Selectors: Selectors{
			Container:      "div.list_style_2",
			Item:           "li",
			ExcludeClasses: []string{"icon_1", "icon_2"},
		},
		Extractor: ContestKoreaExtractor{
			Source:            SourceContestKorea,
			BaseURL:           cfg.ContestKoreaBaseURL,
			LinkPrefix:        "/sub/",
			OrganizationLabel: "주최.",
			TargetLabel:       "대상.",
		},
		MaxPages:  cfg.ContestKoreaMaxPages,
		PageDelay: cfg.PageDelay,
	})
}

// NewICSHarvester walks the competitionsciences.org listing by its next links
func NewICSHarvester(cfg *config.Config, fetcher PageFetcher) *SourceHarvester {
	return NewSourceHarvester("ICSHarvester", &Walker{
		BaseCrawler: BaseCrawler{
			Source:  SourceICS,
			BaseURL: cfg.ICSBaseURL,
			Fetcher: fetcher,
		},
		Paginator: NextLinkPaginator{
			StartURL:     cfg.ICSURL,
			NextSelector: "div.nav-links a.next",
		},
		Selectors: Selectors{
			Item: "div.middle-wrapper",
		},
		Extractor: ICSExtractor{
			Source:  SourceICS,
			BaseURL: cfg.ICSBaseURL,
		},
		MaxPages:  cfg.ICSMaxPages,
		PageDelay: cfg.PageDelay,
	})
}

// contestKoreaParams is the fixed list query: all fields, newest first,
// categories 98, 27, 28 and 29.
func contestKoreaParams() url.Values {
	params := url.Values{}
	params.Set("displayrow", "12")
	params.Set("int_gbn", "1")
	params.Set("Txt_sGn", "1")
	params.Set("Txt_key", "all")
	params.Set("Txt_code1[0]", "98")
	params.Set("Txt_code1[1]", "27")
	params.Set("Txt_code1[2]", "28")
	params.Set("Txt_code1[3]", "29")
	params.Set("Txt_sortkey", "a.int_sort")
	params.Set("Txt_sortword", "desc")
	for _, empty := range []string{
		"Txt_word", "Txt_bcode", "Txt_aarea", "Txt_area", "Txt_host", "Txt_award",
		"Txt_award2", "Txt_code3", "Txt_tipyn", "Txt_comment", "Txt_resultyn", "Txt_actcode",
	} {
		params.Set(empty, "")
	}
	return params
}
