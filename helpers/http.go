package helpers

import (
	"bytes"
	"fmt"
	"io"
	mathrand "math/rand"
	"net/http"
	"time"

	apperrors "sjsage522/contestharvester/pkg/errors"

	"golang.org/x/net/html/charset"
)

// HTTP header configurations
var (
	userAgents = []string{
		"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36",
		"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.4 Safari/605.1.15",
	}
)

// DefaultTimeout is the per-request timeout used when none is configured.
const DefaultTimeout = 10 * time.Second

// PageFetcher performs single GET requests against listing pages.
type PageFetcher struct {
	client *http.Client
	rnd    *mathrand.Rand
}

// NewPageFetcher creates a fetcher whose requests give up after timeout.
func NewPageFetcher(timeout time.Duration) *PageFetcher {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &PageFetcher{
		client: &http.Client{Timeout: timeout},
		rnd:    mathrand.New(mathrand.NewSource(time.Now().UnixNano())),
	}
}

// FetchPage sends a GET with browser-like headers and returns the body as UTF-8.
//
// A 404 or an empty body, such as a 204 answer, is reported as
// apperrors.ErrEndOfResults. A 429 is a rate-limit HarvestError; any other
// status of 400 or above, or a transport failure, is a network HarvestError. The source field of returned errors is left for the
// caller to fill in.
func (f *PageFetcher) FetchPage(url string) ([]byte, error) {
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return nil, apperrors.NewNetwork("", "failed to create request", err)
	}

	req.Header.Set("User-Agent", userAgents[f.rnd.Intn(len(userAgents))])
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8")
	req.Header.Set("Accept-Language", "ko-KR,ko;q=0.9,en-US;q=0.8,en;q=0.7")
	req.Header.Set("Connection", "keep-alive")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, apperrors.NewNetwork("", "failed to fetch URL", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, apperrors.ErrEndOfResults
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, apperrors.NewRateLimit("", resp.Header.Get("Retry-After"))
	case resp.StatusCode >= http.StatusBadRequest:
		return nil, apperrors.NewNetwork("", fmt.Sprintf("fetch %s unexpected status code: %d", url, resp.StatusCode), nil)
	}

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperrors.NewNetwork("", "failed to read response body", err)
	}
	if len(bytes.TrimSpace(bodyBytes)) == 0 {
		return nil, apperrors.ErrEndOfResults
	}

	return toUTF8(bodyBytes, resp.Header.Get("Content-Type"))
}

// toUTF8 converts the body to UTF-8 based on the Content-Type header and meta tags.
func toUTF8(body []byte, contentType string) ([]byte, error) {
	encoding, name, _ := charset.DetermineEncoding(body, contentType)
	if name == "utf-8" || name == "UTF-8" {
		return body, nil
	}

	utf8Reader := encoding.NewDecoder().Reader(bytes.NewReader(body))
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, utf8Reader); err != nil {
		return nil, apperrors.NewParsing("", "failed to read converted UTF-8 body", err)
	}
	return buf.Bytes(), nil
}
