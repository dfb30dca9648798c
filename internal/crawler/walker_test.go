package crawler

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	apperrors "sjsage522/contestharvester/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// contestKoreaServer serves pages 1..lastPage with itemsPerPage listings each,
// and answers every page after that with status afterLast.
func contestKoreaServer(t *testing.T, lastPage, itemsPerPage, afterLast int, hits *int32) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(hits, 1)
		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		if page > lastPage {
			w.WriteHeader(afterLast)
			return
		}
		var items []string
		for i := 0; i < itemsPerPage; i++ {
			items = append(items, contestKoreaItem(page*100+i))
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(contestKoreaPage(items...)))
	}))
	t.Cleanup(server.Close)
	return server
}

func contestKoreaWalker(serverURL string, maxPages int) *Walker {
	cfg := testConfig(serverURL)
	cfg.ContestKoreaMaxPages = maxPages
	return NewContestKoreaHarvester(cfg, testFetcher()).walker
}

func TestWalker_NotFoundOnFirstPage(t *testing.T) {
	var hits int32
	server := contestKoreaServer(t, 0, 0, http.StatusNotFound, &hits)

	result, err := contestKoreaWalker(server.URL, 20).Walk()
	require.NoError(t, err)
	assert.Empty(t, result.Records)
	assert.NotNil(t, result.Records)
	assert.Equal(t, WalkEndOfResults, result.Status)
	assert.Equal(t, 1, result.Pages)
}

func TestWalker_ServerErrorAbortsWalk(t *testing.T) {
	var hits int32
	server := contestKoreaServer(t, 2, 3, http.StatusInternalServerError, &hits)

	result, err := contestKoreaWalker(server.URL, 20).Walk()
	require.Error(t, err)
	assert.Equal(t, WalkAborted, result.Status)
	assert.Len(t, result.Records, 6)
	assert.Equal(t, 3, result.Pages)

	var he *apperrors.HarvestError
	require.ErrorAs(t, err, &he)
	assert.Equal(t, SourceContestKorea, he.Source)
	assert.Equal(t, 3, he.Page)
	assert.Contains(t, err.Error(), "500")
}

func TestWalker_PageBudget(t *testing.T) {
	for _, budget := range []int{1, 2, 5} {
		var hits int32
		server := contestKoreaServer(t, 100, 2, http.StatusNotFound, &hits)

		result, err := contestKoreaWalker(server.URL, budget).Walk()
		require.NoError(t, err)
		assert.Equal(t, WalkBudgetExhausted, result.Status)
		assert.Equal(t, int32(budget), atomic.LoadInt32(&hits))
		assert.Equal(t, budget, result.Pages)
		assert.Len(t, result.Records, budget*2)
	}
}

func TestWalker_EndOfResultsBeforeBudget(t *testing.T) {
	var hits int32
	server := contestKoreaServer(t, 3, 2, http.StatusNotFound, &hits)

	result, err := contestKoreaWalker(server.URL, 0).Walk()
	require.NoError(t, err)
	assert.Equal(t, WalkEndOfResults, result.Status)
	assert.Equal(t, int32(4), atomic.LoadInt32(&hits))
	require.Len(t, result.Records, 6)

	// source order is kept
	assert.Equal(t, "Contest 100", result.Records[0].Title)
	assert.Equal(t, "Contest 101", result.Records[1].Title)
	assert.Equal(t, "Contest 300", result.Records[4].Title)
}

func TestWalker_EmptyBodyAndMissingContainerEndWalk(t *testing.T) {
	testCases := []struct {
		name   string
		status int
		body   string
	}{
		{"empty body", 0, ""},
		{"no content", http.StatusNoContent, ""},
		{"no container", 0, "<html><body><p>점검 중</p></body></html>"},
		{"no items", 0, contestKoreaPage()},
		{"only decoration items", 0, `<html><body><div class="list_style_2"><ul><li class="icon_1">x</li><li class="icon_2">y</li></ul></div></body></html>`},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if tc.status != 0 {
					w.WriteHeader(tc.status)
				}
				w.Write([]byte(tc.body))
			}))
			defer server.Close()

			result, err := contestKoreaWalker(server.URL, 10).Walk()
			require.NoError(t, err)
			assert.Equal(t, WalkEndOfResults, result.Status)
			assert.Empty(t, result.Records)
		})
	}
}

func TestWalker_NoContentAfterRecordsKeepsThem(t *testing.T) {
	var hits int32
	server := contestKoreaServer(t, 1, 1, http.StatusNoContent, &hits)

	result, err := contestKoreaWalker(server.URL, 20).Walk()
	require.NoError(t, err)
	assert.Equal(t, WalkEndOfResults, result.Status)
	assert.Equal(t, 2, result.Pages)
	require.Len(t, result.Records, 1)
	assert.Equal(t, "Contest 100", result.Records[0].Title)
}

func TestWalker_SkipsBadItems(t *testing.T) {
	broken := `<li><div class="title"><a href="view.php"><span class="txt">No category</span></a></div></li>`
	fetcher := &stubFetcher{bodies: map[string]string{}}
	walker := contestKoreaWalker("https://example.com", 1)
	walker.Fetcher = fetcher
	fetcher.bodies[walker.Paginator.First()] = contestKoreaPage(contestKoreaItem(1), broken, contestKoreaItem(2))

	result, err := walker.Walk()
	require.NoError(t, err)
	require.Len(t, result.Records, 2)
	assert.Equal(t, "Contest 1", result.Records[0].Title)
	assert.Equal(t, "Contest 2", result.Records[1].Title)
}

func TestWalker_PageDelay(t *testing.T) {
	var hits int32
	server := contestKoreaServer(t, 3, 1, http.StatusNotFound, &hits)

	var pauses []time.Duration
	walker := contestKoreaWalker(server.URL, 0)
	walker.PageDelay = time.Second
	walker.sleep = func(d time.Duration) { pauses = append(pauses, d) }

	_, err := walker.Walk()
	require.NoError(t, err)
	// four fetches, a pause before each but the first
	assert.Equal(t, []time.Duration{time.Second, time.Second, time.Second}, pauses)
}

func TestWalker_NextLinkPagination(t *testing.T) {
	var hits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		switch r.URL.Path {
		case "/competitions/":
			w.Write([]byte(icsPage("/competitions/page/2/",
				icsCard("Alpha", "/competitions/alpha/", "13-18", "Math"),
				icsCard("Beta", "/competitions/beta/", "All", "Physics"))))
		case "/competitions/page/2/":
			w.Write([]byte(icsPage("", icsCard("Gamma", "/competitions/gamma/", "16+", "Biology"))))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	cfg := testConfig(server.URL)
	walker := NewICSHarvester(cfg, testFetcher()).walker

	result, err := walker.Walk()
	require.NoError(t, err)
	assert.Equal(t, WalkEndOfResults, result.Status)
	assert.Equal(t, int32(2), atomic.LoadInt32(&hits))
	require.Len(t, result.Records, 3)
	assert.Equal(t, "Alpha", result.Records[0].Title)
	assert.Equal(t, server.URL+"/competitions/gamma/", result.Records[2].Link)
}

func TestWalker_NextLinkBudget(t *testing.T) {
	var hits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&hits, 1)
		next := "/competitions/page/" + strconv.Itoa(int(n)+1) + "/"
		w.Write([]byte(icsPage(next, icsCard("Card", "/c/"+strconv.Itoa(int(n)), "All", "Any"))))
	}))
	defer server.Close()

	cfg := testConfig(server.URL)
	cfg.ICSMaxPages = 4

	result, err := NewICSHarvester(cfg, testFetcher()).walker.Walk()
	require.NoError(t, err)
	assert.Equal(t, WalkBudgetExhausted, result.Status)
	assert.Equal(t, int32(4), atomic.LoadInt32(&hits))
	assert.Len(t, result.Records, 4)
}

func TestWalker_NextLinkCycleEndsUnboundedWalk(t *testing.T) {
	var hits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		switch r.URL.Path {
		case "/competitions/":
			w.Write([]byte(icsPage("/competitions/page/2/", icsCard("Alpha", "/c/alpha/", "All", "Math"))))
		case "/competitions/page/2/":
			w.Write([]byte(icsPage("/competitions/", icsCard("Beta", "/c/beta/", "All", "Math"))))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	cfg := testConfig(server.URL)
	cfg.ICSMaxPages = 0

	result, err := NewICSHarvester(cfg, testFetcher()).walker.Walk()
	require.NoError(t, err)
	assert.Equal(t, WalkEndOfResults, result.Status)
	assert.Equal(t, int32(2), atomic.LoadInt32(&hits))
	assert.Len(t, result.Records, 2)
}

func TestWalkStatusString(t *testing.T) {
	assert.Equal(t, "end_of_results", WalkEndOfResults.String())
	assert.Equal(t, "budget_exhausted", WalkBudgetExhausted.String())
	assert.Equal(t, "aborted", WalkAborted.String())
}
