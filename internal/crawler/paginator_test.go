package crawler

import (
	"net/url"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListParamPaginator(t *testing.T) {
	p := ListParamPaginator{
		URL:       "https://www.contestkorea.com/sub/list.php",
		Params:    url.Values{"int_gbn": {"1"}, "displayrow": {"12"}},
		PageParam: "page",
	}

	assert.Equal(t, "https://www.contestkorea.com/sub/list.php?displayrow=12&int_gbn=1&page=1", p.First())

	next, ok := p.Next(nil, p.First(), 1)
	assert.True(t, ok)
	assert.Equal(t, "https://www.contestkorea.com/sub/list.php?displayrow=12&int_gbn=1&page=2", next)

	// the shared params are not mutated between pages
	assert.Empty(t, p.Params.Get("page"))
}

func TestListParamPaginatorOnlyPageVaries(t *testing.T) {
	p := ListParamPaginator{URL: "https://example.com/list?x=1", Params: contestKoreaParams(), PageParam: "page"}

	u1, err := url.Parse(p.PageURL(1))
	require.NoError(t, err)
	u9, err := url.Parse(p.PageURL(9))
	require.NoError(t, err)

	q1, q9 := u1.Query(), u9.Query()
	assert.Equal(t, "1", q1.Get("page"))
	assert.Equal(t, "9", q9.Get("page"))
	q1.Del("page")
	q9.Del("page")
	assert.Equal(t, q1, q9)
	assert.Equal(t, "98", q1.Get("Txt_code1[0]"))
	assert.True(t, strings.HasPrefix(p.PageURL(1), "https://example.com/list?x=1&"))
}

func TestNextLinkPaginator(t *testing.T) {
	p := NextLinkPaginator{StartURL: "https://example.org/competitions/", NextSelector: "div.nav-links a.next"}
	assert.Equal(t, "https://example.org/competitions/", p.First())

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(icsPage("/competitions/page/2/")))
	require.NoError(t, err)
	next, ok := p.Next(doc, p.First(), 1)
	assert.True(t, ok)
	assert.Equal(t, "https://example.org/competitions/page/2/", next)

	last, err := goquery.NewDocumentFromReader(strings.NewReader(icsPage("")))
	require.NoError(t, err)
	_, ok = p.Next(last, next, 2)
	assert.False(t, ok)

	self, err := goquery.NewDocumentFromReader(strings.NewReader(icsPage("https://example.org/competitions/page/2/")))
	require.NoError(t, err)
	_, ok = p.Next(self, next, 2)
	assert.False(t, ok)
}
