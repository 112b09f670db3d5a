package enrich

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/awano27/fin-news-site/internal/ai"
	"github.com/awano27/fin-news-site/internal/item"
)

const articlePage = `<html><head><title>トヨタ、通期予想を上方修正</title></head><body>
<nav>menu menu menu</nav>
<article>
<h1>トヨタ、通期予想を上方修正</h1>
<p>トヨタ自動車は14日、2027年3月期の連結営業利益予想を従来の4兆円から4兆5000億円に引き上げたと発表した。円安の進行と北米での販売好調が寄与した。</p>
<p>同社は併せて自社株買いの実施も発表し、株主還元を強化する方針を示した。市場では増配への期待も高まっている。</p>
<p>アナリストの間では、為替前提の見直しが今後の業績をさらに押し上げるとの見方が広がっている。</p>
</article>
</body></html>`

func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(articlePage))
	}))
	t.Cleanup(srv.Close)
	return srv
}

type fakeSummarizer struct {
	res ai.Result
	err error
}

func (f fakeSummarizer) Summarize(context.Context, string, string) (ai.Result, error) { return f.res, f.err }
func (f fakeSummarizer) Themes(context.Context, []ai.Headline) ([]string, error)     { return nil, nil }

func TestExtract(t *testing.T) {
	srv := newServer(t)
	e := New(5*time.Second, nil, zerolog.Nop())

	a, err := e.Extract(context.Background(), srv.URL+"/a")
	require.NoError(t, err)
	assert.Contains(t, a.Text, "連結営業利益予想")

	_, err = e.Extract(context.Background(), srv.URL+"/missing")
	assert.Error(t, err)
}

func TestEnrichFillsMissingSummaries(t *testing.T) {
	srv := newServer(t)
	e := New(5*time.Second, nil, zerolog.Nop())

	raws := []item.Raw{
		{item.FieldURL: srv.URL + "/a", item.FieldTitle: "トヨタ"},
		{item.FieldURL: srv.URL + "/b", item.FieldSummary: "既存の要約"},
		{item.FieldURL: srv.URL + "/missing"},
		{item.FieldTitle: "no url"},
	}
	n := e.Enrich(context.Background(), raws)

	assert.Equal(t, 1, n)
	assert.NotEmpty(t, raws[0].String(item.FieldSummary))
	assert.LessOrEqual(t, len([]rune(raws[0].String(item.FieldSummary))), maxSummaryChars)
	assert.Equal(t, "トヨタ", raws[0].String(item.FieldTitle))
	assert.Equal(t, "既存の要約", raws[1].String(item.FieldSummary))
	assert.False(t, raws[2].Has(item.FieldSummary))
}

func TestEnrichUsesSummarizer(t *testing.T) {
	srv := newServer(t)
	e := New(5*time.Second, fakeSummarizer{res: ai.Result{Summary: "通期予想を上方修正", Tags: []string{"決算"}}}, zerolog.Nop())

	raws := []item.Raw{{item.FieldURL: srv.URL + "/a"}}
	require.Equal(t, 1, e.Enrich(context.Background(), raws))
	assert.Equal(t, "通期予想を上方修正", raws[0].String(item.FieldSummary))
	assert.Equal(t, []string{"決算"}, item.Normalize(raws[0]).Tags)
	assert.True(t, strings.Contains(raws[0].String(item.FieldTitle), "トヨタ"))
}

func TestEnrichFallsBackWhenSummarizerFails(t *testing.T) {
	srv := newServer(t)
	e := New(5*time.Second, fakeSummarizer{err: errors.New("rate limited")}, zerolog.Nop())

	raws := []item.Raw{{item.FieldURL: srv.URL + "/a"}}
	require.Equal(t, 1, e.Enrich(context.Background(), raws))
	assert.NotEmpty(t, raws[0].String(item.FieldSummary))
	assert.False(t, raws[0].Has(item.FieldTags))
}

func TestClip(t *testing.T) {
	assert.Equal(t, "abc", clip("abc", 5))
	assert.Equal(t, "ab…", clip("abcdef", 3))
	assert.Equal(t, "日本…", clip("日本経済新聞", 3))
}
