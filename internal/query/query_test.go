package query

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/awano27/fin-news-site/internal/item"
)

var now = time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)

func ago(d time.Duration) *time.Time {
	t := now.Add(-d)
	return &t
}

func titles(items []item.Item) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.Title
	}
	return out
}

func TestApplyRecencyRunsBeforeDedupe(t *testing.T) {
	items := []item.Item{
		{ID: "a-1", Title: "古い決算", URL: "https://n.jp/x", PublishedAt: ago(72 * time.Hour), Category: item.Company},
		{ID: "a-2", Title: "トヨタ決算", URL: "https://n.jp/x?ref=top", PublishedAt: ago(time.Hour), Category: item.Company},
	}
	st := Default().WithSearch("決算")

	got := Apply(items, st, now)
	require.Len(t, got, 1)
	assert.Equal(t, "a-2", got[0].ID)
}

func TestApplyRecencyDropsUnknownDates(t *testing.T) {
	items := []item.Item{
		{ID: "a-1", Title: "dated", URL: "u1", PublishedAt: ago(time.Hour)},
		{ID: "a-2", Title: "undated", URL: "u2"},
		{ID: "a-3", Title: "future", URL: "u3", PublishedAt: ago(-time.Hour)},
	}
	assert.Equal(t, []string{"dated"}, titles(Apply(items, Default(), now)))

	all := Apply(items, Default().WithWindow(0), now)
	assert.Len(t, all, 3)
}

func TestApplyFilters(t *testing.T) {
	items := []item.Item{
		{ID: "m-1", Title: "日経平均", URL: "u1", Category: item.Market, Type: "equityIndex", Issuer: item.NoIssuer, PublishedAt: ago(time.Hour)},
		{ID: "c-1", Title: "決算短信", URL: "u2", Category: item.Company, Type: "earnings", Issuer: item.WithIssuer, Tickers: []string{"7203"}, PublishedAt: ago(2 * time.Hour)},
		{ID: "s-1", Title: "post", URL: "u3", Category: item.SNS, Type: "marketNews", Issuer: item.NoIssuer, Source: "X", Tags: []string{"Yen"}, PublishedAt: ago(3 * time.Hour)},
	}

	tests := []struct {
		name  string
		state State
		want  []string
	}{
		{"default", Default(), []string{"日経平均", "決算短信", "post"}},
		{"category", Default().WithCategory("company"), []string{"決算短信"}},
		{"unknown category is no filter", Default().WithCategory("crypto"), []string{"日経平均", "決算短信", "post"}},
		{"type", Default().WithType("equityIndex"), []string{"日経平均"}},
		{"issuer", Default().WithIssuer("noIssuer"), []string{"日経平均", "post"}},
		{"unknown issuer is no filter", Default().WithIssuer("bogus"), []string{"日経平均", "決算短信", "post"}},
		{"search ticker", Default().WithSearch("7203"), []string{"決算短信"}},
		{"search tag case-insensitive", Default().WithSearch("yEN"), []string{"post"}},
		{"search source", Default().WithSearch("x"), []string{"post"}},
		{"combined", Default().WithCategory("market").WithType("earnings"), []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, titles(Apply(items, tt.state, now)))
		})
	}
}

func TestApplySearchStaysWithinOneTag(t *testing.T) {
	items := []item.Item{
		{ID: "a", Title: "one", URL: "u1", Tags: []string{"ab", "cd"}, Tickers: []string{"7203", "6758"}, PublishedAt: ago(time.Hour)},
	}

	assert.Empty(t, Apply(items, Default().WithSearch("b c"), now))
	assert.Empty(t, Apply(items, Default().WithSearch("03 67"), now))
	assert.Len(t, Apply(items, Default().WithSearch("cd"), now), 1)
	assert.Len(t, Apply(items, Default().WithSearch("6758"), now), 1)
}

func TestApplyDedupeToggle(t *testing.T) {
	items := []item.Item{
		{ID: "a-1", Title: "Same", URL: "u1", PublishedAt: ago(time.Hour)},
		{ID: "b-1", Title: "same", URL: "u2", PublishedAt: ago(2 * time.Hour)},
	}
	assert.Len(t, Apply(items, Default(), now), 1)
	assert.Len(t, Apply(items, Default().ToggleDedupe(), now), 2)
}

func TestApplySortNullPolicy(t *testing.T) {
	items := []item.Item{
		{ID: "a-1", Title: "null", URL: "u1"},
		{ID: "a-2", Title: "old", URL: "u2", PublishedAt: ago(48 * time.Hour)},
		{ID: "a-3", Title: "new", URL: "u3", PublishedAt: ago(time.Hour)},
	}
	st := Default().WithWindow(0)

	assert.Equal(t, []string{"new", "old", "null"}, titles(Apply(items, st, now)))
	assert.Equal(t, []string{"null", "old", "new"}, titles(Apply(items, st.WithSort(DateAsc), now)))
	assert.Equal(t, []string{"new", "old", "null"}, titles(Apply(items, st.WithSort("bogus"), now)))
}

func TestApplySortIsStable(t *testing.T) {
	p := ago(time.Hour)
	items := []item.Item{
		{ID: "a-1", Title: "first", URL: "u1", PublishedAt: p},
		{ID: "a-2", Title: "second", URL: "u2", PublishedAt: p},
		{ID: "a-3", Title: "third", URL: "u3", PublishedAt: p},
	}
	assert.Equal(t, []string{"first", "second", "third"}, titles(Apply(items, Default(), now)))
	assert.Equal(t, []string{"first", "second", "third"}, titles(Apply(items, Default().WithSort(DateAsc), now)))
}

func TestApplySortTitleCollation(t *testing.T) {
	items := []item.Item{
		{ID: "a-1", Title: "いちご", URL: "u1"},
		{ID: "a-2", Title: "うどん", URL: "u2"},
		{ID: "a-3", Title: "アップル", URL: "u3"},
	}
	st := Default().WithWindow(0)

	assert.Equal(t, []string{"アップル", "いちご", "うどん"}, titles(Apply(items, st.WithSort(TitleAsc), now)))
	assert.Equal(t, []string{"うどん", "いちご", "アップル"}, titles(Apply(items, st.WithSort(TitleDesc), now)))
}

func TestApplyDoesNotModifyInput(t *testing.T) {
	items := []item.Item{
		{ID: "a-1", Title: "b", URL: "u1", PublishedAt: ago(2 * time.Hour)},
		{ID: "a-2", Title: "a", URL: "u2", PublishedAt: ago(time.Hour)},
	}
	Apply(items, Default(), now)
	assert.Equal(t, "a-1", items[0].ID)
}

func TestView(t *testing.T) {
	items := []item.Item{
		{ID: "m-1", Title: "日経平均が急落", URL: "u1", Category: item.Market, Type: "equityIndex", PublishedAt: ago(time.Hour)},
	}
	got := View(items, Default(), now)
	require.Len(t, got, 1)
	assert.Equal(t, 5, got[0].Score)
	assert.Equal(t, got[0].Score, got[0].Breakdown.Final)
}

func TestStateTransitionsReturnNewValues(t *testing.T) {
	base := Default()
	next := base.WithCategory("sns").WithSearch("円").ToggleDedupe().NextSort()

	assert.Equal(t, All, base.Category)
	assert.Equal(t, "", base.Search)
	assert.True(t, base.Dedupe)
	assert.Equal(t, DateDesc, base.Sort)

	assert.Equal(t, "sns", next.Category)
	assert.Equal(t, "円", next.Search)
	assert.False(t, next.Dedupe)
	assert.Equal(t, DateAsc, next.Sort)
	assert.True(t, next.Active())
	assert.False(t, base.Active())
}

func TestStateCycles(t *testing.T) {
	st := Default()
	var sorts []Sort
	for range Sorts {
		st = st.NextSort()
		sorts = append(sorts, st.Sort)
	}
	assert.Equal(t, []Sort{DateAsc, TitleAsc, TitleDesc, DateDesc}, sorts)

	st = Default()
	assert.Equal(t, "market", st.NextCategory().Category)
	assert.Equal(t, All, st.NextCategory().NextCategory().NextCategory().NextCategory().Category)
	assert.Equal(t, "withIssuer", st.NextIssuer().Issuer)
	assert.Equal(t, "earnings", st.NextType().Type)
	assert.Equal(t, 72*time.Hour, st.NextWindow().Window)
	assert.Equal(t, time.Duration(0), st.NextWindow().NextWindow().NextWindow().Window)
}

func TestParseSort(t *testing.T) {
	assert.Equal(t, TitleAsc, ParseSort("title_asc"))
	assert.Equal(t, DateAsc, ParseSort(" DATE_ASC "))
	assert.Equal(t, DateDesc, ParseSort(""))
	assert.Equal(t, DateDesc, ParseSort("random"))
}
