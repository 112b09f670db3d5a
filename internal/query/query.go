// Package query turns the full collection plus a State into the ordered view
// the browser, the CLI and the HTTP API display.
package query

import (
	"sort"
	"strings"
	"time"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/awano27/fin-news-site/internal/dedupe"
	"github.com/awano27/fin-news-site/internal/item"
	"github.com/awano27/fin-news-site/internal/signal"
)

// Apply runs the fixed pipeline: recency window, category, type, issuer,
// search, dedup, sort. The input slice is not modified.
func Apply(items []item.Item, st State, now time.Time) []item.Item {
	cat, kind, iss := st.category(), st.kind(), st.issuer()
	needle := strings.ToLower(strings.TrimSpace(st.Search))

	out := make([]item.Item, 0, len(items))
	for _, it := range items {
		if st.Window > 0 && !it.Within(now, st.Window) {
			continue
		}
		if cat != "" && string(it.Category) != cat {
			continue
		}
		if kind != "" && it.Type != kind {
			continue
		}
		if iss != "" && string(it.Issuer) != iss {
			continue
		}
		if needle != "" && !matches(it, needle) {
			continue
		}
		out = append(out, it)
	}

	if st.Dedupe {
		out = dedupe.Dedupe(out)
	}
	sortItems(out, ParseSort(string(st.Sort)))
	return out
}

// matches checks each field, tag and ticker on its own so a needle never
// spans two elements.
func matches(it item.Item, needle string) bool {
	fields := make([]string, 0, 3+len(it.Tags)+len(it.Tickers))
	fields = append(fields, it.Title, it.Summary, it.Source)
	fields = append(fields, it.Tags...)
	fields = append(fields, it.Tickers...)
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), needle) {
			return true
		}
	}
	return false
}

func sortItems(items []item.Item, order Sort) {
	switch order {
	case DateAsc:
		sort.SliceStable(items, func(i, j int) bool {
			return items[i].Published().Before(items[j].Published())
		})
	case TitleAsc, TitleDesc:
		c := collate.New(language.Japanese)
		sort.SliceStable(items, func(i, j int) bool {
			cmp := c.CompareString(items[i].Title, items[j].Title)
			if order == TitleDesc {
				return cmp > 0
			}
			return cmp < 0
		})
	default:
		sort.SliceStable(items, func(i, j int) bool {
			return items[i].Published().After(items[j].Published())
		})
	}
}

// Entry is one displayed row.
type Entry struct {
	Item      item.Item        `json:"item"`
	Score     int              `json:"score"`
	Breakdown signal.Breakdown `json:"breakdown"`
}

// View applies st and scores every result against now.
func View(items []item.Item, st State, now time.Time) []Entry {
	applied := Apply(items, st, now)
	out := make([]Entry, len(applied))
	for i, it := range applied {
		b := signal.ScoreWithBreakdown(it, now)
		out[i] = Entry{Item: it, Score: b.Final, Breakdown: b}
	}
	return out
}
