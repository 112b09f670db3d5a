// Package dedupe drops items that describe the same real-world article or
// post as one already kept.
package dedupe

import (
	"strings"

	"golang.org/x/text/cases"

	"github.com/awano27/fin-news-site/internal/item"
)

// URLKey strips any query string or fragment from u.
func URLKey(u string) string {
	if i := strings.IndexAny(u, "?#"); i >= 0 {
		return u[:i]
	}
	return u
}

// TitleKey collapses whitespace and case-folds a title.
func TitleKey(title string) string {
	return cases.Fold().String(strings.Join(strings.Fields(title), " "))
}

// Dedupe returns items minus near-duplicates. The first occurrence in input
// order wins, so callers must dedupe before sorting.
func Dedupe(items []item.Item) []item.Item {
	seenURL := make(map[string]struct{}, len(items))
	seenTitle := make(map[string]struct{}, len(items))
	out := make([]item.Item, 0, len(items))
	for _, it := range items {
		uk := URLKey(it.URL)
		tk := TitleKey(it.Title)
		if _, dup := seenURL[uk]; dup {
			continue
		}
		if _, dup := seenTitle[tk]; dup {
			continue
		}
		seenURL[uk] = struct{}{}
		seenTitle[tk] = struct{}{}
		out = append(out, it)
	}
	return out
}
