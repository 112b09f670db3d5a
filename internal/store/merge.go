package store

import (
	"strconv"
	"strings"

	"github.com/awano27/fin-news-site/internal/item"
)

// Pending is a newly normalized and classified item waiting for its
// namespaced id.
type Pending struct {
	Prefix string
	Item   item.Item
}

// ParseID splits an id of the form <prefix>-<n>.
func ParseID(id string) (prefix string, n int, ok bool) {
	i := strings.LastIndexByte(id, '-')
	if i <= 0 || i == len(id)-1 {
		return "", 0, false
	}
	n, err := strconv.Atoi(id[i+1:])
	if err != nil || n < 0 {
		return "", 0, false
	}
	return id[:i], n, true
}

// FormatID builds <prefix>-<n>.
func FormatID(prefix string, n int) string {
	return prefix + "-" + strconv.Itoa(n)
}

// Merge appends every pending item whose url is new to the collection and
// returns the full replacement collection plus the number of items added.
// Existing items are never reordered or touched. Counters continue from the
// highest suffix already used under each prefix.
func Merge(existing []item.Item, batch []Pending) ([]item.Item, int) {
	seen := make(map[string]struct{}, len(existing)+len(batch))
	next := make(map[string]int)
	for _, it := range existing {
		seen[it.URL] = struct{}{}
		if p, n, ok := ParseID(it.ID); ok && n+1 > next[p] {
			next[p] = n + 1
		}
	}

	out := append(make([]item.Item, 0, len(existing)+len(batch)), existing...)
	added := 0
	for _, p := range batch {
		u := p.Item.URL
		if u == "" {
			continue
		}
		if _, dup := seen[u]; dup {
			continue
		}
		seen[u] = struct{}{}
		n := next[p.Prefix]
		if n == 0 {
			n = 1
		}
		next[p.Prefix] = n + 1

		it := p.Item
		it.ID = FormatID(p.Prefix, n)
		out = append(out, it)
		added++
	}
	return out, added
}
