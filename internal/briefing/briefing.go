package briefing

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/awano27/fin-news-site/internal/item"
	"github.com/awano27/fin-news-site/internal/query"
)

// Briefing is the condensed "what matters now" view.
type Briefing struct {
	DateLabel     string   `json:"dateLabel"`
	Greeting      string   `json:"greeting"`
	Scanned       int      `json:"scanned"`
	Selected      int      `json:"selected"`
	Themes        []string `json:"themes"`
	ActiveSources string   `json:"activeSources"`
	Cards         []Card   `json:"cards"`
	Focus         string   `json:"focus,omitempty"`
}

// Card represents a single briefing card.
type Card struct {
	Entry       query.Entry `json:"entry"`
	Index       int         `json:"index"`
	Excerpt     string      `json:"excerpt"`
	ReadingTime int         `json:"readingTime"`
}

// Options control Generate.
type Options struct {
	// Window limits the briefing to recent items; zero means all time.
	Window time.Duration
	Size   int
	// Focus restricts the briefing to one type when set.
	Focus string
}

// Generate picks the top items of the window by importance score, with ties
// broken by recency, and derives themes from the most frequent tags.
func Generate(items []item.Item, opts Options, now time.Time) *Briefing {
	if opts.Size <= 0 {
		opts.Size = 5
	}
	st := query.Default().WithWindow(opts.Window)
	if opts.Focus != "" {
		st = st.WithType(opts.Focus)
	}
	// The view is newest first, so a stable sort by score keeps recency as
	// the tie-breaker.
	entries := query.View(items, st, now)
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Score > entries[j].Score
	})

	local := now.In(item.Zone)
	b := &Briefing{
		DateLabel: local.Format("1月2日"),
		Greeting:  greeting(local),
		Scanned:   len(entries),
		Focus:     opts.Focus,
	}
	if len(entries) == 0 {
		return b
	}

	windowed := make([]item.Item, len(entries))
	for i, e := range entries {
		windowed[i] = e.Item
	}
	b.ActiveSources = activeSources(windowed)
	b.Themes = themes(windowed, 3)

	if len(entries) > opts.Size {
		entries = entries[:opts.Size]
	}
	b.Selected = len(entries)
	for i, e := range entries {
		b.Cards = append(b.Cards, Card{
			Entry:       e,
			Index:       i + 1,
			Excerpt:     DescriptionExcerpt(e.Item.Summary),
			ReadingTime: estimateReadTime(e.Item.Summary),
		})
	}
	return b
}

// DescriptionExcerpt returns the first sentence of a summary.
func DescriptionExcerpt(desc string) string {
	if desc == "" {
		return ""
	}
	runes := []rune(desc)
	for i, c := range runes {
		if (c == '。' && i > 10) || (c == '.' && i > 20) {
			return string(runes[:i+1])
		}
	}
	if len(runes) > 150 {
		return string(runes[:150]) + "..."
	}
	return desc
}

// estimateReadTime assumes about 500 characters a minute for the full
// article, taken as three times the summary.
func estimateReadTime(desc string) int {
	minutes := (len([]rune(desc)) * 3) / 500
	if minutes < 1 {
		minutes = 1
	}
	return minutes
}

func greeting(now time.Time) string {
	hour := now.Hour()
	switch {
	case hour < 11:
		return "おはようございます"
	case hour < 18:
		return "こんにちは"
	default:
		return "こんばんは"
	}
}

type counted struct {
	name  string
	count int
}

// rank sorts counts descending with names as the tie-breaker.
func rank(counts map[string]int) []counted {
	out := make([]counted, 0, len(counts))
	for name, n := range counts {
		out = append(out, counted{name, n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].count != out[j].count {
			return out[i].count > out[j].count
		}
		return out[i].name < out[j].name
	})
	return out
}

func activeSources(items []item.Item) string {
	counts := map[string]int{}
	for _, it := range items {
		if it.Source != "" {
			counts[it.Source]++
		}
	}
	ranked := rank(counts)
	if len(ranked) > 3 {
		ranked = ranked[:3]
	}
	parts := make([]string, len(ranked))
	for i, c := range ranked {
		parts[i] = fmt.Sprintf("%s (%d)", c.name, c.count)
	}
	return strings.Join(parts, ", ")
}

// themes returns up to limit tags that occur on at least two items.
func themes(items []item.Item, limit int) []string {
	counts := map[string]int{}
	for _, it := range items {
		seen := map[string]bool{}
		for _, tag := range it.Tags {
			key := strings.ToLower(tag)
			if !seen[key] {
				counts[key]++
				seen[key] = true
			}
		}
	}
	var out []string
	for _, c := range rank(counts) {
		if c.count < 2 || len(out) == limit {
			break
		}
		out = append(out, c.name)
	}
	return out
}
