package query

import (
	"strings"
	"time"

	"github.com/awano27/fin-news-site/internal/classify"
	"github.com/awano27/fin-news-site/internal/item"
)

// All disables a category, type or issuer filter.
const All = "all"

type Sort string

const (
	DateDesc  Sort = "date_desc"
	DateAsc   Sort = "date_asc"
	TitleAsc  Sort = "title_asc"
	TitleDesc Sort = "title_desc"
)

// Sorts lists the sort orders in cycling order.
var Sorts = []Sort{DateDesc, DateAsc, TitleAsc, TitleDesc}

// ParseSort returns DateDesc for anything it does not recognize.
func ParseSort(s string) Sort {
	for _, v := range Sorts {
		if string(v) == strings.ToLower(strings.TrimSpace(s)) {
			return v
		}
	}
	return DateDesc
}

func (s Sort) Label() string {
	switch s {
	case DateAsc:
		return "oldest"
	case TitleAsc:
		return "title ↑"
	case TitleDesc:
		return "title ↓"
	default:
		return "newest"
	}
}

// DefaultWindow is the recency window of a fresh State.
const DefaultWindow = 24 * time.Hour

// Windows are the recency windows the UI cycles through. Zero means no window.
var Windows = []time.Duration{6 * time.Hour, 24 * time.Hour, 72 * time.Hour, 7 * 24 * time.Hour, 0}

// State is one immutable query. Every transition returns a new value.
type State struct {
	Window   time.Duration
	Category string
	Type     string
	Issuer   string
	Search   string
	Dedupe   bool
	Sort     Sort
}

// Default is the state the browser starts in.
func Default() State {
	return State{
		Window:   DefaultWindow,
		Category: All,
		Type:     All,
		Issuer:   All,
		Dedupe:   true,
		Sort:     DateDesc,
	}
}

func (s State) WithWindow(d time.Duration) State {
	if d < 0 {
		d = 0
	}
	s.Window = d
	return s
}

func (s State) WithCategory(c string) State {
	s.Category = c
	return s
}

func (s State) WithType(t string) State {
	s.Type = t
	return s
}

func (s State) WithIssuer(i string) State {
	s.Issuer = i
	return s
}

func (s State) WithSearch(q string) State {
	s.Search = q
	return s
}

func (s State) WithSort(o Sort) State {
	s.Sort = o
	return s
}

func (s State) ToggleDedupe() State {
	s.Dedupe = !s.Dedupe
	return s
}

func (s State) NextSort() State {
	s.Sort = Sorts[(indexOf(Sorts, ParseSort(string(s.Sort)))+1)%len(Sorts)]
	return s
}

func (s State) NextWindow() State {
	s.Window = Windows[(indexOf(Windows, s.Window)+1)%len(Windows)]
	return s
}

func (s State) NextCategory() State {
	opts := []string{All}
	for _, c := range item.AllCategories() {
		opts = append(opts, string(c))
	}
	s.Category = cycle(opts, s.Category)
	return s
}

func (s State) NextType() State {
	s.Type = cycle(append([]string{All}, classify.AllTypes()...), s.Type)
	return s
}

func (s State) NextIssuer() State {
	s.Issuer = cycle([]string{All, string(item.WithIssuer), string(item.NoIssuer)}, s.Issuer)
	return s
}

// Active reports whether any filter narrows the collection beyond the window.
func (s State) Active() bool {
	return s.category() != "" || s.kind() != "" || s.issuer() != "" || strings.TrimSpace(s.Search) != ""
}

// category returns the effective category filter, or "" for none.
func (s State) category() string {
	c, ok := item.ParseCategory(s.Category)
	if !ok {
		return ""
	}
	return string(c)
}

func (s State) kind() string {
	if s.Type == "" || s.Type == All {
		return ""
	}
	return s.Type
}

func (s State) issuer() string {
	i, ok := item.ParseIssuer(s.Issuer)
	if !ok {
		return ""
	}
	return string(i)
}

func cycle(opts []string, cur string) string {
	return opts[(indexOf(opts, cur)+1)%len(opts)]
}

func indexOf[T comparable](xs []T, v T) int {
	for i, x := range xs {
		if x == v {
			return i
		}
	}
	return -1
}
