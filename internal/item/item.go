package item

import "time"

// Category is the coarse origin class of an item.
type Category string

const (
	Market  Category = "market"
	Company Category = "company"
	SNS     Category = "sns"
)

// AllCategories returns the valid categories in display order.
func AllCategories() []Category {
	return []Category{Market, Company, SNS}
}

// ParseCategory reports whether s names a known category.
func ParseCategory(s string) (Category, bool) {
	for _, c := range AllCategories() {
		if string(c) == s {
			return c, true
		}
	}
	return "", false
}

// Issuer tells whether an item is attributable to a specific company.
type Issuer string

const (
	WithIssuer Issuer = "withIssuer"
	NoIssuer   Issuer = "noIssuer"
)

// ParseIssuer reports whether s names a known issuer value.
func ParseIssuer(s string) (Issuer, bool) {
	switch Issuer(s) {
	case WithIssuer, NoIssuer:
		return Issuer(s), true
	}
	return "", false
}

const (
	// UnknownTitle replaces a missing or empty title.
	UnknownTitle = "(タイトル不明)"
	// DefaultLocale is the primary supported locale.
	DefaultLocale = "ja"
	// MaxTags bounds Item.Tags.
	MaxTags = 8
)

// Item is the canonical, normalized news/disclosure/social-post record.
// Once merged into the store an Item is never modified.
type Item struct {
	ID          string     `json:"id"`
	Category    Category   `json:"category"`
	Title       string     `json:"title"`
	Summary     string     `json:"summary"`
	Source      string     `json:"source"`
	URL         string     `json:"url"`
	PublishedAt *time.Time `json:"publishedAt"`
	Tags        []string   `json:"tags"`
	Locale      string     `json:"locale"`
	Verified    bool       `json:"verified"`
	Thumbnail   string     `json:"thumbnail"`
	Type        string     `json:"type"`
	Tickers     []string   `json:"tickers,omitempty"`
	Issuer      Issuer     `json:"issuer"`
}

// Published returns the publish time, or the zero time when unknown.
func (it Item) Published() time.Time {
	if it.PublishedAt == nil {
		return time.Time{}
	}
	return *it.PublishedAt
}

// Within reports whether the item has a known publish time in [now-d, now].
func (it Item) Within(now time.Time, d time.Duration) bool {
	if it.PublishedAt == nil {
		return false
	}
	p := *it.PublishedAt
	return !p.Before(now.Add(-d)) && !p.After(now)
}
