package signal

import (
	"regexp"
	"strings"
	"time"

	"github.com/awano27/fin-news-site/internal/classify"
	"github.com/awano27/fin-news-site/internal/item"
)

const (
	MinScore = 1
	MaxScore = 5

	// FreshWindow is how recent an item must be to earn the recency bonus.
	FreshWindow = 24 * time.Hour
)

// Breakdown shows how each component contributed to the final score.
type Breakdown struct {
	Base        int `json:"base"`
	Market      int `json:"market"`
	CompanyDocs int `json:"companyDocs"`
	MacroLike   int `json:"macroLike"`
	DocType     int `json:"docType"`
	Tickers     int `json:"tickers"`
	Fresh       int `json:"fresh"`
	Urgent      int `json:"urgent"`
	Final       int `json:"final"`
}

// Raw is the unclamped sum of all components.
func (b Breakdown) Raw() int {
	return b.Base + b.Market + b.CompanyDocs + b.MacroLike + b.DocType + b.Tickers + b.Fresh + b.Urgent
}

// urgentPattern matches sharp moves, emergencies, rate decisions, surprises,
// breaking news and earnings revisions.
var urgentPattern = regexp.MustCompile(`急騰|急落|暴落|緊急|利下げ|利上げ|サプライズ|速報|上方修正|下方修正|ストップ高|ストップ安|\bbreaking\b|\bsurges?\b|\bplunges?\b|\bemergency\b|\brate (cut|hike)s?\b|\bsurprise\b|\b(raises|cuts|lowers) guidance\b|\bprofit warning\b`)

// Score computes the importance score (1–5) of an item at now.
func Score(it item.Item, now time.Time) int {
	return ScoreWithBreakdown(it, now).Final
}

// ScoreWithBreakdown computes the score with component details. The company
// filing bonus and the filing-type bonus stack on purpose.
func ScoreWithBreakdown(it item.Item, now time.Time) Breakdown {
	b := Breakdown{Base: 1}
	docType := it.Type == classify.Earnings || it.Type == classify.Disclosure

	if it.Category == item.Market {
		b.Market = 1
	}
	if it.Category == item.Company && docType {
		b.CompanyDocs = 2
	}
	switch it.Type {
	case classify.Macro, classify.FX, classify.EquityIndex:
		b.MacroLike = 2
	}
	if docType {
		b.DocType = 1
	}
	if len(it.Tickers) > 0 {
		b.Tickers = 1
	}
	if it.Within(now, FreshWindow) {
		b.Fresh = 1
	}
	if urgent(it) {
		b.Urgent = 1
	}
	b.Final = clamp(b.Raw())
	return b
}

func urgent(it item.Item) bool {
	text := strings.ToLower(it.Title + " " + strings.Join(it.Tags, " "))
	return urgentPattern.MatchString(text)
}

func clamp(n int) int {
	if n < MinScore {
		return MinScore
	}
	if n > MaxScore {
		return MaxScore
	}
	return n
}
