package classify

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"golang.org/x/text/width"

	"github.com/awano27/fin-news-site/internal/item"
)

// Type names produced by the rule table and its fallback.
const (
	Earnings    = "earnings"
	Disclosure  = "disclosure"
	FX          = "fx"
	Macro       = "macro"
	EquityIndex = "equityIndex"
	CompanyNews = "companyNews"
	MarketNews  = "marketNews"
)

// AllTypes returns every type the classifier can infer, rule order first.
func AllTypes() []string {
	return []string{Earnings, Disclosure, FX, Macro, EquityIndex, CompanyNews, MarketNews}
}

// Rule maps a text pattern to a type.
type Rule struct {
	Type    string
	Pattern *regexp.Regexp
}

// Rules is evaluated top to bottom and the first match wins. Categories
// overlap (決算短信 is both a filing and an earnings report), so order matters.
var Rules = []Rule{
	{Earnings, regexp.MustCompile(`決算|業績|四半期|通期|増収|減収|増益|減益|売上高?|営業利益|純利益|\beps\b|\brevenues?\b|\bguidance\b|\bearnings\b|\bresults\b|\bquarterly\b|\bfull[- ]year\b`)},
	{Disclosure, regexp.MustCompile(`適時開示|開示|有価証券報告書|四半期報告書|臨時報告書|大量保有|\btdnet\b|\bedinet\b|\bir\b|\bfilings?\b|\b10-[kq]\b|\b8-k\b|\bannual report\b`)},
	{FX, regexp.MustCompile(`為替|ドル円|ユーロ円|円安|円高|\b(usd|eur|gbp|aud|jpy|chf|cny)/(usd|eur|gbp|aud|jpy|chf|cny)\b|\bforex\b|\bfx\b|\bforeign exchange\b`)},
	{Macro, regexp.MustCompile(`消費者物価|物価指数|雇用統計|失業率|景況感|短観|日銀|金融政策|政策金利|\bcpi\b|\bpmi\b|\bgdp\b|\bfomc\b|\bboj\b|\becb\b|\bfed\b|\bpayrolls\b|\bunemployment\b|\bcentral bank\b`)},
	{EquityIndex, regexp.MustCompile(`日経平均|日経225|topix|東証株価指数|ダウ(?:[^ン]|$)|ナスダック|s&p\s?500|先物|オプション|\bnasdaq\b|\bdow\b|\bnikkei\b|\bfutures\b|\boptions?\b|\bvix\b`)},
}

// Match returns the type of the first rule whose pattern matches text.
func Match(rules []Rule, text string) (string, bool) {
	for _, r := range rules {
		if r.Pattern.MatchString(text) {
			return r.Type, true
		}
	}
	return "", false
}

// Fallback is the type used when no rule matches.
func Fallback(c item.Category) string {
	if c == item.Company {
		return CompanyNews
	}
	return MarketNews
}

// IssuerFor derives the issuer from the category.
func IssuerFor(c item.Category) item.Issuer {
	if c == item.Company {
		return item.WithIssuer
	}
	return item.NoIssuer
}

// Text builds the lowercased haystack the rules run against. Full-width
// Latin folds to ASCII and half-width katakana to full width first.
func Text(it item.Item) string {
	parts := make([]string, 0, 2+len(it.Tags))
	parts = append(parts, it.Title, it.Summary)
	parts = append(parts, it.Tags...)
	return strings.ToLower(width.Fold.String(strings.Join(parts, " ")))
}

// Classify fills Type and Issuer. An explicit type is kept unchanged.
func Classify(it item.Item) item.Item {
	it.Issuer = IssuerFor(it.Category)
	if it.Type != "" {
		return it
	}
	if t, ok := Match(Rules, Text(it)); ok {
		it.Type = t
	} else {
		it.Type = Fallback(it.Category)
	}
	return it
}

// TypeAliases maps short CLI names to type names.
var TypeAliases = map[string]string{
	"earn":    Earnings,
	"disc":    Disclosure,
	"fx":      FX,
	"macro":   Macro,
	"idx":     EquityIndex,
	"index":   EquityIndex,
	"company": CompanyNews,
	"market":  MarketNews,
}

// ResolveType maps a CLI alias or a full type name to a type. "all" and the
// empty string mean no filter.
func ResolveType(alias string) (string, error) {
	alias = strings.TrimSpace(alias)
	if alias == "" || strings.EqualFold(alias, "all") {
		return "all", nil
	}
	if t, ok := TypeAliases[strings.ToLower(alias)]; ok {
		return t, nil
	}
	for _, t := range AllTypes() {
		if strings.EqualFold(t, alias) {
			return t, nil
		}
	}
	valid := make([]string, 0, len(TypeAliases))
	for k := range TypeAliases {
		valid = append(valid, k)
	}
	sort.Strings(valid)
	return "", fmt.Errorf("unknown type %q (valid: %s)", alias, strings.Join(valid, ", "))
}
