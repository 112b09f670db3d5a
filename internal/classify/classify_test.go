package classify

import (
	"regexp"
	"testing"

	"github.com/awano27/fin-news-site/internal/item"
)

func classifyTitle(c item.Category, title string) item.Item {
	return Classify(item.Item{Category: c, Title: title})
}

func TestClassifyEarnings(t *testing.T) {
	it := classifyTitle(item.Company, "ソニーG、第2四半期決算を発表")
	if it.Type != Earnings {
		t.Errorf("expected earnings, got %s", it.Type)
	}
}

func TestClassifyDisclosure(t *testing.T) {
	it := classifyTitle(item.Company, "自己株式取得に関するお知らせ（適時開示）")
	if it.Type != Disclosure {
		t.Errorf("expected disclosure, got %s", it.Type)
	}
}

func TestClassifyFX(t *testing.T) {
	it := classifyTitle(item.Market, "Yen slides as USD/JPY tests 155")
	if it.Type != FX {
		t.Errorf("expected fx, got %s", it.Type)
	}
}

func TestClassifyMacro(t *testing.T) {
	it := classifyTitle(item.Market, "米CPI、市場予想を上回る")
	if it.Type != Macro {
		t.Errorf("expected macro, got %s", it.Type)
	}
}

func TestClassifyEquityIndex(t *testing.T) {
	it := classifyTitle(item.Market, "日経平均、3日続伸")
	if it.Type != EquityIndex {
		t.Errorf("expected equityIndex, got %s", it.Type)
	}
}

func TestClassifyFirstRuleWins(t *testing.T) {
	// Matches both the earnings and the disclosure rule.
	it := classifyTitle(item.Company, "決算短信の適時開示")
	if it.Type != Earnings {
		t.Errorf("expected earnings to win over disclosure, got %s", it.Type)
	}
}

func TestClassifyUsesSummaryAndTags(t *testing.T) {
	it := Classify(item.Item{Category: item.Market, Title: "今日の相場", Tags: []string{"為替"}})
	if it.Type != FX {
		t.Errorf("expected fx from tags, got %s", it.Type)
	}
	it = Classify(item.Item{Category: item.Market, Title: "今日の相場", Summary: "FOMC議事録の公表"})
	if it.Type != Macro {
		t.Errorf("expected macro from summary, got %s", it.Type)
	}
}

func TestClassifyWordBoundaries(t *testing.T) {
	// "their" and "first" contain "ir"; "download" contains ダウ in katakana form.
	it := classifyTitle(item.Market, "Their first look at the ダウンロード ranking")
	if it.Type != MarketNews {
		t.Errorf("expected marketNews, got %s", it.Type)
	}
}

func TestClassifyFullWidthLatin(t *testing.T) {
	if it := classifyTitle(item.Company, "ＥＰＳ上振れ"); it.Type != Earnings {
		t.Errorf("expected earnings, got %s", it.Type)
	}
	if it := classifyTitle(item.Market, "ＮＡＳＤＡＱが反発"); it.Type != EquityIndex {
		t.Errorf("expected equityIndex, got %s", it.Type)
	}
	// Full-width katakana must survive the fold.
	if it := classifyTitle(item.Market, "ナスダック総合が反発"); it.Type != EquityIndex {
		t.Errorf("expected equityIndex, got %s", it.Type)
	}
}

func TestClassifyFallback(t *testing.T) {
	if it := classifyTitle(item.Company, "新工場の稼働を開始"); it.Type != CompanyNews {
		t.Errorf("expected companyNews, got %s", it.Type)
	}
	if it := classifyTitle(item.SNS, "おはようございます"); it.Type != MarketNews {
		t.Errorf("expected marketNews, got %s", it.Type)
	}
}

func TestClassifyExplicitTypeWins(t *testing.T) {
	it := Classify(item.Item{Category: item.Market, Title: "日経平均 決算", Type: "custom"})
	if it.Type != "custom" {
		t.Errorf("explicit type overwritten: %s", it.Type)
	}
}

func TestClassifyIdempotent(t *testing.T) {
	once := classifyTitle(item.Company, "業績予想の修正")
	twice := Classify(once)
	if once.Type != twice.Type || once.Issuer != twice.Issuer {
		t.Errorf("classify not idempotent: %v vs %v", once, twice)
	}
}

func TestClassifyIssuer(t *testing.T) {
	tests := []struct {
		cat  item.Category
		want item.Issuer
	}{
		{item.Company, item.WithIssuer},
		{item.Market, item.NoIssuer},
		{item.SNS, item.NoIssuer},
	}
	for _, tt := range tests {
		// Explicit types still get an issuer.
		it := Classify(item.Item{Category: tt.cat, Type: Earnings})
		if it.Issuer != tt.want {
			t.Errorf("Classify(%s).Issuer = %s, want %s", tt.cat, it.Issuer, tt.want)
		}
	}
}

func TestMatchOrderIsTableOrder(t *testing.T) {
	rules := []Rule{
		{"second", regexp.MustCompile(`b`)},
		{"first", regexp.MustCompile(`a`)},
	}
	got, ok := Match(rules, "ab")
	if !ok || got != "second" {
		t.Errorf("Match = %q, %v; want second", got, ok)
	}
	if _, ok := Match(rules, "zzz"); ok {
		t.Error("expected no match")
	}
}

func TestResolveType(t *testing.T) {
	tests := []struct {
		alias    string
		expected string
		wantErr  bool
	}{
		{"idx", EquityIndex, false},
		{"disc", Disclosure, false},
		{"earnings", Earnings, false},
		{"EquityIndex", EquityIndex, false},
		{"all", "all", false},
		{"", "all", false},
		{"bogus", "", true},
	}

	for _, tt := range tests {
		got, err := ResolveType(tt.alias)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ResolveType(%q): expected error", tt.alias)
			}
			continue
		}
		if err != nil {
			t.Errorf("ResolveType(%q): unexpected error: %v", tt.alias, err)
			continue
		}
		if got != tt.expected {
			t.Errorf("ResolveType(%q) = %q, want %q", tt.alias, got, tt.expected)
		}
	}
}

func TestAllTypes(t *testing.T) {
	if n := len(AllTypes()); n != 7 {
		t.Errorf("expected 7 types, got %d", n)
	}
}
