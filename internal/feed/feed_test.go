package feed

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/awano27/fin-news-site/internal/config"
	"github.com/awano27/fin-news-site/internal/item"
)

func TestTruncate(t *testing.T) {
	tests := []struct {
		input string
		n     int
		want  string
	}{
		{"short", 10, "short"},
		{"exactly ten", 11, "exactly ten"},
		{"this is a long string", 10, "this is..."},
		{"abc", 3, "abc"},
		{"abcd", 3, "abc"},
		{"", 5, ""},
	}
	for _, tt := range tests {
		got := truncate(tt.input, tt.n)
		if got != tt.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.input, tt.n, got, tt.want)
		}
	}
}

func TestTruncateUTF8(t *testing.T) {
	// Japanese characters are multi-byte but should truncate by rune
	input := "こんにちは世界です"
	got := truncate(input, 5)
	want := "こん..."
	if got != want {
		t.Errorf("truncate(%q, 5) = %q, want %q", input, got, want)
	}
}

func TestStripHTML(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"<p>Hello</p>", "Hello"},
		{"<b>Bold</b> and <i>italic</i>", "Bold and italic"},
		{"No tags here", "No tags here"},
		{"<div>  Multiple   spaces  </div>", "Multiple spaces"},
		{"", ""},
		{"<a href=\"url\">Link</a> text", "Link text"},
		{"<p>one</p><p>two</p>", "one two"},
		{"S&amp;P 500", "S&P 500"},
	}
	for _, tt := range tests {
		got := stripHTML(tt.input)
		if got != tt.want {
			t.Errorf("stripHTML(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

const rssBody = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
<channel>
  <title>Markets</title>
  <item>
    <title>日経平均が反発</title>
    <link>https://news.example.jp/a/1</link>
    <description>&lt;p&gt;東京株式市場で&lt;b&gt;日経平均&lt;/b&gt;は反発&lt;/p&gt;</description>
    <pubDate>Wed, 14 Oct 2026 09:30:00 +0900</pubDate>
    <category>株式</category>
    <category>指数</category>
    <enclosure url="https://news.example.jp/img/1.jpg" length="100" type="image/jpeg"/>
  </item>
  <item>
    <title>No date</title>
    <link>https://news.example.jp/a/2</link>
  </item>
</channel>
</rss>`

func serve(t *testing.T, contentType, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("User-Agent") != UserAgent {
			t.Errorf("unexpected user agent %q", r.Header.Get("User-Agent"))
		}
		w.Header().Set("Content-Type", contentType)
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestRSSConnector(t *testing.T) {
	srv := serve(t, "application/rss+xml", rssBody)
	src := config.Source{Name: "Markets", Type: "rss", URL: srv.URL, Category: "market", Tags: []string{"static"}}

	raws, err := New(srv.Client()).Fetch(context.Background(), src)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(raws) != 2 {
		t.Fatalf("expected 2 records, got %d", len(raws))
	}

	first := raws[0]
	if first.String(item.FieldURL) != "https://news.example.jp/a/1" {
		t.Errorf("url = %q", first.String(item.FieldURL))
	}
	if first.String(item.FieldSummary) != "東京株式市場で 日経平均 は反発" {
		t.Errorf("summary = %q", first.String(item.FieldSummary))
	}
	pub, ok := first[item.FieldPublishedAt].(time.Time)
	if !ok || !pub.Equal(time.Date(2026, 10, 14, 0, 30, 0, 0, time.UTC)) {
		t.Errorf("publishedAt = %v", first[item.FieldPublishedAt])
	}
	if first.String(item.FieldThumbnail) != "https://news.example.jp/img/1.jpg" {
		t.Errorf("thumbnail = %q", first.String(item.FieldThumbnail))
	}
	if first.String(item.FieldCategory) != "market" || first.String(item.FieldSource) != "Markets" {
		t.Errorf("source defaults not stamped: %v", first)
	}

	// Feed categories win over the source's static tags.
	if it := item.Normalize(first); len(it.Tags) != 2 || it.Tags[0] != "株式" {
		t.Errorf("tags = %v", it.Tags)
	}
	if it := item.Normalize(raws[1]); len(it.Tags) != 1 || it.Tags[0] != "static" {
		t.Errorf("static tags not stamped: %v", it.Tags)
	}
	if it := item.Normalize(raws[1]); it.PublishedAt != nil {
		t.Errorf("expected unknown publish time, got %v", it.PublishedAt)
	}
}

const listPage = `<html><body>
<ul class="news">
  <li class="row"><a class="t" href="/disc/100">業績予想の修正に関するお知らせ</a><time datetime="2026-10-14T15:00:00+09:00">15:00</time><img src="/th/100.png"></li>
  <li class="row"><a class="t" href="https://other.example.com/x">他社リンク</a><span class="when">2026/10/14 14:00</span></li>
  <li class="row"></li>
</ul>
</body></html>`

func TestHTMLConnector(t *testing.T) {
	srv := serve(t, "text/html", listPage)
	src := config.Source{
		Name:     "Disclosures",
		Type:     "html",
		URL:      srv.URL + "/list/",
		Category: "company",
		Selectors: &config.Selectors{
			Item: "li.row", Title: "a.t", Link: "a.t", Time: "time", Thumbnail: "img",
		},
	}

	raws, err := New(srv.Client()).Fetch(context.Background(), src)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(raws) != 2 {
		t.Fatalf("expected 2 records (empty row skipped), got %d", len(raws))
	}
	if got := raws[0].String(item.FieldURL); got != srv.URL+"/disc/100" {
		t.Errorf("relative link not resolved: %q", got)
	}
	if got := raws[0].String(item.FieldPublishedAt); got != "2026-10-14T15:00:00+09:00" {
		t.Errorf("datetime attr not used: %q", got)
	}
	if got := raws[0].String(item.FieldThumbnail); got != srv.URL+"/th/100.png" {
		t.Errorf("thumbnail = %q", got)
	}
	if got := raws[1].String(item.FieldURL); got != "https://other.example.com/x" {
		t.Errorf("absolute link changed: %q", got)
	}
	if raws[1].Has(item.FieldPublishedAt) {
		t.Errorf("expected no time for second row, got %v", raws[1][item.FieldPublishedAt])
	}
}

func TestJSONConnector(t *testing.T) {
	tests := []struct {
		name string
		body string
		want int
	}{
		{"array", `[{"url":"https://x.example/1","title":"a","tags":["fx",3]},null,{"title":"no url"}]`, 2},
		{"wrapped", `{"items":[{"url":"https://x.example/1"}]}`, 1},
		{"empty", `[]`, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := serve(t, "application/json", tt.body)
			src := config.Source{Name: "Pulse", Type: "json", URL: srv.URL, Category: "sns"}
			raws, err := New(srv.Client()).Fetch(context.Background(), src)
			if err != nil {
				t.Fatalf("Fetch: %v", err)
			}
			if len(raws) != tt.want {
				t.Fatalf("expected %d records, got %d", tt.want, len(raws))
			}
			for _, r := range raws {
				if r.String(item.FieldCategory) != "sns" {
					t.Errorf("category not stamped: %v", r)
				}
			}
		})
	}
}

func TestJSONConnectorKeepsRecordCategory(t *testing.T) {
	srv := serve(t, "application/json", `[{"url":"https://x.example/1","category":"company","verified":false}]`)
	src := config.Source{Name: "Pulse", Type: "json", URL: srv.URL, Category: "sns"}
	raws, err := New(srv.Client()).Fetch(context.Background(), src)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if raws[0].String(item.FieldCategory) != "company" {
		t.Errorf("record category overwritten: %v", raws[0])
	}
	if item.Accept(raws[0]) {
		t.Error("unverified record should not be accepted")
	}
}

func TestFetchErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := New(srv.Client())
	for _, typ := range []string{"rss", "json"} {
		src := config.Source{Name: "Broken", Type: typ, URL: srv.URL}
		if _, err := c.Fetch(context.Background(), src); err == nil {
			t.Errorf("%s: expected error for 500 response", typ)
		}
	}
	if _, err := c.Fetch(context.Background(), config.Source{Name: "X", Type: "gopher", URL: srv.URL}); err == nil {
		t.Error("expected error for unknown connector type")
	}
	if _, err := c.Fetch(context.Background(), config.Source{Name: "X", Type: "html", URL: srv.URL}); err == nil {
		t.Error("expected error for html source without selectors")
	}
}

type stubConnector struct{ raws []item.Raw }

func (s stubConnector) Fetch(context.Context, config.Source) ([]item.Raw, error) { return s.raws, nil }

func TestRegister(t *testing.T) {
	c := New(nil)
	c.Register("stub", stubConnector{raws: []item.Raw{{item.FieldURL: "u"}}})
	raws, err := c.Fetch(context.Background(), config.Source{Name: "S", Type: "stub", Locale: "en"})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if raws[0].String(item.FieldLocale) != "en" || raws[0].String(item.FieldSource) != "S" {
		t.Errorf("defaults not stamped: %v", raws[0])
	}
}
