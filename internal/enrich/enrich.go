// Package enrich fills in missing summaries from the linked article before
// records are normalized.
package enrich

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-shiori/go-readability"
	"github.com/rs/zerolog"

	"github.com/awano27/fin-news-site/internal/ai"
	"github.com/awano27/fin-news-site/internal/item"
)

const (
	maxTextChars    = 4000
	maxSummaryChars = 200
)

// Enricher extracts article text with readability and optionally condenses
// it with an LLM.
type Enricher struct {
	client     *http.Client
	summarizer ai.Summarizer
	log        zerolog.Logger
}

// New returns an Enricher. summarizer may be nil, in which case the
// readability excerpt becomes the summary.
func New(timeout time.Duration, summarizer ai.Summarizer, log zerolog.Logger) *Enricher {
	return &Enricher{
		client:     &http.Client{Timeout: timeout},
		summarizer: summarizer,
		log:        log.With().Str("component", "enrich").Logger(),
	}
}

// Article is the readable part of a page.
type Article struct {
	Title   string
	Excerpt string
	Text    string
}

// Extract fetches rawURL and runs readability over it.
func (e *Enricher) Extract(ctx context.Context, rawURL string) (Article, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return Article{}, fmt.Errorf("invalid URL: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return Article{}, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", "fin-news/1.0")

	resp, err := e.client.Do(req)
	if err != nil {
		return Article{}, fmt.Errorf("fetching %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Article{}, fmt.Errorf("fetching %s: unexpected status %d", rawURL, resp.StatusCode)
	}

	article, err := readability.FromReader(resp.Body, u)
	if err != nil {
		return Article{}, fmt.Errorf("parsing article: %w", err)
	}

	text := strings.Join(strings.Fields(article.TextContent), " ")
	return Article{
		Title:   strings.TrimSpace(article.Title),
		Excerpt: strings.Join(strings.Fields(article.Excerpt), " "),
		Text:    clip(text, maxTextChars),
	}, nil
}

// Enrich fills the summary of every record that has a url but no summary.
// Failures are logged per record and leave the record unchanged. It returns
// the number of records enriched.
func (e *Enricher) Enrich(ctx context.Context, raws []item.Raw) int {
	n := 0
	for _, r := range raws {
		if ctx.Err() != nil {
			break
		}
		if r.String(item.FieldSummary) != "" || r.String(item.FieldURL) == "" {
			continue
		}
		if e.enrichOne(ctx, r) {
			n++
		}
	}
	return n
}

func (e *Enricher) enrichOne(ctx context.Context, r item.Raw) bool {
	link := r.String(item.FieldURL)
	article, err := e.Extract(ctx, link)
	if err != nil {
		e.log.Warn().Err(err).Str("url", link).Msg("readability extraction failed")
		return false
	}

	summary := article.Excerpt
	if summary == "" {
		summary = article.Text
	}

	if e.summarizer != nil && article.Text != "" {
		title := r.String(item.FieldTitle)
		if title == "" {
			title = article.Title
		}
		res, err := e.summarizer.Summarize(ctx, title, article.Text)
		if err != nil {
			e.log.Warn().Err(err).Str("url", link).Msg("summarization failed, using excerpt")
		} else if res.Summary != "" {
			summary = res.Summary
			if len(res.Tags) > 0 {
				r.SetDefault(item.FieldTags, res.Tags)
			}
		}
	}

	if summary == "" {
		return false
	}
	r[item.FieldSummary] = clip(summary, maxSummaryChars)
	r.SetDefault(item.FieldTitle, article.Title)
	return true
}

func clip(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-1]) + "…"
}
