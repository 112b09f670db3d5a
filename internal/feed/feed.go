// Package feed holds the connectors that turn configured sources into raw
// records.
package feed

import (
	"context"
	"fmt"
	"html"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/awano27/fin-news-site/internal/config"
	"github.com/awano27/fin-news-site/internal/item"
)

// UserAgent is sent with every connector request.
const UserAgent = "fin-news/1.0 (+https://github.com/awano27/fin-news-site)"

// Connector fetches one source. Zero records is not an error.
type Connector interface {
	Fetch(ctx context.Context, source config.Source) ([]item.Raw, error)
}

// Connectors dispatches a source to the connector for its type.
type Connectors struct {
	byType map[string]Connector
}

// New builds the rss, atom, html and json connectors around client. A nil
// client gets a 30s timeout default.
func New(client *http.Client) *Connectors {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	rss := NewRSSConnector(client)
	return &Connectors{byType: map[string]Connector{
		"rss":  rss,
		"atom": rss,
		"html": NewHTMLConnector(client),
		"json": NewJSONConnector(client),
	}}
}

// Register replaces the connector for typ.
func (c *Connectors) Register(typ string, conn Connector) {
	c.byType[typ] = conn
}

// Fetch runs the connector for source.Type and stamps source defaults onto
// every record.
func (c *Connectors) Fetch(ctx context.Context, source config.Source) ([]item.Raw, error) {
	conn, ok := c.byType[source.Type]
	if !ok {
		return nil, fmt.Errorf("source %q: no connector for type %q", source.Name, source.Type)
	}
	raws, err := conn.Fetch(ctx, source)
	if err != nil {
		return nil, err
	}
	for _, r := range raws {
		stamp(r, source)
	}
	return raws, nil
}

// stamp fills the source's category, label, locale and static tags where the
// record carries none of its own.
func stamp(r item.Raw, source config.Source) {
	if source.Category != "" {
		r.SetDefault(item.FieldCategory, source.Category)
	}
	r.SetDefault(item.FieldSource, source.Name)
	if source.Locale != "" {
		r.SetDefault(item.FieldLocale, source.Locale)
	}
	if len(source.Tags) > 0 {
		r.SetDefault(item.FieldTags, append([]string(nil), source.Tags...))
	}
}

// get issues a GET for url and returns the body when the status is 2xx.
func get(ctx context.Context, client *http.Client, url, accept string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", UserAgent)
	if accept != "" {
		req.Header.Set("Accept", accept)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		resp.Body.Close()
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return resp.Body, nil
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	if n <= 3 {
		return string(runes[:n])
	}
	return string(runes[:n-3]) + "..."
}

func stripHTML(s string) string {
	var b strings.Builder
	inTag := false
	for _, r := range s {
		switch {
		case r == '<':
			inTag = true
		case r == '>':
			inTag = false
			b.WriteRune(' ')
		case !inTag:
			b.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(html.UnescapeString(b.String())), " ")
}
