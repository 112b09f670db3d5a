package feed

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/mmcdole/gofeed"

	"github.com/awano27/fin-news-site/internal/config"
	"github.com/awano27/fin-news-site/internal/item"
)

// RSSConnector reads RSS and Atom feeds.
type RSSConnector struct {
	parser *gofeed.Parser
}

func NewRSSConnector(client *http.Client) *RSSConnector {
	p := gofeed.NewParser()
	p.Client = client
	p.UserAgent = UserAgent
	return &RSSConnector{parser: p}
}

func (f *RSSConnector) Fetch(ctx context.Context, source config.Source) ([]item.Raw, error) {
	feed, err := f.parser.ParseURLWithContext(source.URL, ctx)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", source.Name, err)
	}

	raws := make([]item.Raw, 0, len(feed.Items))
	for _, fi := range feed.Items {
		desc := fi.Description
		if desc == "" {
			desc = fi.Content
		}
		r := item.Raw{
			item.FieldTitle:   strings.TrimSpace(fi.Title),
			item.FieldURL:     strings.TrimSpace(fi.Link),
			item.FieldSummary: truncate(stripHTML(desc), 300),
		}
		switch {
		case fi.PublishedParsed != nil:
			r[item.FieldPublishedAt] = *fi.PublishedParsed
		case fi.UpdatedParsed != nil:
			r[item.FieldPublishedAt] = *fi.UpdatedParsed
		case fi.Published != "":
			r[item.FieldPublishedAt] = fi.Published
		}
		if len(fi.Categories) > 0 {
			r[item.FieldTags] = append([]string(nil), fi.Categories...)
		}
		if thumb := thumbnail(fi); thumb != "" {
			r[item.FieldThumbnail] = thumb
		}
		raws = append(raws, r)
	}
	return raws, nil
}

func thumbnail(fi *gofeed.Item) string {
	if fi.Image != nil && fi.Image.URL != "" {
		return fi.Image.URL
	}
	for _, enc := range fi.Enclosures {
		if enc != nil && strings.HasPrefix(enc.Type, "image/") {
			return enc.URL
		}
	}
	return ""
}
