package feed

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/awano27/fin-news-site/internal/config"
	"github.com/awano27/fin-news-site/internal/item"
)

// HTMLConnector scrapes list pages with the source's CSS selectors.
type HTMLConnector struct {
	client *http.Client
}

func NewHTMLConnector(client *http.Client) *HTMLConnector {
	return &HTMLConnector{client: client}
}

func (h *HTMLConnector) Fetch(ctx context.Context, source config.Source) ([]item.Raw, error) {
	sel := source.Selectors
	if sel == nil || sel.Item == "" {
		return nil, fmt.Errorf("fetching %s: no selectors configured", source.Name)
	}
	base, err := url.Parse(source.URL)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", source.Name, err)
	}

	body, err := get(ctx, h.client, source.URL, "text/html")
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", source.Name, err)
	}
	defer body.Close()

	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", source.Name, err)
	}

	var raws []item.Raw
	doc.Find(sel.Item).Each(func(_ int, s *goquery.Selection) {
		title := text(s, sel.Title)
		link := resolve(base, attr(s, sel.Link, "href"))
		if title == "" && link == "" {
			return
		}
		r := item.Raw{
			item.FieldTitle: title,
			item.FieldURL:   link,
		}
		if sel.Summary != "" {
			r[item.FieldSummary] = truncate(text(s, sel.Summary), 300)
		}
		if sel.Time != "" {
			if ts := attr(s, sel.Time, "datetime"); ts != "" {
				r[item.FieldPublishedAt] = ts
			} else if ts := text(s, sel.Time); ts != "" {
				r[item.FieldPublishedAt] = ts
			}
		}
		if sel.Thumbnail != "" {
			if src := resolve(base, attr(s, sel.Thumbnail, "src")); src != "" {
				r[item.FieldThumbnail] = src
			}
		}
		raws = append(raws, r)
	})
	return raws, nil
}

func text(s *goquery.Selection, selector string) string {
	return strings.Join(strings.Fields(s.Find(selector).First().Text()), " ")
}

func attr(s *goquery.Selection, selector, name string) string {
	v, _ := s.Find(selector).First().Attr(name)
	return strings.TrimSpace(v)
}

// resolve makes href absolute against the page url.
func resolve(base *url.URL, href string) string {
	if href == "" {
		return ""
	}
	u, err := url.Parse(href)
	if err != nil {
		return ""
	}
	return base.ResolveReference(u).String()
}
