package tui

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"

	"github.com/awano27/fin-news-site/internal/item"
	"github.com/awano27/fin-news-site/internal/query"
)

func renderPreview(e *query.Entry, width, height, scroll int) string {
	if e == nil {
		return lipglossCenter("Select an item", width, height)
	}
	it := e.Item

	contentWidth := width - 2
	if contentWidth < 10 {
		contentWidth = 10
	}

	title := previewTitleStyle.Width(contentWidth).Render(it.Title)

	published := "日時不明"
	if it.PublishedAt != nil {
		published = it.PublishedAt.In(item.Zone).Format("2006/01/02 15:04")
	}
	source := previewSourceStyle.Render(fmt.Sprintf("%s · %s", it.Source, published))

	facets := categoryStyle(it.Category).Render(string(it.Category)) +
		briefMetaStyle.Render(fmt.Sprintf("  %s · %s  ", it.Type, it.Issuer)) +
		scoreStyle.Render(stars(e.Score))

	var extra []string
	if len(it.Tickers) > 0 {
		extra = append(extra, briefMetaStyle.Render("tickers: "+strings.Join(it.Tickers, ", ")))
	}
	if len(it.Tags) > 0 {
		extra = append(extra, briefMetaStyle.Render("tags: "+strings.Join(it.Tags, ", ")))
	}
	if !it.Verified {
		extra = append(extra, itemSelectedStyle.Render("unverified"))
	}

	desc := it.Summary
	if desc == "" {
		desc = "(要約なし)"
	}
	body := previewBodyStyle.Render(wrapText(desc, contentWidth))
	link := previewLinkStyle.Render(wrapText(it.URL, contentWidth))

	parts := []string{title, source, facets}
	parts = append(parts, extra...)
	parts = append(parts, "", body, "", link)
	content := lipgloss.JoinVertical(lipgloss.Left, parts...)

	lines := strings.Split(content, "\n")
	if scroll > 0 && scroll < len(lines) {
		lines = lines[scroll:]
	}

	if len(lines) < height {
		lines = append(lines, make([]string, height-len(lines))...)
	} else if len(lines) > height {
		lines = lines[:height]
	}

	return strings.Join(lines, "\n")
}

// wrapText wraps on spaces and hard-breaks runs wider than width, which is
// the common case for Japanese text.
func wrapText(s string, width int) string {
	if width <= 0 {
		return s
	}
	words := strings.Fields(s)
	if len(words) == 0 {
		return ""
	}

	var lines []string
	line := ""
	for _, w := range words {
		for lipgloss.Width(w) > width {
			if line != "" {
				lines = append(lines, line)
				line = ""
			}
			head := cutWidth(w, width)
			if head == "" {
				_, size := utf8.DecodeRuneInString(w)
				head = w[:size]
			}
			lines = append(lines, head)
			w = w[len(head):]
		}
		switch {
		case w == "":
		case line == "":
			line = w
		case lipgloss.Width(line)+1+lipgloss.Width(w) > width:
			lines = append(lines, line)
			line = w
		default:
			line += " " + w
		}
	}
	if line != "" {
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}
