package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/awano27/fin-news-site/internal/briefing"
	"github.com/awano27/fin-news-site/internal/item"
	"github.com/awano27/fin-news-site/internal/signal"
)

func renderBriefOpening(b *briefing.Briefing, height int) string {
	var lines []string

	title := briefTitleStyle.Render(fmt.Sprintf("%s  %sのブリーフィング", b.Greeting, b.DateLabel))
	lines = append(lines, "", "  "+title, "")

	lines = append(lines, "  "+briefMetaStyle.Render(fmt.Sprintf("Items scanned: %d", b.Scanned)))
	if b.Focus != "" {
		lines = append(lines, "  "+briefMetaStyle.Render("Focus: "+b.Focus))
	}
	lines = append(lines, "  "+briefMetaStyle.Render(fmt.Sprintf("Selected: %d", b.Selected)))
	if b.ActiveSources != "" {
		lines = append(lines, "  "+briefMetaStyle.Render("Sources: "+b.ActiveSources))
	}
	lines = append(lines, "")

	if len(b.Themes) > 0 {
		lines = append(lines, "  "+briefBodyStyle.Render("Themes:"))
		for _, theme := range b.Themes {
			lines = append(lines, "  "+briefBodyStyle.Render("  ・"+theme))
		}
		lines = append(lines, "")
	}
	if b.Selected == 0 {
		lines = append(lines, "  "+briefBodyStyle.Render("この期間の記事はありません"))
	}

	return padTop(strings.Join(lines, "\n"), height)
}

func renderBriefCard(card briefing.Card, total int, width, height int, showBreakdown bool) string {
	cardWidth := width - 8
	if cardWidth < 30 {
		cardWidth = 30
	}
	it := card.Entry.Item

	var body []string

	published := "日時不明"
	if it.PublishedAt != nil {
		published = it.PublishedAt.In(item.Zone).Format("1/2 15:04")
	}
	body = append(body, briefMetaStyle.Render(it.Source+" · "+published))
	body = append(body, briefTitleStyle.Render(wrapText(it.Title, cardWidth-2)))
	body = append(body, "")

	meta := categoryStyle(it.Category).Render(string(it.Category)) +
		briefMetaStyle.Render(fmt.Sprintf("  ·  %s  ·  %d min  ·  ", it.Type, card.ReadingTime)) +
		scoreStyle.Render(stars(card.Entry.Score))
	body = append(body, meta)

	if card.Excerpt != "" {
		body = append(body, "")
		for _, line := range strings.Split(wrapText(card.Excerpt, cardWidth-2), "\n") {
			body = append(body, briefExcerptStyle.Render(line))
		}
	}

	cardBox := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorPrimary).
		Padding(0, 1).
		Width(cardWidth).
		Render(strings.Join(body, "\n"))

	counter := briefMetaStyle.Render(fmt.Sprintf("%d/%d", card.Index, total))

	lines := []string{"", "  " + counter}
	for _, l := range strings.Split(cardBox, "\n") {
		lines = append(lines, "  "+l)
	}
	content := strings.Join(lines, "\n")

	if showBreakdown {
		content += "\n\n" + renderBreakdown(card.Entry.Breakdown)
	}
	return padTop(content, height)
}

func renderBreakdown(b signal.Breakdown) string {
	rows := []struct {
		label string
		value int
	}{
		{"Base", b.Base},
		{"Market", b.Market},
		{"Company filing", b.CompanyDocs},
		{"Macro / FX / index", b.MacroLike},
		{"Filing type", b.DocType},
		{"Tickers", b.Tickers},
		{"Last 24h", b.Fresh},
		{"Urgent keyword", b.Urgent},
	}

	lines := []string{"  " + briefTitleStyle.Render("Score breakdown"), ""}
	for _, r := range rows {
		lines = append(lines, briefBodyStyle.Render(fmt.Sprintf("  %-20s %+d", r.label, r.value)))
	}
	lines = append(lines, "")
	lines = append(lines, briefBodyStyle.Render(fmt.Sprintf("  Sum %d, final %d", b.Raw(), b.Final)))
	return strings.Join(lines, "\n")
}

func padTop(content string, height int) string {
	contentLines := strings.Count(content, "\n") + 1
	topPad := (height - contentLines) / 3
	if topPad < 0 {
		topPad = 0
	}
	return strings.Repeat("\n", topPad) + content
}
