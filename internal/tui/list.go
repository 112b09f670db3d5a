package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/awano27/fin-news-site/internal/item"
	"github.com/awano27/fin-news-site/internal/query"
)

func relativeTime(t *time.Time, now time.Time) string {
	if t == nil {
		return "日時不明"
	}
	d := now.Sub(*t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh", int(d.Hours()))
	case d < 7*24*time.Hour:
		return fmt.Sprintf("%dd", int(d.Hours()/24))
	default:
		return t.In(item.Zone).Format("1/2")
	}
}

func stars(score int) string {
	return strings.Repeat("★", score) + strings.Repeat("☆", 5-score)
}

func renderListItem(e query.Entry, selected bool, width int, now time.Time) string {
	if width < 10 {
		width = 30
	}

	var title string
	if selected {
		title = itemSelectedStyle.Render("> " + truncateStr(e.Item.Title, width-4))
	} else {
		title = itemTitleStyle.Render("  " + truncateStr(e.Item.Title, width-4))
	}

	meta := "  " + scoreStyle.Render(stars(e.Score)) + " " +
		itemSourceStyle.Render(e.Item.Source) + " " +
		itemTimeStyle.Render("· "+relativeTime(e.Item.PublishedAt, now))

	return title + "\n" + meta
}

// truncateStr cuts s to n display cells, counting wide runes as two.
func truncateStr(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if lipgloss.Width(s) <= n {
		return s
	}
	if n <= 3 {
		return cutWidth(s, n)
	}
	return cutWidth(s, n-3) + "..."
}

func cutWidth(s string, n int) string {
	var b strings.Builder
	w := 0
	for _, r := range s {
		rw := lipgloss.Width(string(r))
		if w+rw > n {
			break
		}
		b.WriteRune(r)
		w += rw
	}
	return b.String()
}

func renderList(entries []query.Entry, cursor int, height int, width int, now time.Time) string {
	if len(entries) == 0 {
		return lipglossCenter("No items match", width, height)
	}

	// Each item is 2 lines + 1 blank line = 3 lines
	itemHeight := 3
	visible := height / itemHeight
	if visible < 1 {
		visible = 1
	}

	start := 0
	if cursor >= visible {
		start = cursor - visible + 1
	}
	end := start + visible
	if end > len(entries) {
		end = len(entries)
		start = end - visible
		if start < 0 {
			start = 0
		}
	}

	var b strings.Builder
	for i := start; i < end; i++ {
		b.WriteString(renderListItem(entries[i], i == cursor, width, now))
		if i < end-1 {
			b.WriteString("\n")
		}
	}

	return b.String()
}

func lipglossCenter(s string, width, height int) string {
	pad := (width - lipgloss.Width(s)) / 2
	if pad < 0 {
		pad = 0
	}
	return strings.Repeat("\n", height/3) + strings.Repeat(" ", pad) + s
}
