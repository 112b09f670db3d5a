package tui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
)

type statusInfo struct {
	shown      int
	total      int
	search     string
	searching  bool
	refreshing bool
	updated    time.Time
	now        time.Time
}

func renderStatusBar(s statusInfo, width int) string {
	left := fmt.Sprintf(" %s / %s items", humanize.Comma(int64(s.shown)), humanize.Comma(int64(s.total)))
	if s.search != "" {
		left += " · " + searchPromptStyle.Render("/"+s.search)
	}
	if s.refreshing {
		left += " (refreshing...)"
	} else if !s.updated.IsZero() {
		left += " · updated " + humanize.RelTime(s.updated, s.now, "ago", "from now")
	}

	right := " / search  f filter  b brief  r refresh  ? help  q quit "
	if s.searching {
		right = " esc clear  enter done "
	}

	gap := width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 0 {
		gap = 0
	}

	bar := left + fmt.Sprintf("%*s", gap, "") + right

	return statusBarStyle.Width(width).Render(bar)
}

func renderBottomBar(hints string, width int) string {
	right := " " + hints + " "
	gap := width - lipgloss.Width(right)
	if gap < 0 {
		gap = 0
	}
	return statusBarStyle.Width(width).Render(fmt.Sprintf("%*s", gap, "") + right)
}
