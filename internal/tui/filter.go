package tui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/awano27/fin-news-site/internal/query"
)

// chip is one facet of the query state shown in the filter bar.
type chip int

const (
	chipWindow chip = iota
	chipCategory
	chipType
	chipIssuer
	chipDedupe
	chipSort
	chipCount
)

var chipNames = [chipCount]string{"window", "category", "type", "issuer", "dedupe", "sort"}

type filterBar struct {
	filterMode   bool
	filterCursor chip
}

func (f *filterBar) left() {
	if f.filterCursor > 0 {
		f.filterCursor--
	}
}

func (f *filterBar) right() {
	if f.filterCursor < chipCount-1 {
		f.filterCursor++
	}
}

// advance returns st with the facet c moved to its next value.
func advance(st query.State, c chip) query.State {
	switch c {
	case chipWindow:
		return st.NextWindow()
	case chipCategory:
		return st.NextCategory()
	case chipType:
		return st.NextType()
	case chipIssuer:
		return st.NextIssuer()
	case chipDedupe:
		return st.ToggleDedupe()
	case chipSort:
		return st.NextSort()
	}
	return st
}

func windowLabel(d time.Duration) string {
	switch {
	case d <= 0:
		return "all time"
	case d%(24*time.Hour) == 0:
		return fmt.Sprintf("%dd", d/(24*time.Hour))
	default:
		return fmt.Sprintf("%dh", d/time.Hour)
	}
}

func chipValue(st query.State, c chip) string {
	switch c {
	case chipWindow:
		return windowLabel(st.Window)
	case chipCategory:
		return st.Category
	case chipType:
		return st.Type
	case chipIssuer:
		return st.Issuer
	case chipDedupe:
		if st.Dedupe {
			return "on"
		}
		return "off"
	case chipSort:
		return st.Sort.Label()
	}
	return ""
}

// narrowing reports whether chip c currently departs from the default state.
func narrowing(st query.State, c chip) bool {
	def := query.Default()
	return chipValue(st, c) != chipValue(def, c)
}

func (f *filterBar) render(st query.State, width int) string {
	sep := tabSeparatorStyle.Render(" · ")

	var row string
	for c := chip(0); c < chipCount; c++ {
		style := tabInactiveStyle
		if narrowing(st, c) {
			style = tabActiveStyle
		}
		label := chipNames[c] + ": " + chipValue(st, c)
		if f.filterMode && c == f.filterCursor {
			label = "[" + label + "]"
		}
		candidate := row
		if c > 0 {
			candidate += sep
		}
		candidate += style.Render(label)
		if lipgloss.Width(candidate) > width && row != "" {
			break
		}
		row = candidate
	}

	barStyle := lipgloss.NewStyle().
		Background(colorTabBg).
		Width(width).
		PaddingLeft(1)
	return barStyle.Render(row)
}
