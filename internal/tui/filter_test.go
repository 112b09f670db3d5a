package tui

import (
	"testing"
	"time"

	"github.com/awano27/fin-news-site/internal/query"
)

func TestWindowLabel(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{6 * time.Hour, "6h"},
		{24 * time.Hour, "1d"},
		{7 * 24 * time.Hour, "7d"},
		{0, "all time"},
	}
	for _, tt := range tests {
		if got := windowLabel(tt.d); got != tt.want {
			t.Errorf("windowLabel(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}

func TestAdvance(t *testing.T) {
	st := query.Default()

	if got := advance(st, chipCategory).Category; got != "market" {
		t.Errorf("category after advance = %q", got)
	}
	if got := advance(st, chipDedupe).Dedupe; got {
		t.Error("dedupe should be off after advance")
	}
	if got := advance(st, chipSort).Sort; got != query.DateAsc {
		t.Errorf("sort after advance = %q", got)
	}
	if got := advance(st, chipWindow).Window; got != 72*time.Hour {
		t.Errorf("window after advance = %v", got)
	}
	if st.Category != query.All {
		t.Error("advance modified the input state")
	}
}

func TestNarrowing(t *testing.T) {
	st := query.Default()
	for c := chip(0); c < chipCount; c++ {
		if narrowing(st, c) {
			t.Errorf("%s narrows the default state", chipNames[c])
		}
	}
	if !narrowing(st.WithIssuer("withIssuer"), chipIssuer) {
		t.Error("issuer filter not reported")
	}
}

func TestFilterBarCursor(t *testing.T) {
	var f filterBar
	f.left()
	if f.filterCursor != chipWindow {
		t.Errorf("cursor moved below zero: %d", f.filterCursor)
	}
	for i := 0; i < 10; i++ {
		f.right()
	}
	if f.filterCursor != chipSort {
		t.Errorf("cursor = %d, want last chip", f.filterCursor)
	}
}
