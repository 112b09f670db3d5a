package tui

import (
	"github.com/awano27/fin-news-site/internal/ingest"
	"github.com/awano27/fin-news-site/internal/item"
)

type itemsLoadedMsg struct {
	items []item.Item
}

type errMsg struct {
	err error
}

type ingestDoneMsg struct {
	result ingest.Result
	err    error
}

type themesMsg struct {
	themes []string
}
