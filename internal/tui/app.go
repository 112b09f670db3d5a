package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/awano27/fin-news-site/internal/ai"
	"github.com/awano27/fin-news-site/internal/briefing"
	"github.com/awano27/fin-news-site/internal/browser"
	"github.com/awano27/fin-news-site/internal/ingest"
	"github.com/awano27/fin-news-site/internal/item"
	"github.com/awano27/fin-news-site/internal/query"
	"github.com/awano27/fin-news-site/internal/store"
)

type focusPane int

const (
	focusList focusPane = iota
	focusPreview
)

type mode int

const (
	modeNormal mode = iota
	modeSearch
	modeFilter
	modeHelp
	modeBriefOpening
	modeBriefCard
)

type App struct {
	store  *store.Store
	ingest *ingest.Service

	items   []item.Item
	state   query.State
	entries []query.Entry
	cursor  int
	focus   focusPane
	mode    mode

	width  int
	height int

	searchInput textinput.Model
	spinner     spinner.Model
	filterBar   filterBar

	summarizer ai.Summarizer

	refreshing    bool
	updated       time.Time
	previewScroll int
	err           error
	briefSize     int
	brief         *briefing.Briefing
	cardCursor    int
	showBreakdown bool

	now  func() time.Time
	open func(string) error
}

// RunOpts holds all parameters for launching the TUI.
type RunOpts struct {
	Store      *store.Store
	Ingest     *ingest.Service
	State      query.State
	BriefSize  int
	Summarizer ai.Summarizer
	// Brief opens the briefing instead of the list.
	Brief bool
}

func NewApp(opts RunOpts) *App {
	ti := textinput.New()
	ti.Placeholder = "タイトル・要約・ティッカーを検索"
	ti.Prompt = searchPromptStyle.Render("/ ")
	ti.CharLimit = 100
	ti.SetValue(opts.State.Search)

	sp := spinner.New()
	sp.Spinner = spinner.MiniDot
	sp.Style = spinnerStyle

	startMode := modeNormal
	if opts.Brief {
		startMode = modeBriefOpening
	}

	return &App{
		store:       opts.Store,
		ingest:      opts.Ingest,
		state:       opts.State,
		searchInput: ti,
		spinner:     sp,
		summarizer:  opts.Summarizer,
		briefSize:   opts.BriefSize,
		mode:        startMode,
		now:         time.Now,
		open:        browser.Open,
	}
}

func (a *App) Init() tea.Cmd {
	return a.loadItemsCmd()
}

func (a *App) loadItemsCmd() tea.Cmd {
	st := a.store
	return func() tea.Msg {
		return itemsLoadedMsg{items: st.Load(context.Background())}
	}
}

// setState swaps in a new query state and recomputes the view from the full
// collection.
func (a *App) setState(st query.State) {
	a.state = st
	a.recompute()
}

func (a *App) recompute() {
	var selected string
	if a.cursor < len(a.entries) {
		selected = a.entries[a.cursor].Item.ID
	}
	a.entries = query.View(a.items, a.state, a.now())

	a.cursor = 0
	for i, e := range a.entries {
		if e.Item.ID == selected {
			a.cursor = i
			break
		}
	}
	a.previewScroll = 0
}

func (a *App) doRefresh() tea.Cmd {
	svc := a.ingest
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()
		res, err := svc.Run(ctx)
		return ingestDoneMsg{result: res, err: err}
	}
}

func (a *App) openBrowserCmd(url string) tea.Cmd {
	open := a.open
	return func() tea.Msg {
		if err := open(url); err != nil {
			return errMsg{err: err}
		}
		return nil
	}
}

func (a *App) openBrief() tea.Cmd {
	focus := ""
	if a.state.Type != query.All {
		focus = a.state.Type
	}
	a.brief = briefing.Generate(a.items, briefing.Options{
		Window: a.state.Window,
		Size:   a.briefSize,
		Focus:  focus,
	}, a.now())
	a.cardCursor = 0
	a.showBreakdown = false
	a.mode = modeBriefOpening
	return a.fetchThemes()
}

// fetchThemes asks the summarizer for themes when one is configured.
func (a *App) fetchThemes() tea.Cmd {
	if a.summarizer == nil || a.brief == nil || len(a.brief.Cards) == 0 {
		return nil
	}
	s := a.summarizer
	headlines := make([]ai.Headline, len(a.brief.Cards))
	for i, c := range a.brief.Cards {
		headlines[i] = ai.Headline{Title: c.Entry.Item.Title, Type: c.Entry.Item.Type}
	}
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		themes, err := s.Themes(ctx, headlines)
		if err != nil || len(themes) == 0 {
			return nil
		}
		return themesMsg{themes: themes}
	}
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		return a, nil

	case tea.KeyMsg:
		// Clear sticky error on any keypress
		a.err = nil
		return a.handleKey(msg)

	case itemsLoadedMsg:
		a.items = msg.items
		a.recompute()
		if a.mode == modeBriefOpening && a.brief == nil {
			return a, a.openBrief()
		}
		return a, nil

	case errMsg:
		a.err = msg.err
		return a, nil

	case ingestDoneMsg:
		a.refreshing = false
		if msg.err != nil {
			if errors.Is(msg.err, ingest.ErrRunInProgress) {
				a.err = errors.New("an ingest is already running")
			} else {
				a.err = msg.err
			}
			return a, nil
		}
		a.updated = a.now()
		if n := len(msg.result.Failures); n > 0 {
			a.err = fmt.Errorf("%d source(s) failed, %d new item(s)", n, msg.result.Added)
		}
		return a, a.loadItemsCmd()

	case themesMsg:
		if a.brief != nil {
			a.brief.Themes = msg.themes
		}
		return a, nil

	case spinner.TickMsg:
		if a.refreshing {
			var cmd tea.Cmd
			a.spinner, cmd = a.spinner.Update(msg)
			return a, cmd
		}
		return a, nil
	}

	return a, nil
}

func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return a, tea.Quit
	}

	switch a.mode {
	case modeBriefOpening:
		return a.handleBriefOpeningKey(msg)
	case modeBriefCard:
		return a.handleBriefCardKey(msg)
	case modeSearch:
		return a.handleSearchKey(msg)
	case modeFilter:
		return a.handleFilterKey(msg)
	case modeHelp:
		if msg.String() == "?" || msg.String() == "esc" || msg.String() == "q" {
			a.mode = modeNormal
		}
		return a, nil
	}

	switch msg.String() {
	case "q":
		return a, tea.Quit
	case "j", "down":
		if a.focus == focusList && a.cursor < len(a.entries)-1 {
			a.cursor++
			a.previewScroll = 0
		} else if a.focus == focusPreview {
			a.previewScroll++
		}
		return a, nil
	case "k", "up":
		if a.focus == focusList && a.cursor > 0 {
			a.cursor--
			a.previewScroll = 0
		} else if a.focus == focusPreview && a.previewScroll > 0 {
			a.previewScroll--
		}
		return a, nil
	case "g", "home":
		a.cursor = 0
		return a, nil
	case "G", "end":
		a.cursor = max(0, len(a.entries)-1)
		return a, nil
	case "tab":
		if a.focus == focusList {
			a.focus = focusPreview
		} else {
			a.focus = focusList
		}
		return a, nil
	case "o", "enter":
		if e := a.selected(); e != nil {
			return a, a.openBrowserCmd(e.Item.URL)
		}
		return a, nil
	case "/":
		a.mode = modeSearch
		a.searchInput.Focus()
		return a, textinput.Blink
	case "f":
		a.mode = modeFilter
		a.filterBar.filterMode = true
		return a, nil
	case "w":
		a.setState(a.state.NextWindow())
	case "c":
		a.setState(a.state.NextCategory())
	case "t":
		a.setState(a.state.NextType())
	case "i":
		a.setState(a.state.NextIssuer())
	case "d":
		a.setState(a.state.ToggleDedupe())
	case "s":
		a.setState(a.state.NextSort())
	case "x":
		a.searchInput.SetValue("")
		a.setState(query.Default())
	case "r":
		if !a.refreshing && a.ingest != nil {
			a.refreshing = true
			return a, tea.Batch(a.doRefresh(), a.spinner.Tick)
		}
		return a, nil
	case "b":
		return a, a.openBrief()
	case "?":
		a.mode = modeHelp
		return a, nil
	}

	return a, nil
}

func (a *App) handleBriefOpeningKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter", "n", "right":
		if a.brief != nil && len(a.brief.Cards) > 0 {
			a.mode = modeBriefCard
			a.cardCursor = 0
		}
		return a, nil
	case "esc", "e", "b":
		a.mode = modeNormal
		return a, nil
	case "q":
		return a, tea.Quit
	}
	return a, nil
}

func (a *App) handleBriefCardKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "n", "j", "right":
		if a.brief != nil && a.cardCursor < len(a.brief.Cards)-1 {
			a.cardCursor++
			a.showBreakdown = false
		}
		return a, nil
	case "p", "k", "left":
		if a.cardCursor > 0 {
			a.cardCursor--
			a.showBreakdown = false
		} else {
			a.mode = modeBriefOpening
		}
		return a, nil
	case "o", "enter":
		if a.brief != nil && a.cardCursor < len(a.brief.Cards) {
			return a, a.openBrowserCmd(a.brief.Cards[a.cardCursor].Entry.Item.URL)
		}
		return a, nil
	case "i":
		a.showBreakdown = !a.showBreakdown
		return a, nil
	case "esc", "e", "b":
		a.mode = modeNormal
		return a, nil
	case "q":
		return a, tea.Quit
	}
	return a, nil
}

// handleSearchKey recomputes the view on every edit so results narrow as the
// user types.
func (a *App) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		a.mode = modeNormal
		a.searchInput.SetValue("")
		a.searchInput.Blur()
		a.setState(a.state.WithSearch(""))
		return a, nil
	case "enter":
		a.mode = modeNormal
		a.searchInput.Blur()
		return a, nil
	}

	var cmd tea.Cmd
	a.searchInput, cmd = a.searchInput.Update(msg)
	if v := a.searchInput.Value(); v != a.state.Search {
		a.setState(a.state.WithSearch(v))
	}
	return a, cmd
}

func (a *App) handleFilterKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "f":
		a.mode = modeNormal
		a.filterBar.filterMode = false
		return a, nil
	case "left", "h":
		a.filterBar.left()
		return a, nil
	case "right", "l":
		a.filterBar.right()
		return a, nil
	case " ", "enter":
		a.setState(advance(a.state, a.filterBar.filterCursor))
		return a, nil
	case "1", "2", "3", "4", "5", "6":
		c := chip(msg.String()[0] - '1')
		a.filterBar.filterCursor = c
		a.setState(advance(a.state, c))
		return a, nil
	}
	return a, nil
}

func (a *App) selected() *query.Entry {
	if len(a.entries) == 0 || a.cursor >= len(a.entries) {
		return nil
	}
	return &a.entries[a.cursor]
}

func (a *App) withBottomBar(content string, hints string) string {
	bar := renderBottomBar(hints, a.width)
	lines := strings.Split(content, "\n")
	for len(lines) < a.height-1 {
		lines = append(lines, "")
	}
	if len(lines) >= a.height {
		lines = lines[:a.height-1]
	}
	lines = append(lines, bar)
	return strings.Join(lines, "\n")
}

func (a *App) View() string {
	if a.width == 0 {
		return lipgloss.NewStyle().Foreground(colorAccent).Render("  fin-news")
	}

	if a.mode == modeBriefOpening && a.brief != nil {
		return a.withBottomBar(renderBriefOpening(a.brief, a.height), "enter start  esc list  q quit")
	}

	if a.mode == modeBriefCard && a.brief != nil && a.cardCursor < len(a.brief.Cards) {
		return a.withBottomBar(
			renderBriefCard(a.brief.Cards[a.cardCursor], len(a.brief.Cards), a.width, a.height, a.showBreakdown),
			"n next  p prev  o open  i score  esc list  q quit",
		)
	}

	if a.mode == modeHelp {
		return a.withBottomBar(a.renderHelp(), "? close  q quit")
	}

	headerHeight := 1
	filterHeight := 1
	statusHeight := 1
	contentHeight := a.height - headerHeight - filterHeight - statusHeight - 4 // borders

	listWidth := int(float64(a.width) * 0.4)
	previewWidth := a.width - listWidth - 1

	if contentHeight < 3 {
		contentHeight = 3
	}

	now := a.now()
	headerLeft := headerStyle.Render("fin-news")
	headerRight := headerDateStyle.Render(now.In(item.Zone).Format("1月2日 15:04"))
	headerGap := a.width - lipgloss.Width(headerLeft) - lipgloss.Width(headerRight)
	if headerGap < 0 {
		headerGap = 0
	}
	header := headerLeft + fmt.Sprintf("%*s", headerGap, "") + headerRight

	filter := a.filterBar.render(a.state, a.width)
	if a.mode == modeSearch {
		filter = a.searchInput.View()
	}

	listContent := renderList(a.entries, a.cursor, contentHeight, listWidth-4, now)
	listStyle, previewStyle := paneStyle, paneActiveStyle
	if a.focus == focusList {
		listStyle, previewStyle = paneActiveStyle, paneStyle
	}
	listPane := listStyle.Width(listWidth - 2).Height(contentHeight).Render(listContent)

	previewContent := renderPreview(a.selected(), previewWidth-4, contentHeight, a.previewScroll)
	previewPane := previewStyle.Width(previewWidth - 2).Height(contentHeight).Render(previewContent)

	content := lipgloss.JoinHorizontal(lipgloss.Top, listPane, previewPane)

	status := renderStatusBar(statusInfo{
		shown:      len(a.entries),
		total:      len(a.items),
		search:     a.state.Search,
		searching:  a.mode == modeSearch,
		refreshing: a.refreshing,
		updated:    a.updated,
		now:        now,
	}, a.width)

	if a.refreshing {
		status = a.spinner.View() + " " + status
	}

	if a.err != nil {
		status = lipgloss.NewStyle().Foreground(colorAccent).Render(a.err.Error())
	}

	return lipgloss.JoinVertical(lipgloss.Left, header, filter, content, status)
}

func (a *App) renderHelp() string {
	title := lipgloss.NewStyle().Foreground(colorAccent).Bold(true).Render("fin-news")
	dim := helpDimStyle

	help := title + dim.Render("  Keyboard Shortcuts") + "\n\n" +
		dim.Render("Navigation") + "\n" +
		"  j/k, ↑/↓     Move through the list\n" +
		"  g/G           First / last item\n" +
		"  tab           Switch focus between list and preview\n\n" +
		dim.Render("Query") + "\n" +
		"  /             Search title, summary, source, tags, tickers\n" +
		"  w             Cycle recency window\n" +
		"  c / t / i     Cycle category / type / issuer\n" +
		"  d             Toggle duplicate removal\n" +
		"  s             Cycle sort order\n" +
		"  f             Filter bar (←/→ move, space cycle, 1-6 jump)\n" +
		"  x             Reset all filters\n\n" +
		dim.Render("Actions") + "\n" +
		"  o, enter      Open in browser\n" +
		"  r             Run an ingest now\n" +
		"  b             Briefing\n\n" +
		dim.Render("General") + "\n" +
		"  ?             Toggle this help\n" +
		"  q, ctrl+c    Quit"

	card := helpCardStyle.Render(help)

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, card)
}

// Run starts the TUI application.
func Run(opts RunOpts) error {
	app := NewApp(opts)
	p := tea.NewProgram(app, tea.WithAltScreen())
	_, err := p.Run()
	return err
}
