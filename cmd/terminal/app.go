package main

import (
	"context"
	"log/slog"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"marketterm/internal/backend"
	"marketterm/internal/command"
	"marketterm/internal/launchpad"
	"marketterm/internal/session"
	"marketterm/internal/suggest"
)

// Messages.
type tickMsg time.Time

type searchDoneMsg struct {
	query   string
	applied bool
}

type quoteMsg backend.Quote

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// panelCycle is the order ctrl+n walks through when adding panels.
var panelCycle = []launchpad.PanelType{
	launchpad.PanelChart,
	launchpad.PanelQuote,
	launchpad.PanelNews,
	launchpad.PanelWatchlist,
}

type appDeps struct {
	logger   *slog.Logger
	sess     *session.Store
	history  *suggest.History
	ranker   *suggest.Ranker
	searcher *suggest.Searcher
	executor *command.Executor
	pad      *launchpad.Store
	bridge   *launchpad.Bridge
	stream   *backend.QuoteStream
	cancel   context.CancelFunc
}

type app struct {
	appDeps
	ctx context.Context

	input       textinput.Model
	suggestions []suggest.Suggestion
	selIdx      int // -1 means no suggestion highlighted
	reverse     bool

	// Up-arrow history walk, active only while the input is empty.
	histIdx int // -1 means not walking

	route   string
	message string
	quotes  map[string]float64
	addIdx  int // next panelCycle entry for ctrl+n

	now           time.Time
	width, height int
	ready         bool
}

func newApp(ctx context.Context, deps appDeps) *app {
	input := textinput.New()
	input.Placeholder = "ticker, function, or question"
	input.Prompt = "> "
	input.CharLimit = 120
	input.Focus()

	return &app{
		appDeps: deps,
		ctx:     ctx,
		input:   input,
		selIdx:  -1,
		histIdx: -1,
		route:   "/launchpad",
		quotes:  make(map[string]float64),
		now:     time.Now(),
	}
}

func (a *app) Init() tea.Cmd {
	a.resubscribe()
	return tea.Batch(tickCmd(), a.waitQuote())
}

// waitQuote blocks on the stream until the next tick arrives.
func (a *app) waitQuote() tea.Cmd {
	quotes := a.stream.Quotes()
	ctx := a.ctx
	return func() tea.Msg {
		select {
		case q := <-quotes:
			return quoteMsg(q)
		case <-ctx.Done():
			return nil
		}
	}
}

func (a *app) searchCmd(query string) tea.Cmd {
	searcher := a.searcher
	ctx := a.ctx
	return func() tea.Msg {
		applied := searcher.Run(ctx, query)
		return searchDoneMsg{query: query, applied: applied}
	}
}

func (a *app) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return a.handleKey(msg)

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.input.Width = a.width - 4
		a.ready = true
		return a, nil

	case tickMsg:
		a.now = time.Time(msg)
		return a, tickCmd()

	case searchDoneMsg:
		// Only rerank when the response still matches what is typed; stale
		// responses have already fed the cache.
		if msg.applied && msg.query == a.input.Value() {
			a.refreshSuggestions()
		}
		return a, nil

	case quoteMsg:
		a.quotes[msg.Symbol] = msg.Price
		return a, a.waitQuote()
	}

	return a, nil
}

func (a *app) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		a.cancel()
		return a, tea.Quit

	case "esc":
		a.input.SetValue("")
		a.suggestions = nil
		a.selIdx = -1
		a.histIdx = -1
		a.message = ""
		return a, nil

	case "ctrl+r":
		a.reverse = !a.reverse
		a.refreshSuggestions()
		return a, nil

	case "up":
		// Walk history from an empty input, and keep walking once started;
		// any edit resets histIdx and hands up/down back to the dropdown.
		if a.input.Value() == "" || a.histIdx >= 0 {
			a.walkHistory(1)
			return a, nil
		}
		if len(a.suggestions) > 0 && a.selIdx > 0 {
			a.selIdx--
		} else if len(a.suggestions) > 0 && a.selIdx == -1 {
			a.selIdx = len(a.suggestions) - 1
		}
		return a, nil

	case "down":
		if a.histIdx >= 0 {
			a.walkHistory(-1)
			return a, nil
		}
		if len(a.suggestions) > 0 && a.selIdx < len(a.suggestions)-1 {
			a.selIdx++
		}
		return a, nil

	case "tab":
		if a.selIdx >= 0 && a.selIdx < len(a.suggestions) {
			a.input.SetValue(a.suggestions[a.selIdx].Command)
			a.input.CursorEnd()
			a.selIdx = -1
			a.refreshSuggestions()
			return a, a.searchCmd(a.input.Value())
		}
		return a, nil

	case "enter":
		return a, a.submit()

	case "ctrl+n":
		if a.route == "/launchpad" {
			ptype := panelCycle[a.addIdx%len(panelCycle)]
			a.addIdx++
			a.pad.AddPanel(ptype, string(ptype))
			a.resubscribe()
		}
		return a, nil

	case "ctrl+x":
		if a.route == "/launchpad" {
			panels := a.pad.ActiveLayout().Panels
			if len(panels) > 1 {
				a.pad.ClosePanel(panels[len(panels)-1].ID)
				a.resubscribe()
			}
		}
		return a, nil

	case "ctrl+l":
		if a.route == "/launchpad" {
			a.cycleLayout()
		}
		return a, nil
	}

	// Everything else edits the command bar.
	before := a.input.Value()
	var cmd tea.Cmd
	a.input, cmd = a.input.Update(msg)
	after := a.input.Value()
	if after != before {
		a.histIdx = -1
		a.selIdx = -1
		a.refreshSuggestions()
		if after != "" {
			return a, tea.Batch(cmd, a.searchCmd(after))
		}
		return a, tea.Batch(cmd, a.searchCmd(""))
	}
	return a, cmd
}

// walkHistory steps through recent commands while the input is empty.
// delta +1 moves to older entries, -1 back toward the newest.
func (a *app) walkHistory(delta int) {
	entries := a.history.Entries()
	if len(entries) == 0 {
		return
	}
	next := a.histIdx + delta
	if next < 0 {
		a.histIdx = -1
		a.input.SetValue("")
		return
	}
	if next >= len(entries) {
		next = len(entries) - 1
	}
	a.histIdx = next
	a.input.SetValue(entries[next])
	a.input.CursorEnd()
}

func (a *app) refreshSuggestions() {
	a.suggestions = a.ranker.Suggest(a.input.Value(), a.searcher.Results(), a.reverse)
	if a.selIdx >= len(a.suggestions) {
		a.selIdx = len(a.suggestions) - 1
	}
}

func (a *app) submit() tea.Cmd {
	raw := a.input.Value()
	if a.selIdx >= 0 && a.selIdx < len(a.suggestions) {
		raw = a.suggestions[a.selIdx].Command
	}
	if raw == "" {
		return nil
	}

	parsed := command.Parse(raw)
	res := a.executor.Execute(parsed, command.NavigatorFunc(func(target string) {
		a.route = target
	}))

	if !res.OK {
		// Keep the text so the user can fix it.
		a.message = res.Message
		return nil
	}

	a.history.Add(raw)
	a.input.SetValue("")
	a.suggestions = nil
	a.selIdx = -1
	a.histIdx = -1
	a.message = res.Message

	if parsed.Ticker != "" {
		// The command bar acts as an unkeyed source: every linked panel
		// follows the new active symbol.
		a.pad.EmitSymbolChange(parsed.Ticker, "")
	}
	a.resubscribe()
	return nil
}

// cycleLayout activates the next saved layout.
func (a *app) cycleLayout() {
	layouts := a.pad.Layouts()
	if len(layouts) < 2 {
		return
	}
	current := a.pad.ActiveLayoutID()
	for i, l := range layouts {
		if l.ID == current {
			a.pad.SetActiveLayout(layouts[(i+1)%len(layouts)].ID)
			break
		}
	}
	a.resubscribe()
}

// resubscribe rebuilds the quote subscription from the active ticker and
// the symbols on the active layout.
func (a *app) resubscribe() {
	seen := make(map[string]struct{})
	var symbols []string
	add := func(sym string) {
		if sym == "" {
			return
		}
		if _, ok := seen[sym]; ok {
			return
		}
		seen[sym] = struct{}{}
		symbols = append(symbols, sym)
	}

	add(a.sess.ActiveTicker())
	for _, p := range a.pad.ActiveLayout().Panels {
		add(p.Symbol)
	}
	a.stream.Subscribe(symbols...)
}
