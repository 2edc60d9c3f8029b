package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"marketterm/internal/launchpad"
	"marketterm/internal/suggest"
	"marketterm/internal/util"
)

// Styles.
var (
	headerStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15")).Background(lipgloss.Color("4"))
	footerStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("15")).Background(lipgloss.Color("8"))
	dimStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	tickerStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	fnStyle        = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("11"))
	recentStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("13"))
	selectedStyle  = lipgloss.NewStyle().Background(lipgloss.Color("236"))
	messageStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	priceStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	panelStyle     = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("240")).Padding(0, 1)
	panelTitle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("14"))
	unlinkedMarker = lipgloss.NewStyle().Foreground(lipgloss.Color("208"))
)

func (a *app) View() string {
	if !a.ready {
		return "Loading..."
	}

	header := a.renderHeader()
	bar := " " + a.input.View()
	dropdown := a.renderSuggestions()
	body := a.renderBody()
	footer := a.renderFooter()

	var msg string
	if a.message != "" {
		msg = messageStyle.Render(" " + a.message)
	}

	sections := []string{header, bar}
	if dropdown != "" {
		sections = append(sections, dropdown)
	}
	if msg != "" {
		sections = append(sections, msg)
	}
	sections = append(sections, body, footer)
	return strings.Join(sections, "\n")
}

func (a *app) renderHeader() string {
	ticker := a.sess.ActiveTicker()
	if ticker == "" {
		ticker = "--"
	}
	sync := ""
	if a.bridge.Syncing() {
		sync = "    syncing..."
	}
	rev := ""
	if a.reverse {
		rev = "    [history search]"
	}
	text := fmt.Sprintf(" MARKETTERM  %s    %s    session: %s%s%s ",
		ticker, a.route, util.MarketSession(a.now), sync, rev)
	return headerStyle.Render(padOrTrunc(text, a.width))
}

func (a *app) renderSuggestions() string {
	if len(a.suggestions) == 0 {
		return ""
	}
	var b strings.Builder
	for i, s := range a.suggestions {
		line := a.renderSuggestion(s)
		if i == a.selIdx {
			line = selectedStyle.Render(line)
		}
		b.WriteString(line)
		if i < len(a.suggestions)-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

func (a *app) renderSuggestion(s suggest.Suggestion) string {
	var title string
	switch s.Kind {
	case suggest.SuggestionTicker:
		title = tickerStyle.Render(fmt.Sprintf("  %-8s", s.Title))
	case suggest.SuggestionFunction:
		title = fnStyle.Render(fmt.Sprintf("  %-8s", s.Title))
	default:
		title = recentStyle.Render(fmt.Sprintf("  %-8s", truncate(s.Title, 24)))
	}

	line := title + " " + dimStyle.Render(truncate(s.Subtitle, 48))
	if s.Price > 0 {
		line += " " + priceStyle.Render(fmt.Sprintf("%.2f", s.Price))
	}
	return line
}

func (a *app) renderBody() string {
	var body string
	switch {
	case a.route == "/launchpad":
		body = a.renderLaunchpad()
	case strings.HasPrefix(a.route, "/securities/"):
		body = a.renderSecurity()
	case strings.HasPrefix(a.route, "/derivatives/"):
		body = a.renderPage("Options Chain", a.sess.ActiveTicker())
	case strings.HasPrefix(a.route, "/compare"):
		body = a.renderPage("Comparison", strings.TrimPrefix(a.route, "/compare?"))
	case strings.HasPrefix(a.route, "/search"):
		body = a.renderPage("Search", strings.TrimPrefix(a.route, "/search?q="))
	default:
		body = a.renderPage(strings.TrimPrefix(a.route, "/"), "")
	}

	used := 4 + len(a.suggestions)
	if a.message != "" {
		used++
	}
	return fillHeight(body, a.height-used)
}

func (a *app) renderSecurity() string {
	ticker := a.sess.ActiveTicker()
	price := a.quotes[ticker]
	priceText := "--"
	if price > 0 {
		priceText = fmt.Sprintf("%.2f", price)
	}

	tab := "overview"
	if i := strings.Index(a.route, "tab="); i >= 0 {
		tab = a.route[i+4:]
		if j := strings.IndexByte(tab, '&'); j >= 0 {
			tab = tab[:j]
		}
	}

	var b strings.Builder
	b.WriteString("\n")
	b.WriteString("  " + tickerStyle.Render(ticker) + "  " + priceStyle.Render(priceText) + "\n")
	b.WriteString("  " + dimStyle.Render("tab: "+tab) + "\n")
	return b.String()
}

func (a *app) renderPage(title, detail string) string {
	var b strings.Builder
	b.WriteString("\n  " + panelTitle.Render(title) + "\n")
	if detail != "" {
		b.WriteString("  " + dimStyle.Render(detail) + "\n")
	}
	return b.String()
}

// renderLaunchpad draws the active layout as two panel columns.
func (a *app) renderLaunchpad() string {
	layout := a.pad.ActiveLayout()

	var cells []string
	for _, p := range layout.Panels {
		cells = append(cells, a.renderPanel(p))
	}
	if len(cells) == 0 {
		return dimStyle.Render("  (no panels)")
	}

	var rows []string
	for i := 0; i < len(cells); i += 2 {
		end := i + 2
		if end > len(cells) {
			end = len(cells)
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cells[i:end]...))
	}

	title := fmt.Sprintf("  %s (%d/%d)", layout.Name, a.layoutIndex()+1, len(a.pad.Layouts()))
	return panelTitle.Render(title) + "\n" + lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func (a *app) renderPanel(p launchpad.PanelConfig) string {
	width := a.width/2 - 4
	if width < 20 {
		width = 20
	}

	link := ""
	if !p.Linked {
		link = unlinkedMarker.Render(" ⚲")
	}
	head := panelTitle.Render(truncate(p.Title, width-8)) + link

	sym := p.Symbol
	if sym == "" {
		sym = "--"
	}
	priceText := ""
	if price := a.quotes[p.Symbol]; price > 0 {
		priceText = "  " + priceStyle.Render(fmt.Sprintf("%.2f", price))
	}
	body := tickerStyle.Render(sym) + priceText + "\n" + dimStyle.Render(string(p.Type))

	return panelStyle.Width(width).Render(head + "\n" + body)
}

func (a *app) layoutIndex() int {
	current := a.pad.ActiveLayoutID()
	for i, l := range a.pad.Layouts() {
		if l.ID == current {
			return i
		}
	}
	return 0
}

func (a *app) renderFooter() string {
	text := " enter run  tab fill  up/dn select  ctrl+r history  ctrl+n panel  ctrl+x close  ctrl+l layout  ctrl+c quit"
	return footerStyle.Render(padOrTrunc(text, a.width))
}

// padOrTrunc pads s with spaces to width cells, or truncates if longer.
// Rune-indexed so multi-byte text is never split mid-character.
func padOrTrunc(s string, width int) string {
	r := []rune(s)
	if len(r) >= width {
		return string(r[:width])
	}
	return s + strings.Repeat(" ", width-len(r))
}

func truncate(s string, limit int) string {
	r := []rune(s)
	if limit <= 0 || len(r) <= limit {
		return s
	}
	return string(r[:limit-1]) + "…"
}

// fillHeight pads body with blank lines so the footer stays pinned.
func fillHeight(body string, height int) string {
	if height <= 0 {
		return body
	}
	lines := strings.Count(body, "\n") + 1
	if lines >= height {
		return body
	}
	return body + strings.Repeat("\n", height-lines)
}
