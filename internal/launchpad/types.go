// Package launchpad implements the multi-panel workspace: named layouts of
// positioned panels with linked-symbol broadcast, plus the persistence
// bridge that mirrors state to local storage synchronously and to the
// remote store behind a debounce window.
package launchpad

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// PanelType enumerates the panel kinds a layout can host.
type PanelType string

const (
	PanelChart     PanelType = "chart"
	PanelQuote     PanelType = "quote"
	PanelWatchlist PanelType = "watchlist"
	PanelNews      PanelType = "news"
	PanelOptions   PanelType = "options"
	PanelPortfolio PanelType = "portfolio"
	PanelAIQuery   PanelType = "ai-query"
)

// PanelConfig is one panel instance within a layout. Linked panels
// participate in cross-panel symbol broadcast. X/Y/W/H are grid-cell
// coordinates mutated by drag and resize.
type PanelConfig struct {
	ID     string            `json:"id"`
	Type   PanelType         `json:"type"`
	Title  string            `json:"title"`
	Symbol string            `json:"symbol,omitempty"`
	Linked bool              `json:"linked"`
	X      int               `json:"x"`
	Y      int               `json:"y"`
	W      int               `json:"w"`
	H      int               `json:"h"`
	Props  map[string]string `json:"props,omitempty"`
}

// LayoutPreset is a named, ordered set of panels. Panel IDs are unique
// within one layout.
type LayoutPreset struct {
	ID     string        `json:"id"`
	Name   string        `json:"name"`
	Panels []PanelConfig `json:"panels"`
}

// Grid geometry for auto-placement of new panels: two panels per row on a
// twelve-column grid.
const (
	gridColumns   = 12
	defaultPanelW = 6
	defaultPanelH = 4
	panelsPerRow  = gridColumns / defaultPanelW
)

// NewPanelID returns a panel id unique across layouts and sessions,
// composed from the clock and a random fragment.
func NewPanelID() string {
	return fmt.Sprintf("p%d-%s", time.Now().UnixMilli(), uuid.NewString()[:8])
}

// NewLayoutID returns a fresh layout id.
func NewLayoutID() string {
	return "layout-" + uuid.NewString()[:8]
}

// autoPosition derives the grid slot for the nth panel of a layout.
func autoPosition(count int) (x, y, w, h int) {
	return (count % panelsPerRow) * defaultPanelW, (count / panelsPerRow) * defaultPanelH, defaultPanelW, defaultPanelH
}

// DefaultPresets returns the built-in layouts restored whenever the saved
// list would otherwise be empty. IDs are fixed so restores are stable.
func DefaultPresets() []LayoutPreset {
	return []LayoutPreset{
		{
			ID:   "default-markets",
			Name: "Markets",
			Panels: []PanelConfig{
				{ID: "default-markets-chart", Type: PanelChart, Title: "Chart", Symbol: "SPY", Linked: true, X: 0, Y: 0, W: 8, H: 6},
				{ID: "default-markets-quote", Type: PanelQuote, Title: "Quote", Symbol: "SPY", Linked: true, X: 8, Y: 0, W: 4, H: 3},
				{ID: "default-markets-news", Type: PanelNews, Title: "News", Symbol: "SPY", Linked: true, X: 8, Y: 3, W: 4, H: 3},
				{ID: "default-markets-watchlist", Type: PanelWatchlist, Title: "Watchlist", Linked: false, X: 0, Y: 6, W: 12, H: 3},
			},
		},
		{
			ID:   "default-research",
			Name: "Research",
			Panels: []PanelConfig{
				{ID: "default-research-chart", Type: PanelChart, Title: "Chart", Symbol: "AAPL", Linked: true, X: 0, Y: 0, W: 6, H: 6},
				{ID: "default-research-options", Type: PanelOptions, Title: "Options", Symbol: "AAPL", Linked: true, X: 6, Y: 0, W: 6, H: 6},
				{ID: "default-research-ai", Type: PanelAIQuery, Title: "Ask", Linked: false, X: 0, Y: 6, W: 12, H: 3},
			},
		},
	}
}

// clonePanels deep-copies a panel slice so callers can never mutate store
// state through a returned snapshot.
func clonePanels(panels []PanelConfig) []PanelConfig {
	out := make([]PanelConfig, len(panels))
	for i, p := range panels {
		out[i] = p
		if p.Props != nil {
			props := make(map[string]string, len(p.Props))
			for k, v := range p.Props {
				props[k] = v
			}
			out[i].Props = props
		}
	}
	return out
}

// cloneLayouts deep-copies a layout slice.
func cloneLayouts(layouts []LayoutPreset) []LayoutPreset {
	out := make([]LayoutPreset, len(layouts))
	for i, l := range layouts {
		out[i] = l
		out[i].Panels = clonePanels(l.Panels)
	}
	return out
}
