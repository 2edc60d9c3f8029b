package launchpad

import (
	"log/slog"
	"strings"
	"sync"
)

// PanelPatch is a shallow merge applied to one panel. Nil fields are left
// unchanged.
type PanelPatch struct {
	Title  *string
	Symbol *string
	Linked *bool
	Props  map[string]string
}

// PanelPosition is one entry of a bulk position update.
type PanelPosition struct {
	ID         string
	X, Y, W, H int
}

// Store owns the saved layouts and the active layout id. All mutations go
// through its operations; readers receive deep copies. After every
// operation the store invariants hold: the layout list is never empty and
// the active id always resolves to a member.
type Store struct {
	mu           sync.RWMutex
	layouts      []LayoutPreset
	activeID     string
	symbolEvents int
	lastSymbol   string
	log          *slog.Logger

	subsMu    sync.Mutex
	nextSubID int
	subs      map[int]chan struct{}
}

// NewStore creates a Store from persisted state. An empty layout list is
// replaced by the default presets, and an unresolvable active id falls
// back to the first layout.
func NewStore(layouts []LayoutPreset, activeID string, log *slog.Logger) *Store {
	s := &Store{
		layouts:  cloneLayouts(layouts),
		activeID: activeID,
		log:      log,
		subs:     make(map[int]chan struct{}),
	}
	s.ensureInvariants()
	return s
}

// ensureInvariants restores the never-empty and active-id-resolves
// invariants. Must be called with mu held (or before publication).
func (s *Store) ensureInvariants() {
	if len(s.layouts) == 0 {
		s.layouts = DefaultPresets()
	}
	for _, l := range s.layouts {
		if l.ID == s.activeID {
			return
		}
	}
	s.activeID = s.layouts[0].ID
}

// Subscribe returns a channel signalled after every state change. bufSize
// controls the channel buffer; slow consumers will have signals dropped
// (they coalesce naturally, a signal only means "re-read").
func (s *Store) Subscribe(bufSize int) (int, <-chan struct{}) {
	ch := make(chan struct{}, bufSize)
	s.subsMu.Lock()
	id := s.nextSubID
	s.nextSubID++
	s.subs[id] = ch
	s.subsMu.Unlock()
	return id, ch
}

// Unsubscribe removes a subscriber and closes its channel.
func (s *Store) Unsubscribe(id int) {
	s.subsMu.Lock()
	if ch, ok := s.subs[id]; ok {
		delete(s.subs, id)
		close(ch)
	}
	s.subsMu.Unlock()
}

func (s *Store) notify() {
	s.subsMu.Lock()
	for _, ch := range s.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
	s.subsMu.Unlock()
}

// Layouts returns a deep copy of all saved layouts.
func (s *Store) Layouts() []LayoutPreset {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneLayouts(s.layouts)
}

// ActiveLayoutID returns the id of the active layout.
func (s *Store) ActiveLayoutID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.activeID
}

// ActiveLayout returns a deep copy of the active layout.
func (s *Store) ActiveLayout() LayoutPreset {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, l := range s.layouts {
		if l.ID == s.activeID {
			out := l
			out.Panels = clonePanels(l.Panels)
			return out
		}
	}
	// Unreachable while invariants hold.
	out := s.layouts[0]
	out.Panels = clonePanels(out.Panels)
	return out
}

// SymbolEvents returns the monotonic broadcast counter and the last
// broadcast symbol, for UI observers.
func (s *Store) SymbolEvents() (int, string) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.symbolEvents, s.lastSymbol
}

// SetActiveLayout activates the layout with the given id; unknown ids are
// ignored.
func (s *Store) SetActiveLayout(id string) {
	s.mu.Lock()
	changed := false
	for _, l := range s.layouts {
		if l.ID == id && s.activeID != id {
			s.activeID = id
			changed = true
			break
		}
	}
	s.mu.Unlock()
	if changed {
		s.notify()
	}
}

// CreateLayout appends a new layout with one default panel, makes it
// active, and returns its id.
func (s *Store) CreateLayout(name string) string {
	x, y, w, h := autoPosition(0)
	layout := LayoutPreset{
		ID:   NewLayoutID(),
		Name: name,
		Panels: []PanelConfig{
			{ID: NewPanelID(), Type: PanelChart, Title: "Chart", Symbol: "SPY", Linked: true, X: x, Y: y, W: w, H: h},
		},
	}

	s.mu.Lock()
	s.layouts = append(s.layouts, layout)
	s.activeID = layout.ID
	s.mu.Unlock()
	s.notify()
	return layout.ID
}

// RenameLayout rewrites a layout's name; a no-op if the id is absent.
func (s *Store) RenameLayout(id, name string) {
	s.mu.Lock()
	changed := false
	for i := range s.layouts {
		if s.layouts[i].ID == id && s.layouts[i].Name != name {
			s.layouts[i].Name = name
			changed = true
			break
		}
	}
	s.mu.Unlock()
	if changed {
		s.notify()
	}
}

// DeleteLayout removes a layout. Deleting the active layout activates the
// new first layout; deleting the last layout restores the default presets.
func (s *Store) DeleteLayout(id string) {
	s.mu.Lock()
	next := s.layouts[:0:0]
	for _, l := range s.layouts {
		if l.ID != id {
			next = append(next, l)
		}
	}
	if len(next) == len(s.layouts) {
		s.mu.Unlock()
		return
	}
	s.layouts = next
	s.ensureInvariants()
	s.mu.Unlock()
	s.notify()
}

// AddPanel appends a panel of the given type to the active layout at an
// auto-computed grid position and returns the new panel's id.
func (s *Store) AddPanel(ptype PanelType, title string) string {
	id := NewPanelID()

	s.mu.Lock()
	for i := range s.layouts {
		if s.layouts[i].ID != s.activeID {
			continue
		}
		x, y, w, h := autoPosition(len(s.layouts[i].Panels))
		s.layouts[i].Panels = append(s.layouts[i].Panels, PanelConfig{
			ID: id, Type: ptype, Title: title, Linked: true, X: x, Y: y, W: w, H: h,
		})
		break
	}
	s.mu.Unlock()
	s.notify()
	return id
}

// ClosePanel removes a panel by id from the active layout.
func (s *Store) ClosePanel(panelID string) {
	s.mu.Lock()
	changed := false
	for i := range s.layouts {
		if s.layouts[i].ID != s.activeID {
			continue
		}
		panels := s.layouts[i].Panels
		for j := range panels {
			if panels[j].ID == panelID {
				s.layouts[i].Panels = append(panels[:j:j], panels[j+1:]...)
				changed = true
				break
			}
		}
		break
	}
	s.mu.Unlock()
	if changed {
		s.notify()
	}
}

// UpdatePanel shallow-merges a patch into one panel of the active layout.
func (s *Store) UpdatePanel(panelID string, patch PanelPatch) {
	s.mu.Lock()
	changed := false
	for i := range s.layouts {
		if s.layouts[i].ID != s.activeID {
			continue
		}
		for j := range s.layouts[i].Panels {
			p := &s.layouts[i].Panels[j]
			if p.ID != panelID {
				continue
			}
			if patch.Title != nil {
				p.Title = *patch.Title
			}
			if patch.Symbol != nil {
				p.Symbol = strings.ToUpper(*patch.Symbol)
			}
			if patch.Linked != nil {
				p.Linked = *patch.Linked
			}
			if patch.Props != nil {
				if p.Props == nil {
					p.Props = make(map[string]string, len(patch.Props))
				}
				for k, v := range patch.Props {
					p.Props[k] = v
				}
			}
			changed = true
			break
		}
		break
	}
	s.mu.Unlock()
	if changed {
		s.notify()
	}
}

// UpdatePanelPositions applies a batch of drag/resize geometry updates to
// the active layout. It short-circuits to a no-op, with no change event,
// when every value already matches, so redundant persistence writes are
// avoided. It reports whether anything changed.
func (s *Store) UpdatePanelPositions(updates []PanelPosition) bool {
	byID := make(map[string]PanelPosition, len(updates))
	for _, u := range updates {
		byID[u.ID] = u
	}

	s.mu.Lock()
	changed := false
	for i := range s.layouts {
		if s.layouts[i].ID != s.activeID {
			continue
		}
		for j := range s.layouts[i].Panels {
			p := &s.layouts[i].Panels[j]
			u, ok := byID[p.ID]
			if !ok {
				continue
			}
			if p.X == u.X && p.Y == u.Y && p.W == u.W && p.H == u.H {
				continue
			}
			p.X, p.Y, p.W, p.H = u.X, u.Y, u.W, u.H
			changed = true
		}
		break
	}
	s.mu.Unlock()
	if changed {
		s.notify()
	}
	return changed
}

// ReorderPanels moves the panel with srcID to sit at dstID's index within
// the active layout's panel array (manual drag-reorder of non-positional
// order).
func (s *Store) ReorderPanels(srcID, dstID string) {
	if srcID == dstID {
		return
	}

	s.mu.Lock()
	changed := false
	for i := range s.layouts {
		if s.layouts[i].ID != s.activeID {
			continue
		}
		panels := s.layouts[i].Panels
		src, dst := -1, -1
		for j := range panels {
			switch panels[j].ID {
			case srcID:
				src = j
			case dstID:
				dst = j
			}
		}
		if src >= 0 && dst >= 0 {
			moved := panels[src]
			panels = append(panels[:src], panels[src+1:]...)
			rest := append(panels[:dst:dst], moved)
			s.layouts[i].Panels = append(rest, panels[dst:]...)
			changed = true
		}
		break
	}
	s.mu.Unlock()
	if changed {
		s.notify()
	}
}

// EmitSymbolChange broadcasts a symbol to every linked panel of the active
// layout except the originating panel, bumps the event counter, and
// records the symbol for observers.
func (s *Store) EmitSymbolChange(symbol, sourcePanelID string) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return
	}

	s.mu.Lock()
	for i := range s.layouts {
		if s.layouts[i].ID != s.activeID {
			continue
		}
		for j := range s.layouts[i].Panels {
			p := &s.layouts[i].Panels[j]
			if p.ID == sourcePanelID || !p.Linked {
				continue
			}
			p.Symbol = symbol
		}
		break
	}
	s.symbolEvents++
	s.lastSymbol = symbol
	s.mu.Unlock()

	if s.log != nil {
		s.log.Debug("symbol broadcast", "symbol", symbol, "source", sourcePanelID)
	}
	s.notify()
}

// ReplaceAll swaps in a server-hydrated layout list. The active id is kept
// when it still resolves, otherwise the first remote layout activates. An
// empty list is ignored (the local state stays authoritative).
func (s *Store) ReplaceAll(layouts []LayoutPreset) {
	if len(layouts) == 0 {
		return
	}

	s.mu.Lock()
	s.layouts = cloneLayouts(layouts)
	s.ensureInvariants()
	s.mu.Unlock()
	s.notify()
}
