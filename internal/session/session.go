// Package session provides the shared terminal session state: the active
// ticker that ticker-bearing commands mutate and that all views observe,
// with pub/sub so panels and the status line update on change.
package session

import (
	"strings"
	"sync"
)

// Store holds the active ticker with pub/sub for observers. Mutations are
// immediately visible to all readers.
type Store struct {
	mu           sync.RWMutex
	activeTicker string

	subsMu    sync.Mutex
	nextSubID int
	subs      map[int]chan string
}

// NewStore creates an empty session store.
func NewStore() *Store {
	return &Store{
		subs: make(map[int]chan string),
	}
}

// ActiveTicker returns the current active ticker, or "" if none is set.
func (s *Store) ActiveTicker() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.activeTicker
}

// SetActiveTicker sets the active ticker (uppercased) and notifies
// subscribers. Setting the same ticker again still notifies, so views can
// re-focus on repeated commands.
func (s *Store) SetActiveTicker(symbol string) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return
	}

	s.mu.Lock()
	s.activeTicker = symbol
	s.mu.Unlock()

	s.subsMu.Lock()
	for _, ch := range s.subs {
		select {
		case ch <- symbol:
		default:
			// Slow subscriber — drop event.
		}
	}
	s.subsMu.Unlock()
}

// Subscribe returns a channel that receives the new ticker on every change.
// bufSize controls the channel buffer; slow consumers will have events
// dropped.
func (s *Store) Subscribe(bufSize int) (int, <-chan string) {
	ch := make(chan string, bufSize)
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
