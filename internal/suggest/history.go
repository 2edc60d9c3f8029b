package suggest

import (
	"log/slog"
	"sync"
)

const (
	historyKey = "command_history"
	maxHistory = 20
)

// History is the persisted list of previously submitted raw command
// strings, most-recent-first. Inserts dedup by exact match (re-submitting
// moves the entry to the front) and the list is capped at 20. Writes are
// persisted synchronously with the in-memory change.
type History struct {
	mu      sync.Mutex
	entries []string
	kv      KV
	log     *slog.Logger
}

// NewHistory creates a History, loading persisted entries. Missing or
// corrupt stored data falls back to an empty history.
func NewHistory(kv KV, log *slog.Logger) *History {
	h := &History{kv: kv, log: log}
	if kv != nil {
		var entries []string
		if kv.Get(historyKey, &entries) {
			if len(entries) > maxHistory {
				entries = entries[:maxHistory]
			}
			h.entries = entries
		}
	}
	return h
}

// Add records a submitted command string at the front of the history.
func (h *History) Add(raw string) {
	if raw == "" {
		return
	}

	h.mu.Lock()
	next := make([]string, 0, len(h.entries)+1)
	next = append(next, raw)
	for _, entry := range h.entries {
		if entry != raw {
			next = append(next, entry)
		}
	}
	if len(next) > maxHistory {
		next = next[:maxHistory]
	}
	h.entries = next
	h.persist()
	h.mu.Unlock()
}

// Entries returns a copy of the history, most-recent-first.
func (h *History) Entries() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]string, len(h.entries))
	copy(out, h.entries)
	return out
}

// persist writes the history to storage. Must be called with mu held.
func (h *History) persist() {
	if h.kv == nil {
		return
	}
	if err := h.kv.Put(historyKey, h.entries); err != nil && h.log != nil {
		h.log.Warn("persisting command history", "error", err)
	}
}
