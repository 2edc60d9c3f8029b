package suggest

import (
	"encoding/json"
	"fmt"
	"sync"
	"testing"
)

// fakeKV is an in-memory KV for tests, with a write counter.
type fakeKV struct {
	mu     sync.Mutex
	data   map[string][]byte
	writes int
}

func newFakeKV() *fakeKV {
	return &fakeKV{data: make(map[string][]byte)}
}

func (f *fakeKV) Get(key string, dest any) bool {
	f.mu.Lock()
	raw, ok := f.data[key]
	f.mu.Unlock()
	if !ok {
		return false
	}
	return json.Unmarshal(raw, dest) == nil
}

func (f *fakeKV) Put(key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	f.mu.Lock()
	f.data[key] = raw
	f.writes++
	f.mu.Unlock()
	return nil
}

func TestHistoryDedupMovesToFront(t *testing.T) {
	h := NewHistory(newFakeKV(), nil)

	h.Add("AAPL GP")
	h.Add("WL growth")
	h.Add("AAPL GP")

	entries := h.Entries()
	if len(entries) != 2 {
		t.Fatalf("len = %d, want 2", len(entries))
	}
	if entries[0] != "AAPL GP" || entries[1] != "WL growth" {
		t.Errorf("entries = %v", entries)
	}
}

func TestHistoryCap(t *testing.T) {
	h := NewHistory(newFakeKV(), nil)

	for i := 0; i < 25; i++ {
		h.Add(fmt.Sprintf("CMD%d", i))
	}

	entries := h.Entries()
	if len(entries) != 20 {
		t.Fatalf("len = %d, want 20", len(entries))
	}
	if entries[0] != "CMD24" {
		t.Errorf("most recent = %q, want CMD24", entries[0])
	}
	if entries[19] != "CMD5" {
		t.Errorf("oldest = %q, want CMD5", entries[19])
	}
}

func TestHistoryPersistsSynchronously(t *testing.T) {
	kv := newFakeKV()
	h := NewHistory(kv, nil)

	h.Add("AAPL")
	if kv.writes != 1 {
		t.Errorf("writes = %d, want 1", kv.writes)
	}

	// A fresh History over the same KV sees the entry.
	again := NewHistory(kv, nil)
	entries := again.Entries()
	if len(entries) != 1 || entries[0] != "AAPL" {
		t.Errorf("reloaded entries = %v", entries)
	}
}

func TestHistoryIgnoresEmpty(t *testing.T) {
	h := NewHistory(newFakeKV(), nil)
	h.Add("")
	if len(h.Entries()) != 0 {
		t.Error("empty command should not be recorded")
	}
}
