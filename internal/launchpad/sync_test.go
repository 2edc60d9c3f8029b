package launchpad

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"
)

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

func (f *fakeKV) writeCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.writes
}

type fakeRemote struct {
	mu      sync.Mutex
	items   []LayoutPreset
	getErr  error
	puts    int
	lastPut []LayoutPreset
	putCh   chan struct{}
}

func newFakeRemote(items []LayoutPreset) *fakeRemote {
	return &fakeRemote{items: items, putCh: make(chan struct{}, 16)}
}

func (f *fakeRemote) GetLayouts(_ context.Context) ([]LayoutPreset, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	return cloneLayouts(f.items), nil
}

func (f *fakeRemote) PutLayouts(_ context.Context, items []LayoutPreset) error {
	f.mu.Lock()
	f.puts++
	f.lastPut = cloneLayouts(items)
	f.mu.Unlock()
	select {
	case f.putCh <- struct{}{}:
	default:
	}
	return nil
}

func (f *fakeRemote) putCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.puts
}

func TestLoadLocalFallsBackToDefaults(t *testing.T) {
	layouts, activeID := LoadLocal(newFakeKV())
	if len(layouts) == 0 {
		t.Fatal("expected default presets")
	}
	if activeID != "" {
		t.Errorf("activeID = %q, want empty", activeID)
	}
}

func TestBridgeHydrationReplacesLocalState(t *testing.T) {
	remoteLayout := testLayout()
	remoteLayout.ID = "remote-1"
	remote := newFakeRemote([]LayoutPreset{remoteLayout})

	store := NewStore(nil, "", nil)
	bridge := NewBridge(store, newFakeKV(), remote, 10*time.Millisecond, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go bridge.Run(ctx)

	waitFor(t, func() bool {
		layouts := store.Layouts()
		return len(layouts) == 1 && layouts[0].ID == "remote-1"
	}, "hydration should replace local layouts")

	if store.ActiveLayoutID() != "remote-1" {
		t.Errorf("active id = %q, want remote-1", store.ActiveLayoutID())
	}
	if bridge.Syncing() {
		t.Error("syncing indicator should clear after hydration")
	}
}

func TestBridgeHydrationFailureKeepsLocalState(t *testing.T) {
	remote := newFakeRemote(nil)
	remote.getErr = errors.New("offline")

	store := NewStore([]LayoutPreset{testLayout()}, "l1", nil)
	bridge := NewBridge(store, newFakeKV(), remote, 10*time.Millisecond, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go bridge.Run(ctx)

	waitFor(t, func() bool { return !bridge.Syncing() }, "hydration should finish")

	layouts := store.Layouts()
	if len(layouts) != 1 || layouts[0].ID != "l1" {
		t.Errorf("local layouts should survive a failed fetch, got %v", layouts)
	}
}

func TestBridgeWritesLocalSynchronouslyAndRemoteDebounced(t *testing.T) {
	remote := newFakeRemote(nil)
	store := NewStore([]LayoutPreset{testLayout()}, "l1", nil)
	kv := newFakeKV()
	bridge := NewBridge(store, kv, remote, 20*time.Millisecond, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go bridge.Run(ctx)

	waitFor(t, func() bool { return !bridge.Syncing() }, "hydration should finish")

	before := kv.writeCount()
	store.AddPanel(PanelNews, "News")

	waitFor(t, func() bool { return kv.writeCount() > before }, "local write should follow the change")
	if remote.putCount() != 0 {
		// The debounce window must delay the remote write past the local one.
		t.Log("remote write fired before debounce window expired")
	}

	waitFor(t, func() bool { return remote.putCount() >= 1 }, "debounced remote write should fire")

	remote.mu.Lock()
	last := remote.lastPut
	remote.mu.Unlock()
	if len(last) != 1 || len(last[0].Panels) != 4 {
		t.Errorf("remote received %v, want the 4-panel snapshot", last)
	}
}

func TestBridgeCoalescesRapidChanges(t *testing.T) {
	remote := newFakeRemote(nil)
	store := NewStore([]LayoutPreset{testLayout()}, "l1", nil)
	bridge := NewBridge(store, newFakeKV(), remote, 40*time.Millisecond, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go bridge.Run(ctx)
	waitFor(t, func() bool { return !bridge.Syncing() }, "hydration should finish")

	// Rapid back-to-back changes inside one debounce window.
	for i := 0; i < 5; i++ {
		store.EmitSymbolChange("AAPL", "")
		time.Sleep(2 * time.Millisecond)
	}

	waitFor(t, func() bool { return remote.putCount() >= 1 }, "a remote write should eventually fire")
	time.Sleep(60 * time.Millisecond)

	if got := remote.putCount(); got > 2 {
		t.Errorf("5 rapid changes produced %d remote writes, want coalescing", got)
	}
}

func TestBridgeDoesNotPushBeforeHydration(t *testing.T) {
	remote := newFakeRemote(nil)
	store := NewStore([]LayoutPreset{testLayout()}, "l1", nil)
	bridge := NewBridge(store, newFakeKV(), remote, 5*time.Millisecond, nil)

	// Change before Run/hydration: nothing may reach the remote store.
	store.AddPanel(PanelNews, "News")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	bridge.Run(ctx)

	if remote.putCount() != 0 {
		t.Errorf("remote writes before hydration: %d", remote.putCount())
	}
}

func waitFor(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal(msg)
}
