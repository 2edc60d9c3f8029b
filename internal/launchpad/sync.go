package launchpad

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Persisted state keys.
const (
	layoutsKey      = "launchpad_layouts"
	activeLayoutKey = "launchpad_active_layout"
)

// DefaultDebounce is the delay between the last layout change and the
// remote write. A newer change cancels and restarts the window.
const DefaultDebounce = 350 * time.Millisecond

// KV is the local persistence surface the bridge writes synchronously on
// every change. Satisfied by localstore.Store.
type KV interface {
	Get(key string, dest any) bool
	Put(key string, v any) error
}

// RemoteStore is the server-side layout store. Satisfied by
// backend.Client.
type RemoteStore interface {
	GetLayouts(ctx context.Context) ([]LayoutPreset, error)
	PutLayouts(ctx context.Context, items []LayoutPreset) error
}

// LoadLocal reads persisted layout state, falling back to the default
// presets when nothing (or nothing readable) is stored.
func LoadLocal(kv KV) ([]LayoutPreset, string) {
	var layouts []LayoutPreset
	var activeID string
	if kv != nil {
		kv.Get(layoutsKey, &layouts)
		kv.Get(activeLayoutKey, &activeID)
	}
	if len(layouts) == 0 {
		layouts = DefaultPresets()
	}
	return layouts, activeID
}

// Bridge reconciles the store with local storage and the remote layout
// store. Local writes are synchronous with every change; remote writes
// start only after the initial hydration completes and are debounced with
// cancel-on-supersede, so the server sees last-write-wins rather than a
// queue of intermediate states. Remote failures are silent: local storage
// is the durable source of truth from the client's perspective.
type Bridge struct {
	store    *Store
	kv       KV
	remote   RemoteStore
	debounce time.Duration
	log      *slog.Logger

	mu       sync.Mutex
	hydrated bool
	syncing  bool
	timer    *time.Timer
	inflight *inflightWrite
}

// inflightWrite identifies one remote write so a completing push only
// clears its own registration, never a newer one's.
type inflightWrite struct {
	cancel context.CancelFunc
}

// NewBridge creates a Bridge. A zero debounce falls back to
// DefaultDebounce.
func NewBridge(store *Store, kv KV, remote RemoteStore, debounce time.Duration, log *slog.Logger) *Bridge {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Bridge{store: store, kv: kv, remote: remote, debounce: debounce, log: log}
}

// Syncing reports whether the initial hydration is still in flight, for a
// transient UI indicator.
func (b *Bridge) Syncing() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.syncing
}

// Run hydrates from the remote store and then mirrors every store change
// until ctx is cancelled. It blocks; run it on its own goroutine.
func (b *Bridge) Run(ctx context.Context) {
	subID, changes := b.store.Subscribe(16)
	defer b.store.Unsubscribe(subID)

	b.hydrate(ctx)

	for {
		select {
		case <-ctx.Done():
			b.stopPending()
			return
		case <-changes:
			b.onChange(ctx)
		}
	}
}

// hydrate fetches the user's layouts once. A non-empty result replaces
// local state (the store revalidates the active id); any failure keeps
// the local-storage-backed state. Either way, remote writes are enabled
// afterwards.
func (b *Bridge) hydrate(ctx context.Context) {
	b.mu.Lock()
	b.syncing = true
	b.mu.Unlock()

	items, err := b.remote.GetLayouts(ctx)
	switch {
	case err != nil:
		if b.log != nil {
			b.log.Warn("layout hydration failed, keeping local state", "error", err)
		}
	case len(items) > 0:
		b.store.ReplaceAll(items)
	}

	b.mu.Lock()
	b.syncing = false
	b.hydrated = true
	b.mu.Unlock()
}

// onChange mirrors the latest state locally right away and schedules the
// debounced remote write.
func (b *Bridge) onChange(ctx context.Context) {
	b.writeLocal()

	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.hydrated {
		// Never push a default/local state to the server before the real
		// server state has loaded.
		return
	}
	if b.timer != nil {
		b.timer.Stop()
	}
	if b.inflight != nil {
		b.inflight.cancel()
		b.inflight = nil
	}
	b.timer = time.AfterFunc(b.debounce, func() { b.push(ctx) })
}

// writeLocal persists the current snapshot synchronously.
func (b *Bridge) writeLocal() {
	if b.kv == nil {
		return
	}
	if err := b.kv.Put(layoutsKey, b.store.Layouts()); err != nil && b.log != nil {
		b.log.Warn("persisting layouts locally", "error", err)
	}
	if err := b.kv.Put(activeLayoutKey, b.store.ActiveLayoutID()); err != nil && b.log != nil {
		b.log.Warn("persisting active layout id", "error", err)
	}
}

// push sends the freshest snapshot to the remote store. The snapshot is
// taken at fire time, not capture time, so rapid back-to-back changes are
// never replayed from a stale closure.
func (b *Bridge) push(parent context.Context) {
	ctx, cancel := context.WithCancel(parent)
	req := &inflightWrite{cancel: cancel}
	b.mu.Lock()
	b.inflight = req
	b.mu.Unlock()

	err := b.remote.PutLayouts(ctx, b.store.Layouts())

	b.mu.Lock()
	if b.inflight == req {
		b.inflight = nil
	}
	b.mu.Unlock()
	cancel()

	if err != nil && b.log != nil {
		// Best effort: the next successful change will retry.
		b.log.Debug("layout remote write failed", "error", err)
	}
}

// stopPending cancels any scheduled or in-flight remote write.
func (b *Bridge) stopPending() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.timer != nil {
		b.timer.Stop()
		b.timer = nil
	}
	if b.inflight != nil {
		b.inflight.cancel()
		b.inflight = nil
	}
}
