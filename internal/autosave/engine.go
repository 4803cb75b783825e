// Package autosave implements debounced persistence of in-progress edit state.
//
// The engine coalesces rapid Track calls per key and writes the latest payload
// to the backing store after a quiet period, so unsaved editor state survives
// crashes and accidental navigation without flooding the store. Snapshots are
// overwritten whole, restored on demand and cleared when the owning edit
// session completes.
package autosave

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/apogee-blog/apogee/internal/kv"
)

const (
	// DefaultDelay is the quiet period after the last change before a
	// snapshot is written.
	DefaultDelay = 3 * time.Second

	keyPrefix = "autosave_"
)

// Snapshot is a persisted draft state for one key.
type Snapshot struct {
	Payload map[string]string `json:"payload"`
	SavedAt time.Time         `json:"saved_at"`
}

type pendingWrite struct {
	timer      Timer
	serialized string
	seq        uint64
}

// Engine debounces and persists draft snapshots. All methods are safe for
// concurrent use; store failures are logged and never surface to callers.
type Engine struct {
	store kv.Store
	clock Clock
	sched Scheduler
	log   zerolog.Logger

	delay   time.Duration
	enabled bool

	mu      sync.Mutex
	seq     uint64
	pending map[string]*pendingWrite

	// lastWritten maps key to the payload serialization that last reached
	// the store, so unchanged payloads and exit flushes can be skipped.
	lastWritten map[string]string
}

// Option configures an Engine.
type Option func(*Engine)

func WithClock(c Clock) Option {
	return func(e *Engine) { e.clock = c }
}

func WithScheduler(s Scheduler) Option {
	return func(e *Engine) { e.sched = s }
}

func WithDelay(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.delay = d
		}
	}
}

func WithEnabled(enabled bool) Option {
	return func(e *Engine) { e.enabled = enabled }
}

func NewEngine(store kv.Store, log zerolog.Logger, opts ...Option) *Engine {
	e := &Engine{
		store:       store,
		clock:       systemClock{},
		sched:       systemScheduler{},
		log:         log,
		delay:       DefaultDelay,
		enabled:     true,
		pending:     make(map[string]*pendingWrite),
		lastWritten: make(map[string]string),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Track registers payload as the state to persist for key. Rapid calls for
// the same key are coalesced: each call resets the key's debounce timer and
// only the payload from the last call before a quiet period is written. A
// payload identical to the one already scheduled (or last written) is a no-op.
// Each key debounces independently.
func (e *Engine) Track(key string, payload map[string]string) {
	if key == "" {
		return
	}

	serialized, err := json.Marshal(payload)
	if err != nil {
		e.log.Error().Err(err).Str("key", key).Msg("Error serializing draft payload")
		return
	}
	data := string(serialized)

	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.enabled {
		e.cancelLocked(key)
		return
	}

	if p, ok := e.pending[key]; ok {
		if p.serialized == data {
			return
		}
		p.timer.Stop()
	} else if e.lastWritten[key] == data {
		return
	}

	e.seq++
	p := &pendingWrite{serialized: data, seq: e.seq}
	p.timer = e.sched.AfterFunc(e.delay, func() {
		e.fire(key, p.seq)
	})
	e.pending[key] = p
}

// SetEnabled toggles tracking. Disabling suppresses all pending writes.
func (e *Engine) SetEnabled(enabled bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.enabled = enabled
	if !enabled {
		for key := range e.pending {
			e.cancelLocked(key)
		}
	}
}

// fire performs the debounced write for key, unless the pending write has
// been superseded or cancelled since it was scheduled.
func (e *Engine) fire(key string, seq uint64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	p, ok := e.pending[key]
	if !ok || p.seq != seq {
		return
	}
	delete(e.pending, key)

	e.writeLocked(key, p.serialized)
}

// writeLocked persists a snapshot. A failed write is logged and forgotten;
// the payload stays dirty so the next debounced write retries it.
func (e *Engine) writeLocked(key, serialized string) {
	var payload map[string]string
	if err := json.Unmarshal([]byte(serialized), &payload); err != nil {
		e.log.Error().Err(err).Str("key", key).Msg("Error decoding draft payload")
		return
	}

	data, err := json.Marshal(Snapshot{Payload: payload, SavedAt: e.clock.Now()})
	if err != nil {
		e.log.Error().Err(err).Str("key", key).Msg("Error serializing draft snapshot")
		return
	}

	if err := e.store.Set(keyPrefix+key, string(data)); err != nil {
		e.log.Error().Err(err).Str("key", key).Msg("Error writing draft snapshot")
		return
	}

	e.lastWritten[key] = serialized
	e.log.Debug().Str("key", key).Msg("Draft snapshot saved")
}

// Restore returns the stored snapshot for key, or nil when no snapshot exists
// or the stored data cannot be decoded. Corrupt data is treated as absent.
func (e *Engine) Restore(key string) *Snapshot {
	raw, ok := e.store.Get(keyPrefix + key)
	if !ok {
		return nil
	}

	var snapshot Snapshot
	if err := json.Unmarshal([]byte(raw), &snapshot); err != nil {
		e.log.Warn().Err(err).Str("key", key).Msg("Discarding corrupt draft snapshot")
		return nil
	}
	return &snapshot
}

// Clear deletes the snapshot for key and cancels any pending write for it.
// Clear always wins over an in-flight debounce. It is idempotent.
func (e *Engine) Clear(key string) {
	e.mu.Lock()
	e.cancelLocked(key)
	delete(e.lastWritten, key)
	e.mu.Unlock()

	if err := e.store.Delete(keyPrefix + key); err != nil {
		e.log.Error().Err(err).Str("key", key).Msg("Error clearing draft snapshot")
	}
}

// HasSavedData reports whether a snapshot exists for key, without decoding it.
func (e *Engine) HasSavedData(key string) bool {
	_, ok := e.store.Get(keyPrefix + key)
	return ok
}

// SavedAt returns the timestamp of the stored snapshot for key, if any.
func (e *Engine) SavedAt(key string) (time.Time, bool) {
	snapshot := e.Restore(key)
	if snapshot == nil {
		return time.Time{}, false
	}
	return snapshot.SavedAt, true
}

// Flush synchronously writes every pending snapshot, bypassing the remaining
// debounce delay. It is the exit path: best effort, never blocking on
// anything beyond the store writes themselves. Keys whose payload already
// reached the store are skipped.
func (e *Engine) Flush() {
	e.mu.Lock()
	defer e.mu.Unlock()

	for key, p := range e.pending {
		p.timer.Stop()
		delete(e.pending, key)

		if e.lastWritten[key] == p.serialized {
			continue
		}
		e.writeLocked(key, p.serialized)
	}
}

// Stop cancels all pending writes without flushing them.
func (e *Engine) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()

	for key := range e.pending {
		e.cancelLocked(key)
	}
}

func (e *Engine) cancelLocked(key string) {
	if p, ok := e.pending[key]; ok {
		p.timer.Stop()
		delete(e.pending, key)
	}
}
