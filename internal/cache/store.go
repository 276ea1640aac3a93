package cache

import (
	"context"
	"sync"
	"time"
)

// State tracks a cache entry through its lifecycle.
type State int

const (
	// NotRequested means no fetch has been issued for this key.
	NotRequested State = iota
	// Pending means a fetch is in flight.
	Pending
	// Ready means the payload is available.
	Ready
	// Failed means the fetch completed with an error; re-triggering the
	// action retries after a Retry call.
	Failed
)

// String returns a short label for logging and placeholders.
func (s State) String() string {
	switch s {
	case NotRequested:
		return "not requested"
	case Pending:
		return "loading"
	case Ready:
		return "ready"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Key identifies a cache entry: one query signature within one environment.
type Key struct {
	Env string
	Sig string
}

// Entry is a snapshot of one cache slot. Payload is only meaningful when
// State is Ready, Err only when Failed.
type Entry struct {
	State     State
	Payload   any
	Err       error
	FetchedAt time.Time
}

// FetchFunc performs the remote call for one key. It runs on its own
// goroutine and must honor ctx cancellation.
type FetchFunc func(ctx context.Context) (any, error)

// Store memoizes fetch results per (environment, query signature). All
// methods are safe for concurrent use. Reads never block on network I/O:
// GetOrFetch returns the current snapshot immediately and schedules the fetch
// in the background when the entry has not been requested yet.
type Store struct {
	mu      sync.Mutex
	env     string
	gen     uint64
	entries map[Key]Entry
	updates chan struct{}
}

// New builds a Store bound to the given environment identity.
func New(env string) *Store {
	return &Store{
		env:     env,
		entries: make(map[Key]Entry),
		updates: make(chan struct{}, 1),
	}
}

// Env returns the active environment identity.
func (s *Store) Env() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.env
}

// Updates returns a channel that receives a signal whenever a fetch
// completes. The channel has a single-slot buffer: consumers wake at least
// once after any burst of completions and re-read whatever they need.
func (s *Store) Updates() <-chan struct{} {
	return s.updates
}

// GetOrFetch returns the current entry for sig and, when the entry is
// untouched, transitions it to Pending and launches fetch on a new goroutine.
// Concurrent callers for the same key observe the same Pending entry; only
// one fetch runs per key (single-flight).
func (s *Store) GetOrFetch(ctx context.Context, sig string, fetch FetchFunc) Entry {
	s.mu.Lock()
	key := Key{Env: s.env, Sig: sig}
	if entry, ok := s.entries[key]; ok {
		s.mu.Unlock()
		return entry
	}

	entry := Entry{State: Pending}
	s.entries[key] = entry
	gen := s.gen
	s.mu.Unlock()

	go func() {
		payload, err := fetch(ctx)
		s.complete(gen, key, payload, err)
	}()

	return entry
}

// Peek returns the entry for sig without triggering a fetch.
func (s *Store) Peek(sig string) Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	if entry, ok := s.entries[Key{Env: s.env, Sig: sig}]; ok {
		return entry
	}
	return Entry{State: NotRequested}
}

// Retry clears a Failed entry so the next GetOrFetch refetches. Pending and
// Ready entries are left alone.
func (s *Store) Retry(sig string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := Key{Env: s.env, Sig: sig}
	if entry, ok := s.entries[key]; ok && entry.State == Failed {
		delete(s.entries, key)
	}
}

// Invalidate removes the entry for sig regardless of state, forcing a
// refetch on next reference. An in-flight fetch for the removed entry still
// completes and is re-recorded; callers that need hard isolation switch
// environments instead.
func (s *Store) Invalidate(sig string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, Key{Env: s.env, Sig: sig})
}

// SwitchEnv replaces the environment identity, clears every entry, and bumps
// the generation so completions issued under the old environment are
// discarded instead of leaking into the new one.
func (s *Store) SwitchEnv(env string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.env = env
	s.gen++
	s.entries = make(map[Key]Entry)
}

func (s *Store) complete(gen uint64, key Key, payload any, err error) {
	s.mu.Lock()
	if gen != s.gen {
		// Stale completion from before an environment switch.
		s.mu.Unlock()
		return
	}
	entry := Entry{FetchedAt: time.Now()}
	if err != nil {
		entry.State = Failed
		entry.Err = err
	} else {
		entry.State = Ready
		entry.Payload = payload
	}
	s.entries[key] = entry
	s.mu.Unlock()

	select {
	case s.updates <- struct{}{}:
	default:
	}
}
