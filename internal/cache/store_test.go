package cache

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func waitForState(t *testing.T, s *Store, sig string, want State) Entry {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		entry := s.Peek(sig)
		if entry.State == want {
			return entry
		}
		select {
		case <-deadline:
			t.Fatalf("entry %q never reached state %v, last %v", sig, want, entry.State)
		case <-time.After(time.Millisecond):
		}
	}
}

func TestGetOrFetch_ReturnsPendingThenReady(t *testing.T) {
	s := New("envA")

	entry := s.GetOrFetch(context.Background(), "entities", func(ctx context.Context) (any, error) {
		return []string{"account", "contact"}, nil
	})
	if entry.State != Pending {
		t.Fatalf("first GetOrFetch state = %v, want Pending", entry.State)
	}

	ready := waitForState(t, s, "entities", Ready)
	payload, ok := ready.Payload.([]string)
	if !ok || len(payload) != 2 {
		t.Fatalf("payload = %#v, want 2 strings", ready.Payload)
	}
	if ready.FetchedAt.IsZero() {
		t.Fatalf("FetchedAt not set")
	}
}

func TestGetOrFetch_SingleFlight(t *testing.T) {
	s := New("envA")

	var calls atomic.Int32
	release := make(chan struct{})
	fetch := func(ctx context.Context) (any, error) {
		calls.Add(1)
		<-release
		return "payload", nil
	}

	first := s.GetOrFetch(context.Background(), "solutions", fetch)
	second := s.GetOrFetch(context.Background(), "solutions", fetch)
	if first.State != Pending || second.State != Pending {
		t.Fatalf("states = %v %v, want both Pending", first.State, second.State)
	}

	close(release)
	waitForState(t, s, "solutions", Ready)

	if got := calls.Load(); got != 1 {
		t.Fatalf("fetch calls = %d, want exactly 1", got)
	}
}

func TestGetOrFetch_FailureThenRetry(t *testing.T) {
	s := New("envA")

	boom := errors.New("boom")
	var calls atomic.Int32
	fetch := func(ctx context.Context) (any, error) {
		if calls.Add(1) == 1 {
			return nil, boom
		}
		return "ok", nil
	}

	s.GetOrFetch(context.Background(), "users", fetch)
	failed := waitForState(t, s, "users", Failed)
	if !errors.Is(failed.Err, boom) {
		t.Fatalf("Err = %v, want boom", failed.Err)
	}

	// Without Retry, GetOrFetch keeps returning the Failed entry.
	again := s.GetOrFetch(context.Background(), "users", fetch)
	if again.State != Failed {
		t.Fatalf("state = %v, want Failed until Retry", again.State)
	}
	if calls.Load() != 1 {
		t.Fatalf("calls = %d, want no refetch before Retry", calls.Load())
	}

	s.Retry("users")
	entry := s.GetOrFetch(context.Background(), "users", fetch)
	if entry.State != Pending {
		t.Fatalf("state after Retry = %v, want Pending", entry.State)
	}
	ready := waitForState(t, s, "users", Ready)
	if ready.Payload != "ok" {
		t.Fatalf("payload = %v, want ok", ready.Payload)
	}
}

func TestRetry_LeavesReadyEntriesAlone(t *testing.T) {
	s := New("envA")
	s.GetOrFetch(context.Background(), "entities", func(ctx context.Context) (any, error) {
		return "data", nil
	})
	waitForState(t, s, "entities", Ready)

	s.Retry("entities")
	if entry := s.Peek("entities"); entry.State != Ready {
		t.Fatalf("state = %v, want Ready preserved", entry.State)
	}
}

func TestSwitchEnv_InvalidatesEverything(t *testing.T) {
	s := New("envA")
	s.GetOrFetch(context.Background(), "entities", func(ctx context.Context) (any, error) {
		return "A-data", nil
	})
	waitForState(t, s, "entities", Ready)

	s.SwitchEnv("envB")

	if entry := s.Peek("entities"); entry.State != NotRequested {
		t.Fatalf("state after switch = %v, want NotRequested", entry.State)
	}
	if s.Env() != "envB" {
		t.Fatalf("Env = %q, want envB", s.Env())
	}
}

func TestSwitchEnv_DiscardsStaleCompletions(t *testing.T) {
	s := New("envA")

	release := make(chan struct{})
	s.GetOrFetch(context.Background(), "entities", func(ctx context.Context) (any, error) {
		<-release
		return "A-data", nil
	})

	// Switch while the envA fetch is still in flight, then let it finish.
	s.SwitchEnv("envB")
	close(release)

	// The stale completion must never populate envB's cache.
	time.Sleep(50 * time.Millisecond)
	if entry := s.Peek("entities"); entry.State != NotRequested {
		t.Fatalf("state = %v, want NotRequested (stale completion dropped)", entry.State)
	}

	// envB fetches fresh data under its own generation.
	s.GetOrFetch(context.Background(), "entities", func(ctx context.Context) (any, error) {
		return "B-data", nil
	})
	ready := waitForState(t, s, "entities", Ready)
	if ready.Payload != "B-data" {
		t.Fatalf("payload = %v, want B-data", ready.Payload)
	}
}

func TestUpdates_SignalsCompletion(t *testing.T) {
	s := New("envA")

	s.GetOrFetch(context.Background(), "entities", func(ctx context.Context) (any, error) {
		return "data", nil
	})

	select {
	case <-s.Updates():
	case <-time.After(2 * time.Second):
		t.Fatalf("no update signal after completion")
	}
}

func TestInvalidate_ForcesRefetch(t *testing.T) {
	s := New("envA")

	var calls atomic.Int32
	fetch := func(ctx context.Context) (any, error) {
		return calls.Add(1), nil
	}

	s.GetOrFetch(context.Background(), "users", fetch)
	waitForState(t, s, "users", Ready)

	s.Invalidate("users")
	if entry := s.Peek("users"); entry.State != NotRequested {
		t.Fatalf("state = %v, want NotRequested after Invalidate", entry.State)
	}

	s.GetOrFetch(context.Background(), "users", fetch)
	ready := waitForState(t, s, "users", Ready)
	if ready.Payload != int32(2) {
		t.Fatalf("payload = %v, want second fetch result", ready.Payload)
	}
}
