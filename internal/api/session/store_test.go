// internal/api/session/store_test.go
package session

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/newthinker/finboard/internal/core"
)

type fakePage struct {
	mu     sync.Mutex
	closed int
}

func (p *fakePage) Close() {
	p.mu.Lock()
	p.closed++
	p.mu.Unlock()
}

func (p *fakePage) closedCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closed
}

type fakeGauge struct{ last int }

func (g *fakeGauge) SetSessions(n int) { g.last = n }

func TestStore_CreateAndGet(t *testing.T) {
	store := NewStore(100, time.Hour, nil)

	sess := store.Create()
	if sess.ID == "" {
		t.Error("expected session ID")
	}

	retrieved, err := store.Get(sess.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if retrieved != sess {
		t.Error("expected the same session")
	}
}

func TestStore_NotFound(t *testing.T) {
	store := NewStore(100, time.Hour, nil)

	_, err := store.Get("nonexistent")
	if !errors.Is(err, core.ErrNotFound) {
		t.Errorf("expected NOT_FOUND, got %v", err)
	}
}

func TestStore_MaxSizeClosesEvicted(t *testing.T) {
	gauge := &fakeGauge{}
	store := NewStore(2, time.Hour, gauge)

	first := store.Create()
	page := &fakePage{}
	first.Open("information", page)

	store.Create()
	store.Create() // Should evict first

	if _, err := store.Get(first.ID); err == nil {
		t.Error("expected first session to be evicted")
	}
	if page.closedCount() != 1 {
		t.Errorf("expected evicted page closed once, got %d", page.closedCount())
	}
	if gauge.last != 2 {
		t.Errorf("expected gauge 2, got %d", gauge.last)
	}
}

func TestStore_TTL(t *testing.T) {
	store := NewStore(10, time.Minute, nil)
	clock := time.Date(2024, 10, 14, 9, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return clock }

	sess := store.Create()
	page := &fakePage{}
	sess.Open("priceboard", page)

	clock = clock.Add(30 * time.Second)
	if _, err := store.Get(sess.ID); err != nil {
		t.Fatalf("session should still be live: %v", err)
	}

	// Get refreshed lastSeen, so another 45s is still inside the ttl
	clock = clock.Add(45 * time.Second)
	if _, err := store.Get(sess.ID); err != nil {
		t.Fatalf("session should still be live: %v", err)
	}

	clock = clock.Add(2 * time.Minute)
	if n := store.Sweep(); n != 1 {
		t.Errorf("expected 1 swept, got %d", n)
	}
	if page.closedCount() != 1 {
		t.Error("expected swept page closed")
	}
	if store.Len() != 0 {
		t.Errorf("expected empty store, got %d", store.Len())
	}
}

func TestStore_GetOrCreate(t *testing.T) {
	store := NewStore(10, time.Hour, nil)

	sess, created := store.GetOrCreate("")
	if !created {
		t.Error("expected new session for empty id")
	}

	again, created := store.GetOrCreate(sess.ID)
	if created || again != sess {
		t.Error("expected existing session")
	}

	_, created = store.GetOrCreate("stale-id")
	if !created {
		t.Error("expected new session for unknown id")
	}
}

func TestSession_OpenReplacesPage(t *testing.T) {
	store := NewStore(10, time.Hour, nil)
	sess := store.Create()

	first, second := &fakePage{}, &fakePage{}
	sess.Open("stock", first)
	sess.Open("stock", second)

	if first.closedCount() != 1 {
		t.Error("expected replaced page closed")
	}
	got, ok := sess.Lookup("stock")
	if !ok || got != second {
		t.Error("expected second page installed")
	}
	if _, ok := sess.Lookup("news"); ok {
		t.Error("unexpected page")
	}
}

func TestStore_DeleteAndClose(t *testing.T) {
	gauge := &fakeGauge{}
	store := NewStore(10, time.Hour, gauge)

	a := store.Create()
	pa := &fakePage{}
	a.Open("information", pa)
	b := store.Create()
	pb := &fakePage{}
	b.Open("information", pb)

	store.Delete(a.ID)
	if pa.closedCount() != 1 || store.Len() != 1 {
		t.Error("expected a deleted and closed")
	}

	store.Close()
	if pb.closedCount() != 1 || store.Len() != 0 || gauge.last != 0 {
		t.Error("expected all sessions closed")
	}
}
