package page

import (
	"context"
	"sync"
)

// TabListener is notified when a tab becomes visible.
type TabListener func(ctx context.Context, tab string)

// Tabs tracks the active tab of a page and notifies subscribers on change.
type Tabs struct {
	mu        sync.Mutex
	active    string
	listeners []TabListener
}

// NewTabs creates a tab set with the initially active tab.
func NewTabs(active string) *Tabs {
	return &Tabs{active: active}
}

// Subscribe registers a listener for tab changes.
func (t *Tabs) Subscribe(fn TabListener) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.listeners = append(t.listeners, fn)
}

// Active returns the visible tab.
func (t *Tabs) Active() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.active
}

// Show activates tab and notifies every listener in subscription order.
func (t *Tabs) Show(ctx context.Context, tab string) {
	t.mu.Lock()
	t.active = tab
	listeners := append([]TabListener(nil), t.listeners...)
	t.mu.Unlock()

	for _, fn := range listeners {
		fn(ctx, tab)
	}
}
