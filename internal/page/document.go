// Package page models the browser document a dashboard page renders into:
// named regions with visibility, pending alerts, key listeners and the chart registry.
package page

import (
	"fmt"
	"html/template"
	"sort"
	"sync"

	"github.com/newthinker/finboard/internal/core"
	"github.com/newthinker/finboard/internal/render"
)

// Display is what controllers write into.
type Display interface {
	Has(region string) bool
	SetHTML(region string, html template.HTML) error
	SetText(region, text string) error
	Show(region string) error
	Hide(region string) error
	Alert(msg string)
	Charts() *render.Registry
	AddKeyListener(name string)
	RemoveKeyListener(name string)
	HasKeyListener(name string) bool
}

var _ Display = (*Document)(nil)

type region struct {
	html   template.HTML
	hidden bool
}

// Document is the server-side state of one rendered page.
type Document struct {
	mu        sync.RWMutex
	regions   map[string]*region
	dirty     map[string]struct{}
	alerts    []string
	listeners map[string]struct{}
	charts    *render.Registry
}

// NewDocument declares the regions of a page. Writes to undeclared regions fail.
func NewDocument(charts *render.Registry, regions ...string) *Document {
	if charts == nil {
		charts = render.NewRegistry(nil)
	}
	d := &Document{
		regions:   make(map[string]*region, len(regions)),
		dirty:     make(map[string]struct{}),
		listeners: make(map[string]struct{}),
		charts:    charts,
	}
	for _, r := range regions {
		d.regions[r] = &region{}
	}
	return d
}

// Declare adds a region, initially hidden when hidden is true.
func (d *Document) Declare(name string, hidden bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.regions[name] = &region{hidden: hidden}
}

func (d *Document) lookup(name string) (*region, error) {
	r, ok := d.regions[name]
	if !ok {
		return nil, core.WrapError(core.ErrRenderFailed, fmt.Errorf("region %q not found", name))
	}
	return r, nil
}

// Has reports whether a region is declared.
func (d *Document) Has(name string) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	_, ok := d.regions[name]
	return ok
}

// SetHTML replaces the content of a region.
func (d *Document) SetHTML(name string, html template.HTML) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	r, err := d.lookup(name)
	if err != nil {
		return err
	}
	r.html = html
	d.dirty[name] = struct{}{}
	return nil
}

// SetText replaces the content of a region with escaped text.
func (d *Document) SetText(name, text string) error {
	return d.SetHTML(name, template.HTML(template.HTMLEscapeString(text)))
}

// Show makes a region visible.
func (d *Document) Show(name string) error {
	return d.setHidden(name, false)
}

// Hide hides a region.
func (d *Document) Hide(name string) error {
	return d.setHidden(name, true)
}

func (d *Document) setHidden(name string, hidden bool) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	r, err := d.lookup(name)
	if err != nil {
		return err
	}
	if r.hidden != hidden {
		r.hidden = hidden
		d.dirty[name] = struct{}{}
	}
	return nil
}

// Region returns the content of a region; undeclared regions are empty.
func (d *Document) Region(name string) template.HTML {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if r, ok := d.regions[name]; ok {
		return r.html
	}
	return ""
}

// Visible reports whether a region is declared and shown.
func (d *Document) Visible(name string) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	r, ok := d.regions[name]
	return ok && !r.hidden
}

// Alert queues a blocking user notice.
func (d *Document) Alert(msg string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.alerts = append(d.alerts, msg)
}

// Charts returns the document's chart registry.
func (d *Document) Charts() *render.Registry {
	return d.charts
}

// AddKeyListener registers a named key listener. Registering twice is a no-op.
func (d *Document) AddKeyListener(name string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.listeners[name] = struct{}{}
}

// RemoveKeyListener unregisters a key listener.
func (d *Document) RemoveKeyListener(name string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.listeners, name)
}

// HasKeyListener reports whether a key listener is registered.
func (d *Document) HasKeyListener(name string) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	_, ok := d.listeners[name]
	return ok
}

// KeyListeners returns the number of registered key listeners.
func (d *Document) KeyListeners() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.listeners)
}

// Change is the state of a region modified since the last flush.
type Change struct {
	Region string
	HTML   template.HTML
	Hidden bool
}

// Flush returns the regions changed since the previous flush, sorted by name,
// together with the pending alerts.
func (d *Document) Flush() ([]Change, []string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	changes := make([]Change, 0, len(d.dirty))
	for name := range d.dirty {
		r := d.regions[name]
		changes = append(changes, Change{Region: name, HTML: r.html, Hidden: r.hidden})
	}
	sort.Slice(changes, func(i, j int) bool { return changes[i].Region < changes[j].Region })

	alerts := d.alerts
	d.dirty = make(map[string]struct{})
	d.alerts = nil
	return changes, alerts
}
