package render

import (
	"encoding/json"
	"html/template"
	"sort"
	"sync"
)

// LiveGauge tracks the number of live charts. *metrics.Registry implements it.
type LiveGauge interface {
	AddLiveCharts(delta float64)
}

// Chart is a chart instance bound to a canvas.
type Chart struct {
	ID        uint64
	Canvas    string
	Kind      Kind
	Config    any
	destroyed bool
}

// Destroyed reports whether the chart has been torn down.
func (c *Chart) Destroyed() bool {
	return c.destroyed
}

// JSON returns the chart config as a JSON string.
func (c *Chart) JSON() string {
	raw, err := json.Marshal(c.Config)
	if err != nil {
		return "{}"
	}
	return string(raw)
}

// HTML renders the canvas element carrying the chart config.
func (c *Chart) HTML() template.HTML {
	return execute("canvas", c)
}

// Registry owns the chart instances of one document. Each canvas holds at most
// one live chart; creating a chart destroys the one already bound to the canvas.
type Registry struct {
	mu     sync.Mutex
	charts map[string]*Chart
	nextID uint64
	gauge  LiveGauge
	closed bool
}

// NewRegistry creates an empty registry. gauge may be nil.
func NewRegistry(gauge LiveGauge) *Registry {
	return &Registry{
		charts: make(map[string]*Chart),
		gauge:  gauge,
	}
}

// Create destroys any chart on canvas and binds a new one. On a closed
// registry the chart is returned already destroyed and is not tracked.
func (r *Registry) Create(canvas string, kind Kind, cfg any) *Chart {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	c := &Chart{ID: r.nextID, Canvas: canvas, Kind: kind, Config: cfg}
	if r.closed {
		c.destroyed = true
		return c
	}
	r.destroyLocked(canvas)
	r.charts[canvas] = c
	r.addLive(1)
	return c
}

// Update replaces the config of the live chart on canvas in place, creating one if absent.
func (r *Registry) Update(canvas string, kind Kind, cfg any) *Chart {
	r.mu.Lock()
	if c, ok := r.charts[canvas]; ok && c.Kind == kind {
		c.Config = cfg
		r.mu.Unlock()
		return c
	}
	r.mu.Unlock()
	return r.Create(canvas, kind, cfg)
}

// Get returns the live chart on canvas.
func (r *Registry) Get(canvas string) (*Chart, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.charts[canvas]
	return c, ok
}

// Destroy tears down the chart on canvas, reporting whether one existed.
func (r *Registry) Destroy(canvas string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.destroyLocked(canvas)
}

// DestroyAll tears down every chart.
func (r *Registry) DestroyAll() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for canvas := range r.charts {
		r.destroyLocked(canvas)
	}
}

// Close tears down every chart and makes later creates no-ops.
func (r *Registry) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	for canvas := range r.charts {
		r.destroyLocked(canvas)
	}
}

// Closed reports whether Close has been called.
func (r *Registry) Closed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.closed
}

// Canvases returns the canvases that hold a live chart, sorted.
func (r *Registry) Canvases() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.charts))
	for canvas := range r.charts {
		out = append(out, canvas)
	}
	sort.Strings(out)
	return out
}

// Live returns the number of live charts.
func (r *Registry) Live() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.charts)
}

func (r *Registry) destroyLocked(canvas string) bool {
	c, ok := r.charts[canvas]
	if !ok {
		return false
	}
	c.destroyed = true
	delete(r.charts, canvas)
	r.addLive(-1)
	return true
}

func (r *Registry) addLive(delta float64) {
	if r.gauge != nil {
		r.gauge.AddLiveCharts(delta)
	}
}
