package render

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeGauge struct {
	mu    sync.Mutex
	value float64
}

func (g *fakeGauge) AddLiveCharts(delta float64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.value += delta
}

func TestRegistry_CreateDestroysPrevious(t *testing.T) {
	g := &fakeGauge{}
	r := NewRegistry(g)

	first := r.Create("chartCanvas", KindChartJS, LineChart("a", seriesOf(1, 2)))
	second := r.Create("chartCanvas", KindChartJS, LineChart("b", seriesOf(3)))

	assert.True(t, first.Destroyed())
	assert.False(t, second.Destroyed())
	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, 1, r.Live())
	assert.Equal(t, 1.0, g.value)

	got, ok := r.Get("chartCanvas")
	require.True(t, ok)
	assert.Same(t, second, got)
}

func TestRegistry_UpdateInPlace(t *testing.T) {
	r := NewRegistry(nil)
	c := r.Update("financialChart", KindChartJS, "v1")
	same := r.Update("financialChart", KindChartJS, "v2")

	assert.Same(t, c, same)
	assert.Equal(t, "v2", same.Config)
	assert.Equal(t, 1, r.Live())

	// a kind change replaces the instance
	other := r.Update("financialChart", KindPlotly, "fig")
	assert.True(t, c.Destroyed())
	assert.NotSame(t, c, other)
}

func TestRegistry_DestroyAndCanvases(t *testing.T) {
	g := &fakeGauge{}
	r := NewRegistry(g)
	r.Create("chart-VNINDEX", KindChartJS, nil)
	r.Create("chart-HNXINDEX", KindChartJS, nil)

	assert.Equal(t, []string{"chart-HNXINDEX", "chart-VNINDEX"}, r.Canvases())
	assert.True(t, r.Destroy("chart-VNINDEX"))
	assert.False(t, r.Destroy("chart-VNINDEX"))

	r.DestroyAll()
	assert.Equal(t, 0, r.Live())
	assert.Equal(t, 0.0, g.value)
}

func TestRegistry_CloseRefusesNewCharts(t *testing.T) {
	g := &fakeGauge{}
	r := NewRegistry(g)
	r.Create("chart-VNINDEX", KindChartJS, nil)

	r.Close()
	assert.True(t, r.Closed())
	assert.Equal(t, 0, r.Live())

	late := r.Create("metricChart", KindChartJS, nil)
	updated := r.Update("treemap", KindPlotly, nil)
	assert.True(t, late.Destroyed())
	assert.True(t, updated.Destroyed())
	assert.Equal(t, 0, r.Live())
	assert.Equal(t, 0.0, g.value)
}

func TestRegistry_ConcurrentCreateKeepsOneLive(t *testing.T) {
	r := NewRegistry(nil)
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.Create("chartCanvas", KindChartJS, nil)
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, r.Live())
}

func TestChart_HTML(t *testing.T) {
	r := NewRegistry(nil)
	c := r.Create("chartCanvas", KindChartJS, map[string]string{"type": "line"})

	html := string(c.HTML())
	assert.Contains(t, html, `id="chartCanvas"`)
	assert.Contains(t, html, `data-chart-kind="chartjs"`)
	assert.Contains(t, html, "&#34;type&#34;:&#34;line&#34;")
}
