package controller

import (
	"context"
	"fmt"
	"sync"

	"github.com/newthinker/finboard/internal/core"
	"github.com/newthinker/finboard/internal/page"
	"github.com/newthinker/finboard/internal/render"
	"go.uber.org/zap"
)

// Regions of the metric pie chart section.
const (
	RegionMetricButtons = "metricButtons"
	RegionMetricMessage = "chartMessage"
	RegionMetricLoading = "loading"
	RegionMetricError   = "error"
	RegionMetricChart   = "metricChart"

	CanvasMetricChart = "financialChart"
)

// MetricRegions lists the regions NewMetricChart writes to.
var MetricRegions = []string{
	RegionMetricButtons, RegionMetricMessage, RegionMetricLoading,
	RegionMetricError, RegionMetricChart,
}

// Metric chart messages.
const (
	MsgMetricPrompt      = "Vui lòng chọn một chỉ số tài chính để xem biểu đồ."
	MsgMetricNone        = "Không có chỉ số nào được định nghĩa."
	MsgMetricLoadFailed  = "Lỗi tải dữ liệu: "
	MsgMetricChartFailed = "Lỗi: Không thể tải dữ liệu biểu đồ."
	MsgMetricEmpty       = "Không có dữ liệu cho chỉ số \"%s\" (%s/%d)."
)

// Metric is a selectable line item of the pie chart.
type Metric struct {
	Label      string
	LineItemID int64
}

// ChartDataBackend returns per-symbol values of a line item.
type ChartDataBackend interface {
	ChartData(ctx context.Context, lineItemID int64) ([]core.SymbolValue, error)
}

// MetricChart drives the per-symbol pie chart of a selected metric.
type MetricChart struct {
	mu      sync.Mutex
	display page.Display
	backend ChartDataBackend
	logger  *zap.Logger
	metrics []Metric
	year    int
	quarter string
	active  int64
}

// NewMetricChart creates the pie chart controller for the given metrics and reporting period.
func NewMetricChart(d page.Display, be ChartDataBackend, metrics []Metric, year int, quarter string, logger *zap.Logger) *MetricChart {
	return &MetricChart{
		display: d,
		backend: be,
		logger:  orNop(logger),
		metrics: metrics,
		year:    year,
		quarter: quarter,
	}
}

// Active returns the selected line item id, 0 when none.
func (m *MetricChart) Active() int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.active
}

// Init checks the page structure, renders the buttons and loads the first metric.
func (m *MetricChart) Init(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, r := range MetricRegions {
		if !m.display.Has(r) {
			broken(m.display, m.logger, fmt.Errorf("region %q not found", r), MsgPageBroken)
			return
		}
	}

	m.showMessage(MsgMetricPrompt, false)
	m.renderButtons()
	if len(m.metrics) == 0 {
		m.showMessage(MsgMetricNone, true)
		return
	}
	m.selectMetric(ctx, m.metrics[0])
}

// Select switches the chart to the metric with lineItemID.
func (m *MetricChart) Select(ctx context.Context, lineItemID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, metric := range m.metrics {
		if metric.LineItemID == lineItemID {
			m.selectMetric(ctx, metric)
			return nil
		}
	}
	return core.WrapError(core.ErrNotFound, fmt.Errorf("metric %d", lineItemID))
}

func (m *MetricChart) selectMetric(ctx context.Context, metric Metric) {
	m.active = metric.LineItemID
	m.renderButtons()

	u := &ui{d: m.display}
	u.show(RegionMetricLoading)
	u.hide(RegionMetricError)

	items, err := m.backend.ChartData(ctx, metric.LineItemID)
	u.hide(RegionMetricLoading)
	if err != nil && isEmptyPayload(err) {
		m.logger.Debug("chart data empty", zap.Int64("line_item_id", metric.LineItemID), zap.Error(err))
		items, err = nil, nil
	}
	if err != nil {
		m.logger.Error("chart data fetch failed", zap.Int64("line_item_id", metric.LineItemID), zap.Error(err))
		u.text(RegionMetricError, MsgMetricLoadFailed+statusText(err))
		u.show(RegionMetricError)
		broken(m.display, m.logger, u.err, MsgPageBroken)
		m.showMessage(MsgMetricChartFailed, true)
		return
	}
	broken(m.display, m.logger, u.err, MsgPageBroken)

	if len(items) == 0 {
		m.showMessage(fmt.Sprintf(MsgMetricEmpty, metric.Label, m.quarter, m.year), false)
		return
	}

	title := fmt.Sprintf("%s (%s/%d)", metric.Label, m.quarter, m.year)
	chart := m.display.Charts().Update(CanvasMetricChart, render.KindChartJS,
		render.PieChart(metric.Label, title, core.SeriesFromSymbolValues(items)))

	u = &ui{d: m.display}
	u.hide(RegionMetricMessage)
	u.html(RegionMetricChart, chart.HTML())
	u.show(RegionMetricChart)
	broken(m.display, m.logger, u.err, MsgPageBroken)
}

// showMessage replaces the chart with a text message, destroying the chart.
func (m *MetricChart) showMessage(msg string, isError bool) {
	m.display.Charts().Destroy(CanvasMetricChart)

	u := &ui{d: m.display}
	u.hide(RegionMetricChart)
	u.html(RegionMetricChart, "")
	u.html(RegionMetricMessage, render.Message(msg, isError))
	u.show(RegionMetricMessage)
	broken(m.display, m.logger, u.err, MsgPageBroken)
}

func (m *MetricChart) renderButtons() {
	buttons := make([]render.MetricButton, len(m.metrics))
	for i, metric := range m.metrics {
		buttons[i] = render.MetricButton{
			Label:      metric.Label,
			LineItemID: metric.LineItemID,
			Active:     metric.LineItemID == m.active,
		}
	}
	u := &ui{d: m.display}
	u.html(RegionMetricButtons, render.MetricButtons(buttons))
	broken(m.display, m.logger, u.err, MsgPageBroken)
}
