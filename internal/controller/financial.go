package controller

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/newthinker/finboard/internal/core"
	"github.com/newthinker/finboard/internal/page"
	"github.com/newthinker/finboard/internal/render"
	"github.com/newthinker/finboard/internal/view"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Regions of the financial information page.
const (
	RegionStockSelect  = "stock-select"
	RegionReportSelect = "report-select"
	RegionLineSelect   = "line-select"
	RegionDataTable    = "data-table"
	RegionChartModal   = "chart-modal"
	RegionOverlay      = "overlay"

	CanvasLineChart = "chartCanvas"
)

// FinancialRegions lists the regions NewFinancial writes to.
var FinancialRegions = []string{
	RegionStockSelect, RegionReportSelect, RegionLineSelect,
	RegionDataTable, RegionChartModal, RegionOverlay,
}

// Financial page messages.
const (
	MsgStocksFailed      = "Lỗi khi tải danh sách cổ phiếu"
	MsgReportTypesFailed = "Lỗi khi tải danh sách loại báo cáo"
	MsgLineItemsFailed   = "Lỗi khi tải danh sách chỉ tiêu"
	MsgFinancialFailed   = "Lỗi khi tải dữ liệu tài chính: %s"
	MsgChartNoData       = "Không có dữ liệu để vẽ biểu đồ!"
	MsgChartNoItem       = "Không có dữ liệu cho chỉ tiêu này!"
	MsgChartFailed       = "Lỗi khi vẽ biểu đồ."
)

// FinancialBackend is the data the financial page needs.
type FinancialBackend interface {
	Stocks(ctx context.Context) ([]core.Stock, error)
	ReportTypes(ctx context.Context) ([]core.ReportType, error)
	LineItems(ctx context.Context, reportTypeID string) ([]core.LineItem, error)
	FinancialData(ctx context.Context, sel core.FilterSelection) ([]core.FinancialRow, error)
}

// FinancialDefaults are the selections applied at startup.
type FinancialDefaults struct {
	Symbol       string
	ReportTypeID string
	Period       core.Period
}

// Financial drives the financial statement table and its line chart.
type Financial struct {
	mu       sync.Mutex
	display  page.Display
	backend  FinancialBackend
	logger   *zap.Logger
	defaults FinancialDefaults
	state    view.State
}

// NewFinancial creates the financial page controller.
func NewFinancial(d page.Display, be FinancialBackend, defaults FinancialDefaults, logger *zap.Logger) *Financial {
	if defaults.Period == "" {
		defaults.Period = core.PeriodYearly
	}
	f := &Financial{
		display:  d,
		backend:  be,
		logger:   orNop(logger),
		defaults: defaults,
	}
	f.state.Filter.Period = defaults.Period
	return f
}

// Selection returns the current filter selection.
func (f *Financial) Selection() core.FilterSelection {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state.Filter
}

// Init runs the two-phase startup: symbols and report types concurrently,
// then line items, then financial data.
func (f *Financial) Init(ctx context.Context) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var symbol, reportType string
	var g errgroup.Group
	g.Go(func() error {
		symbol = f.loadStocks(ctx)
		return nil
	})
	g.Go(func() error {
		reportType = f.loadReportTypes(ctx)
		return nil
	})
	_ = g.Wait()

	f.state.Filter.Symbol = symbol
	f.state.Filter.ReportTypeID = reportType
	f.loadLineItems(ctx)
	f.loadFinancialData(ctx)
}

// OnChange applies a filter change and refetches whatever depends on it.
func (f *Financial) OnChange(ctx context.Context, c view.Control, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.state.Set(c, value); err != nil {
		return err
	}
	switch c {
	case view.ControlReport:
		f.loadLineItems(ctx)
		f.loadFinancialData(ctx)
	case view.ControlStock, view.ControlPeriod:
		f.loadFinancialData(ctx)
	}
	return nil
}

// LoadFinancialData fetches and renders the table, returning the rows on success.
func (f *Financial) LoadFinancialData(ctx context.Context) []core.FinancialRow {
	f.mu.Lock()
	defer f.mu.Unlock()
	rows, _ := f.loadFinancialData(ctx)
	return rows
}

// DrawChart refetches the data and opens the line chart of the selected line item.
func (f *Financial) DrawChart(ctx context.Context) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := view.ValidateChart(f.state.Filter); err != nil {
		f.display.Alert(view.MsgSelectLineItem)
		return
	}
	rows, ok := f.loadFinancialData(ctx)
	if !ok {
		f.display.Alert(MsgChartNoData)
		return
	}

	var row *core.FinancialRow
	for i := range rows {
		if rows[i].Item == f.state.Filter.LineItem {
			row = &rows[i]
			break
		}
	}
	if row == nil {
		f.display.Alert(MsgChartNoItem)
		return
	}

	charts := f.display.Charts()
	chart := charts.Create(CanvasLineChart, render.KindChartJS, render.LineChart(row.Item, row.Series(f.state.Filter.Period)))

	u := &ui{d: f.display}
	u.html(RegionChartModal, chart.HTML())
	u.show(RegionOverlay, RegionChartModal)
	if u.err != nil {
		charts.Destroy(CanvasLineChart)
		broken(f.display, f.logger, u.err, MsgChartFailed)
	}
}

// CloseChart hides the chart modal.
func (f *Financial) CloseChart() {
	f.mu.Lock()
	defer f.mu.Unlock()

	u := &ui{d: f.display}
	u.hide(RegionOverlay, RegionChartModal)
	broken(f.display, f.logger, u.err, MsgChartFailed)
}

func (f *Financial) fail(region, msg string, err error) {
	f.logger.Warn(msg, zap.Error(err))
	u := &ui{d: f.display}
	u.html(region, render.Message(msg, true))
	broken(f.display, f.logger, u.err, MsgPageBroken)
}

func (f *Financial) loadStocks(ctx context.Context) string {
	stocks, err := f.backend.Stocks(ctx)
	if err != nil {
		f.fail(RegionDataTable, MsgStocksFailed, err)
		return ""
	}

	selected := ""
	opts := make([]render.Option, len(stocks))
	for i, s := range stocks {
		opts[i] = render.Option{Value: s.Symbol, Text: s.Symbol}
		if s.Symbol == f.defaults.Symbol {
			selected = s.Symbol
		}
	}
	u := &ui{d: f.display}
	u.html(RegionStockSelect, render.SelectOptions("Chọn mã cổ phiếu", opts, selected))
	broken(f.display, f.logger, u.err, MsgPageBroken)
	return selected
}

func (f *Financial) loadReportTypes(ctx context.Context) string {
	types, err := f.backend.ReportTypes(ctx)
	if err != nil {
		f.fail(RegionDataTable, MsgReportTypesFailed, err)
		return ""
	}

	selected := ""
	opts := make([]render.Option, len(types))
	for i, t := range types {
		id := fmt.Sprint(t.ID)
		opts[i] = render.Option{Value: id, Text: t.DisplayName()}
		if id == f.defaults.ReportTypeID {
			selected = id
		}
	}
	u := &ui{d: f.display}
	u.html(RegionReportSelect, render.SelectOptions("Chọn loại báo cáo", opts, selected))
	broken(f.display, f.logger, u.err, MsgPageBroken)
	return selected
}

// loadLineItems repopulates the line item select, clearing the selected line item.
func (f *Financial) loadLineItems(ctx context.Context) {
	f.state.Filter.LineItem = ""
	if f.state.Filter.ReportTypeID == "" {
		u := &ui{d: f.display}
		u.html(RegionLineSelect, render.SelectOptions("Chọn chỉ tiêu", nil, ""))
		broken(f.display, f.logger, u.err, MsgPageBroken)
		return
	}

	items, err := f.backend.LineItems(ctx, f.state.Filter.ReportTypeID)
	if err != nil {
		f.fail(RegionDataTable, MsgLineItemsFailed, err)
		return
	}
	opts := make([]render.Option, len(items))
	for i, it := range items {
		opts[i] = render.Option{Value: it.Name, Text: it.Name}
	}
	u := &ui{d: f.display}
	u.html(RegionLineSelect, render.SelectOptions("Chọn chỉ tiêu", opts, ""))
	broken(f.display, f.logger, u.err, MsgPageBroken)
}

// loadFinancialData renders the table. ok is false when no row list was
// received; an empty list is ok.
func (f *Financial) loadFinancialData(ctx context.Context) (rows []core.FinancialRow, ok bool) {
	u := &ui{d: f.display}
	defer func() { broken(f.display, f.logger, u.err, MsgPageBroken) }()

	sel := f.state.Filter
	if err := view.ValidateFinancial(sel); err != nil {
		u.html(RegionDataTable, render.Message(view.MsgFilterIncomplete, true))
		return nil, false
	}

	rows, err := f.backend.FinancialData(ctx, sel)
	if err != nil {
		if msg, ok := payloadMessage(err); ok {
			u.html(RegionDataTable, render.Message(msg, true))
			return nil, false
		}
		if errors.Is(err, core.ErrNoData) {
			u.html(RegionDataTable, render.Message(render.MsgNoTableData, true))
			return nil, false
		}
		f.logger.Warn("financial data fetch failed",
			zap.String("symbol", sel.Symbol),
			zap.String("report_type_id", sel.ReportTypeID),
			zap.String("period", string(sel.Period)),
			zap.Error(err),
		)
		u.html(RegionDataTable, render.Message(fmt.Sprintf(MsgFinancialFailed, errorText(err)), true))
		return nil, false
	}

	u.html(RegionDataTable, render.FinancialTable(rows, sel.Period))
	return rows, true
}
