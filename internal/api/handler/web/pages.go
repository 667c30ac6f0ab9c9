package web

import (
	"context"
	"sync"

	"github.com/newthinker/finboard/internal/config"
	"github.com/newthinker/finboard/internal/controller"
	"github.com/newthinker/finboard/internal/core"
	"github.com/newthinker/finboard/internal/logger"
	"github.com/newthinker/finboard/internal/page"
	"github.com/newthinker/finboard/internal/render"
)

// Session page names.
const (
	PageInformation = "information"
	PagePriceboard  = "priceboard"
	PageStock       = "stock"
)

// Price board tabs.
const (
	TabMarket = "tab-market"
	TabNews   = "tab-news"
)

var priceboardTabs = []string{TabMarket, TabNews, controller.TabIndex}

// document owns one page's regions and charts. mu serializes the operations
// applied to it so each fetch and render completes before the next event.
type document struct {
	mu  sync.Mutex
	doc *page.Document
}

// newPageDocument declares regions, then redeclares the hidden ones.
func newPageDocument(gauge render.LiveGauge, regions []string, hidden ...string) *page.Document {
	d := page.NewDocument(render.NewRegistry(gauge), regions...)
	for _, r := range hidden {
		d.Declare(r, true)
	}
	return d
}

// Close releases every live chart of the page. It does not wait for d.mu:
// a request still working on a replaced page can no longer add charts.
func (d *document) Close() {
	d.doc.Charts().Close()
}

type informationPage struct {
	document
	financial *controller.Financial
}

func (h *Handler) newInformationPage() *informationPage {
	dash := h.deps.Dashboard
	p := &informationPage{
		document: document{doc: newPageDocument(h.deps.Gauge, controller.FinancialRegions,
			controller.RegionChartModal, controller.RegionOverlay)},
	}
	p.financial = controller.NewFinancial(p.doc, h.deps.Backend, controller.FinancialDefaults{
		Symbol:       dash.DefaultSymbol,
		ReportTypeID: dash.DefaultReportType,
		Period:       core.Period(dash.DefaultPeriod),
	}, logger.Component(h.logger, "financial"))
	return p
}

type priceboardPage struct {
	document
	tabs     *page.Tabs
	treemap  *controller.Treemap
	capital  *controller.Capital
	metric   *controller.MetricChart
	news     *controller.News
	indices  *controller.IndexBoard
	metrics  []controller.Metric
	startTab string
}

func (h *Handler) newPriceboardPage(tab string) *priceboardPage {
	dash := h.deps.Dashboard

	regions := make([]string, 0, 16)
	regions = append(regions, controller.TreemapRegions...)
	regions = append(regions, controller.CapitalRegions...)
	regions = append(regions, controller.MetricRegions...)
	regions = append(regions, controller.NewsRegions...)
	regions = append(regions, controller.IndexRegions...)

	p := &priceboardPage{
		document: document{doc: newPageDocument(h.deps.Gauge, regions,
			controller.RegionCapitalLoading, controller.RegionCapitalError, controller.RegionCapitalResult,
			controller.RegionTreemapLoading, controller.RegionTreemapError,
			controller.RegionMetricLoading, controller.RegionMetricError,
			controller.RegionNewsPopup, controller.RegionNewsOverlay,
		)},
		tabs:     page.NewTabs(tab),
		metrics:  metricsFrom(dash.Metrics),
		startTab: tab,
	}

	p.treemap = controller.NewTreemap(p.doc, h.deps.Backend, logger.Component(h.logger, "treemap"))
	p.capital = controller.NewCapital(p.doc, h.deps.Backend, core.CapitalQuery{
		Year:       dash.Capital.Year,
		Quarter:    dash.Capital.Quarter,
		LineItemID: dash.Capital.LineItemID,
	}, logger.Component(h.logger, "capital"))
	p.metric = controller.NewMetricChart(p.doc, h.deps.Backend, p.metrics,
		dash.ChartYear, dash.ChartQuarter, logger.Component(h.logger, "metric"))
	p.news = controller.NewNews(p.doc, h.deps.News, logger.Component(h.logger, "news"))
	p.indices = controller.NewIndexBoard(p.doc, h.deps.Backend, logger.Component(h.logger, "indices"))
	return p
}

// start loads every section of the price board.
func (p *priceboardPage) start(ctx context.Context) {
	p.treemap.Load(ctx)
	p.metric.Init(ctx)
	p.news.Load(ctx)
	p.indices.Attach(ctx, p.tabs)
}

func metricsFrom(cfg []config.MetricConfig) []controller.Metric {
	out := make([]controller.Metric, 0, len(cfg))
	for _, m := range cfg {
		out = append(out, controller.Metric{Label: m.Label, LineItemID: m.LineItemID})
	}
	return out
}

type stockPage struct {
	document
	stock *controller.Stock
}

func (h *Handler) newStockPage(symbol string) *stockPage {
	p := &stockPage{document: document{doc: newPageDocument(h.deps.Gauge, controller.StockRegions)}}
	p.stock = controller.NewStock(p.doc, h.deps.Backend, symbol, logger.Component(h.logger, "stock"))
	return p
}

func validTab(tab string) bool {
	for _, t := range priceboardTabs {
		if t == tab {
			return true
		}
	}
	return false
}
