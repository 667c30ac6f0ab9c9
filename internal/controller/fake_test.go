package controller

import (
	"context"
	"sync"

	"github.com/newthinker/finboard/internal/core"
)

// fakeBackend serves canned responses and records every call.
type fakeBackend struct {
	mu    sync.Mutex
	calls []string

	stocks      []core.Stock
	stocksErr   error
	reportTypes []core.ReportType
	lineItems   map[string][]core.LineItem
	rows        []core.FinancialRow
	rowsErr     error
	lastFilter  core.FilterSelection

	capital    *core.CapitalTotal
	capitalErr error

	board    *core.IndexBoard
	boardErr error

	news       []core.NewsItem
	newsErr    error
	detail     map[int64]*core.NewsItem
	detailErr  error

	chartData    map[int64][]core.SymbolValue
	chartDataErr error

	marketCap    []core.SymbolValue
	marketCapErr error

	stockPage    string
	stockPageErr error
}

func (f *fakeBackend) record(call string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
}

func (f *fakeBackend) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeBackend) Stocks(ctx context.Context) ([]core.Stock, error) {
	f.record("stocks")
	return f.stocks, f.stocksErr
}

func (f *fakeBackend) ReportTypes(ctx context.Context) ([]core.ReportType, error) {
	f.record("report_types")
	return f.reportTypes, nil
}

func (f *fakeBackend) LineItems(ctx context.Context, reportTypeID string) ([]core.LineItem, error) {
	f.record("line_items:" + reportTypeID)
	return f.lineItems[reportTypeID], nil
}

func (f *fakeBackend) FinancialData(ctx context.Context, sel core.FilterSelection) ([]core.FinancialRow, error) {
	f.record("financial_data")
	f.mu.Lock()
	f.lastFilter = sel
	f.mu.Unlock()
	return f.rows, f.rowsErr
}

func (f *fakeBackend) CapitalTotal(ctx context.Context, q core.CapitalQuery) (*core.CapitalTotal, error) {
	f.record("capital_total")
	return f.capital, f.capitalErr
}

func (f *fakeBackend) Indices(ctx context.Context) (*core.IndexBoard, error) {
	f.record("index_all")
	return f.board, f.boardErr
}

func (f *fakeBackend) News(ctx context.Context) ([]core.NewsItem, error) {
	f.record("news")
	return f.news, f.newsErr
}

func (f *fakeBackend) NewsByID(ctx context.Context, id int64) (*core.NewsItem, error) {
	f.record("news_detail")
	if f.detailErr != nil {
		return nil, f.detailErr
	}
	item, ok := f.detail[id]
	if !ok {
		return nil, core.ErrNotFound
	}
	return item, nil
}

func (f *fakeBackend) ChartData(ctx context.Context, lineItemID int64) ([]core.SymbolValue, error) {
	f.record("chart_data")
	return f.chartData[lineItemID], f.chartDataErr
}

func (f *fakeBackend) MarketCap(ctx context.Context) ([]core.SymbolValue, error) {
	f.record("market_cap")
	return f.marketCap, f.marketCapErr
}

func (f *fakeBackend) Update(ctx context.Context, symbol string) (string, error) {
	f.record("update:" + symbol)
	return f.stockPage, f.stockPageErr
}

func ptr[T any](v T) *T { return &v }
