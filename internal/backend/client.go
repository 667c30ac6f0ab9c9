// Package backend is the client for the financial-data REST API the dashboard renders.
package backend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/newthinker/finboard/internal/core"
	"go.uber.org/zap"
)

const (
	defaultTimeout = 15 * time.Second
	maxBodyBytes   = 8 << 20
)

// Recorder receives per-request metrics. *metrics.Registry implements it.
type Recorder interface {
	RecordBackendRequest(endpoint, status string, seconds float64)
}

// Config holds backend connection settings.
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// Client calls the backend API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
	recorder   Recorder
}

// New creates a backend client.
func New(cfg Config, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL: strings.TrimSuffix(cfg.BaseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

// SetRecorder attaches a metrics recorder.
func (c *Client) SetRecorder(r Recorder) {
	c.recorder = r
}

// FetchError is a failed backend call. Status is 0 for network-level failures.
type FetchError struct {
	Endpoint   string
	Status     int
	StatusText string
	Message    string
	Cause      error
}

func (e *FetchError) Error() string {
	return e.Message
}

// Unwrap maps the failure onto the core error taxonomy.
func (e *FetchError) Unwrap() error {
	switch {
	case e.Status == http.StatusNotFound:
		return core.WrapError(core.ErrNotFound, e.Cause)
	case e.Status != 0:
		return core.WrapError(core.ErrHTTPStatus, e.Cause)
	default:
		return core.WrapError(core.ErrFetchFailed, e.Cause)
	}
}

// AsFetchError extracts a *FetchError from err.
func AsFetchError(err error) (*FetchError, bool) {
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe, true
	}
	return nil, false
}

// FetchJSON GETs path and decodes the JSON body into out.
func (c *Client) FetchJSON(ctx context.Context, endpoint, path string, out any) error {
	body, err := c.do(ctx, endpoint, http.MethodGet, path, nil, "")
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return &FetchError{
			Endpoint: endpoint,
			Message:  fmt.Sprintf("decoding response: %v", err),
			Cause:    err,
		}
	}
	return nil
}

func (c *Client) do(ctx context.Context, endpoint, method, path string, body io.Reader, contentType string) ([]byte, error) {
	start := time.Now()
	status := "error"
	defer func() {
		if c.recorder != nil {
			c.recorder.RecordBackendRequest(endpoint, status, time.Since(start).Seconds())
		}
	}()

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, &FetchError{Endpoint: endpoint, Message: err.Error(), Cause: err}
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("backend request failed",
			zap.String("endpoint", endpoint),
			zap.String("path", path),
			zap.Error(err),
		)
		return nil, &FetchError{Endpoint: endpoint, Message: err.Error(), Cause: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, &FetchError{Endpoint: endpoint, Message: err.Error(), Cause: err}
	}

	status = strconv.Itoa(resp.StatusCode)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		fe := &FetchError{
			Endpoint:   endpoint,
			Status:     resp.StatusCode,
			StatusText: http.StatusText(resp.StatusCode),
		}
		fe.Message = errorMessage(data, fe.StatusText)
		c.logger.Warn("backend returned error status",
			zap.String("endpoint", endpoint),
			zap.String("path", path),
			zap.Int("status", resp.StatusCode),
			zap.String("message", fe.Message),
		)
		return nil, fe
	}

	c.logger.Debug("backend request",
		zap.String("endpoint", endpoint),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("took", time.Since(start)),
	)
	return data, nil
}

// errorMessage extracts error, detail or message from a JSON error body.
func errorMessage(body []byte, fallback string) string {
	var payload map[string]json.RawMessage
	if err := json.Unmarshal(body, &payload); err != nil {
		return fallback
	}
	for _, field := range []string{"error", "detail", "message"} {
		raw, ok := payload[field]
		if !ok {
			continue
		}
		var s string
		if err := json.Unmarshal(raw, &s); err == nil && s != "" {
			return s
		}
		// FastAPI validation errors carry a structured detail
		if len(raw) > 0 && string(raw) != "null" {
			return string(raw)
		}
	}
	return fallback
}

// payloadError reports an explicit {"error": "..."} body, or nil.
func payloadError(body []byte) error {
	var obj struct {
		Error string `json:"error"`
	}
	trimmed := strings.TrimSpace(string(body))
	if !strings.HasPrefix(trimmed, "{") {
		return nil
	}
	if err := json.Unmarshal(body, &obj); err != nil || obj.Error == "" {
		return nil
	}
	return &core.Error{Code: core.ErrNoData.Code, Message: obj.Error}
}

// fetchList GETs a JSON array. An error object or a non-array body is a NO_DATA error.
func fetchList[T any](ctx context.Context, c *Client, endpoint, path string) ([]T, error) {
	var raw json.RawMessage
	if err := c.FetchJSON(ctx, endpoint, path, &raw); err != nil {
		return nil, err
	}
	if err := payloadError(raw); err != nil {
		return nil, err
	}
	var items []T
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, core.WrapError(core.ErrNoData, err)
	}
	return items, nil
}

// Stocks returns the symbol list.
func (c *Client) Stocks(ctx context.Context) ([]core.Stock, error) {
	return fetchList[core.Stock](ctx, c, "stocks", "/api/stocks")
}

// ReportTypes returns the report type list.
func (c *Client) ReportTypes(ctx context.Context) ([]core.ReportType, error) {
	return fetchList[core.ReportType](ctx, c, "report_types", "/api/report_types")
}

// LineItems returns the line items of a report type.
func (c *Client) LineItems(ctx context.Context, reportTypeID string) ([]core.LineItem, error) {
	q := url.Values{}
	q.Set("report_type_id", reportTypeID)
	return fetchList[core.LineItem](ctx, c, "line_items", "/api/line_items?"+q.Encode())
}

// FinancialData returns the rows for a symbol, report type and period.
func (c *Client) FinancialData(ctx context.Context, sel core.FilterSelection) ([]core.FinancialRow, error) {
	q := url.Values{}
	q.Set("symbol", sel.Symbol)
	q.Set("report_type_id", sel.ReportTypeID)
	q.Set("period", string(sel.Period))
	return fetchList[core.FinancialRow](ctx, c, "financial_data", "/api/financial_data?"+q.Encode())
}

// MarketCap returns market capitalization per symbol.
func (c *Client) MarketCap(ctx context.Context) ([]core.SymbolValue, error) {
	return fetchList[core.SymbolValue](ctx, c, "market_cap", "/api/market-cap")
}

// CapitalTotal returns the summed line item over all stocks.
func (c *Client) CapitalTotal(ctx context.Context, q core.CapitalQuery) (*core.CapitalTotal, error) {
	v := url.Values{}
	v.Set("year", q.Year)
	v.Set("quarter", q.Quarter)
	v.Set("line_item_id", q.LineItemID)

	var total core.CapitalTotal
	if err := c.FetchJSON(ctx, "capital_total", "/api/capital/total?"+v.Encode(), &total); err != nil {
		return nil, err
	}
	return &total, nil
}

// News returns the news list.
func (c *Client) News(ctx context.Context) ([]core.NewsItem, error) {
	return fetchList[core.NewsItem](ctx, c, "news", "/api/news")
}

// NewsByID returns the full news entry. A payload error field is returned as NO_DATA.
func (c *Client) NewsByID(ctx context.Context, id int64) (*core.NewsItem, error) {
	var item core.NewsItem
	if err := c.FetchJSON(ctx, "news_detail", fmt.Sprintf("/api/news/%d", id), &item); err != nil {
		return nil, err
	}
	if item.Error != "" {
		return nil, &core.Error{Code: core.ErrNoData.Code, Message: item.Error}
	}
	return &item, nil
}

// ChartData returns per-symbol values of a line item.
func (c *Client) ChartData(ctx context.Context, lineItemID int64) ([]core.SymbolValue, error) {
	return fetchList[core.SymbolValue](ctx, c, "chart_data", fmt.Sprintf("/api/financial/chart-data/%d", lineItemID))
}

// Indices returns the processed market index board.
func (c *Client) Indices(ctx context.Context) (*core.IndexBoard, error) {
	var board core.IndexBoard
	if err := c.FetchJSON(ctx, "index_all", "/api/index/all", &board); err != nil {
		return nil, err
	}
	return &board, nil
}

// Update posts a symbol to /api/update and returns the HTML page it renders.
func (c *Client) Update(ctx context.Context, symbol string) (string, error) {
	form := url.Values{}
	form.Set("symbol", symbol)
	body, err := c.do(ctx, "update", http.MethodPost, "/api/update",
		strings.NewReader(form.Encode()), "application/x-www-form-urlencoded")
	if err != nil {
		return "", err
	}
	return string(body), nil
}
