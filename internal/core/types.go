package core

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strconv"

	"github.com/shopspring/decimal"
)

// Period is the aggregation granularity of a financial series.
type Period string

const (
	PeriodYearly    Period = "yearly"
	PeriodQuarterly Period = "quarterly"
)

// Fixed reporting range shown by the dashboard.
const (
	FirstYear = 2020
	LastYear  = 2024
)

var (
	yearKey    = regexp.MustCompile(`^\d{4}$`)
	quarterKey = regexp.MustCompile(`^\d{4}Q[1-4]$`)
)

// Valid reports whether p is a known period mode.
func (p Period) Valid() bool {
	return p == PeriodYearly || p == PeriodQuarterly
}

// Keys returns the generated column keys for the period, independent of any payload:
// "2020".."2024" or "2020Q1".."2024Q4".
func (p Period) Keys() []string {
	var keys []string
	for y := FirstYear; y <= LastYear; y++ {
		if p == PeriodQuarterly {
			for q := 1; q <= 4; q++ {
				keys = append(keys, fmt.Sprintf("%dQ%d", y, q))
			}
			continue
		}
		keys = append(keys, strconv.Itoa(y))
	}
	return keys
}

// MatchesKey reports whether a payload key belongs to this period mode.
func (p Period) MatchesKey(key string) bool {
	if p == PeriodQuarterly {
		return quarterKey.MatchString(key)
	}
	return yearKey.MatchString(key)
}

// FilterSelection holds the currently selected filter values of a financial page.
type FilterSelection struct {
	Symbol       string
	ReportTypeID string
	LineItem     string
	Period       Period
}

// CapitalQuery selects the capital total to compute.
type CapitalQuery struct {
	Year       string
	Quarter    string
	LineItemID string
}

// Stock is an entry of the symbol list.
type Stock struct {
	StockID int64  `json:"stock_id,omitempty"`
	Symbol  string `json:"symbol"`
}

// ReportType is a category of financial statement.
type ReportType struct {
	ID   int64  `json:"report_type_id"`
	Name string `json:"report_type_name"`
	Type string `json:"report_type"`
}

// DisplayName returns the select option label for the report type.
func (r ReportType) DisplayName() string {
	if r.Name != "" {
		return r.Name
	}
	return fmt.Sprintf("Loại %d: %s", r.ID, r.Type)
}

// LineItem is a named financial statement entry.
type LineItem struct {
	ID   int64  `json:"line_item_id"`
	Name string `json:"line_item_name"`
}

// FinancialRow is one line item with a value per period key. A nil value means null.
type FinancialRow struct {
	Item   string
	Values map[string]*float64
}

// UnmarshalJSON decodes the flat {"item": ..., "2020": 1.5, "2021": null} shape.
func (r *FinancialRow) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	r.Values = make(map[string]*float64, len(raw))
	for k, v := range raw {
		if k == "item" {
			if err := json.Unmarshal(v, &r.Item); err != nil {
				return fmt.Errorf("decoding item: %w", err)
			}
			continue
		}
		var f *float64
		if err := json.Unmarshal(v, &f); err != nil {
			// non-numeric cells are treated as missing
			continue
		}
		r.Values[k] = f
	}
	return nil
}

// MarshalJSON encodes the row back to its flat shape.
func (r FinancialRow) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(r.Values)+1)
	for k, v := range r.Values {
		out[k] = v
	}
	out["item"] = r.Item
	return json.Marshal(out)
}

// Value returns the value at key, reporting false when missing or null.
func (r FinancialRow) Value(key string) (float64, bool) {
	v, ok := r.Values[key]
	if !ok || v == nil {
		return 0, false
	}
	return *v, true
}

// Series extracts the row's values for the period as a chart series,
// labels sorted ascending and drawn from the keys actually present.
func (r FinancialRow) Series(p Period) ChartSeries {
	var labels []string
	for k := range r.Values {
		if p.MatchesKey(k) {
			labels = append(labels, k)
		}
	}
	sort.Strings(labels)

	values := make([]*float64, len(labels))
	for i, k := range labels {
		values[i] = r.Values[k]
	}
	return ChartSeries{Labels: labels, Values: values}
}

// ClosePoint is one point of an index mini chart.
type ClosePoint struct {
	Time  string   `json:"time"`
	Close *float64 `json:"close"`
}

// UnmarshalJSON accepts time as either a string or an epoch number.
func (p *ClosePoint) UnmarshalJSON(data []byte) error {
	var raw struct {
		Time  json.RawMessage `json:"time"`
		Close *float64        `json:"close"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	p.Close = raw.Close
	p.Time = ""
	if len(raw.Time) == 0 || string(raw.Time) == "null" {
		return nil
	}
	var s string
	if err := json.Unmarshal(raw.Time, &s); err == nil {
		p.Time = s
		return nil
	}
	p.Time = string(raw.Time)
	return nil
}

// IndexStatus discriminates how an index card is displayed.
type IndexStatus string

const (
	IndexSuccess IndexStatus = "success"
	IndexWarning IndexStatus = "warning"
	IndexError   IndexStatus = "error"
)

// IndexSnapshot is the processed state of one market index.
type IndexSnapshot struct {
	Name          string       `json:"name"`
	Status        IndexStatus  `json:"status"`
	Message       string       `json:"message,omitempty"`
	LatestClose   *float64     `json:"latest_close"`
	Change        *float64     `json:"change"`
	ChangePercent *float64     `json:"change_percent"`
	MiniChartData []ClosePoint `json:"mini_chart_data"`
}

// IndexBoard is the /api/index/all payload with key order preserved.
type IndexBoard struct {
	Order   []string
	Indices map[string]IndexSnapshot
}

// UnmarshalJSON walks the object tokens so that card order follows the payload.
func (b *IndexBoard) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("index board: expected object, got %v", tok)
	}

	b.Order = nil
	b.Indices = make(map[string]IndexSnapshot)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("index board: expected key, got %v", tok)
		}
		var snap IndexSnapshot
		if err := dec.Decode(&snap); err != nil {
			// a malformed entry becomes an error card instead of failing the board
			snap = IndexSnapshot{Name: key, Status: IndexError, Message: err.Error()}
		}
		b.Order = append(b.Order, key)
		b.Indices[key] = snap
	}
	_, err = dec.Token()
	return err
}

// Len returns the number of indices on the board.
func (b IndexBoard) Len() int {
	return len(b.Order)
}

// NewsItem is a news entry. ID is nil when the payload id is missing or not numeric.
type NewsItem struct {
	ID        *int64 `json:"-"`
	Title     string `json:"title"`
	Published string `json:"published"`
	Content   string `json:"content"`
	Link      string `json:"link"`
	Error     string `json:"error,omitempty"`
}

// UnmarshalJSON decodes a news entry, accepting numeric or numeric-string ids.
func (n *NewsItem) UnmarshalJSON(data []byte) error {
	type plain NewsItem
	var raw struct {
		plain
		ID json.RawMessage `json:"id"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*n = NewsItem(raw.plain)
	n.ID = parseID(raw.ID)
	return nil
}

func parseID(raw json.RawMessage) *int64 {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	var num json.Number
	if err := json.Unmarshal(raw, &num); err == nil {
		if id, err := num.Int64(); err == nil {
			return &id
		}
		return nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if id, err := strconv.ParseInt(s, 10, 64); err == nil {
			return &id
		}
	}
	return nil
}

// SymbolValue is a per-symbol value used by the treemap and the metric pie chart.
type SymbolValue struct {
	Symbol string  `json:"symbol"`
	Value  float64 `json:"value"`
}

// CapitalTotal is the /api/capital/total result.
type CapitalTotal struct {
	Year       int             `json:"year_queried"`
	Quarter    string          `json:"quarter_queried"`
	LineItemID int64           `json:"line_item_id_queried"`
	Total      decimal.Decimal `json:"calculated_total_capital"`
}

// ChartSeries is an ordered label/value series. Labels[i] corresponds to Values[i].
type ChartSeries struct {
	Labels []string
	Values []*float64
}

// NewChartSeries builds a series, rejecting mismatched lengths.
func NewChartSeries(labels []string, values []*float64) (ChartSeries, error) {
	if len(labels) != len(values) {
		return ChartSeries{}, fmt.Errorf("series length mismatch: %d labels, %d values", len(labels), len(values))
	}
	return ChartSeries{Labels: labels, Values: values}, nil
}

// SeriesFromSymbolValues builds a series from symbol/value pairs in payload order.
func SeriesFromSymbolValues(items []SymbolValue) ChartSeries {
	s := ChartSeries{
		Labels: make([]string, len(items)),
		Values: make([]*float64, len(items)),
	}
	for i, it := range items {
		v := it.Value
		s.Labels[i] = it.Symbol
		s.Values[i] = &v
	}
	return s
}

// Len returns the number of points in the series.
func (s ChartSeries) Len() int {
	return len(s.Labels)
}

// Total sums the non-null values.
func (s ChartSeries) Total() float64 {
	var total float64
	for _, v := range s.Values {
		if v != nil {
			total += *v
		}
	}
	return total
}
