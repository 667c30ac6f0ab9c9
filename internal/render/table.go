package render

import (
	"html/template"
	"strconv"
	"strings"

	"github.com/newthinker/finboard/internal/core"
)

// Table placeholder messages.
const (
	MsgNoTableData = "Không có dữ liệu để hiển thị"
)

type tableRow struct {
	Item  string
	Cells []string
}

// ColumnHeaders returns the header labels of the generated period columns:
// "2020".."2024" or "2020 Q1".."2024 Q4".
func ColumnHeaders(p core.Period) []string {
	keys := p.Keys()
	headers := make([]string, len(keys))
	for i, k := range keys {
		if idx := strings.IndexByte(k, 'Q'); idx > 0 {
			headers[i] = k[:idx] + " " + k[idx:]
			continue
		}
		headers[i] = k
	}
	return headers
}

// FinancialTable renders rows against the fixed column set of the period.
// The column count never depends on the payload; absent or null cells show the placeholder.
func FinancialTable(rows []core.FinancialRow, p core.Period) template.HTML {
	if len(rows) == 0 {
		return Message(MsgNoTableData, false)
	}

	keys := p.Keys()
	data := struct {
		Headers []string
		Rows    []tableRow
	}{Headers: ColumnHeaders(p)}

	for _, r := range rows {
		row := tableRow{Item: r.Item, Cells: make([]string, len(keys))}
		for i, k := range keys {
			if v, ok := r.Value(k); ok {
				row.Cells[i] = strconv.FormatFloat(v, 'f', -1, 64)
			} else {
				row.Cells[i] = Placeholder
			}
		}
		data.Rows = append(data.Rows, row)
	}
	return execute("table", data)
}
