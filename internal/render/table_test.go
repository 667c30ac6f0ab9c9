package render

import (
	"strings"
	"testing"

	"github.com/newthinker/finboard/internal/core"
	"github.com/stretchr/testify/assert"
)

func ptr[T any](v T) *T { return &v }

func TestColumnHeaders(t *testing.T) {
	assert.Equal(t, []string{"2020", "2021", "2022", "2023", "2024"}, ColumnHeaders(core.PeriodYearly))

	q := ColumnHeaders(core.PeriodQuarterly)
	assert.Len(t, q, 20)
	assert.Equal(t, "2020 Q1", q[0])
	assert.Equal(t, "2024 Q4", q[19])
}

func TestFinancialTable_Yearly(t *testing.T) {
	rows := []core.FinancialRow{
		{Item: "Tiền mặt", Values: map[string]*float64{"2020": ptr(1.5), "2021": nil, "2019": ptr(9.0)}},
	}

	html := string(FinancialTable(rows, core.PeriodYearly))

	assert.Contains(t, html, "<th>Chỉ tiêu</th>")
	assert.Equal(t, 6, strings.Count(html, "<th>"))
	assert.Contains(t, html, "<td>Tiền mặt</td><td>1.5</td><td>-</td><td>-</td><td>-</td><td>-</td>")
	// keys outside the fixed range never add columns
	assert.NotContains(t, html, "2019")
	assert.NotContains(t, html, ">9<")
}

func TestFinancialTable_QuarterlyColumnCountIsFixed(t *testing.T) {
	rows := []core.FinancialRow{
		{Item: "A", Values: map[string]*float64{"2024Q4": ptr(7.0)}},
		{Item: "B", Values: map[string]*float64{}},
	}

	html := string(FinancialTable(rows, core.PeriodQuarterly))

	assert.Equal(t, 21, strings.Count(html, "<th>"))
	assert.Equal(t, 42, strings.Count(html, "<td>"))
	assert.Contains(t, html, "<th>2023 Q2</th>")
	assert.Contains(t, html, "<td>7</td></tr>")
}

func TestFinancialTable_EscapesItem(t *testing.T) {
	rows := []core.FinancialRow{{Item: "<b>x</b>", Values: map[string]*float64{}}}
	html := string(FinancialTable(rows, core.PeriodYearly))
	assert.Contains(t, html, "&lt;b&gt;x&lt;/b&gt;")
}

func TestFinancialTable_Empty(t *testing.T) {
	html := string(FinancialTable(nil, core.PeriodYearly))
	assert.Contains(t, html, MsgNoTableData)
	assert.NotContains(t, html, "<table>")
}

func seriesOf(values ...float64) core.ChartSeries {
	s := core.ChartSeries{}
	for i, v := range values {
		s.Labels = append(s.Labels, string(rune('a'+i)))
		s.Values = append(s.Values, ptr(v))
	}
	return s
}
