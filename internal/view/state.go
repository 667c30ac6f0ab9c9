// Package view holds the filter selections of a dashboard page and the
// required-field checks that gate every backend fetch.
package view

import (
	"fmt"
	"strings"

	"github.com/newthinker/finboard/internal/core"
)

// Control names a filter input.
type Control string

const (
	ControlStock      Control = "stock"
	ControlReport     Control = "report"
	ControlPeriod     Control = "period"
	ControlLine       Control = "line"
	ControlYear       Control = "year"
	ControlQuarter    Control = "quarter"
	ControlLineItemID Control = "line_item_id"
)

// Inline messages shown to the user, in the site's language.
const (
	MsgFilterIncomplete  = "Vui lòng chọn đầy đủ mã cổ phiếu, loại báo cáo và khoảng thời gian"
	MsgCapitalIncomplete = "Vui lòng nhập đầy đủ Năm, Quý và Line Item ID."
	MsgSelectLineItem    = "Vui lòng chọn chỉ tiêu để vẽ biểu đồ!"
)

// State is the mutable selection of one page. It lives as long as the page document.
type State struct {
	Filter  core.FilterSelection
	Capital core.CapitalQuery
}

// Set applies an input change. Values are trimmed; unknown controls are rejected.
func (s *State) Set(c Control, value string) error {
	value = strings.TrimSpace(value)
	switch c {
	case ControlStock:
		s.Filter.Symbol = value
	case ControlReport:
		s.Filter.ReportTypeID = value
	case ControlPeriod:
		if value != "" && !core.Period(value).Valid() {
			return fmt.Errorf("invalid period %q", value)
		}
		s.Filter.Period = core.Period(value)
	case ControlLine:
		s.Filter.LineItem = value
	case ControlYear:
		s.Capital.Year = value
	case ControlQuarter:
		s.Capital.Quarter = value
	case ControlLineItemID:
		s.Capital.LineItemID = value
	default:
		return fmt.Errorf("unknown control %q", c)
	}
	return nil
}

func missing(msg string) error {
	return &core.Error{Code: core.ErrFilterMissing.Code, Message: msg}
}

// ValidateFinancial requires symbol, report type and period.
func ValidateFinancial(sel core.FilterSelection) error {
	if sel.Symbol == "" || sel.ReportTypeID == "" || sel.Period == "" {
		return missing(MsgFilterIncomplete)
	}
	return nil
}

// ValidateCapital requires year, quarter and line item id.
func ValidateCapital(q core.CapitalQuery) error {
	if q.Year == "" || q.Quarter == "" || q.LineItemID == "" {
		return missing(MsgCapitalIncomplete)
	}
	return nil
}

// ValidateChart requires a selected line item.
func ValidateChart(sel core.FilterSelection) error {
	if sel.LineItem == "" {
		return missing(MsgSelectLineItem)
	}
	return nil
}
