package render

import (
	"testing"

	"github.com/newthinker/finboard/internal/core"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestNewsList(t *testing.T) {
	html := string(NewsList([]core.NewsItem{
		{ID: ptr(int64(12)), Title: "Lãi suất giảm", Published: "2024-03-05T08:00:00Z"},
		{Title: ""},
	}))

	assert.Contains(t, html, `hx-post="/priceboard/news/12"`)
	assert.Contains(t, html, "Lãi suất giảm")
	assert.Contains(t, html, "5/3/2024")
	assert.Contains(t, html, `hx-post="/priceboard/news/invalid"`)
	assert.Contains(t, html, "No Title")
}

func TestNewsPopup(t *testing.T) {
	html := string(NewsPopup(core.NewsItem{
		Title:     "VCB tăng vốn",
		Content:   "Nội dung",
		Published: "2024-03-05T08:30:00Z",
		Link:      "https://example.vn/a",
	}))
	assert.Contains(t, html, "VCB tăng vốn")
	assert.Contains(t, html, "Published: 08:30:00 5/3/2024")
	assert.Contains(t, html, `href="https://example.vn/a"`)
	assert.Contains(t, html, "Read More")
}

func TestNewsPopup_MissingFields(t *testing.T) {
	html := string(NewsPopup(core.NewsItem{}))
	assert.Contains(t, html, `<h2 id="popupTitle">N/A</h2>`)
	assert.Contains(t, html, `<div id="popupContent">N/A</div>`)
	assert.Contains(t, html, "Published: N/A")
	assert.NotContains(t, html, "Read More")
}

func TestCapitalResult(t *testing.T) {
	html := string(CapitalResult(core.CapitalTotal{
		Year:       2024,
		Quarter:    "Q4",
		LineItemID: 88,
		Total:      decimal.RequireFromString("1500000.456"),
	}))
	assert.Contains(t, html, `<span id="resultYear">2024</span>`)
	assert.Contains(t, html, `<span id="resultQuarter">Q4</span>`)
	assert.Contains(t, html, `<span id="resultLineItemId">88</span>`)
	assert.Contains(t, html, "1.500.000,46")
}

func TestMetricButtons(t *testing.T) {
	html := string(MetricButtons([]MetricButton{
		{Label: "Tổng tài sản", LineItemID: 2, Active: true},
		{Label: "Tín dụng", LineItemID: 8},
	}))
	assert.Contains(t, html, `value="2" class="active">Tổng tài sản</button>`)
	assert.Contains(t, html, `value="8">Tín dụng</button>`)
}
