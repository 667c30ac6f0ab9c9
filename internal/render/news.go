package render

import (
	"html/template"
	"strconv"

	"github.com/newthinker/finboard/internal/core"
)

// InvalidNewsID is the path segment used for items without a usable id.
const InvalidNewsID = "invalid"

type newsEntry struct {
	core.NewsItem
	IDParam string
}

// NewsList renders the clickable news entries.
func NewsList(items []core.NewsItem) template.HTML {
	entries := make([]newsEntry, len(items))
	for i, it := range items {
		entries[i] = newsEntry{NewsItem: it, IDParam: InvalidNewsID}
		if it.ID != nil {
			entries[i].IDParam = strconv.FormatInt(*it.ID, 10)
		}
	}
	return execute("news-list", entries)
}

// NewsPopup renders the detail popup body. Missing fields show N/A; the link is omitted when empty.
func NewsPopup(item core.NewsItem) template.HTML {
	return execute("news-popup", item)
}

// CapitalResult renders a capital total with vi-VN number formatting.
func CapitalResult(t core.CapitalTotal) template.HTML {
	return execute("capital", struct {
		Year       int
		Quarter    string
		LineItemID int64
		Value      string
	}{t.Year, t.Quarter, t.LineItemID, FormatDecimal(t.Total)})
}

// MetricButton is one selectable metric of the pie chart section.
type MetricButton struct {
	Label      string
	LineItemID int64
	Active     bool
}

// MetricButtons renders the metric selector.
func MetricButtons(buttons []MetricButton) template.HTML {
	return execute("buttons", buttons)
}
