package web

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/newthinker/finboard/internal/api/response"
	"github.com/newthinker/finboard/internal/core"
	"github.com/newthinker/finboard/internal/page"
	"go.uber.org/zap"
)

// PriceboardData holds data for the priceboard template
type PriceboardData struct {
	Title   string
	Active  string
	Doc     *page.Document
	Alerts  []string
	Tab     string
	Capital core.CapitalQuery
}

// Priceboard renders the market overview: treemap, capital totals, metric pie
// chart, news and the index board. ?tab= selects the initially shown tab.
func (h *Handler) Priceboard(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.currentSession(w, r)
	if !ok {
		return
	}

	tab := r.URL.Query().Get("tab")
	if !validTab(tab) {
		tab = TabMarket
	}

	p := h.newPriceboardPage(tab)
	sess.Open(PagePriceboard, p)

	p.mu.Lock()
	defer p.mu.Unlock()

	p.start(r.Context())
	_, alerts := p.doc.Flush()

	h.render(w, "priceboard.html", PriceboardData{
		Title:   "Bảng giá",
		Active:  PagePriceboard,
		Doc:     p.doc,
		Alerts:  alerts,
		Tab:     tab,
		Capital: p.capital.Query(),
	})
}

// PriceboardCapital computes the capital total for the posted year, quarter and line item.
func (h *Handler) PriceboardCapital(w http.ResponseWriter, r *http.Request) {
	p, ok := lookupPage[*priceboardPage](h, w, r, PagePriceboard)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	p.capital.Submit(r.Context(), r.PostFormValue("year"), r.PostFormValue("quarter"), r.PostFormValue("line_item_id"))
	h.writeChanges(w, p.doc)
}

// PriceboardMetric switches the pie chart to another metric.
func (h *Handler) PriceboardMetric(w http.ResponseWriter, r *http.Request) {
	p, ok := lookupPage[*priceboardPage](h, w, r, PagePriceboard)
	if !ok {
		return
	}

	id, err := strconv.ParseInt(r.PostFormValue("line_item_id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid line_item_id", http.StatusBadRequest)
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.metric.Select(r.Context(), id); err != nil {
		h.logger.Warn("unknown metric", zap.Int64("line_item_id", id), zap.Error(err))
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	h.writeChanges(w, p.doc)
}

// PriceboardTab notifies tab observers that a tab was shown.
func (h *Handler) PriceboardTab(w http.ResponseWriter, r *http.Request) {
	p, ok := lookupPage[*priceboardPage](h, w, r, PagePriceboard)
	if !ok {
		return
	}

	tab := r.PostFormValue("tab")
	if !validTab(tab) {
		http.Error(w, "unknown tab", http.StatusBadRequest)
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	p.tabs.Show(r.Context(), tab)
	h.writeChanges(w, p.doc)
}

// PriceboardNews opens the detail popup of a news entry.
func (h *Handler) PriceboardNews(w http.ResponseWriter, r *http.Request) {
	p, ok := lookupPage[*priceboardPage](h, w, r, PagePriceboard)
	if !ok {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	p.news.Open(r.Context(), r.PathValue("id"))
	h.writeChanges(w, p.doc)
}

// PriceboardPopupClose closes the news popup; via names the trigger.
func (h *Handler) PriceboardPopupClose(w http.ResponseWriter, r *http.Request) {
	p, ok := lookupPage[*priceboardPage](h, w, r, PagePriceboard)
	if !ok {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.news.Close(r.PostFormValue("via")); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	h.writeChanges(w, p.doc)
}

// MiniChart serves the sparkline of an index card as PNG, addressed as <index>.png.
func (h *Handler) MiniChart(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.currentSession(w, r)
	if !ok {
		return
	}

	notFound := core.WrapError(core.ErrNotFound, nil)
	pg, ok := sess.Lookup(PagePriceboard)
	if !ok {
		response.Error(w, http.StatusNotFound, notFound)
		return
	}
	p, ok := pg.(*priceboardPage)
	if !ok {
		response.Error(w, http.StatusNotFound, notFound)
		return
	}

	key, isPNG := strings.CutSuffix(r.PathValue("file"), ".png")
	if !isPNG {
		response.Error(w, http.StatusNotFound, notFound)
		return
	}

	png, err := p.indices.Sparkline(key)
	if err != nil {
		response.Error(w, response.StatusFor(err), err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	w.Write(png)
}
