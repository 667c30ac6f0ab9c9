package web

import (
	"net/http"
	"strings"

	"github.com/newthinker/finboard/internal/page"
)

// StockData holds data for the stock template
type StockData struct {
	Title  string
	Active string
	Doc    *page.Document
	Alerts []string
	Symbol string
}

// Stock renders the stock detail page for ?symbol=, defaulting to the dashboard symbol.
func (h *Handler) Stock(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.currentSession(w, r)
	if !ok {
		return
	}

	symbol := strings.TrimSpace(r.URL.Query().Get("symbol"))
	if symbol == "" {
		symbol = h.deps.Dashboard.DefaultSymbol
	}

	p := h.newStockPage(symbol)
	sess.Open(PageStock, p)

	p.mu.Lock()
	defer p.mu.Unlock()

	p.stock.Update(r.Context(), symbol)
	_, alerts := p.doc.Flush()

	h.render(w, "stock.html", StockData{
		Title:  "Cổ phiếu " + symbol,
		Active: PageStock,
		Doc:    p.doc,
		Alerts: alerts,
		Symbol: p.stock.Symbol(),
	})
}

// StockUpdate refreshes the stock regions for the posted symbol.
func (h *Handler) StockUpdate(w http.ResponseWriter, r *http.Request) {
	p, ok := lookupPage[*stockPage](h, w, r, PageStock)
	if !ok {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	p.stock.Update(r.Context(), r.PostFormValue("symbol"))
	h.writeChanges(w, p.doc)
}
