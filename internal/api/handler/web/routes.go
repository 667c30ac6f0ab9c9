package web

import "net/http"

// Register mounts the dashboard pages and their fragment endpoints on mux,
// wrapping each handler in mw (outermost first). Wrapping per route keeps the
// matched pattern visible to middleware installed around mux.
func (h *Handler) Register(mux *http.ServeMux, mw ...func(http.Handler) http.Handler) {
	handle := func(pattern string, fn http.HandlerFunc) {
		var next http.Handler = fn
		for i := len(mw) - 1; i >= 0; i-- {
			next = mw[i](next)
		}
		mux.Handle(pattern, next)
	}

	handle("GET /{$}", h.Index)

	handle("GET /information", h.Information)
	handle("POST /information/events", h.InformationEvent)
	handle("POST /information/chart", h.InformationChart)
	handle("POST /information/chart/close", h.InformationChartClose)

	handle("GET /priceboard", h.Priceboard)
	handle("POST /priceboard/capital", h.PriceboardCapital)
	handle("POST /priceboard/metric", h.PriceboardMetric)
	handle("POST /priceboard/tab", h.PriceboardTab)
	handle("POST /priceboard/news/{id}", h.PriceboardNews)
	handle("POST /priceboard/popup/close", h.PriceboardPopupClose)
	handle("GET /charts/mini/{file}", h.MiniChart)

	handle("GET /stock", h.Stock)
	handle("POST /stock/update", h.StockUpdate)
}
