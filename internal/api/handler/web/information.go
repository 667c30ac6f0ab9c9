package web

import (
	"net/http"

	"github.com/newthinker/finboard/internal/core"
	"github.com/newthinker/finboard/internal/page"
	"github.com/newthinker/finboard/internal/view"
	"go.uber.org/zap"
)

// InformationData holds data for the information template
type InformationData struct {
	Title     string
	Active    string
	Doc       *page.Document
	Alerts    []string
	Selection core.FilterSelection
	Periods   []core.Period
}

// Index redirects the site root to the financial information page.
func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/information", http.StatusFound)
}

// Information renders the financial table page. Each load starts a fresh
// document and runs the two-phase startup.
func (h *Handler) Information(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.currentSession(w, r)
	if !ok {
		return
	}

	p := h.newInformationPage()
	sess.Open(PageInformation, p)

	p.mu.Lock()
	defer p.mu.Unlock()

	p.financial.Init(r.Context())
	_, alerts := p.doc.Flush()

	h.render(w, "information.html", InformationData{
		Title:     "Thông tin tài chính",
		Active:    PageInformation,
		Doc:       p.doc,
		Alerts:    alerts,
		Selection: p.financial.Selection(),
		Periods:   []core.Period{core.PeriodYearly, core.PeriodQuarterly},
	})
}

// InformationEvent applies a filter change posted as control/value.
func (h *Handler) InformationEvent(w http.ResponseWriter, r *http.Request) {
	p, ok := lookupPage[*informationPage](h, w, r, PageInformation)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	control := view.Control(r.PostFormValue("control"))
	switch control {
	case view.ControlStock, view.ControlReport, view.ControlPeriod, view.ControlLine:
	default:
		http.Error(w, "unknown control", http.StatusBadRequest)
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.financial.OnChange(r.Context(), control, r.PostFormValue("value")); err != nil {
		h.logger.Warn("rejected filter change", zap.String("control", string(control)), zap.Error(err))
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	h.writeChanges(w, p.doc)
}

// InformationChart draws the line chart of the selected line item.
func (h *Handler) InformationChart(w http.ResponseWriter, r *http.Request) {
	p, ok := lookupPage[*informationPage](h, w, r, PageInformation)
	if !ok {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	p.financial.DrawChart(r.Context())
	h.writeChanges(w, p.doc)
}

// InformationChartClose hides the chart modal.
func (h *Handler) InformationChartClose(w http.ResponseWriter, r *http.Request) {
	p, ok := lookupPage[*informationPage](h, w, r, PageInformation)
	if !ok {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	p.financial.CloseChart()
	h.writeChanges(w, p.doc)
}
