// internal/api/handler/web/handler.go
package web

import (
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"os"

	"github.com/newthinker/finboard/internal/api/middleware"
	"github.com/newthinker/finboard/internal/api/session"
	"github.com/newthinker/finboard/internal/config"
	"github.com/newthinker/finboard/internal/controller"
	"github.com/newthinker/finboard/internal/page"
	"github.com/newthinker/finboard/internal/render"
	"go.uber.org/zap"
)

//go:embed templates/*
var templateFS embed.FS

// pages lists the page templates rendered inside layout.html.
var pages = []string{"information.html", "priceboard.html", "stock.html"}

var funcs = template.FuncMap{
	"region": func(d *page.Document, name string) template.HTML { return d.Region(name) },
	"hidden": func(d *page.Document, name string) bool { return !d.Visible(name) },
}

// Backend is every backend call the dashboard pages make.
type Backend interface {
	controller.FinancialBackend
	controller.CapitalBackend
	controller.ChartDataBackend
	controller.MarketCapBackend
	controller.IndexBackend
	controller.StockBackend
	controller.NewsSource
}

// Deps are the collaborators shared by every page.
type Deps struct {
	Backend   Backend
	News      controller.NewsSource // nil uses Backend
	Dashboard config.DashboardConfig
	Gauge     render.LiveGauge
	Logger    *zap.Logger
}

// Handler provides web UI handlers with template rendering
type Handler struct {
	// pageTemplates holds separate template instances for each page
	// Each instance contains layout.html + the specific page template
	pageTemplates map[string]*template.Template
	fragments     *template.Template
	deps          Deps
	logger        *zap.Logger
}

// NewHandler creates a new web handler with templates loaded from the given directory.
// If templatesDir is empty, it falls back to embedded templates.
func NewHandler(templatesDir string, deps Deps) (*Handler, error) {
	if templatesDir != "" {
		return NewHandlerWithFS(os.DirFS(templatesDir), deps)
	}
	return NewHandlerWithFS(TemplateFS(), deps)
}

// NewHandlerWithFS creates a new web handler using a custom filesystem.
// This is useful for testing or custom template sources.
func NewHandlerWithFS(fsys fs.FS, deps Deps) (*Handler, error) {
	pageTemplates := make(map[string]*template.Template)

	for _, p := range pages {
		// Parse layout first, then the page template
		tmpl, err := template.New(p).Funcs(funcs).ParseFS(fsys, "layout.html", p)
		if err != nil {
			return nil, fmt.Errorf("parsing template %s: %w", p, err)
		}
		pageTemplates[p] = tmpl
	}

	fragments, err := template.New("fragment.html").ParseFS(fsys, "fragment.html")
	if err != nil {
		return nil, fmt.Errorf("parsing template fragment.html: %w", err)
	}

	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.News == nil {
		deps.News = deps.Backend
	}

	return &Handler{
		pageTemplates: pageTemplates,
		fragments:     fragments,
		deps:          deps,
		logger:        deps.Logger,
	}, nil
}

// render executes the specified page template with the given data
func (h *Handler) render(w http.ResponseWriter, page string, data any) {
	tmpl, ok := h.pageTemplates[page]
	if !ok {
		http.Error(w, "template not found: "+page, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := tmpl.ExecuteTemplate(w, "layout.html", data); err != nil {
		h.logger.Error("page render failed", zap.String("page", page), zap.Error(err))
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// currentSession returns the request's session. The Sessions middleware always sets one.
func (h *Handler) currentSession(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	sess, ok := middleware.SessionFrom(r.Context())
	if !ok {
		h.logger.Error("request without session", zap.String("path", r.URL.Path))
		http.Error(w, "session unavailable", http.StatusInternalServerError)
	}
	return sess, ok
}

// lookupPage finds an open page of the session. When the page is gone (expired
// session or server restart) the browser is told to reload it.
func lookupPage[P session.Page](h *Handler, w http.ResponseWriter, r *http.Request, name string) (P, bool) {
	var zero P
	sess, ok := h.currentSession(w, r)
	if !ok {
		return zero, false
	}
	if p, ok := sess.Lookup(name); ok {
		if typed, ok := p.(P); ok {
			return typed, true
		}
	}
	w.Header().Set("HX-Refresh", "true")
	w.WriteHeader(http.StatusNoContent)
	return zero, false
}

// TemplateFS returns the embedded template filesystem for external use.
func TemplateFS() fs.FS {
	subFS, err := fs.Sub(templateFS, "templates")
	if err != nil {
		// This should never happen with valid embed directive
		return templateFS
	}
	return subFS
}
