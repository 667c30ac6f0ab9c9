package controller

import (
	"context"
	"strings"
	"sync"

	"github.com/newthinker/finboard/internal/page"
	"github.com/newthinker/finboard/internal/render"
	"go.uber.org/zap"
)

// StockSelectors are the page regions refreshed from the backend's stock page.
var StockSelectors = []string{".stock-info", ".realtime-table", ".history-table", ".chart"}

// StockRegions lists the regions NewStock writes to, named after their selectors.
var StockRegions = []string{"stock-info", "realtime-table", "history-table", "chart"}

// StockBackend renders the stock page of a symbol.
type StockBackend interface {
	Update(ctx context.Context, symbol string) (string, error)
}

// Stock drives the stock detail page.
type Stock struct {
	mu      sync.Mutex
	display page.Display
	backend StockBackend
	logger  *zap.Logger
	symbol  string
}

// NewStock creates the stock page controller.
func NewStock(d page.Display, be StockBackend, symbol string, logger *zap.Logger) *Stock {
	return &Stock{display: d, backend: be, symbol: symbol, logger: orNop(logger)}
}

// Symbol returns the symbol last requested.
func (s *Stock) Symbol() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.symbol
}

// Update fetches the stock page for symbol and splices its regions into the document.
// Failures are logged only; the page keeps its previous content.
func (s *Stock) Update(ctx context.Context, symbol string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	symbol = strings.TrimSpace(symbol)
	s.symbol = symbol

	html, err := s.backend.Update(ctx, symbol)
	if err != nil {
		s.logger.Error("error loading stock data", zap.String("symbol", symbol), zap.Error(err))
		return
	}

	regions, err := render.ExtractRegions(html, StockSelectors)
	if err != nil {
		s.logger.Error("error loading stock data", zap.String("symbol", symbol), zap.Error(err))
		return
	}
	for _, sel := range StockSelectors {
		content, ok := regions[sel]
		if !ok {
			continue
		}
		if err := s.display.SetHTML(strings.TrimPrefix(sel, "."), content); err != nil {
			s.logger.Error("error loading stock data", zap.String("selector", sel), zap.Error(err))
			return
		}
	}
}
