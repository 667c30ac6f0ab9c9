package controller

import (
	"context"
	"errors"
	"sync"

	"github.com/newthinker/finboard/internal/core"
	"github.com/newthinker/finboard/internal/page"
	"github.com/newthinker/finboard/internal/render"
	"go.uber.org/zap"
)

// Regions of the market capitalization treemap.
const (
	RegionTreemap        = "treemap"
	RegionTreemapLoading = "loading-treemap"
	RegionTreemapError   = "error-treemap"
)

// TreemapRegions lists the regions NewTreemap writes to.
var TreemapRegions = []string{RegionTreemap, RegionTreemapLoading, RegionTreemapError}

// Treemap messages.
const (
	MsgTreemapEmpty  = "Không tìm thấy dữ liệu phù hợp cho Q4/2024."
	MsgTreemapFailed = "Không thể tải dữ liệu: "
)

// MarketCapBackend returns market capitalization per symbol.
type MarketCapBackend interface {
	MarketCap(ctx context.Context) ([]core.SymbolValue, error)
}

// Treemap drives the market capitalization treemap.
type Treemap struct {
	mu      sync.Mutex
	display page.Display
	backend MarketCapBackend
	logger  *zap.Logger
}

// NewTreemap creates the treemap controller.
func NewTreemap(d page.Display, be MarketCapBackend, logger *zap.Logger) *Treemap {
	return &Treemap{display: d, backend: be, logger: orNop(logger)}
}

// Load fetches market capitalization and renders the treemap.
func (t *Treemap) Load(ctx context.Context) {
	t.mu.Lock()
	defer t.mu.Unlock()

	u := &ui{d: t.display}
	defer func() { broken(t.display, t.logger, u.err, MsgPageBroken) }()

	u.show(RegionTreemapLoading)
	u.hide(RegionTreemapError)

	items, err := t.backend.MarketCap(ctx)
	u.hide(RegionTreemapLoading)
	if err != nil && !isEmptyPayload(err) {
		t.logger.Error("market cap fetch failed", zap.Error(err))
		t.display.Charts().Destroy(RegionTreemap)
		u.text(RegionTreemapError, MsgTreemapFailed+statusText(err))
		u.show(RegionTreemapError)
		return
	}
	if len(items) == 0 {
		t.display.Charts().Destroy(RegionTreemap)
		u.html(RegionTreemap, render.Message(MsgTreemapEmpty, false))
		return
	}

	chart := t.display.Charts().Create(RegionTreemap, render.KindPlotly, render.Treemap(items))
	u.html(RegionTreemap, chart.HTML())
}

// isEmptyPayload reports a body that parsed but did not carry a list.
func isEmptyPayload(err error) bool {
	return errors.Is(err, core.ErrNoData)
}
