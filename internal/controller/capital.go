package controller

import (
	"context"
	"sync"

	"github.com/newthinker/finboard/internal/core"
	"github.com/newthinker/finboard/internal/page"
	"github.com/newthinker/finboard/internal/render"
	"github.com/newthinker/finboard/internal/view"
	"go.uber.org/zap"
)

// Regions of the capital total section.
const (
	RegionCapitalLoading = "loading-tongvon"
	RegionCapitalError   = "error-tongvon"
	RegionCapitalResult  = "result-tongvon"
)

// CapitalRegions lists the regions NewCapital writes to.
var CapitalRegions = []string{RegionCapitalLoading, RegionCapitalError, RegionCapitalResult}

// MsgCapitalFailed prefixes capital total failures.
const MsgCapitalFailed = "Không thể tải dữ liệu: "

// CapitalBackend computes capital totals.
type CapitalBackend interface {
	CapitalTotal(ctx context.Context, q core.CapitalQuery) (*core.CapitalTotal, error)
}

// Capital drives the capital total form.
type Capital struct {
	mu      sync.Mutex
	display page.Display
	backend CapitalBackend
	logger  *zap.Logger
	state   view.State
}

// NewCapital creates the capital total controller with the form's initial values.
func NewCapital(d page.Display, be CapitalBackend, initial core.CapitalQuery, logger *zap.Logger) *Capital {
	c := &Capital{display: d, backend: be, logger: orNop(logger)}
	c.state.Capital = initial
	return c
}

// Query returns the current form values.
func (c *Capital) Query() core.CapitalQuery {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Capital
}

// Submit applies the form values and fetches the total.
func (c *Capital) Submit(ctx context.Context, year, quarter, lineItemID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	// Set only fails for unknown controls
	_ = c.state.Set(view.ControlYear, year)
	_ = c.state.Set(view.ControlQuarter, quarter)
	_ = c.state.Set(view.ControlLineItemID, lineItemID)

	u := &ui{d: c.display}
	defer func() { broken(c.display, c.logger, u.err, MsgPageBroken) }()

	u.show(RegionCapitalLoading)
	u.hide(RegionCapitalError, RegionCapitalResult)
	u.text(RegionCapitalError, "")

	q := c.state.Capital
	if err := view.ValidateCapital(q); err != nil {
		u.text(RegionCapitalError, view.MsgCapitalIncomplete)
		u.show(RegionCapitalError)
		u.hide(RegionCapitalLoading)
		return
	}

	total, err := c.backend.CapitalTotal(ctx, q)
	if err != nil {
		c.logger.Warn("capital total fetch failed",
			zap.String("year", q.Year),
			zap.String("quarter", q.Quarter),
			zap.String("line_item_id", q.LineItemID),
			zap.Error(err),
		)
		u.text(RegionCapitalError, MsgCapitalFailed+errorText(err))
		u.show(RegionCapitalError)
		u.hide(RegionCapitalLoading)
		return
	}

	u.html(RegionCapitalResult, render.CapitalResult(*total))
	u.hide(RegionCapitalLoading)
	u.show(RegionCapitalResult)
}
