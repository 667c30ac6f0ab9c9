package controller

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/newthinker/finboard/internal/backend"
	"github.com/newthinker/finboard/internal/core"
	"github.com/newthinker/finboard/internal/page"
	"github.com/newthinker/finboard/internal/render"
	"go.uber.org/zap"
)

// Index board region and tab.
const (
	RegionIndices = "indices-container"
	TabIndex      = "tab-index"
)

// IndexRegions lists the regions NewIndexBoard writes to.
var IndexRegions = []string{RegionIndices}

// MsgIndexFetchFailed is shown when the board cannot be fetched.
const MsgIndexFetchFailed = "Không thể tải dữ liệu từ server. Vui lòng thử lại sau. (%s)"

// IndexBackend returns the market index board.
type IndexBackend interface {
	Indices(ctx context.Context) (*core.IndexBoard, error)
}

// IndexBoard drives the market index cards.
type IndexBoard struct {
	mu      sync.Mutex
	display page.Display
	backend IndexBackend
	logger  *zap.Logger
	cards   map[string]render.IndexCard
}

// NewIndexBoard creates the index board controller.
func NewIndexBoard(d page.Display, be IndexBackend, logger *zap.Logger) *IndexBoard {
	return &IndexBoard{
		display: d,
		backend: be,
		logger:  orNop(logger),
		cards:   make(map[string]render.IndexCard),
	}
}

// Attach subscribes the board to tab changes and loads it if its tab is already active.
func (b *IndexBoard) Attach(ctx context.Context, tabs *page.Tabs) {
	tabs.Subscribe(b.OnTab)
	if tabs.Active() == TabIndex {
		b.Fetch(ctx)
	}
}

// OnTab refetches the board whenever the index tab is shown.
func (b *IndexBoard) OnTab(ctx context.Context, tab string) {
	if tab == TabIndex {
		b.Fetch(ctx)
	}
}

// Fetch loads the board and re-renders every card.
func (b *IndexBoard) Fetch(ctx context.Context) {
	b.mu.Lock()
	defer b.mu.Unlock()

	u := &ui{d: b.display}
	defer func() { broken(b.display, b.logger, u.err, MsgPageBroken) }()

	board, err := b.backend.Indices(ctx)
	if err != nil {
		b.logger.Warn("index board fetch failed", zap.Error(err))
		b.clear()
		u.html(RegionIndices, render.Message(fmt.Sprintf(MsgIndexFetchFailed, indexErrorText(err)), true))
		return
	}

	cards := render.BuildIndexCards(board)
	if len(cards) == 0 {
		b.clear()
		u.html(RegionIndices, render.Message(render.MsgIndexBoardEmpty, true))
		return
	}

	charts := b.display.Charts()
	live := make(map[string]bool, len(cards))
	b.cards = make(map[string]render.IndexCard, len(cards))
	for i := range cards {
		card := &cards[i]
		if card.HasChart {
			chart := charts.Create(card.CanvasID, render.KindChartJS, render.Sparkline(card.Points, card.ChartChange))
			card.ChartJSON = chart.JSON()
			live[card.CanvasID] = true
		}
		b.cards[card.Key] = *card
	}
	b.dropStale(live)
	u.html(RegionIndices, render.IndexBoard(cards))
}

// Sparkline renders the mini chart of an index from the last fetched board as PNG.
func (b *IndexBoard) Sparkline(key string) ([]byte, error) {
	b.mu.Lock()
	card, ok := b.cards[key]
	b.mu.Unlock()

	if !ok || !card.HasChart {
		return nil, core.WrapError(core.ErrNotFound, fmt.Errorf("no mini chart for %q", key))
	}
	return render.SparklinePNG(card.Points, card.ChartChange, 0, 0)
}

func (b *IndexBoard) clear() {
	b.cards = make(map[string]render.IndexCard)
	b.dropStale(nil)
}

// dropStale destroys mini charts whose cards are no longer rendered.
func (b *IndexBoard) dropStale(live map[string]bool) {
	charts := b.display.Charts()
	for _, canvas := range charts.Canvases() {
		if strings.HasPrefix(canvas, render.CanvasID("")) && !live[canvas] {
			charts.Destroy(canvas)
		}
	}
}

func indexErrorText(err error) string {
	if fe, ok := backend.AsFetchError(err); ok && fe.Status != 0 {
		return fmt.Sprintf("HTTP error! status: %d", fe.Status)
	}
	return errorText(err)
}
