package controller

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"

	"github.com/newthinker/finboard/internal/core"
	"github.com/newthinker/finboard/internal/page"
	"github.com/newthinker/finboard/internal/render"
	"go.uber.org/zap"
)

// Regions of the news section.
const (
	RegionNewsList    = "newsList"
	RegionNewsPopup   = "popup"
	RegionNewsOverlay = "overlay"

	// escapeListener is the key listener bound while the popup is open.
	escapeListener = "news-escape"
)

// NewsRegions lists the regions NewNews writes to.
var NewsRegions = []string{RegionNewsList, RegionNewsPopup, RegionNewsOverlay}

// News messages.
const (
	MsgNewsListFailed   = "Error loading news. Please check the console."
	MsgNewsInvalidID    = "Cannot load details for this item."
	MsgNewsNotFound     = "News item not found."
	MsgNewsDetailFailed = "Error loading news details. Please check the console."
)

// Ways the popup can be closed.
const (
	CloseOverlay = "overlay"
	CloseButton  = "button"
	CloseEscape  = "escape"
)

// NewsSource provides the news list and details.
type NewsSource interface {
	News(ctx context.Context) ([]core.NewsItem, error)
	NewsByID(ctx context.Context, id int64) (*core.NewsItem, error)
}

// News drives the news list and its detail popup.
type News struct {
	mu      sync.Mutex
	display page.Display
	source  NewsSource
	logger  *zap.Logger
	open    bool
}

// NewNews creates the news controller.
func NewNews(d page.Display, src NewsSource, logger *zap.Logger) *News {
	return &News{display: d, source: src, logger: orNop(logger)}
}

// Load fetches and renders the news list.
func (n *News) Load(ctx context.Context) {
	n.mu.Lock()
	defer n.mu.Unlock()

	u := &ui{d: n.display}
	defer func() { broken(n.display, n.logger, u.err, MsgPageBroken) }()

	items, err := n.source.News(ctx)
	if err != nil {
		n.logger.Error("news list fetch failed", zap.Error(err))
		u.html(RegionNewsList, render.Message(MsgNewsListFailed, true))
		return
	}
	u.html(RegionNewsList, render.NewsList(items))
}

// Open fetches the entry rawID and shows it in the popup.
func (n *News) Open(ctx context.Context, rawID string) {
	n.mu.Lock()
	defer n.mu.Unlock()

	id, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil {
		n.logger.Warn("news entry without a valid id", zap.String("id", rawID))
		n.display.Alert(MsgNewsInvalidID)
		return
	}

	item, err := n.source.NewsByID(ctx, id)
	if err != nil {
		switch msg, payload := payloadMessage(err); {
		case payload:
			n.display.Alert("Error: " + msg)
		case errors.Is(err, core.ErrNotFound):
			n.display.Alert(MsgNewsNotFound)
		default:
			n.logger.Error("news detail fetch failed", zap.Int64("id", id), zap.Error(err))
			n.display.Alert(MsgNewsDetailFailed)
		}
		return
	}

	u := &ui{d: n.display}
	u.html(RegionNewsPopup, render.NewsPopup(*item))
	u.show(RegionNewsOverlay, RegionNewsPopup)
	if u.err != nil {
		broken(n.display, n.logger, u.err, MsgPageBroken)
		return
	}
	n.display.AddKeyListener(escapeListener)
	n.open = true
}

// IsOpen reports whether the popup is shown.
func (n *News) IsOpen() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.open
}

// Close hides the popup and unbinds the Escape listener.
func (n *News) Close(via string) error {
	switch via {
	case CloseOverlay, CloseButton, CloseEscape:
	default:
		return fmt.Errorf("unknown close trigger %q", via)
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	if via == CloseEscape && !n.display.HasKeyListener(escapeListener) {
		return nil
	}
	u := &ui{d: n.display}
	u.hide(RegionNewsOverlay, RegionNewsPopup)
	n.display.RemoveKeyListener(escapeListener)
	n.open = false
	broken(n.display, n.logger, u.err, MsgPageBroken)
	return nil
}

// KeyDown closes the popup on Escape while it is open.
func (n *News) KeyDown(key string) {
	if key == "Escape" {
		_ = n.Close(CloseEscape)
	}
}
