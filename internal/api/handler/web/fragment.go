package web

import (
	"encoding/json"
	"net/http"

	"github.com/newthinker/finboard/internal/page"
	"go.uber.org/zap"
)

// Client events raised after htmx swaps a fragment response.
const (
	EventRegions = "finboard:regions"
	EventAlert   = "finboard:alert"
	EventKeys    = "finboard:keys"
)

type regionsEvent struct {
	Show []string `json:"show"`
	Hide []string `json:"hide"`
}

type alertEvent struct {
	Messages []string `json:"messages"`
}

type keysEvent struct {
	Escape bool `json:"escape"`
}

// writeChanges answers an htmx request with the regions changed since the last
// flush as out-of-band swaps. Visibility, pending alerts and key listener state
// travel in the HX-Trigger-After-Swap header.
func (h *Handler) writeChanges(w http.ResponseWriter, doc *page.Document) {
	changes, alerts := doc.Flush()

	ev := regionsEvent{Show: []string{}, Hide: []string{}}
	for _, c := range changes {
		if c.Hidden {
			ev.Hide = append(ev.Hide, c.Region)
		} else {
			ev.Show = append(ev.Show, c.Region)
		}
	}
	trigger := map[string]any{
		EventRegions: ev,
		EventKeys:    keysEvent{Escape: doc.KeyListeners() > 0},
	}
	if len(alerts) > 0 {
		trigger[EventAlert] = alertEvent{Messages: alerts}
	}

	header, err := json.Marshal(trigger)
	if err != nil {
		h.logger.Error("encoding trigger header failed", zap.Error(err))
	} else {
		w.Header().Set("HX-Trigger-After-Swap", string(header))
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.fragments.ExecuteTemplate(w, "fragment.html", changes); err != nil {
		h.logger.Error("fragment render failed", zap.Error(err))
	}
}
