package render

import (
	"fmt"
	"html/template"
	"strings"

	"github.com/newthinker/finboard/internal/core"
)

// Index board messages.
const (
	MsgIndexIncomplete = "Dữ liệu không đầy đủ."
	MsgIndexLoadFailed = "Không thể tải dữ liệu"
	MsgIndexBoardEmpty = "Không nhận được dữ liệu từ API."
)

// IndexCard is the display model of one market index.
type IndexCard struct {
	Key         string
	Name        string
	Kind        core.IndexStatus
	Value       string
	ChangeText  string
	ChangeClass string
	Message     string

	CanvasID    string
	HasChart    bool
	Points      []core.ClosePoint
	ChartChange float64
	ChartJSON   string
}

// IndexDisplayName turns "VNINDEX" into "VN Index".
func IndexDisplayName(key, name string) string {
	if name == "" {
		name = key
	}
	return strings.Replace(name, "INDEX", " Index", 1)
}

// ChangeText formats a signed change with its percentage, e.g. "+1.50 (1.45%)".
// A nil change is shown as a dash.
func ChangeText(change, pct *float64) (text, class string) {
	p := Placeholder
	if pct != nil {
		p = FormatFixed(noNegZero(*pct))
	}
	if change == nil {
		return fmt.Sprintf("%s (%s%%)", Placeholder, p), "positive"
	}
	c := noNegZero(*change)
	if c < 0 {
		return fmt.Sprintf("%s (%s%%)", FormatFixed(c), p), "negative"
	}
	return fmt.Sprintf("+%s (%s%%)", FormatFixed(c), p), "positive"
}

// noNegZero maps -0 to 0 so it formats without a sign.
func noNegZero(v float64) float64 {
	if v == 0 {
		return 0
	}
	return v
}

func formatValue(v *float64) string {
	if v == nil {
		return "N/A"
	}
	return FormatFixed(*v)
}

// CanvasID returns the canvas bound to an index's mini chart.
func CanvasID(key string) string {
	return "chart-" + key
}

// BuildIndexCard maps a snapshot onto its card by status.
func BuildIndexCard(key string, s core.IndexSnapshot) IndexCard {
	card := IndexCard{
		Key:      key,
		Name:     IndexDisplayName(key, s.Name),
		Kind:     s.Status,
		CanvasID: CanvasID(key),
	}

	switch s.Status {
	case core.IndexSuccess:
		card.Value = formatValue(s.LatestClose)
		card.ChangeText, card.ChangeClass = ChangeText(s.Change, s.ChangePercent)
		if s.Change != nil {
			card.ChartChange = *s.Change
		}
	case core.IndexWarning:
		card.Value = formatValue(s.LatestClose)
		card.Message = s.Message
		if card.Message == "" {
			card.Message = MsgIndexIncomplete
		}
		if s.Change != nil {
			card.ChartChange = *s.Change
		}
	default:
		card.Kind = core.IndexError
		msg := s.Message
		if msg == "" {
			msg = MsgIndexLoadFailed
		}
		card.Message = "Lỗi: " + msg
		return card
	}

	if len(s.MiniChartData) > 0 {
		card.HasChart = true
		card.Points = s.MiniChartData
	}
	return card
}

// BuildIndexCards maps every board entry in payload order.
func BuildIndexCards(b *core.IndexBoard) []IndexCard {
	if b == nil {
		return nil
	}
	cards := make([]IndexCard, 0, b.Len())
	for _, key := range b.Order {
		cards = append(cards, BuildIndexCard(key, b.Indices[key]))
	}
	return cards
}

// IndexBoard renders the cards. Cards with a chart must have ChartJSON set.
func IndexBoard(cards []IndexCard) template.HTML {
	if len(cards) == 0 {
		return Message(MsgIndexBoardEmpty, false)
	}
	return execute("index-board", cards)
}
