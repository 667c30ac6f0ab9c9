package render

import (
	"fmt"

	"github.com/newthinker/finboard/internal/core"
)

// Kind identifies the client-side charting library a config targets.
type Kind string

const (
	KindChartJS Kind = "chartjs"
	KindPlotly  Kind = "plotly"
)

// ChartConfig is a declarative Chart.js configuration.
type ChartConfig struct {
	Type    string         `json:"type"`
	Data    ChartData      `json:"data"`
	Options map[string]any `json:"options,omitempty"`
}

// ChartData holds the labels and datasets of a chart.
type ChartData struct {
	Labels   []string  `json:"labels"`
	Datasets []Dataset `json:"datasets"`
}

// Dataset is one Chart.js dataset. Color fields take a single color or one per point.
type Dataset struct {
	Label           string     `json:"label,omitempty"`
	Data            []*float64 `json:"data"`
	BorderColor     any        `json:"borderColor,omitempty"`
	BackgroundColor any        `json:"backgroundColor,omitempty"`
	BorderWidth     float64    `json:"borderWidth,omitempty"`
	Fill            *bool      `json:"fill,omitempty"`
	Tension         float64    `json:"tension,omitempty"`
	PointRadius     *float64   `json:"pointRadius,omitempty"`
	// TooltipLabels are precomputed tooltip lines, one per point.
	TooltipLabels []string `json:"tooltipLabels,omitempty"`
}

// Sparkline colors by direction of change.
const (
	UpColor   = "#28a745"
	UpFill    = "rgba(40, 167, 69, 0.1)"
	DownColor = "#dc3545"
	DownFill  = "rgba(220, 53, 69, 0.1)"
)

func boolPtr(b bool) *bool         { return &b }
func floatPtr(f float64) *float64 { return &f }

// LineChart builds the line item trend chart opened in the chart modal.
func LineChart(label string, s core.ChartSeries) ChartConfig {
	return ChartConfig{
		Type: "line",
		Data: ChartData{
			Labels: s.Labels,
			Datasets: []Dataset{{
				Label:       label,
				Data:        s.Values,
				BorderColor: "blue",
				Fill:        boolPtr(false),
			}},
		},
		Options: map[string]any{
			"responsive": true,
			"scales": map[string]any{
				"y": map[string]any{"beginAtZero": false},
			},
		},
	}
}

// PieColors returns n distinct fill colors and their opaque border variants.
// Hues are spread by the golden angle so the palette is stable across renders.
func PieColors(n int) (fills, borders []string) {
	fills = make([]string, n)
	borders = make([]string, n)
	for i := 0; i < n; i++ {
		hue := (i * 137) % 360
		fills[i] = fmt.Sprintf("hsla(%d, 70%%, 60%%, 0.85)", hue)
		borders[i] = fmt.Sprintf("hsla(%d, 70%%, 60%%, 1)", hue)
	}
	return fills, borders
}

// PieChart builds the per-symbol share chart for a metric.
func PieChart(metricLabel, title string, s core.ChartSeries) ChartConfig {
	fills, borders := PieColors(s.Len())
	total := s.Total()

	tooltips := make([]string, s.Len())
	for i, v := range s.Values {
		var val, pct float64
		if v != nil {
			val = *v
		}
		if total > 0 {
			pct = val / total * 100
		}
		tooltips[i] = fmt.Sprintf("%s: %s (%s%%)", s.Labels[i], FormatNumber(val, 2), FormatNumber(pct, 2))
	}

	return ChartConfig{
		Type: "pie",
		Data: ChartData{
			Labels: s.Labels,
			Datasets: []Dataset{{
				Label:           metricLabel,
				Data:            s.Values,
				BackgroundColor: fills,
				BorderColor:     borders,
				BorderWidth:     1,
				TooltipLabels:   tooltips,
			}},
		},
		Options: map[string]any{
			"responsive":          true,
			"maintainAspectRatio": false,
			"plugins": map[string]any{
				"legend": map[string]any{"position": "right"},
				"title":  map[string]any{"display": true, "text": title},
			},
		},
	}
}

// Sparkline builds the mini chart of an index card, green when change >= 0 and red otherwise.
func Sparkline(points []core.ClosePoint, change float64) ChartConfig {
	labels := make([]string, len(points))
	values := make([]*float64, len(points))
	for i, p := range points {
		labels[i] = p.Time
		values[i] = p.Close
	}

	border, fill := UpColor, UpFill
	if change < 0 {
		border, fill = DownColor, DownFill
	}

	return ChartConfig{
		Type: "line",
		Data: ChartData{
			Labels: labels,
			Datasets: []Dataset{{
				Data:            values,
				BorderColor:     border,
				BackgroundColor: fill,
				BorderWidth:     1,
				Fill:            boolPtr(true),
				Tension:         0.1,
				PointRadius:     floatPtr(0),
			}},
		},
		Options: map[string]any{
			"responsive":          true,
			"maintainAspectRatio": false,
			"scales": map[string]any{
				"x": map[string]any{"display": false},
				"y": map[string]any{"display": false},
			},
			"plugins": map[string]any{
				"legend":  map[string]any{"display": false},
				"tooltip": map[string]any{"enabled": false},
			},
			"animation": map[string]any{"duration": 300},
		},
	}
}

// TreemapTrace is a Plotly treemap trace. Every parent is the root "".
type TreemapTrace struct {
	Type     string    `json:"type"`
	Labels   []string  `json:"labels"`
	Values   []float64 `json:"values"`
	Parents  []string  `json:"parents"`
	TextInfo string    `json:"textinfo"`
}

// TreemapFigure is a Plotly figure with a single treemap trace.
type TreemapFigure struct {
	Data   []TreemapTrace `json:"data"`
	Layout map[string]any `json:"layout"`
}

// Treemap builds the market capitalization treemap.
func Treemap(items []core.SymbolValue) TreemapFigure {
	tr := TreemapTrace{
		Type:     "treemap",
		Labels:   make([]string, len(items)),
		Values:   make([]float64, len(items)),
		Parents:  make([]string, len(items)),
		TextInfo: "label+value",
	}
	for i, it := range items {
		tr.Labels[i] = it.Symbol
		tr.Values[i] = it.Value
	}
	return TreemapFigure{
		Data: []TreemapTrace{tr},
		Layout: map[string]any{
			"margin": map[string]any{"t": 30, "l": 0, "r": 0, "b": 0},
		},
	}
}
