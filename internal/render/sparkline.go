package render

import (
	"bytes"
	"fmt"

	"github.com/newthinker/finboard/internal/core"
	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// Default mini chart size in pixels.
const (
	SparklineWidth  = 120
	SparklineHeight = 50
)

var (
	upStroke   = drawing.ColorFromHex("28a745")
	upFill     = drawing.Color{R: 40, G: 167, B: 69, A: 26}
	downStroke = drawing.ColorFromHex("dc3545")
	downFill   = drawing.Color{R: 220, G: 53, B: 69, A: 26}
)

// SparklinePNG renders the mini chart of an index as a PNG image.
// Null closes are skipped; at least two points are required.
func SparklinePNG(points []core.ClosePoint, change float64, width, height int) ([]byte, error) {
	var xs, ys []float64
	for _, p := range points {
		if p.Close == nil {
			continue
		}
		xs = append(xs, float64(len(xs)))
		ys = append(ys, *p.Close)
	}
	if len(ys) < 2 {
		return nil, core.WrapError(core.ErrNoData, fmt.Errorf("sparkline needs 2 points, got %d", len(ys)))
	}
	if width <= 0 {
		width = SparklineWidth
	}
	if height <= 0 {
		height = SparklineHeight
	}

	stroke, fill := upStroke, upFill
	if change < 0 {
		stroke, fill = downStroke, downFill
	}

	lo, hi := ys[0], ys[0]
	for _, y := range ys {
		lo = min(lo, y)
		hi = max(hi, y)
	}
	if lo == hi {
		// go-chart rejects a zero-height range
		lo, hi = lo-1, hi+1
	}

	hidden := chart.Style{Hidden: true}
	ch := chart.Chart{
		Width:      width,
		Height:     height,
		Background: chart.Style{Padding: chart.Box{Top: 2, Left: 2, Right: 2, Bottom: 2}},
		XAxis:      chart.XAxis{Style: hidden},
		YAxis:      chart.YAxis{Style: hidden, Range: &chart.ContinuousRange{Min: lo, Max: hi}},
		Series: []chart.Series{
			chart.ContinuousSeries{
				XValues: xs,
				YValues: ys,
				Style: chart.Style{
					StrokeColor: stroke,
					StrokeWidth: 1,
					FillColor:   fill,
				},
			},
		},
	}

	var buf bytes.Buffer
	if err := ch.Render(chart.PNG, &buf); err != nil {
		return nil, core.WrapError(core.ErrRenderFailed, err)
	}
	return buf.Bytes(), nil
}
