package report

import (
	"fmt"
	"io"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/ironsheep/glucose-digitizer/internal/digitizer"
)

// ChartOptions controls RenderChart.
type ChartOptions struct {
	Title  string
	Width  int
	Height int
}

func lineStyle(col drawing.Color, width float64) chart.Style {
	return chart.Style{
		StrokeColor: col,
		StrokeWidth: width,
	}
}

// RenderChart draws points as a PNG line chart over a full day, with the
// unit's axis range and dashed lines at the target range bounds.
func RenderChart(w io.Writer, points []digitizer.GraphPoint, scale digitizer.Scale, opts ChartOptions) error {
	if len(points) < 2 {
		return fmt.Errorf("%w: a chart needs at least two points, got %d", ErrNoReadings, len(points))
	}
	if opts.Width <= 0 {
		opts.Width = 960
	}
	if opts.Height <= 0 {
		opts.Height = 400
	}

	xs := make([]float64, len(points))
	ys := make([]float64, len(points))
	for i, p := range points {
		xs[i] = p.X
		ys[i] = p.Y
	}

	band := chart.Style{
		StrokeColor:     drawing.ColorFromHex("2e7d32"),
		StrokeWidth:     1,
		StrokeDashArray: []float64{5, 5},
	}
	dayEdges := []float64{digitizer.DayHours.Min, digitizer.DayHours.Max}

	var xTicks []chart.Tick
	for h := 0; h <= 24; h += 3 {
		xTicks = append(xTicks, chart.Tick{Value: float64(h), Label: fmt.Sprintf("%02d:00", h)})
	}

	ch := chart.Chart{
		Title:      opts.Title,
		Width:      opts.Width,
		Height:     opts.Height,
		Background: chart.Style{Padding: chart.Box{Top: 20, Left: 16, Right: 16, Bottom: 12}},
		XAxis: chart.XAxis{
			Name:  "time of day",
			Range: &chart.ContinuousRange{Min: digitizer.DayHours.Min, Max: digitizer.DayHours.Max},
			Ticks: xTicks,
		},
		YAxis: chart.YAxis{
			Name:  string(scale.Unit),
			Range: &chart.ContinuousRange{Min: scale.Range.Min, Max: scale.Range.Max},
		},
		Series: []chart.Series{
			chart.ContinuousSeries{
				Name:    "glucose",
				XValues: xs,
				YValues: ys,
				Style:   lineStyle(drawing.ColorFromHex("1565c0"), 2),
			},
			chart.ContinuousSeries{
				Name:    "target low",
				XValues: dayEdges,
				YValues: []float64{scale.GoodRange.Min, scale.GoodRange.Min},
				Style:   band,
			},
			chart.ContinuousSeries{
				Name:    "target high",
				XValues: dayEdges,
				YValues: []float64{scale.GoodRange.Max, scale.GoodRange.Max},
				Style:   band,
			},
		},
	}
	ch.Elements = []chart.Renderable{chart.Legend(&ch)}

	if err := ch.Render(chart.PNG, w); err != nil {
		return fmt.Errorf("failed to render chart: %w", err)
	}
	return nil
}
