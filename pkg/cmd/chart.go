package cmd

import (
	"io"
	"os"
	"sort"

	"github.com/pkg/errors"
	"github.com/wcharczuk/go-chart/v2"
)

func writeHeightChartFile(path string, results []benchResult) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "cannot create chart file %s", path)
	}

	if err := writeHeightChart(f, results); err != nil {
		_ = f.Close()
		return err
	}

	return f.Close()
}

// writeHeightChart plots the red-black tree height, the unbalanced tree height
// and the 2*log2(n+1) bound against the number of keys as a png image.
func writeHeightChart(w io.Writer, results []benchResult) error {
	sorted := make([]benchResult, len(results))
	copy(sorted, results)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Size < sorted[j].Size
	})

	if len(sorted) < 2 || sorted[0].Size == sorted[len(sorted)-1].Size {
		return errors.New("the height chart needs at least two different sizes")
	}

	var sizes, heights, baselineHeights, bounds []float64
	for _, r := range sorted {
		sizes = append(sizes, float64(r.Size))
		heights = append(heights, float64(r.Height))
		baselineHeights = append(baselineHeights, float64(r.BaselineHeight))
		bounds = append(bounds, float64(r.HeightBound()))
	}

	canvas := chart.Chart{
		Title: "tree height",
		XAxis: chart.XAxis{
			Name:           "keys",
			ValueFormatter: chart.IntValueFormatter,
		},
		YAxis: chart.YAxis{
			Name:           "height",
			ValueFormatter: chart.IntValueFormatter,
		},
		Series: []chart.Series{
			chart.ContinuousSeries{Name: "red-black tree", XValues: sizes, YValues: heights},
			chart.ContinuousSeries{Name: "binary search tree", XValues: sizes, YValues: baselineHeights},
			chart.ContinuousSeries{Name: "2log2(n+1)", XValues: sizes, YValues: bounds},
		},
	}
	canvas.Elements = []chart.Renderable{
		chart.LegendLeft(&canvas),
	}

	if err := canvas.Render(chart.PNG, w); err != nil {
		return errors.Wrap(err, "cannot render height chart")
	}

	return nil
}
