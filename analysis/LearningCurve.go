package analysis

import (
	"fmt"
	"os"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// SaveLearningCurve plots the return of each training episode and saves
// the figure to filename. The image format is taken from the file
// extension.
func SaveLearningCurve(filename string, returns []float64) error {
	if len(returns) == 0 {
		return fmt.Errorf("saveLearningCurve: no returns to plot")
	}

	p := plot.New()
	p.Title.Text = "Learning Progress"
	p.X.Label.Text = "Episodes"
	p.Y.Label.Text = "Total Reward"

	pts := make(plotter.XYs, len(returns))
	for i := range returns {
		pts[i].X = float64(i)
		pts[i].Y = returns[i]
	}

	line, err := plotter.NewLine(pts)
	if err != nil {
		return fmt.Errorf("saveLearningCurve: could not create line: %v", err)
	}
	p.Add(line)
	p.Legend.Add("Total Reward", line)

	if err := p.Save(6*vg.Inch, 6*vg.Inch, filename); err != nil {
		return fmt.Errorf("saveLearningCurve: could not save plot: %v", err)
	}
	return nil
}

// SaveLearningCurveHTML writes an interactive chart of the return and
// exploration rate of each training episode to filename as an HTML
// page
func SaveLearningCurveHTML(filename string, returns,
	epsilons []float64) error {
	if len(returns) == 0 {
		return fmt.Errorf("saveLearningCurveHTML: no returns to plot")
	}
	if len(epsilons) != 0 && len(epsilons) != len(returns) {
		return fmt.Errorf("saveLearningCurveHTML: got %d returns but %d "+
			"epsilons", len(returns), len(epsilons))
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title: "Learning Progress",
		}),
		charts.WithInitializationOpts(opts.Initialization{
			Theme: "shine",
		}),
	)

	episodes := make([]string, len(returns))
	for i := range episodes {
		episodes[i] = fmt.Sprintf("%d", i+1)
	}
	line = line.SetXAxis(episodes)
	line.AddSeries("Total Reward", lineData(returns))
	if len(epsilons) != 0 {
		line.AddSeries("Epsilon", lineData(epsilons))
	}

	page := components.NewPage()
	page.AddCharts(line)

	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("saveLearningCurveHTML: could not create file: %v",
			err)
	}
	defer file.Close()

	if err := page.Render(file); err != nil {
		return fmt.Errorf("saveLearningCurveHTML: could not render: %v", err)
	}
	return file.Close()
}

func lineData(values []float64) []opts.LineData {
	items := make([]opts.LineData, 0, len(values))
	for _, v := range values {
		items = append(items, opts.LineData{Value: v})
	}
	return items
}
