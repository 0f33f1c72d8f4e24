// Package analysis exports figures of learned action values and
// training progress
package analysis

import (
	"fmt"
	"image/color"
	"io"
	"math"
	"os"

	"github.com/samuelfneumann/gradgrid/agent/tabular/qtable"
	"github.com/samuelfneumann/gradgrid/environment"
	"github.com/samuelfneumann/gradgrid/timestep"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

// PanelSize is the width and height of a single action panel
const PanelSize = 4 * vg.Inch

// Layout marks the special cells of a grid on a heatmap
type Layout struct {
	Goal      timestep.State
	Obstacles []timestep.State
}

// masked reports whether s is the goal or an obstacle
func (l Layout) masked(s timestep.State) bool {
	if s == l.Goal {
		return true
	}
	for _, o := range l.Obstacles {
		if s == o {
			return true
		}
	}
	return false
}

// ActionGrid is the action value surface of a single action over a
// grid. Column c and row r of the grid are cell (x, y) = (c, r).
// Goal and obstacle cells are NaN.
type ActionGrid struct {
	values *mat.Dense
	layout Layout
}

var _ plotter.GridXYZ = &ActionGrid{}

// NewActionGrid returns the value surface of action in table
func NewActionGrid(table *qtable.QTable, action int,
	layout Layout) *ActionGrid {
	return &ActionGrid{table.Slice(action), layout}
}

// Dims returns the number of columns and rows of the grid
func (a *ActionGrid) Dims() (c, r int) {
	r, c = a.values.Dims()
	return c, r
}

// Z returns the action value of cell (c, r)
func (a *ActionGrid) Z(c, r int) float64 {
	if a.layout.masked(timestep.State{X: c, Y: r}) {
		return math.NaN()
	}
	return a.values.At(r, c)
}

func (a *ActionGrid) X(c int) float64 { return float64(c) }

func (a *ActionGrid) Y(r int) float64 { return float64(r) }

// labels returns the value of each free cell and a marker for the goal
// and obstacle cells
func (a *ActionGrid) labels() plotter.XYLabels {
	c, r := a.Dims()
	labels := plotter.XYLabels{
		XYs:    make(plotter.XYs, 0, c*r),
		Labels: make([]string, 0, c*r),
	}

	for x := 0; x < c; x++ {
		for y := 0; y < r; y++ {
			var label string
			s := timestep.State{X: x, Y: y}
			switch {
			case s == a.layout.Goal:
				label = "G"
			case a.layout.masked(s):
				label = "O"
			default:
				label = fmt.Sprintf("%.2f", a.values.At(y, x))
			}
			labels.XYs = append(labels.XYs, plotter.XY{X: float64(x),
				Y: float64(y)})
			labels.Labels = append(labels.Labels, label)
		}
	}
	return labels
}

// newPanel returns the heatmap plot of a single action
func newPanel(table *qtable.QTable, action int, layout Layout) (*plot.Plot,
	error) {
	grid := NewActionGrid(table, action, layout)

	heatmap := plotter.NewHeatMap(grid, palette.Heat(32, 1))
	heatmap.NaN = color.Gray{Y: 200}
	if heatmap.Min == heatmap.Max {
		heatmap.Max = heatmap.Min + 1
	}

	labels, err := plotter.NewLabels(grid.labels())
	if err != nil {
		return nil, fmt.Errorf("newPanel: %v", err)
	}
	for i := range labels.TextStyle {
		labels.TextStyle[i].XAlign = draw.XCenter
		labels.TextStyle[i].YAlign = draw.YCenter
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("Q-values: %v", environment.Action(action))
	p.X.Label.Text = "x"
	p.Y.Label.Text = "y"
	p.Add(heatmap, labels)
	return p, nil
}

// WriteHeatmap draws one heatmap panel per action of table side by side
// and writes the figure to w as a PNG image
func WriteHeatmap(w io.Writer, table *qtable.QTable, layout Layout) error {
	actions := table.Actions()
	plots := make([][]*plot.Plot, 1)
	plots[0] = make([]*plot.Plot, actions)
	for a := 0; a < actions; a++ {
		p, err := newPanel(table, a, layout)
		if err != nil {
			return fmt.Errorf("writeHeatmap: %v", err)
		}
		plots[0][a] = p
	}

	img := vgimg.New(vg.Length(actions)*PanelSize, PanelSize)
	dc := draw.New(img)
	tiles := draw.Tiles{
		Rows: 1,
		Cols: actions,
		PadX: vg.Millimeter,
		PadY: vg.Millimeter,
	}

	canvases := plot.Align(plots, tiles, dc)
	for j := range plots {
		for i := range plots[j] {
			plots[j][i].Draw(canvases[j][i])
		}
	}

	png := vgimg.PngCanvas{Canvas: img}
	if _, err := png.WriteTo(w); err != nil {
		return fmt.Errorf("writeHeatmap: could not write image: %v", err)
	}
	return nil
}

// SaveHeatmap saves the heatmap figure of table to filename
func SaveHeatmap(filename string, table *qtable.QTable, layout Layout) error {
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("saveHeatmap: could not create file: %v", err)
	}
	defer file.Close()

	if err := WriteHeatmap(file, table, layout); err != nil {
		return err
	}
	return file.Close()
}
