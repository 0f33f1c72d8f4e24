package gridworld

import (
	"fmt"
	"image"
	"image/color"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/fogleman/gg"
	"github.com/samuelfneumann/gradgrid/timestep"
)

const (
	// DefaultCellSize is the default width and height of a cell in pixels
	DefaultCellSize int = 80

	// DefaultFPS is the default rate at which frames are drawn
	DefaultFPS int = 10
)

// Assets holds paths to images used to draw the agent, goal, and
// obstacles. Any path which is empty or cannot be loaded is replaced
// by a solid shape.
type Assets struct {
	Student  string
	Goal     string
	Obstacle string
}

// FrameRenderer draws GridWorld frames as PNG images in a directory.
// Frames are paced to at most FPS frames per second.
type FrameRenderer struct {
	dir      string
	cellSize int
	frame    int
	ticker   *time.Ticker

	student  image.Image
	goal     image.Image
	obstacle image.Image

	background color.Color
	lines      color.Color
	closed     bool
}

// NewFrameRenderer returns a new FrameRenderer which saves frames in
// dir. If fps <= 0, frames are not paced.
func NewFrameRenderer(dir string, cellSize, fps int,
	assets Assets) (*FrameRenderer, error) {
	if cellSize <= 0 {
		return nil, fmt.Errorf("newFrameRenderer: cell size must be "+
			"positive, got %d", cellSize)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("newFrameRenderer: could not create frame "+
			"directory: %v", err)
	}

	var ticker *time.Ticker
	if fps > 0 {
		ticker = time.NewTicker(time.Second / time.Duration(fps))
	}

	return &FrameRenderer{
		dir:        dir,
		cellSize:   cellSize,
		ticker:     ticker,
		student:    loadAsset(assets.Student),
		goal:       loadAsset(assets.Goal),
		obstacle:   loadAsset(assets.Obstacle),
		background: color.White,
		lines:      color.Black,
	}, nil
}

// loadAsset loads the image at path, returning nil if it cannot be
// loaded
func loadAsset(path string) image.Image {
	if path == "" {
		return nil
	}
	img, err := gg.LoadImage(path)
	if err != nil {
		log.Printf("could not load asset %v, drawing shapes instead: %v",
			path, err)
		return nil
	}
	return img
}

// Draw draws the current state of g and saves it as the next frame
func (f *FrameRenderer) Draw(g *GridWorld) error {
	if f.closed {
		return fmt.Errorf("draw: renderer closed")
	}
	if f.ticker != nil {
		<-f.ticker.C
	}

	size, _ := g.Dims()
	width := size * f.cellSize
	dc := gg.NewContext(width, width)
	dc.SetColor(f.background)
	dc.Clear()

	// Grid lines
	dc.SetColor(f.lines)
	dc.SetLineWidth(1.0)
	for i := 0; i <= size; i++ {
		p := float64(i * f.cellSize)
		dc.DrawLine(p, 0, p, float64(width))
		dc.DrawLine(0, p, float64(width), p)
	}
	dc.Stroke()

	for _, o := range g.Obstacles() {
		f.drawCell(dc, size, o, f.obstacle, color.RGBA{200, 30, 30, 255},
			false)
	}
	f.drawCell(dc, size, g.GoalState(), f.goal, color.RGBA{30, 160, 60, 255},
		false)
	f.drawCell(dc, size, g.Position(), f.student,
		color.RGBA{30, 80, 200, 255}, true)

	f.frame++
	filename := filepath.Join(f.dir, fmt.Sprintf("frame%05d.png", f.frame))
	if err := dc.SavePNG(filename); err != nil {
		return fmt.Errorf("draw: could not save frame: %v", err)
	}
	return nil
}

// drawCell draws img in cell s, or a solid shape of colour c if img is
// nil. Row 0 of the grid is drawn at the bottom of the frame.
func (f *FrameRenderer) drawCell(dc *gg.Context, size int, s timestep.State,
	img image.Image, c color.Color, round bool) {
	cell := float64(f.cellSize)
	px := float64(s.X) * cell
	py := float64(size-1-s.Y) * cell

	if img != nil {
		bounds := img.Bounds()
		dc.Push()
		dc.Translate(px, py)
		dc.Scale(cell/float64(bounds.Dx()), cell/float64(bounds.Dy()))
		dc.DrawImage(img, 0, 0)
		dc.Pop()
		return
	}

	dc.SetColor(c)
	if round {
		dc.DrawCircle(px+cell/2, py+cell/2, cell/3)
	} else {
		margin := cell / 8
		dc.DrawRectangle(px+margin, py+margin, cell-2*margin, cell-2*margin)
	}
	dc.Fill()
}

// Frames returns the number of frames drawn so far
func (f *FrameRenderer) Frames() int {
	return f.frame
}

// Reset clears pending rendering state. Frame numbering continues
// across episodes.
func (f *FrameRenderer) Reset() {
	if f.ticker != nil {
		select {
		case <-f.ticker.C:
		default:
		}
	}
}

// Close stops frame pacing. Close is idempotent.
func (f *FrameRenderer) Close() error {
	if f.closed {
		return nil
	}
	f.closed = true
	if f.ticker != nil {
		f.ticker.Stop()
	}
	return nil
}
