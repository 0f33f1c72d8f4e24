package gridworld

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/logrusorgru/aurora"
	"github.com/samuelfneumann/gradgrid/timestep"
)

// TerminalRenderer draws GridWorld frames as coloured text. The agent
// is drawn as S, the goal as G, and obstacles as O.
type TerminalRenderer struct {
	out    io.Writer
	au     aurora.Aurora
	delay  time.Duration
	last   time.Time
	closed bool
}

// NewTerminalRenderer returns a new TerminalRenderer writing to out.
// Frames are paced to at most fps frames per second; if fps <= 0,
// frames are not paced.
func NewTerminalRenderer(out io.Writer, colours bool,
	fps int) *TerminalRenderer {
	var delay time.Duration
	if fps > 0 {
		delay = time.Second / time.Duration(fps)
	}
	return &TerminalRenderer{
		out:   out,
		au:    aurora.NewAurora(colours),
		delay: delay,
	}
}

// Draw writes the current state of g to the renderer's writer
func (t *TerminalRenderer) Draw(g *GridWorld) error {
	if t.closed {
		return fmt.Errorf("draw: renderer closed")
	}
	if wait := t.delay - time.Since(t.last); t.delay > 0 && wait > 0 {
		time.Sleep(wait)
	}
	t.last = time.Now()

	size, _ := g.Dims()
	var b strings.Builder
	border := "+" + strings.Repeat("---", size) + "+\n"

	b.WriteString(border)
	for y := size - 1; y >= 0; y-- {
		b.WriteString("|")
		for x := 0; x < size; x++ {
			b.WriteString(t.cell(g, timestep.State{X: x, Y: y}))
		}
		b.WriteString("|\n")
	}
	b.WriteString(border)

	_, err := io.WriteString(t.out, b.String())
	return err
}

func (t *TerminalRenderer) cell(g *GridWorld, s timestep.State) string {
	switch {
	case s == g.Position():
		return fmt.Sprintf(" %v ", t.au.Bold(t.au.Blue("S")))
	case g.AtGoal(s):
		return fmt.Sprintf(" %v ", t.au.Green("G"))
	case g.AtObstacle(s):
		return fmt.Sprintf(" %v ", t.au.Red("O"))
	}
	return " . "
}

// Reset clears pending rendering state
func (t *TerminalRenderer) Reset() {
	t.last = time.Time{}
}

// Close closes the renderer. Close is idempotent.
func (t *TerminalRenderer) Close() error {
	t.closed = true
	return nil
}
