package gridworld

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/samuelfneumann/gradgrid/environment"
	"github.com/samuelfneumann/gradgrid/timestep"
)

var (
	testGoal      = timestep.State{X: 6, Y: 6}
	testObstacles = []timestep.State{
		{X: 0, Y: 3}, {X: 2, Y: 1}, {X: 3, Y: 7},
		{X: 3, Y: 4}, {X: 6, Y: 3}, {X: 5, Y: 0},
	}
)

func newTestGridWorld(t *testing.T, randomStart bool) *GridWorld {
	t.Helper()
	task, err := NewGoal(testGoal, testObstacles, DefaultSize)
	if err != nil {
		t.Fatal(err)
	}
	g, _, err := New(task, nil, randomStart, 1, nil)
	if err != nil {
		t.Fatal(err)
	}
	return g
}

func TestResetFixedStart(t *testing.T) {
	g := newTestGridWorld(t, false)

	for i := 0; i < 10; i++ {
		step, err := g.Reset()
		if err != nil {
			t.Fatal(err)
		}
		if step.Observation != (timestep.State{}) {
			t.Fatalf("reset returned %v, want (0, 0)", step.Observation)
		}
		if !step.First() || step.Number != 0 {
			t.Errorf("reset should return the first timestep, got %v", step)
		}
		if step.Info.Life != InitialLife {
			t.Errorf("life = %d, want %d", step.Info.Life, InitialLife)
		}
	}
}

func TestResetRandomStart(t *testing.T) {
	g := newTestGridWorld(t, true)

	seen := make(map[timestep.State]bool)
	for i := 0; i < 2000; i++ {
		step, err := g.Reset()
		if err != nil {
			t.Fatal(err)
		}
		s := step.Observation
		if g.AtGoal(s) || g.AtObstacle(s) {
			t.Fatalf("random start %v is the goal or an obstacle", s)
		}
		if !inBounds(s, DefaultSize) {
			t.Fatalf("random start %v out of bounds", s)
		}
		seen[s] = true
	}

	free := DefaultSize*DefaultSize - 1 - len(testObstacles)
	if len(seen) != free {
		t.Errorf("expected all %d free cells to be sampled, got %d", free,
			len(seen))
	}
}

func TestStepToGoal(t *testing.T) {
	g := newTestGridWorld(t, false)
	if err := g.SetPosition(timestep.State{X: 6, Y: 5}); err != nil {
		t.Fatal(err)
	}

	step, last, err := g.Step(environment.Up)
	if err != nil {
		t.Fatal(err)
	}
	if step.Observation != testGoal {
		t.Errorf("next state = %v, want %v", step.Observation, testGoal)
	}
	if step.Reward != GoalReward || !last || !step.Terminated() {
		t.Errorf("expected reward %v and termination, got %v", GoalReward,
			step)
	}
	if step.Truncated() {
		t.Error("environment should never truncate episodes")
	}
	if step.Info.DistanceToGoal != (timestep.State{}) {
		t.Errorf("distance to goal = %v, want (0, 0)",
			step.Info.DistanceToGoal)
	}
}

func TestStepCost(t *testing.T) {
	g := newTestGridWorld(t, false)
	if err := g.SetPosition(timestep.State{X: 2, Y: 0}); err != nil {
		t.Fatal(err)
	}

	step, last, err := g.Step(environment.Right)
	if err != nil {
		t.Fatal(err)
	}
	if step.Observation != (timestep.State{X: 3, Y: 0}) {
		t.Errorf("next state = %v, want (3, 0)", step.Observation)
	}
	if step.Reward != TimeStepReward || last || step.Terminated() {
		t.Errorf("expected step cost without termination, got %v", step)
	}
	want := timestep.State{X: 3, Y: 6}
	if step.Info.DistanceToGoal != want {
		t.Errorf("distance to goal = %v, want %v", step.Info.DistanceToGoal,
			want)
	}
}

func TestStepIntoObstacle(t *testing.T) {
	// Each obstacle is entered from every in-bounds neighbour that is
	// itself free
	for _, o := range testObstacles {
		for _, a := range environment.Actions {
			d := a.Displacement()
			from := timestep.State{X: o.X - d.X, Y: o.Y - d.Y}
			if !inBounds(from, DefaultSize) {
				continue
			}

			g := newTestGridWorld(t, false)
			if g.AtObstacle(from) || g.AtGoal(from) {
				continue
			}
			if err := g.SetPosition(from); err != nil {
				t.Fatal(err)
			}

			step, last, err := g.Step(a)
			if err != nil {
				t.Fatal(err)
			}
			if step.Observation != o {
				t.Fatalf("%v from %v reached %v, want %v", a, from,
					step.Observation, o)
			}
			if step.Reward != ObstacleReward || !last || !step.Terminated() {
				t.Errorf("%v from %v: expected obstacle termination, got %v",
					a, from, step)
			}
			if step.EndType() != timestep.Failure {
				t.Errorf("end type = %v, want Failure", step.EndType())
			}
			if g.Life() != 0 || step.Info.Life != 0 {
				t.Errorf("life = %d, want 0", g.Life())
			}
		}
	}
}

func TestWallClamping(t *testing.T) {
	task, err := NewGoal(timestep.State{X: 7, Y: 7}, nil, DefaultSize)
	if err != nil {
		t.Fatal(err)
	}

	for x := 0; x < DefaultSize; x++ {
		for y := 0; y < DefaultSize; y++ {
			from := timestep.State{X: x, Y: y}
			if task.AtGoal(from) {
				continue
			}
			for _, a := range environment.Actions {
				g, _, err := New(task, nil, false, 1, nil)
				if err != nil {
					t.Fatal(err)
				}
				if err := g.SetPosition(from); err != nil {
					t.Fatal(err)
				}

				step, _, err := g.Step(a)
				if err != nil {
					t.Fatal(err)
				}
				next := step.Observation
				if !inBounds(next, DefaultSize) {
					t.Fatalf("%v from %v left the grid: %v", a, from, next)
				}

				d := a.Displacement()
				if target := from.X + d.X; target < 0 || target >= DefaultSize {
					if next.X != from.X {
						t.Errorf("%v from %v changed x to %d", a, from, next.X)
					}
				}
				if target := from.Y + d.Y; target < 0 || target >= DefaultSize {
					if next.Y != from.Y {
						t.Errorf("%v from %v changed y to %d", a, from, next.Y)
					}
				}
			}
		}
	}
}

func TestStepInvalidAction(t *testing.T) {
	g := newTestGridWorld(t, false)

	for _, a := range []environment.Action{-1, 4, 100} {
		_, _, err := g.Step(a)
		if !IsInvalidAction(err) {
			t.Errorf("action %d: expected invalid action error, got %v", a,
				err)
		}
	}
	if g.Position() != (timestep.State{}) {
		t.Errorf("invalid action moved the agent to %v", g.Position())
	}
}

func TestStepAfterTermination(t *testing.T) {
	g := newTestGridWorld(t, false)
	if err := g.SetPosition(timestep.State{X: 6, Y: 5}); err != nil {
		t.Fatal(err)
	}
	if _, _, err := g.Step(environment.Up); err != nil {
		t.Fatal(err)
	}

	if _, _, err := g.Step(environment.Up); !IsEpisodeOver(err) {
		t.Fatalf("expected episode over error, got %v", err)
	}

	if _, err := g.Reset(); err != nil {
		t.Fatal(err)
	}
	if _, _, err := g.Step(environment.Up); err != nil {
		t.Errorf("step after reset failed: %v", err)
	}
}

func TestNewGoalValidation(t *testing.T) {
	_, err := NewGoal(testGoal, []timestep.State{testGoal}, DefaultSize)
	if !IsGoalObstacle(err) {
		t.Errorf("expected goal/obstacle overlap error, got %v", err)
	}

	_, err = NewGoal(timestep.State{X: 8, Y: 0}, nil, DefaultSize)
	if !IsOutOfBounds(err) {
		t.Errorf("expected out of bounds error, got %v", err)
	}

	_, err = NewGoal(testGoal, []timestep.State{{X: -1, Y: 2}}, DefaultSize)
	if !IsOutOfBounds(err) {
		t.Errorf("expected out of bounds error, got %v", err)
	}
}

func TestNewRejectsBlockedStart(t *testing.T) {
	blocked, err := NewGoal(testGoal, []timestep.State{{X: 0, Y: 0}},
		DefaultSize)
	if err != nil {
		t.Fatal(err)
	}
	if _, _, err := New(blocked, nil, false, 1, nil); !IsStartBlocked(err) {
		t.Errorf("default start on an obstacle: got %v", err)
	}

	task, err := NewGoal(testGoal, testObstacles, DefaultSize)
	if err != nil {
		t.Fatal(err)
	}
	onGoal, err := NewSingleStart(testGoal.X, testGoal.Y, DefaultSize)
	if err != nil {
		t.Fatal(err)
	}
	if _, _, err := New(task, onGoal, false, 1, nil); !IsStartBlocked(err) {
		t.Errorf("start on the goal: got %v", err)
	}

	categorical, err := environment.NewCategoricalStarter(
		[]timestep.State{{X: 1, Y: 1}, testObstacles[0]}, 1)
	if err != nil {
		t.Fatal(err)
	}
	if _, _, err := New(task, categorical, false, 1, nil); !IsStartBlocked(err) {
		t.Errorf("categorical start including an obstacle: got %v", err)
	}

	free, err := NewSingleStart(1, 1, DefaultSize)
	if err != nil {
		t.Fatal(err)
	}
	g, step, err := New(task, free, false, 1, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer g.Close()
	if step.Observation != (timestep.State{X: 1, Y: 1}) {
		t.Errorf("start = %v, want (1, 1)", step.Observation)
	}
}

func TestSpecs(t *testing.T) {
	g := newTestGridWorld(t, false)

	if n := g.ActionSpec().Count(0); n != environment.NumActions {
		t.Errorf("action count = %d, want %d", n, environment.NumActions)
	}
	obs := g.ObservationSpec()
	if obs.Count(0) != DefaultSize || obs.Count(1) != DefaultSize {
		t.Errorf("observation counts = (%d, %d), want (%d, %d)",
			obs.Count(0), obs.Count(1), DefaultSize, DefaultSize)
	}
	if g.Min() != ObstacleReward || g.Max() != GoalReward {
		t.Errorf("reward range = [%v, %v]", g.Min(), g.Max())
	}
}

func TestCloseIdempotent(t *testing.T) {
	var buf bytes.Buffer
	task, err := NewGoal(testGoal, testObstacles, DefaultSize)
	if err != nil {
		t.Fatal(err)
	}
	g, _, err := New(task, nil, false, 1, NewTerminalRenderer(&buf, false, 0))
	if err != nil {
		t.Fatal(err)
	}

	if err := g.Render(); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 3; i++ {
		if err := g.Close(); err != nil {
			t.Fatalf("close %d: %v", i, err)
		}
	}
	if err := g.Render(); err != nil {
		t.Errorf("render after close should be a no-op, got %v", err)
	}
}

func TestTerminalRenderer(t *testing.T) {
	var buf bytes.Buffer
	task, err := NewGoal(testGoal, testObstacles, DefaultSize)
	if err != nil {
		t.Fatal(err)
	}
	g, _, err := New(task, nil, false, 1, NewTerminalRenderer(&buf, false, 0))
	if err != nil {
		t.Fatal(err)
	}
	if err := g.Render(); err != nil {
		t.Fatal(err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != DefaultSize+2 {
		t.Fatalf("expected %d lines, got %d", DefaultSize+2, len(lines))
	}
	// Bottom row holds the agent at (0, 0) and the obstacle at (5, 0)
	bottom := lines[len(lines)-2]
	if !strings.HasPrefix(bottom, "| S ") {
		t.Errorf("agent not drawn at (0, 0): %q", bottom)
	}
	if strings.Count(buf.String(), "O") != len(testObstacles) {
		t.Errorf("expected %d obstacles drawn", len(testObstacles))
	}
	if strings.Count(buf.String(), "G") != 1 {
		t.Error("expected goal to be drawn once")
	}
}

func TestFrameRendererFallback(t *testing.T) {
	dir := t.TempDir()
	assets := Assets{Student: filepath.Join(dir, "missing.png")}
	r, err := NewFrameRenderer(filepath.Join(dir, "frames"), 10, 0, assets)
	if err != nil {
		t.Fatal(err)
	}

	task, err := NewGoal(testGoal, testObstacles, DefaultSize)
	if err != nil {
		t.Fatal(err)
	}
	g, _, err := New(task, nil, false, 1, r)
	if err != nil {
		t.Fatal(err)
	}
	defer g.Close()

	if err := g.Render(); err != nil {
		t.Fatalf("render with missing assets failed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "frames", "frame00001.png")); err != nil {
		t.Errorf("frame not written: %v", err)
	}
	if r.Frames() != 1 {
		t.Errorf("frames = %d, want 1", r.Frames())
	}
}

func BenchmarkStep(b *testing.B) {
	task, err := NewGoal(testGoal, testObstacles, DefaultSize)
	if err != nil {
		b.Fatal(err)
	}
	g, _, err := New(task, nil, true, 1, nil)
	if err != nil {
		b.Fatal(err)
	}

	for i := 0; i < b.N; i++ {
		_, last, err := g.Step(environment.Actions[i%environment.NumActions])
		if err != nil {
			b.Fatal(err)
		}
		if last {
			g.Reset()
		}
	}
}
