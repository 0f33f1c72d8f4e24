package checkpointer

import (
	"path/filepath"
	"sort"
	"testing"

	"github.com/samuelfneumann/gradgrid/agent/tabular/qtable"
	"github.com/samuelfneumann/gradgrid/timestep"
)

func TestNStep(t *testing.T) {
	dir := t.TempDir()
	q, _ := qtable.New(4, 4)
	q.Set(timestep.State{X: 1, Y: 1}, 2, 0.5)

	c, err := NewNStep(3, q, FilenameEnumerator(0,
		filepath.Join(dir, "q_table"), ".gob"))
	if err != nil {
		t.Fatal(err)
	}

	for episode := 1; episode <= 7; episode++ {
		if err := c.Checkpoint(episode); err != nil {
			t.Fatal(err)
		}
	}

	for _, name := range []string{"q_table1.gob", "q_table2.gob"} {
		loaded, err := qtable.Load(filepath.Join(dir, name))
		if err != nil {
			t.Fatalf("checkpoint %v: %v", name, err)
		}
		if !loaded.Equal(q) {
			t.Errorf("checkpoint %v differs from table", name)
		}
	}
	if qtable.Exists(filepath.Join(dir, "q_table3.gob")) {
		t.Error("unexpected third checkpoint")
	}

	if _, err := NewNStep(0, q, FileTimer("x", ".gob")); err == nil {
		t.Error("expected error for non-positive interval")
	}
}

func TestFileTimer(t *testing.T) {
	dir := t.TempDir()
	q, _ := qtable.New(4, 4)

	c, err := NewNStep(2, q, FileTimer(filepath.Join(dir, "q_table"), ".gob"))
	if err != nil {
		t.Fatal(err)
	}
	for episode := 1; episode <= 6; episode++ {
		if err := c.Checkpoint(episode); err != nil {
			t.Fatal(err)
		}
	}

	files, err := filepath.Glob(filepath.Join(dir, "q_table-*.gob"))
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != 3 {
		t.Fatalf("got %d timestamped checkpoints, want 3: %v", len(files),
			files)
	}
	sort.Strings(files)
	for _, f := range files {
		if _, err := qtable.Load(f); err != nil {
			t.Errorf("checkpoint %v: %v", f, err)
		}
	}

	name := FileTimer("run", ".bin")
	first, second := name(), name()
	if first == second {
		t.Errorf("repeated timestamp %v", first)
	}
}
