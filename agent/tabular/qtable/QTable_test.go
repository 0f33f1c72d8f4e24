package qtable

import (
	"math"
	"path/filepath"
	"testing"

	"golang.org/x/exp/rand"

	"github.com/samuelfneumann/gradgrid/timestep"
)

func TestNewZeroInitialized(t *testing.T) {
	q, err := New(8, 4)
	if err != nil {
		t.Fatal(err)
	}

	s, s2, a := q.Shape()
	if s != 8 || s2 != 8 || a != 4 {
		t.Fatalf("shape = (%d, %d, %d), want (8, 8, 4)", s, s2, a)
	}
	for _, v := range q.Raw() {
		if v != 0 {
			t.Fatalf("expected zero initialization, found %v", v)
		}
	}
	if len(q.Raw()) != 8*8*4 {
		t.Errorf("raw length = %d, want %d", len(q.Raw()), 8*8*4)
	}

	if _, err := New(0, 4); err == nil {
		t.Error("expected error for empty grid")
	}
	if _, err := New(8, 0); err == nil {
		t.Error("expected error for no actions")
	}
}

func TestIndexBounds(t *testing.T) {
	q, _ := New(8, 4)

	for _, s := range []timestep.State{{X: -1, Y: 0}, {X: 0, Y: 8},
		{X: 8, Y: 8}} {
		if _, err := q.Index(s); err == nil {
			t.Errorf("expected error indexing %v", s)
		}
	}

	i, err := q.Index(timestep.State{X: 2, Y: 3})
	if err != nil {
		t.Fatal(err)
	}
	if i != 2*8+3 {
		t.Errorf("index = %d, want %d", i, 2*8+3)
	}
}

func TestRowMajorLayout(t *testing.T) {
	q, _ := New(3, 2)
	q.Set(timestep.State{X: 1, Y: 2}, 1, 7.5)

	// Element [1][2][1] of a (3, 3, 2) row-major array
	want := (1*3+2)*2 + 1
	raw := q.Raw()
	if raw[want] != 7.5 {
		t.Errorf("raw[%d] = %v, want 7.5", want, raw[want])
	}
	if got := q.Slice(1).At(2, 1); got != 7.5 {
		t.Errorf("slice(1)[2][1] = %v, want 7.5", got)
	}
}

func TestArgMaxFirstMax(t *testing.T) {
	q, _ := New(2, 4)
	s := timestep.State{X: 1, Y: 0}

	if a := q.ArgMax(s); a != 0 {
		t.Errorf("argmax of all zero row = %d, want 0", a)
	}

	q.Set(s, 1, 3)
	q.Set(s, 3, 3)
	if a := q.ArgMax(s); a != 1 {
		t.Errorf("argmax with tie = %d, want 1", a)
	}
	if m := q.Max(s); m != 3 {
		t.Errorf("max = %v, want 3", m)
	}

	q.Add(s, 3, 0.5)
	if a := q.ArgMax(s); a != 3 {
		t.Errorf("argmax = %d, want 3", a)
	}
}

func TestSaveLoadBitExact(t *testing.T) {
	q, _ := New(8, 4)
	rng := rand.New(rand.NewSource(7))
	for x := 0; x < 8; x++ {
		for y := 0; y < 8; y++ {
			for a := 0; a < 4; a++ {
				q.Set(timestep.State{X: x, Y: y}, a, rng.NormFloat64()*1e3)
			}
		}
	}
	q.Set(timestep.State{X: 0, Y: 0}, 0, math.SmallestNonzeroFloat64)
	q.Set(timestep.State{X: 0, Y: 0}, 1, math.Copysign(0, -1))
	q.Set(timestep.State{X: 0, Y: 0}, 2, math.MaxFloat64)

	filename := filepath.Join(t.TempDir(), "q_table.gob")
	if err := q.Save(filename); err != nil {
		t.Fatal(err)
	}
	if !Exists(filename) {
		t.Fatal("saved table does not exist")
	}

	loaded, err := Load(filename)
	if err != nil {
		t.Fatal(err)
	}
	if !q.Equal(loaded) {
		t.Error("loaded table differs from saved table")
	}

	want, got := q.Raw(), loaded.Raw()
	for i := range want {
		if math.Float64bits(want[i]) != math.Float64bits(got[i]) {
			t.Fatalf("element %d: %v != %v", i, got[i], want[i])
		}
	}
}

func TestLoadNotFound(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "missing.gob")
	if Exists(filename) {
		t.Fatal("missing file reported as existing")
	}

	_, err := Load(filename)
	if !IsNotFound(err) {
		t.Errorf("expected not found error, got %v", err)
	}
}

func TestCloneIsIndependent(t *testing.T) {
	q, _ := New(4, 4)
	c := q.Clone()
	c.Set(timestep.State{X: 3, Y: 3}, 2, 1)

	if q.Equal(c) {
		t.Error("changing a clone changed the original")
	}
}
