// Package qtable implements dense tabular action-value functions over
// square grids.
//
// A QTable holds one value for every (x, y, action) triple of a
// size x size grid. Values are stored in a gonum mat.Dense with one
// row per cell, where cell (x, y) is row x*size + y. The raw data of
// the matrix is therefore laid out exactly as a row-major array of
// shape (size, size, actions).
package qtable

import (
	"fmt"

	"github.com/samuelfneumann/gradgrid/timestep"
	"github.com/samuelfneumann/gradgrid/utils/matutils"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// QTable is a dense table of action values indexed by (x, y, action)
type QTable struct {
	size    int
	actions int
	values  *mat.Dense
}

// New returns a new zero-initialized QTable for a size x size grid with
// the given number of actions
func New(size, actions int) (*QTable, error) {
	if size <= 0 {
		return nil, fmt.Errorf("new: size must be positive, got %d", size)
	}
	if actions <= 0 {
		return nil, fmt.Errorf("new: actions must be positive, got %d",
			actions)
	}

	return &QTable{
		size:    size,
		actions: actions,
		values:  mat.NewDense(size*size, actions, nil),
	}, nil
}

// Index returns the row of the underlying matrix holding the action
// values of state. An error is returned if state is outside the grid.
func (q *QTable) Index(state timestep.State) (int, error) {
	if state.X < 0 || state.X >= q.size || state.Y < 0 || state.Y >= q.size {
		return -1, fmt.Errorf("index: state %v outside grid of size %d",
			state, q.size)
	}
	return state.X*q.size + state.Y, nil
}

// mustIndex returns the row of state, panicking if state is outside the
// grid
func (q *QTable) mustIndex(state timestep.State) int {
	i, err := q.Index(state)
	if err != nil {
		panic(err)
	}
	return i
}

// At returns the value of taking action in state
func (q *QTable) At(state timestep.State, action int) float64 {
	return q.values.At(q.mustIndex(state), action)
}

// Set sets the value of taking action in state
func (q *QTable) Set(state timestep.State, action int, value float64) {
	q.values.Set(q.mustIndex(state), action, value)
}

// Add adds delta to the value of taking action in state
func (q *QTable) Add(state timestep.State, action int, delta float64) {
	i := q.mustIndex(state)
	q.values.Set(i, action, q.values.At(i, action)+delta)
}

// Row returns a view of the action values of state. Changes to the
// returned vector are reflected in the QTable.
func (q *QTable) Row(state timestep.State) *mat.VecDense {
	return q.values.RowView(q.mustIndex(state)).(*mat.VecDense)
}

// Max returns the maximum action value in state
func (q *QTable) Max(state timestep.State) float64 {
	return floats.Max(q.values.RawRowView(q.mustIndex(state)))
}

// ArgMax returns the action with the highest value in state. Ties are
// broken by choosing the lowest action index.
func (q *QTable) ArgMax(state timestep.State) int {
	return matutils.MaxVec(q.Row(state))
}

// Shape returns the shape (size, size, actions) of the QTable
func (q *QTable) Shape() (int, int, int) {
	return q.size, q.size, q.actions
}

// Size returns the number of rows and columns of the grid
func (q *QTable) Size() int {
	return q.size
}

// Actions returns the number of actions
func (q *QTable) Actions() int {
	return q.actions
}

// Slice returns a size x size matrix holding the value of action in
// each cell, where element (y, x) is the value of cell (x, y)
func (q *QTable) Slice(action int) *mat.Dense {
	if action < 0 || action >= q.actions {
		panic(fmt.Sprintf("slice: action %d out of range [0, %d)", action,
			q.actions))
	}

	slice := mat.NewDense(q.size, q.size, nil)
	for x := 0; x < q.size; x++ {
		for y := 0; y < q.size; y++ {
			slice.Set(y, x, q.values.At(x*q.size+y, action))
		}
	}
	return slice
}

// Raw returns a copy of the table's values in row-major (x, y, action)
// order
func (q *QTable) Raw() []float64 {
	raw := q.values.RawMatrix()
	data := make([]float64, 0, q.size*q.size*q.actions)
	for i := 0; i < raw.Rows; i++ {
		data = append(data, raw.Data[i*raw.Stride:i*raw.Stride+raw.Cols]...)
	}
	return data
}

// Equal returns whether two QTables have the same shape and bit-for-bit
// identical values
func (q *QTable) Equal(other *QTable) bool {
	if q.size != other.size || q.actions != other.actions {
		return false
	}
	return matutils.EqualBits(q.values, other.values)
}

// Clone returns a deep copy of the QTable
func (q *QTable) Clone() *QTable {
	return &QTable{
		size:    q.size,
		actions: q.actions,
		values:  mat.DenseCopyOf(q.values),
	}
}

func (q *QTable) String() string {
	return fmt.Sprintf("QTable | Shape: (%d, %d, %d)\n%v", q.size, q.size,
		q.actions, matutils.Format(q.values))
}
