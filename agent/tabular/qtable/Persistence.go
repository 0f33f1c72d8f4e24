package qtable

import (
	"bytes"
	"encoding/gob"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"gonum.org/v1/gonum/mat"
)

// QTableError implements errors unique to loading and saving QTables
type QTableError struct {
	Op  string
	Err error
}

// Error satisifes the error interface
func (e *QTableError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

// Unwrap returns the underlying error
func (e *QTableError) Unwrap() error {
	return e.Err
}

var errNotFound = errors.New("value table not found")

// IsNotFound returns whether or not an error reports that a persisted
// QTable does not exist
func IsNotFound(err error) bool {
	return errors.Is(err, errNotFound)
}

// serialized is the on-disk form of a QTable: the shape followed by the
// values in row-major (x, y, action) order
type serialized struct {
	Shape [3]int
	Data  []float64
}

// GobEncode implements the gob.GobEncoder interface
func (q *QTable) GobEncode() ([]byte, error) {
	var buf bytes.Buffer
	s := serialized{
		Shape: [3]int{q.size, q.size, q.actions},
		Data:  q.Raw(),
	}
	if err := gob.NewEncoder(&buf).Encode(s); err != nil {
		return nil, fmt.Errorf("gobEncode: %v", err)
	}
	return buf.Bytes(), nil
}

// GobDecode implements the gob.GobDecoder interface
func (q *QTable) GobDecode(in []byte) error {
	var s serialized
	if err := gob.NewDecoder(bytes.NewReader(in)).Decode(&s); err != nil {
		return fmt.Errorf("gobDecode: %v", err)
	}

	size, actions := s.Shape[0], s.Shape[2]
	if size <= 0 || actions <= 0 || s.Shape[0] != s.Shape[1] {
		return fmt.Errorf("gobDecode: invalid shape %v", s.Shape)
	}
	if len(s.Data) != size*size*actions {
		return fmt.Errorf("gobDecode: shape %v does not match %d values",
			s.Shape, len(s.Data))
	}

	q.size = size
	q.actions = actions
	q.values = mat.NewDense(size*size, actions, s.Data)
	return nil
}

// Save saves the QTable to filename
func (q *QTable) Save(filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return &QTableError{Op: "save", Err: err}
	}
	defer file.Close()

	if err := gob.NewEncoder(file).Encode(q); err != nil {
		return &QTableError{Op: "save", Err: err}
	}
	return file.Close()
}

// Load loads a QTable previously saved to filename. If no such file
// exists, the returned error satisfies IsNotFound.
func Load(filename string) (*QTable, error) {
	file, err := os.Open(filename)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, &QTableError{
			Op:  "load",
			Err: fmt.Errorf("%w: %v", errNotFound, filename),
		}
	} else if err != nil {
		return nil, &QTableError{Op: "load", Err: err}
	}
	defer file.Close()

	q := &QTable{}
	if err := gob.NewDecoder(file).Decode(q); err != nil {
		return nil, &QTableError{Op: "load", Err: err}
	}
	return q, nil
}

// Exists returns whether a persisted QTable exists at filename
func Exists(filename string) bool {
	info, err := os.Stat(filename)
	return err == nil && !info.IsDir()
}
