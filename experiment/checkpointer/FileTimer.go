package checkpointer

import (
	"fmt"
	"time"
)

// fileTimer stamps filenames with the wall-clock time in nanoseconds
type fileTimer struct {
	filename  string
	extension string
	last      int64
}

func (f *fileTimer) stamp() string {
	now := time.Now().UnixNano()
	if now <= f.last {
		now = f.last + 1
	}
	f.last = now
	return fmt.Sprintf("%v-%v%v", f.filename, now, f.extension)
}

// FileTimer returns a function which appends to filename a timestamp
// in nanoseconds since the Unix epoch. Stamps returned by the same
// function strictly increase, so two checkpoints taken within the
// clock's resolution never share a file.
func FileTimer(filename, extension string) func() string {
	f := &fileTimer{filename: filename, extension: extension}
	return f.stamp
}
