package vm

import (
	"io"
	"os"
)

// Runtime abstracts the outside world the program can touch.
type Runtime interface {
	// Stdout is where print writes.
	Stdout() io.Writer
}

type defaultRuntime struct{ out io.Writer }

func (r defaultRuntime) Stdout() io.Writer { return r.out }

// NewRuntime returns a runtime printing to w; nil means os.Stdout.
func NewRuntime(w io.Writer) Runtime {
	if w == nil {
		w = os.Stdout
	}
	return defaultRuntime{out: w}
}
