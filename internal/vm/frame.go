package vm

// LocalSlot holds the runtime state of a local or global variable.
type LocalSlot struct {
	V      Value
	IsInit bool
}

// Frame represents a function activation record on the call stack.
type Frame struct {
	Func   *Func
	PC     int
	Locals []LocalSlot
	base   int // operand stack height at entry
}

// NewFrame creates a frame with args stored in the first slots.
func NewFrame(fn *Func, args []Value) *Frame {
	locals := make([]LocalSlot, fn.Locals)
	for i, a := range args {
		locals[i] = LocalSlot{V: a, IsInit: true}
	}
	return &Frame{Func: fn, Locals: locals}
}
