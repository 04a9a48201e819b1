package vm

// Instr is an assembled instruction. Only the fields its opcode needs are set.
type Instr struct {
	Op   Op
	Int  int64
	F    float64
	Str  string
	Bool bool
	// Index is the local slot, global index, jump target pc or callee index.
	Index int
	Argc  int
	Line  int // line in the assembly text
}

// Func is one assembled function.
type Func struct {
	Name   string
	Params int
	Locals int
	Code   []Instr
}

// Program is an assembled artifact ready to run.
type Program struct {
	Version int
	Source  string
	Globals []string
	Funcs   []*Func
	Entry   int

	funcIndex map[string]int
}

// Func returns the function with the given name.
func (p *Program) Func(name string) (*Func, bool) {
	i, ok := p.funcIndex[name]
	if !ok {
		return nil, false
	}
	return p.Funcs[i], true
}
