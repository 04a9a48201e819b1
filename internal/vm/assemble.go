package vm

import (
	"bufio"
	"fmt"
	"strconv"
	"strings"
)

// Header is the first line of every artifact.
const Header = "; amulet assembly v1"

// AsmError reports malformed assembly text.
type AsmError struct {
	Line int
	Msg  string
}

func (e *AsmError) Error() string {
	if e.Line == 0 {
		return "asm: " + e.Msg
	}
	return fmt.Sprintf("asm:%d: %s", e.Line, e.Msg)
}

type fixup struct {
	fn    *Func
	pc    int
	name  string
	line  int
	kind  operand
	local map[string]int
}

type assembler struct {
	prog    *Program
	cur     *Func
	labels  map[string]int
	fixups  []fixup
	entry   string
	entryAt int
	globals map[string]int
	line    int
}

// Assemble parses amulet assembly text into a Program.
func Assemble(text string) (*Program, error) {
	a := &assembler{
		prog:    &Program{funcIndex: make(map[string]int)},
		globals: make(map[string]int),
	}
	sc := bufio.NewScanner(strings.NewReader(text))
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for sc.Scan() {
		a.line++
		if err := a.parseLine(sc.Text()); err != nil {
			return nil, err
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("asm: read: %w", err)
	}
	return a.finish()
}

func (a *assembler) errorf(format string, args ...any) error {
	return &AsmError{Line: a.line, Msg: fmt.Sprintf(format, args...)}
}

func (a *assembler) parseLine(raw string) error {
	if a.prog.Version == 0 {
		trimmed := strings.TrimSpace(raw)
		if trimmed == "" {
			return nil
		}
		var v int
		if _, err := fmt.Sscanf(trimmed, "; amulet assembly v%d", &v); err != nil {
			return a.errorf("missing %q header", Header)
		}
		if v != 1 {
			return a.errorf("unsupported assembly version %d", v)
		}
		a.prog.Version = v
		return nil
	}
	line := strings.TrimSpace(stripComment(raw))
	if line == "" {
		return nil
	}
	if strings.HasPrefix(line, ".") {
		return a.directive(line)
	}
	if strings.HasSuffix(line, ":") {
		return a.label(strings.TrimSuffix(line, ":"))
	}
	return a.instr(line)
}

// stripComment drops everything after a ';' that is not inside a string.
func stripComment(s string) string {
	inStr, esc := false, false
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case esc:
			esc = false
		case inStr && c == '\\':
			esc = true
		case c == '"':
			inStr = !inStr
		case c == ';' && !inStr:
			return s[:i]
		}
	}
	return s
}

func (a *assembler) directive(line string) error {
	name, rest, _ := strings.Cut(line, " ")
	rest = strings.TrimSpace(rest)
	switch name {
	case ".source":
		s, err := strconv.Unquote(rest)
		if err != nil {
			return a.errorf(".source expects a quoted path")
		}
		a.prog.Source = s
	case ".global":
		if a.cur != nil {
			return a.errorf(".global inside function %s", a.cur.Name)
		}
		if !isSymbolName(rest) {
			return a.errorf("bad global name %q", rest)
		}
		if _, dup := a.globals[rest]; dup {
			return a.errorf("duplicate global %s", rest)
		}
		a.globals[rest] = len(a.prog.Globals)
		a.prog.Globals = append(a.prog.Globals, rest)
	case ".func":
		if a.cur != nil {
			return a.errorf("nested .func inside %s", a.cur.Name)
		}
		fields := strings.Fields(rest)
		if len(fields) != 3 || !isSymbolName(fields[0]) {
			return a.errorf(".func expects NAME PARAMS LOCALS")
		}
		params, err1 := strconv.Atoi(fields[1])
		locals, err2 := strconv.Atoi(fields[2])
		if err1 != nil || err2 != nil || params < 0 || locals < params {
			return a.errorf("bad parameter/local counts in .func %s", fields[0])
		}
		if _, dup := a.prog.funcIndex[fields[0]]; dup {
			return a.errorf("duplicate function %s", fields[0])
		}
		a.cur = &Func{Name: fields[0], Params: params, Locals: locals}
		a.labels = make(map[string]int)
		a.prog.funcIndex[a.cur.Name] = len(a.prog.Funcs)
		a.prog.Funcs = append(a.prog.Funcs, a.cur)
	case ".end":
		if a.cur == nil {
			return a.errorf(".end without .func")
		}
		a.cur = nil
		a.labels = nil
	case ".entry":
		if !isSymbolName(rest) {
			return a.errorf(".entry expects a function name")
		}
		a.entry = rest
		a.entryAt = a.line
	default:
		return a.errorf("unknown directive %s", name)
	}
	return nil
}

func (a *assembler) label(name string) error {
	if a.cur == nil {
		return a.errorf("label %s outside function", name)
	}
	if !isSymbolName(name) {
		return a.errorf("bad label %q", name)
	}
	if _, dup := a.labels[name]; dup {
		return a.errorf("duplicate label %s in %s", name, a.cur.Name)
	}
	a.labels[name] = len(a.cur.Code)
	return nil
}

func (a *assembler) instr(line string) error {
	if a.cur == nil {
		return a.errorf("instruction outside function")
	}
	mnemonic, rest, _ := strings.Cut(line, " ")
	rest = strings.TrimSpace(rest)
	op, ok := LookupOp(mnemonic)
	if !ok {
		return a.errorf("unknown instruction %s", mnemonic)
	}
	in := Instr{Op: op, Line: a.line}
	kind := op.operand()
	if kind == operandNone {
		if rest != "" {
			return a.errorf("%s takes no operand", op)
		}
		a.cur.Code = append(a.cur.Code, in)
		return nil
	}
	if rest == "" {
		return a.errorf("%s needs an operand", op)
	}
	var err error
	switch kind {
	case operandInt:
		in.Int, err = strconv.ParseInt(rest, 10, 64)
	case operandFloat:
		in.F, err = strconv.ParseFloat(rest, 64)
	case operandString:
		in.Str, err = strconv.Unquote(rest)
	case operandBool:
		in.Bool, err = strconv.ParseBool(rest)
	case operandSlot:
		in.Index, err = strconv.Atoi(rest)
		if err == nil && (in.Index < 0 || in.Index >= a.cur.Locals) {
			return a.errorf("slot %d out of range for %s", in.Index, a.cur.Name)
		}
	case operandGlobal, operandLabel:
		a.fixups = append(a.fixups, fixup{fn: a.cur, pc: len(a.cur.Code), name: rest, line: a.line, kind: kind, local: a.labels})
	case operandCall:
		fields := strings.Fields(rest)
		if len(fields) != 2 {
			return a.errorf("call expects NAME ARGC")
		}
		in.Argc, err = strconv.Atoi(fields[1])
		a.fixups = append(a.fixups, fixup{fn: a.cur, pc: len(a.cur.Code), name: fields[0], line: a.line, kind: kind})
	}
	if err != nil {
		return a.errorf("bad operand %q for %s", rest, op)
	}
	a.cur.Code = append(a.cur.Code, in)
	return nil
}

func (a *assembler) finish() (*Program, error) {
	if a.prog.Version == 0 {
		return nil, &AsmError{Msg: fmt.Sprintf("missing %q header", Header)}
	}
	if a.cur != nil {
		return nil, &AsmError{Line: a.line, Msg: fmt.Sprintf("function %s has no .end", a.cur.Name)}
	}
	for _, f := range a.fixups {
		in := &f.fn.Code[f.pc]
		switch f.kind {
		case operandLabel:
			pc, ok := f.local[f.name]
			if !ok {
				return nil, &AsmError{Line: f.line, Msg: fmt.Sprintf("undefined label %s in %s", f.name, f.fn.Name)}
			}
			in.Index = pc
		case operandGlobal:
			idx, ok := a.globals[f.name]
			if !ok {
				return nil, &AsmError{Line: f.line, Msg: fmt.Sprintf("undefined global %s", f.name)}
			}
			in.Index = idx
		case operandCall:
			idx, ok := a.prog.funcIndex[f.name]
			if !ok {
				return nil, &AsmError{Line: f.line, Msg: fmt.Sprintf("call to undefined function %s", f.name)}
			}
			if callee := a.prog.Funcs[idx]; callee.Params != in.Argc {
				return nil, &AsmError{Line: f.line, Msg: fmt.Sprintf("call %s with %d arguments, expects %d", f.name, in.Argc, callee.Params)}
			}
			in.Index = idx
		}
	}
	if a.entry == "" {
		return nil, &AsmError{Msg: "missing .entry"}
	}
	idx, ok := a.prog.funcIndex[a.entry]
	if !ok {
		return nil, &AsmError{Line: a.entryAt, Msg: fmt.Sprintf("entry function %s is not defined", a.entry)}
	}
	if a.prog.Funcs[idx].Params != 0 {
		return nil, &AsmError{Line: a.entryAt, Msg: fmt.Sprintf("entry function %s takes parameters", a.entry)}
	}
	a.prog.Entry = idx
	return a.prog, nil
}

func isSymbolName(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r == ' ' || r == '\t' || r == '"' || r == ';' || r == ':' {
			return false
		}
	}
	return true
}
