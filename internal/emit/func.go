package emit

import (
	"fmt"
	"strconv"
	"strings"

	"amulet/internal/ast"
	"amulet/internal/source"
	"amulet/internal/symbols"
	"amulet/internal/vm"
)

type loopLabels struct {
	top, end string
}

// funcEmitter writes the body of one function.
type funcEmitter struct {
	e      *Emitter
	body   strings.Builder
	slots  map[symbols.SymbolID]int
	labels int
	loops  []loopLabels
}

func newFuncEmitter(e *Emitter, capHint int) *funcEmitter {
	return &funcEmitter{e: e, slots: make(map[symbols.SymbolID]int, capHint)}
}

func (e *Emitter) emitFn(itemID ast.ItemID, fn *ast.FnItem) error {
	symID, ok := e.sem.ItemSymbols[itemID]
	if !ok {
		return e.errorf(fn.NameSpan, "function %q has no symbol", e.b.Name(fn.Name))
	}
	locals := e.sem.Locals[itemID]
	fe := newFuncEmitter(e, len(locals))
	for i, id := range locals {
		fe.slots[id] = i
	}

	unit := true
	if info, ok := e.types.FnInfo(e.sem.Symbol(symID).Type); ok {
		unit = info.Result == e.types.Builtins().Unit
	}
	if err := fe.stmt(fn.Body); err != nil {
		return err
	}
	if unit {
		fe.instr(vm.OpRetU, "")
	}

	fmt.Fprintf(&e.buf, ".func %s %d %d\n", e.b.Name(fn.Name), len(fn.Params), len(locals))
	e.buf.WriteString(fe.body.String())
	e.buf.WriteString(".end\n")
	return nil
}

func (fe *funcEmitter) instr(op vm.Op, arg string) {
	fe.body.WriteString("  ")
	fe.body.WriteString(op.String())
	if arg != "" {
		fe.body.WriteByte(' ')
		fe.body.WriteString(arg)
	}
	fe.body.WriteByte('\n')
}

func (fe *funcEmitter) newLabel() string {
	l := fmt.Sprintf("L%d", fe.labels)
	fe.labels++
	return l
}

func (fe *funcEmitter) mark(label string) {
	fe.body.WriteString(label)
	fe.body.WriteString(":\n")
}

// access loads or stores a variable, local slots first.
func (fe *funcEmitter) access(id symbols.SymbolID, span source.Span, local, global vm.Op) error {
	if slot, ok := fe.slots[id]; ok {
		fe.instr(local, strconv.Itoa(slot))
		return nil
	}
	if name, ok := fe.e.globals[id]; ok {
		fe.instr(global, name)
		return nil
	}
	return fe.e.errorf(span, "symbol %q is neither a local nor a global", fe.e.sem.Table.Name(id))
}
