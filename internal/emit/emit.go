// Package emit generates amulet assembly from a checked syntax tree.
package emit

import (
	"fmt"
	"strconv"
	"strings"

	"amulet/internal/ast"
	"amulet/internal/sema"
	"amulet/internal/source"
	"amulet/internal/symbols"
	"amulet/internal/types"
	"amulet/internal/vm"
)

// Options configures emission.
type Options struct {
	// SourceName is written into the .source directive.
	SourceName string
}

// Error is an internal invariant violation found while emitting, for
// example an expression sema left without a type. It is never caused by
// user input that passed analysis.
type Error struct {
	Span source.Span
	Msg  string
}

func (e *Error) Error() string {
	return "emit: " + e.Msg
}

// Emitter produces the artifact for one file.
type Emitter struct {
	b       *ast.Builder
	file    *ast.File
	sem     *sema.Result
	types   *types.Interner
	opts    Options
	buf     strings.Builder
	initFn  string
	globals map[symbols.SymbolID]string
}

// EmitFile renders the whole file. The output is deterministic: functions
// and globals appear in source order.
func EmitFile(b *ast.Builder, fileID ast.FileID, sem *sema.Result, opts Options) (string, error) {
	if b == nil || sem == nil {
		return "", &Error{Msg: "missing syntax tree or analysis result"}
	}
	file := b.Files.Get(fileID)
	if file == nil {
		return "", &Error{Msg: fmt.Sprintf("unknown file %d", fileID)}
	}
	e := &Emitter{
		b:       b,
		file:    file,
		sem:     sem,
		types:   sem.TypeInterner,
		opts:    opts,
		globals: make(map[symbols.SymbolID]string),
	}
	return e.run()
}

func (e *Emitter) run() (string, error) {
	if err := e.checkTree(); err != nil {
		return "", err
	}
	e.initFn = e.uniqueInitName()

	e.buf.WriteString(vm.Header)
	e.buf.WriteByte('\n')
	if e.opts.SourceName != "" {
		fmt.Fprintf(&e.buf, ".source %s\n", strconv.Quote(e.opts.SourceName))
	}
	for _, id := range e.sem.Globals {
		name := e.sem.Table.Name(id)
		e.globals[id] = name
		fmt.Fprintf(&e.buf, ".global %s\n", name)
	}
	for _, itemID := range e.file.Items {
		fn, ok := e.b.Items.Fn(itemID)
		if !ok {
			continue
		}
		if err := e.emitFn(itemID, fn); err != nil {
			return "", err
		}
	}
	if err := e.emitInit(); err != nil {
		return "", err
	}
	fmt.Fprintf(&e.buf, ".entry %s\n", e.initFn)
	return e.buf.String(), nil
}

// checkTree rejects trees that still carry parse error nodes.
func (e *Emitter) checkTree() error {
	for _, itemID := range e.file.Items {
		item := e.b.Items.Get(itemID)
		if item == nil || item.Kind == ast.ItemError {
			return e.errorf(itemSpan(item), "syntax error node in analysed tree")
		}
	}
	return nil
}

func itemSpan(item *ast.Item) source.Span {
	if item == nil {
		return source.Span{}
	}
	return item.Span
}

// uniqueInitName picks the name of the synthetic initializer so it cannot
// collide with a user function.
func (e *Emitter) uniqueInitName() string {
	taken := make(map[string]bool)
	for _, itemID := range e.file.Items {
		if fn, ok := e.b.Items.Fn(itemID); ok {
			taken[e.b.Name(fn.Name)] = true
		}
	}
	name := "__init"
	for i := 1; taken[name]; i++ {
		name = "__init" + strconv.Itoa(i)
	}
	return name
}

// emitInit stores every global initializer in source order and then calls
// main when the file declares one.
func (e *Emitter) emitInit() error {
	fe := newFuncEmitter(e, 0)
	for _, itemID := range e.file.Items {
		let, ok := e.b.Items.Let(itemID)
		if !ok {
			continue
		}
		symID, ok := e.sem.ItemSymbols[itemID]
		if !ok {
			return e.errorf(let.NameSpan, "global %q has no symbol", e.b.Name(let.Name))
		}
		if err := fe.expr(let.Value); err != nil {
			return err
		}
		fe.instr(vm.OpStoreG, e.globals[symID])
	}
	if e.sem.Main.IsValid() {
		fe.instr(vm.OpCall, e.sem.Table.Name(e.sem.Main)+" 0")
		fe.instr(vm.OpPop, "")
	}
	fe.instr(vm.OpRetU, "")
	fmt.Fprintf(&e.buf, ".func %s 0 0\n", e.initFn)
	e.buf.WriteString(fe.body.String())
	e.buf.WriteString(".end\n")
	return nil
}

func (e *Emitter) errorf(span source.Span, format string, args ...any) error {
	return &Error{Span: span, Msg: fmt.Sprintf(format, args...)}
}
