// Package vm assembles and interprets amulet assembly, the artifact the
// compiler emits.
package vm

import (
	"context"
	"fmt"
	"io"
	"math"
)

// Options configures VM execution.
type Options struct {
	// MaxSteps bounds executed instructions; 0 means unlimited.
	MaxSteps int64
	// MaxDepth bounds the call stack; 0 means 1024.
	MaxDepth int
}

// VM is a stack machine over an assembled Program.
type VM struct {
	P       *Program
	RT      Runtime
	Globals []LocalSlot
	Stack   []*Frame
	ops     []Value
	opts    Options
	steps   int64
	halted  bool
}

// New creates a VM for prog.
func New(prog *Program, rt Runtime, opts Options) *VM {
	if rt == nil {
		rt = NewRuntime(nil)
	}
	if opts.MaxDepth == 0 {
		opts.MaxDepth = 1024
	}
	return &VM{
		P:       prog,
		RT:      rt,
		Globals: make([]LocalSlot, len(prog.Globals)),
		ops:     make([]Value, 0, 64),
		opts:    opts,
	}
}

// Run executes the entry function to completion.
func (vm *VM) Run(ctx context.Context) error {
	if vm.halted {
		return fmt.Errorf("vm: already ran")
	}
	vm.halted = true
	vm.Stack = append(vm.Stack, NewFrame(vm.P.Funcs[vm.P.Entry], nil))
	for len(vm.Stack) > 0 {
		if vm.steps&0xfff == 0 && ctx.Err() != nil {
			return vm.panicf(PanicCancelled, "%v", ctx.Err())
		}
		vm.steps++
		if vm.opts.MaxSteps > 0 && vm.steps > vm.opts.MaxSteps {
			return vm.panicf(PanicStepLimit, "instruction budget of %d exhausted", vm.opts.MaxSteps)
		}
		if err := vm.step(); err != nil {
			return err
		}
	}
	return nil
}

// Steps reports how many instructions ran.
func (vm *VM) Steps() int64 { return vm.steps }

func (vm *VM) frame() *Frame { return vm.Stack[len(vm.Stack)-1] }

func (vm *VM) push(v Value) { vm.ops = append(vm.ops, v) }

func (vm *VM) pop() (Value, error) {
	fr := vm.frame()
	if len(vm.ops) <= fr.base {
		return Value{}, vm.panicf(PanicStackUnderflow, "operand stack underflow")
	}
	v := vm.ops[len(vm.ops)-1]
	vm.ops = vm.ops[:len(vm.ops)-1]
	return v, nil
}

func (vm *VM) pop2() (Value, Value, error) {
	r, err := vm.pop()
	if err != nil {
		return Value{}, Value{}, err
	}
	l, err := vm.pop()
	return l, r, err
}

func (vm *VM) step() error {
	fr := vm.frame()
	if fr.PC >= len(fr.Func.Code) {
		return vm.panicf(PanicFellOff, "function %s ended without ret", fr.Func.Name)
	}
	in := &fr.Func.Code[fr.PC]
	fr.PC++

	switch in.Op {
	case OpConstI:
		vm.push(MakeInt(in.Int))
	case OpConstF:
		vm.push(MakeFloat(in.F))
	case OpConstS:
		vm.push(MakeString(in.Str))
	case OpConstB:
		vm.push(MakeBool(in.Bool))
	case OpUnit:
		vm.push(MakeUnit())
	case OpLoadL:
		slot := fr.Locals[in.Index]
		if !slot.IsInit {
			return vm.panicf(PanicUseBeforeInit, "local slot %d read before initialization", in.Index)
		}
		vm.push(slot.V)
	case OpStoreL:
		v, err := vm.pop()
		if err != nil {
			return err
		}
		fr.Locals[in.Index] = LocalSlot{V: v, IsInit: true}
	case OpLoadG:
		slot := vm.Globals[in.Index]
		if !slot.IsInit {
			return vm.panicf(PanicUseBeforeInit, "global %s read before initialization", vm.P.Globals[in.Index])
		}
		vm.push(slot.V)
	case OpStoreG:
		v, err := vm.pop()
		if err != nil {
			return err
		}
		vm.Globals[in.Index] = LocalSlot{V: v, IsInit: true}
	case OpAddI, OpSubI, OpMulI, OpDivI, OpModI:
		return vm.intArith(in.Op)
	case OpAddF, OpSubF, OpMulF, OpDivF:
		return vm.floatArith(in.Op)
	case OpNegI:
		v, err := vm.popKind(VKInt)
		if err != nil {
			return err
		}
		vm.push(MakeInt(-v.Int))
	case OpNegF:
		v, err := vm.popKind(VKFloat)
		if err != nil {
			return err
		}
		vm.push(MakeFloat(-v.F))
	case OpConcat:
		l, r, err := vm.pop2()
		if err != nil {
			return err
		}
		if l.Kind != VKString || r.Kind != VKString {
			return vm.panicf(PanicTypeMismatch, "concat of %s and %s", l.Kind, r.Kind)
		}
		vm.push(MakeString(l.Str + r.Str))
	case OpEq, OpNe:
		l, r, err := vm.pop2()
		if err != nil {
			return err
		}
		if l.Kind != r.Kind {
			return vm.panicf(PanicTypeMismatch, "%s of %s and %s", in.Op, l.Kind, r.Kind)
		}
		vm.push(MakeBool(l.Equal(r) == (in.Op == OpEq)))
	case OpLt, OpLe, OpGt, OpGe:
		return vm.compare(in.Op)
	case OpNot:
		v, err := vm.popKind(VKBool)
		if err != nil {
			return err
		}
		vm.push(MakeBool(!v.Bool))
	case OpJmp:
		fr.PC = in.Index
	case OpJz:
		v, err := vm.popKind(VKBool)
		if err != nil {
			return err
		}
		if !v.Bool {
			fr.PC = in.Index
		}
	case OpCall:
		return vm.call(in)
	case OpPrint:
		v, err := vm.pop()
		if err != nil {
			return err
		}
		if _, err := io.WriteString(vm.RT.Stdout(), v.String()+"\n"); err != nil {
			return fmt.Errorf("vm: print: %w", err)
		}
		vm.push(MakeUnit())
	case OpPop:
		if _, err := vm.pop(); err != nil {
			return err
		}
	case OpRet:
		v, err := vm.pop()
		if err != nil {
			return err
		}
		vm.ret(v)
	case OpRetU:
		vm.ret(MakeUnit())
	default:
		return vm.panicf(PanicTypeMismatch, "invalid opcode %d", in.Op)
	}
	return nil
}

func (vm *VM) popKind(kind ValueKind) (Value, error) {
	v, err := vm.pop()
	if err != nil {
		return v, err
	}
	if v.Kind != kind {
		return v, vm.panicf(PanicTypeMismatch, "expected %s operand, found %s", kind, v.Kind)
	}
	return v, nil
}

func (vm *VM) intArith(op Op) error {
	r, err := vm.popKind(VKInt)
	if err != nil {
		return err
	}
	l, err := vm.popKind(VKInt)
	if err != nil {
		return err
	}
	var out int64
	switch op {
	case OpAddI:
		out = l.Int + r.Int
	case OpSubI:
		out = l.Int - r.Int
	case OpMulI:
		out = l.Int * r.Int
	case OpDivI, OpModI:
		if r.Int == 0 {
			return vm.panicf(PanicDivideByZero, "integer division by zero")
		}
		if op == OpDivI {
			out = l.Int / r.Int
		} else {
			out = l.Int % r.Int
		}
	}
	vm.push(MakeInt(out))
	return nil
}

func (vm *VM) floatArith(op Op) error {
	r, err := vm.popKind(VKFloat)
	if err != nil {
		return err
	}
	l, err := vm.popKind(VKFloat)
	if err != nil {
		return err
	}
	var out float64
	switch op {
	case OpAddF:
		out = l.F + r.F
	case OpSubF:
		out = l.F - r.F
	case OpMulF:
		out = l.F * r.F
	case OpDivF:
		out = l.F / r.F
	}
	vm.push(MakeFloat(out))
	return nil
}

func (vm *VM) compare(op Op) error {
	l, r, err := vm.pop2()
	if err != nil {
		return err
	}
	var cmp int
	switch {
	case l.Kind == VKInt && r.Kind == VKInt:
		cmp = compareOrdered(l.Int, r.Int)
	case l.Kind == VKFloat && r.Kind == VKFloat:
		if math.IsNaN(l.F) || math.IsNaN(r.F) {
			vm.push(MakeBool(false))
			return nil
		}
		cmp = compareOrdered(l.F, r.F)
	default:
		return vm.panicf(PanicTypeMismatch, "%s of %s and %s", op, l.Kind, r.Kind)
	}
	var res bool
	switch op {
	case OpLt:
		res = cmp < 0
	case OpLe:
		res = cmp <= 0
	case OpGt:
		res = cmp > 0
	case OpGe:
		res = cmp >= 0
	}
	vm.push(MakeBool(res))
	return nil
}

func compareOrdered[T int64 | float64](a, b T) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func (vm *VM) call(in *Instr) error {
	if len(vm.Stack) >= vm.opts.MaxDepth {
		return vm.panicf(PanicStackOverflow, "call depth exceeds %d", vm.opts.MaxDepth)
	}
	callee := vm.P.Funcs[in.Index]
	fr := vm.frame()
	if len(vm.ops)-fr.base < in.Argc {
		return vm.panicf(PanicStackUnderflow, "call %s: missing arguments", callee.Name)
	}
	args := vm.ops[len(vm.ops)-in.Argc:]
	next := NewFrame(callee, args)
	vm.ops = vm.ops[:len(vm.ops)-in.Argc]
	next.base = len(vm.ops)
	vm.Stack = append(vm.Stack, next)
	return nil
}

func (vm *VM) ret(v Value) {
	fr := vm.frame()
	vm.ops = vm.ops[:fr.base]
	vm.Stack = vm.Stack[:len(vm.Stack)-1]
	if len(vm.Stack) > 0 {
		vm.push(v)
	}
}

func (vm *VM) panicf(code PanicCode, format string, args ...any) *VMError {
	err := &VMError{Code: code, Message: fmt.Sprintf(format, args...)}
	for i := len(vm.Stack) - 1; i >= 0; i-- {
		fr := vm.Stack[i]
		pc := fr.PC - 1
		line := 0
		if pc >= 0 && pc < len(fr.Func.Code) {
			line = fr.Func.Code[pc].Line
		}
		err.Backtrace = append(err.Backtrace, BacktraceFrame{FuncName: fr.Func.Name, PC: pc, Line: line})
	}
	return err
}

// RunText assembles text and runs it, printing to out.
func RunText(ctx context.Context, text string, out io.Writer, opts Options) error {
	prog, err := Assemble(text)
	if err != nil {
		return err
	}
	return New(prog, NewRuntime(out), opts).Run(ctx)
}
