package emit

import (
	"strconv"

	"amulet/internal/ast"
	"amulet/internal/lexer"
	"amulet/internal/symbols"
	"amulet/internal/types"
	"amulet/internal/vm"
)

// expr emits code that leaves exactly one value on the operand stack.
func (fe *funcEmitter) expr(id ast.ExprID) error {
	b := fe.e.b
	ex := b.Exprs.Get(id)
	if ex == nil {
		return fe.e.errorf(fe.e.file.Span, "missing expression %d", id)
	}
	typ, ok := fe.e.sem.ExprTypes[id]
	if !ok || fe.e.types.IsError(typ) {
		return fe.e.errorf(ex.Span, "expression has no valid type")
	}

	switch ex.Kind {
	case ast.ExprLit:
		lit, _ := b.Exprs.Literal(id)
		return fe.literal(ex, lit)
	case ast.ExprIdent:
		symID := fe.e.sem.SymbolOf(id)
		if !symID.IsValid() {
			return fe.e.errorf(ex.Span, "identifier has no symbol")
		}
		return fe.access(symID, ex.Span, vm.OpLoadL, vm.OpLoadG)
	case ast.ExprGroup:
		g, _ := b.Exprs.Group(id)
		return fe.expr(g.Inner)
	case ast.ExprUnary:
		u, _ := b.Exprs.Unary(id)
		if err := fe.expr(u.Operand); err != nil {
			return err
		}
		switch {
		case u.Op == ast.ExprUnaryNot:
			fe.instr(vm.OpNot, "")
		case fe.e.types.Kind(typ) == types.KindFloat:
			fe.instr(vm.OpNegF, "")
		default:
			fe.instr(vm.OpNegI, "")
		}
		return nil
	case ast.ExprBinary:
		bin, _ := b.Exprs.Binary(id)
		return fe.binary(bin)
	case ast.ExprCall:
		call, _ := b.Exprs.Call(id)
		return fe.call(ex, call)
	}
	return fe.e.errorf(ex.Span, "cannot emit %s expression", ex.Kind)
}

func (fe *funcEmitter) literal(ex *ast.Expr, lit *ast.ExprLiteralData) error {
	text := fe.e.b.Name(lit.Value)
	switch lit.Kind {
	case ast.ExprLitInt:
		v, err := lexer.ParseIntLit(text)
		if err != nil {
			return fe.e.errorf(ex.Span, "bad integer literal %q: %v", text, err)
		}
		fe.instr(vm.OpConstI, strconv.FormatInt(v, 10))
	case ast.ExprLitFloat:
		v, err := lexer.ParseFloatLit(text)
		if err != nil {
			return fe.e.errorf(ex.Span, "bad float literal %q: %v", text, err)
		}
		fe.instr(vm.OpConstF, strconv.FormatFloat(v, 'g', -1, 64))
	case ast.ExprLitString:
		v, err := lexer.UnquoteString(text)
		if err != nil {
			return fe.e.errorf(ex.Span, "bad string literal %s: %v", text, err)
		}
		fe.instr(vm.OpConstS, strconv.Quote(v))
	case ast.ExprLitTrue:
		fe.instr(vm.OpConstB, "true")
	case ast.ExprLitFalse:
		fe.instr(vm.OpConstB, "false")
	}
	return nil
}

var (
	intOps = map[ast.ExprBinaryOp]vm.Op{
		ast.ExprBinaryAdd: vm.OpAddI,
		ast.ExprBinarySub: vm.OpSubI,
		ast.ExprBinaryMul: vm.OpMulI,
		ast.ExprBinaryDiv: vm.OpDivI,
		ast.ExprBinaryMod: vm.OpModI,
	}
	floatOps = map[ast.ExprBinaryOp]vm.Op{
		ast.ExprBinaryAdd: vm.OpAddF,
		ast.ExprBinarySub: vm.OpSubF,
		ast.ExprBinaryMul: vm.OpMulF,
		ast.ExprBinaryDiv: vm.OpDivF,
	}
	cmpOps = map[ast.ExprBinaryOp]vm.Op{
		ast.ExprBinaryEq:        vm.OpEq,
		ast.ExprBinaryNotEq:     vm.OpNe,
		ast.ExprBinaryLess:      vm.OpLt,
		ast.ExprBinaryLessEq:    vm.OpLe,
		ast.ExprBinaryGreater:   vm.OpGt,
		ast.ExprBinaryGreaterEq: vm.OpGe,
	}
)

func (fe *funcEmitter) binary(bin *ast.ExprBinaryData) error {
	switch bin.Op {
	case ast.ExprBinaryLogicalAnd, ast.ExprBinaryLogicalOr:
		return fe.logical(bin)
	}
	if err := fe.expr(bin.Left); err != nil {
		return err
	}
	if err := fe.expr(bin.Right); err != nil {
		return err
	}
	if op, ok := cmpOps[bin.Op]; ok {
		fe.instr(op, "")
		return nil
	}
	// arithmetic follows the operand type
	switch fe.e.types.Kind(fe.e.sem.TypeOf(bin.Left)) {
	case types.KindInt:
		if op, ok := intOps[bin.Op]; ok {
			fe.instr(op, "")
			return nil
		}
	case types.KindFloat:
		if op, ok := floatOps[bin.Op]; ok {
			fe.instr(op, "")
			return nil
		}
	case types.KindString:
		if bin.Op == ast.ExprBinaryAdd {
			fe.instr(vm.OpConcat, "")
			return nil
		}
	}
	return fe.e.errorf(fe.e.b.Exprs.Get(bin.Left).Span, "no instruction for operator %s on %s",
		bin.Op, fe.e.types.Format(fe.e.sem.TypeOf(bin.Left)))
}

// logical emits short-circuit && and ||.
func (fe *funcEmitter) logical(bin *ast.ExprBinaryData) error {
	if err := fe.expr(bin.Left); err != nil {
		return err
	}
	short, end := fe.newLabel(), fe.newLabel()
	fe.instr(vm.OpJz, short)
	if bin.Op == ast.ExprBinaryLogicalAnd {
		if err := fe.expr(bin.Right); err != nil {
			return err
		}
		fe.instr(vm.OpJmp, end)
		fe.mark(short)
		fe.instr(vm.OpConstB, "false")
	} else {
		fe.instr(vm.OpConstB, "true")
		fe.instr(vm.OpJmp, end)
		fe.mark(short)
		if err := fe.expr(bin.Right); err != nil {
			return err
		}
	}
	fe.mark(end)
	return nil
}

func (fe *funcEmitter) call(ex *ast.Expr, call *ast.ExprCallData) error {
	symID := fe.e.sem.SymbolOf(call.Target)
	sym := fe.e.sem.Symbol(symID)
	if sym == nil {
		return fe.e.errorf(ex.Span, "callee has no symbol")
	}
	for _, arg := range call.Args {
		if err := fe.expr(arg); err != nil {
			return err
		}
	}
	switch sym.Kind {
	case symbols.SymbolBuiltin:
		fe.instr(vm.OpPrint, "")
	case symbols.SymbolFunction:
		fe.instr(vm.OpCall, fe.e.sem.Table.Name(symID)+" "+strconv.Itoa(len(call.Args)))
	default:
		return fe.e.errorf(ex.Span, "callee %q is not a function", fe.e.sem.Table.Name(symID))
	}
	return nil
}
