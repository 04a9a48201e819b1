package sema

import (
	"amulet/internal/ast"
	"amulet/internal/diag"
	"amulet/internal/source"
	"amulet/internal/symbols"
	"amulet/internal/types"
)

// checkExpr computes and records the type of an expression.
func (tc *typeChecker) checkExpr(id ast.ExprID) types.TypeID {
	if !id.IsValid() {
		return tc.builtins.Error
	}
	t := tc.exprType(id)
	if !t.IsValid() {
		t = tc.builtins.Error
	}
	tc.result.ExprTypes[id] = t
	return t
}

func (tc *typeChecker) exprType(id ast.ExprID) types.TypeID {
	expr := tc.builder.Exprs.Get(id)
	if expr == nil {
		return tc.builtins.Error
	}
	switch expr.Kind {
	case ast.ExprLit:
		lit, _ := tc.builder.Exprs.Literal(id)
		switch lit.Kind {
		case ast.ExprLitInt:
			return tc.builtins.Int
		case ast.ExprLitFloat:
			return tc.builtins.Float
		case ast.ExprLitString:
			return tc.builtins.String
		default:
			return tc.builtins.Bool
		}
	case ast.ExprIdent:
		return tc.identValue(id, expr.Span)
	case ast.ExprGroup:
		g, _ := tc.builder.Exprs.Group(id)
		return tc.checkExpr(g.Inner)
	case ast.ExprUnary:
		u, _ := tc.builder.Exprs.Unary(id)
		return tc.unaryType(expr.Span, u)
	case ast.ExprBinary:
		b, _ := tc.builder.Exprs.Binary(id)
		return tc.binaryType(expr.Span, b)
	case ast.ExprCall:
		call, _ := tc.builder.Exprs.Call(id)
		return tc.callType(expr.Span, call)
	}
	return tc.builtins.Error
}

// lookupIdent resolves an identifier use and records its symbol.
func (tc *typeChecker) lookupIdent(id ast.ExprID, span source.Span) (*symbols.Symbol, bool) {
	ident, _ := tc.builder.Exprs.Ident(id)
	symID, ok := tc.resolver.Lookup(ident.Name)
	if !ok {
		tc.report(diag.SemaUnresolvedSymbol, span, "cannot find '%s' in this scope", tc.name(ident.Name))
		return nil, false
	}
	tc.result.ExprSymbols[id] = symID
	sym := tc.result.Symbol(symID)
	sym.Flags |= symbols.SymbolFlagUsed
	tc.noteGlobalRead(symID)
	if tc.useGlobalBeforeInit(id, symID) {
		return sym, false
	}
	return sym, true
}

// identValue types an identifier read as a value.
func (tc *typeChecker) identValue(id ast.ExprID, span source.Span) types.TypeID {
	sym, ok := tc.lookupIdent(id, span)
	if !ok {
		return tc.builtins.Error
	}
	if !sym.Kind.IsValue() {
		tc.report(diag.SemaNotAValue, span, "%s '%s' can only be called", sym.Kind, tc.name(sym.Name))
		return tc.builtins.Error
	}
	return sym.Type
}

func (tc *typeChecker) unaryType(span source.Span, u *ast.ExprUnaryData) types.TypeID {
	operand := tc.checkExpr(u.Operand)
	if tc.types.IsError(operand) {
		return tc.builtins.Error
	}
	switch u.Op {
	case ast.ExprUnaryNeg:
		if tc.types.Kind(operand).IsNumeric() {
			return operand
		}
	case ast.ExprUnaryNot:
		if operand == tc.builtins.Bool {
			return operand
		}
	}
	tc.report(diag.SemaInvalidOperand, span, "operator '%s' cannot be applied to %s", u.Op, tc.typeLabel(operand))
	return tc.builtins.Error
}

func (tc *typeChecker) binaryType(span source.Span, b *ast.ExprBinaryData) types.TypeID {
	left := tc.checkExpr(b.Left)
	right := tc.checkExpr(b.Right)
	if tc.types.IsError(left) || tc.types.IsError(right) {
		if b.Op.IsComparison() || b.Op == ast.ExprBinaryLogicalAnd || b.Op == ast.ExprBinaryLogicalOr {
			return tc.builtins.Bool
		}
		return tc.builtins.Error
	}
	kind := tc.types.Kind(left)
	same := left == right
	switch b.Op {
	case ast.ExprBinaryAdd:
		if same && (kind.IsNumeric() || kind == types.KindString) {
			return left
		}
	case ast.ExprBinarySub, ast.ExprBinaryMul, ast.ExprBinaryDiv:
		if same && kind.IsNumeric() {
			return left
		}
	case ast.ExprBinaryMod:
		if same && kind == types.KindInt {
			return left
		}
	case ast.ExprBinaryLess, ast.ExprBinaryLessEq, ast.ExprBinaryGreater, ast.ExprBinaryGreaterEq:
		if same && kind.IsNumeric() {
			return tc.builtins.Bool
		}
	case ast.ExprBinaryEq, ast.ExprBinaryNotEq:
		if same && kind != types.KindUnit && kind != types.KindFn {
			return tc.builtins.Bool
		}
	case ast.ExprBinaryLogicalAnd, ast.ExprBinaryLogicalOr:
		if same && kind == types.KindBool {
			return tc.builtins.Bool
		}
	}
	tc.report(diag.SemaInvalidOperand, span, "operator '%s' cannot be applied to %s and %s",
		b.Op, tc.typeLabel(left), tc.typeLabel(right))
	if b.Op.IsComparison() || b.Op == ast.ExprBinaryLogicalAnd || b.Op == ast.ExprBinaryLogicalOr {
		return tc.builtins.Bool
	}
	return tc.builtins.Error
}

func (tc *typeChecker) callType(span source.Span, call *ast.ExprCallData) types.TypeID {
	target := tc.builder.Exprs.Get(call.Target)
	if target == nil || target.Kind != ast.ExprIdent {
		calleeType := tc.checkExpr(call.Target)
		tc.checkArgs(call.Args)
		if !tc.types.IsError(calleeType) {
			tc.report(diag.SemaNotCallable, tc.exprSpan(call.Target), "value of type %s is not callable", tc.typeLabel(calleeType))
		}
		return tc.builtins.Error
	}

	sym, ok := tc.lookupIdent(call.Target, target.Span)
	if !ok {
		tc.result.ExprTypes[call.Target] = tc.builtins.Error
		tc.checkArgs(call.Args)
		return tc.builtins.Error
	}
	tc.result.ExprTypes[call.Target] = sym.Type

	switch sym.Kind {
	case symbols.SymbolBuiltin:
		return tc.printCall(span, call)
	case symbols.SymbolFunction:
		tc.noteCall(span, tc.result.ExprSymbols[call.Target])
	default:
		tc.checkArgs(call.Args)
		if !tc.types.IsError(sym.Type) {
			tc.reportWithNote(diag.SemaNotCallable, target.Span, sym.Span, "declared here",
				"'%s' of type %s is not callable", tc.name(sym.Name), tc.typeLabel(sym.Type))
		}
		return tc.builtins.Error
	}

	info, ok := tc.types.FnInfo(sym.Type)
	if !ok {
		tc.checkArgs(call.Args)
		return tc.builtins.Error
	}
	argTypes := tc.checkArgs(call.Args)
	if len(argTypes) != len(info.Params) {
		tc.reportWithNote(diag.SemaArgCount, span, sym.Span, "function declared here",
			"function '%s' takes %d argument(s) but %d were given", tc.name(sym.Name), len(info.Params), len(argTypes))
		return info.Result
	}
	for i, at := range argTypes {
		if !tc.compatible(info.Params[i], at) {
			tc.report(diag.SemaTypeMismatch, tc.exprSpan(call.Args[i]), "argument %d of '%s': expected %s, found %s",
				i+1, tc.name(sym.Name), tc.typeLabel(info.Params[i]), tc.typeLabel(at))
		}
	}
	return info.Result
}

// printCall checks the builtin print: exactly one non-unit value.
func (tc *typeChecker) printCall(span source.Span, call *ast.ExprCallData) types.TypeID {
	argTypes := tc.checkArgs(call.Args)
	if len(argTypes) != 1 {
		tc.report(diag.SemaArgCount, span, "'print' takes 1 argument but %d were given", len(argTypes))
		return tc.builtins.Unit
	}
	if argTypes[0] == tc.builtins.Unit {
		tc.report(diag.SemaTypeMismatch, tc.exprSpan(call.Args[0]), "'print' expects a value, found unit")
	}
	return tc.builtins.Unit
}

func (tc *typeChecker) checkArgs(args []ast.ExprID) []types.TypeID {
	out := make([]types.TypeID, len(args))
	for i, arg := range args {
		out[i] = tc.checkExpr(arg)
	}
	return out
}

// compatible is type equality where the error type matches anything.
func (tc *typeChecker) compatible(want, got types.TypeID) bool {
	return tc.types.IsError(want) || tc.types.IsError(got) || want == got
}

func (tc *typeChecker) exprSpan(id ast.ExprID) source.Span {
	if e := tc.builder.Exprs.Get(id); e != nil {
		return e.Span
	}
	return source.Span{}
}
