package sema

import (
	"amulet/internal/ast"
	"amulet/internal/diag"
	"amulet/internal/symbols"
	"amulet/internal/types"
)

// checkBlock checks a block in its own scope and reports whether control
// can never fall off its end.
func (tc *typeChecker) checkBlock(id ast.StmtID) bool {
	blk, ok := tc.builder.Stmts.Block(id)
	if !ok {
		return tc.checkStmt(id)
	}
	scope := tc.resolver.Enter(symbols.ScopeBlock, symbols.ScopeOwner{File: tc.fileID, Stmt: id}, tc.builder.Stmts.Get(id).Span)
	defer tc.resolver.Leave(scope)

	terminates := false
	reported := false
	for _, stmtID := range blk.Stmts {
		if terminates && !reported {
			if st := tc.builder.Stmts.Get(stmtID); st != nil && st.Kind != ast.StmtError {
				tc.warn(diag.SemaUnreachableCode, st.Span, "unreachable statement")
				reported = true
			}
		}
		if tc.checkStmt(stmtID) {
			terminates = true
		}
	}
	return terminates
}

func (tc *typeChecker) checkStmt(id ast.StmtID) bool {
	st := tc.builder.Stmts.Get(id)
	if st == nil {
		return false
	}
	switch st.Kind {
	case ast.StmtBlock:
		return tc.checkBlock(id)
	case ast.StmtLet:
		let, _ := tc.builder.Stmts.Let(id)
		tc.checkLocalLet(id, let)
	case ast.StmtExpr:
		es, _ := tc.builder.Stmts.Expr(id)
		tc.checkExpr(es.Expr)
	case ast.StmtAssign:
		as, _ := tc.builder.Stmts.Assign(id)
		tc.checkAssign(as)
	case ast.StmtReturn:
		rs, _ := tc.builder.Stmts.Return(id)
		tc.checkReturn(st, rs)
		return true
	case ast.StmtIf:
		is, _ := tc.builder.Stmts.If(id)
		tc.checkCondition(is.Cond)
		thenTerm := tc.checkBlock(is.Then)
		if !is.Else.IsValid() {
			return false
		}
		elseTerm := tc.checkBlock(is.Else)
		return thenTerm && elseTerm
	case ast.StmtWhile:
		ws, _ := tc.builder.Stmts.While(id)
		tc.checkCondition(ws.Cond)
		loop := &loopContext{}
		if tc.fn != nil {
			tc.fn.loops = append(tc.fn.loops, loop)
		}
		tc.checkBlock(ws.Body)
		if tc.fn != nil {
			tc.fn.loops = tc.fn.loops[:len(tc.fn.loops)-1]
		}
		// `while true` without break never falls through
		return tc.isLiteralTrue(ws.Cond) && !loop.hasBreak
	case ast.StmtBreak, ast.StmtContinue:
		if tc.fn == nil || len(tc.fn.loops) == 0 {
			word := "break"
			if st.Kind == ast.StmtContinue {
				word = "continue"
			}
			tc.report(diag.SemaLoopControl, st.Span, "'%s' outside of a loop", word)
			return false
		}
		if st.Kind == ast.StmtBreak {
			tc.fn.loops[len(tc.fn.loops)-1].hasBreak = true
		}
		return true
	}
	return false
}

func (tc *typeChecker) checkLocalLet(id ast.StmtID, let *ast.LetItem) {
	// the initializer is checked before the name is in scope, so
	// `let x = x + 1;` reads an outer x
	valueType := tc.checkExpr(let.Value)
	declared := types.NoTypeID
	if let.Type.IsValid() {
		declared = tc.resolveType(let.Type)
	}
	typ := tc.bindingType(let, declared, valueType)

	kind := symbols.SymbolLet
	if let.IsConst {
		kind = symbols.SymbolConst
	}
	var flags symbols.SymbolFlags
	if let.IsMut {
		flags |= symbols.SymbolFlagMutable
	}
	symID, ok := tc.resolver.Declare(let.Name, let.NameSpan, kind, flags, symbols.SymbolDecl{Stmt: id}, typ)
	if !ok {
		return
	}
	tc.result.StmtSymbols[id] = symID
	if tc.fn != nil {
		tc.result.Locals[tc.fn.item] = append(tc.result.Locals[tc.fn.item], symID)
	}
}

func (tc *typeChecker) checkAssign(as *ast.AssignStmt) {
	valueType := tc.checkExpr(as.Value)
	target := tc.builder.Exprs.Get(as.Target)
	if target == nil || target.Kind != ast.ExprIdent {
		tc.result.ExprTypes[as.Target] = tc.builtins.Error
		return
	}
	ident, _ := tc.builder.Exprs.Ident(as.Target)
	symID, ok := tc.resolver.Lookup(ident.Name)
	if !ok {
		tc.report(diag.SemaUnresolvedSymbol, target.Span, "cannot find '%s' in this scope", tc.name(ident.Name))
		tc.result.ExprTypes[as.Target] = tc.builtins.Error
		return
	}
	sym := tc.result.Symbol(symID)
	tc.result.ExprSymbols[as.Target] = symID
	tc.result.ExprTypes[as.Target] = sym.Type

	switch {
	case !sym.Kind.IsValue():
		tc.report(diag.SemaAssignImmutable, target.Span, "cannot assign to %s '%s'", sym.Kind, tc.name(sym.Name))
		return
	case sym.Kind == symbols.SymbolParam:
		tc.reportWithNote(diag.SemaAssignImmutable, target.Span, sym.Span, "parameters are immutable",
			"cannot assign to parameter '%s'", tc.name(sym.Name))
		return
	case !sym.Mutable():
		note := "declared here; consider `let mut`"
		if sym.Kind == symbols.SymbolConst {
			note = "declared as a constant here"
		}
		tc.reportWithNote(diag.SemaAssignImmutable, target.Span, sym.Span, note,
			"cannot assign twice to immutable binding '%s'", tc.name(sym.Name))
		return
	}
	if !tc.compatible(sym.Type, valueType) {
		tc.report(diag.SemaTypeMismatch, tc.exprSpan(as.Value), "cannot assign a value of type %s to '%s' of type %s",
			tc.typeLabel(valueType), tc.name(sym.Name), tc.typeLabel(sym.Type))
	}
}

func (tc *typeChecker) checkReturn(st *ast.Stmt, rs *ast.ReturnStmt) {
	if tc.fn == nil {
		return
	}
	want := tc.fn.result
	if !rs.Expr.IsValid() {
		if want != tc.builtins.Unit && !tc.types.IsError(want) {
			tc.report(diag.SemaReturnMismatch, st.Span, "missing return value of type %s", tc.typeLabel(want))
		}
		return
	}
	got := tc.checkExpr(rs.Expr)
	if !tc.compatible(want, got) {
		tc.report(diag.SemaReturnMismatch, tc.exprSpan(rs.Expr), "expected return value of type %s, found %s",
			tc.typeLabel(want), tc.typeLabel(got))
	}
}

func (tc *typeChecker) checkCondition(expr ast.ExprID) {
	t := tc.checkExpr(expr)
	if !tc.compatible(tc.builtins.Bool, t) {
		tc.report(diag.SemaConditionNotBool, tc.exprSpan(expr), "condition must be bool, found %s", tc.typeLabel(t))
	}
}

func (tc *typeChecker) isLiteralTrue(id ast.ExprID) bool {
	for {
		e := tc.builder.Exprs.Get(id)
		if e == nil {
			return false
		}
		switch e.Kind {
		case ast.ExprGroup:
			g, _ := tc.builder.Exprs.Group(id)
			id = g.Inner
		case ast.ExprLit:
			lit, _ := tc.builder.Exprs.Literal(id)
			return lit.Kind == ast.ExprLitTrue
		default:
			return false
		}
	}
}
