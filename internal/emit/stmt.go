package emit

import (
	"amulet/internal/ast"
	"amulet/internal/vm"
)

func (fe *funcEmitter) stmt(id ast.StmtID) error {
	b := fe.e.b
	st := b.Stmts.Get(id)
	if st == nil {
		return fe.e.errorf(fe.e.file.Span, "missing statement %d", id)
	}
	switch st.Kind {
	case ast.StmtBlock:
		blk, _ := b.Stmts.Block(id)
		for _, child := range blk.Stmts {
			if err := fe.stmt(child); err != nil {
				return err
			}
		}
	case ast.StmtLet:
		let, _ := b.Stmts.Let(id)
		symID, ok := fe.e.sem.StmtSymbols[id]
		if !ok {
			return fe.e.errorf(let.NameSpan, "binding %q has no symbol", b.Name(let.Name))
		}
		if err := fe.expr(let.Value); err != nil {
			return err
		}
		return fe.access(symID, let.NameSpan, vm.OpStoreL, vm.OpStoreG)
	case ast.StmtExpr:
		es, _ := b.Stmts.Expr(id)
		if err := fe.expr(es.Expr); err != nil {
			return err
		}
		fe.instr(vm.OpPop, "")
	case ast.StmtAssign:
		as, _ := b.Stmts.Assign(id)
		symID := fe.e.sem.SymbolOf(as.Target)
		if !symID.IsValid() {
			return fe.e.errorf(st.Span, "assignment target has no symbol")
		}
		if err := fe.expr(as.Value); err != nil {
			return err
		}
		return fe.access(symID, st.Span, vm.OpStoreL, vm.OpStoreG)
	case ast.StmtReturn:
		rs, _ := b.Stmts.Return(id)
		if !rs.Expr.IsValid() {
			fe.instr(vm.OpRetU, "")
			return nil
		}
		if err := fe.expr(rs.Expr); err != nil {
			return err
		}
		fe.instr(vm.OpRet, "")
	case ast.StmtIf:
		is, _ := b.Stmts.If(id)
		return fe.ifStmt(is)
	case ast.StmtWhile:
		ws, _ := b.Stmts.While(id)
		loop := loopLabels{top: fe.newLabel(), end: fe.newLabel()}
		fe.mark(loop.top)
		if err := fe.expr(ws.Cond); err != nil {
			return err
		}
		fe.instr(vm.OpJz, loop.end)
		fe.loops = append(fe.loops, loop)
		if err := fe.stmt(ws.Body); err != nil {
			return err
		}
		fe.loops = fe.loops[:len(fe.loops)-1]
		fe.instr(vm.OpJmp, loop.top)
		fe.mark(loop.end)
	case ast.StmtBreak, ast.StmtContinue:
		if len(fe.loops) == 0 {
			return fe.e.errorf(st.Span, "%s outside of a loop", st.Kind)
		}
		loop := fe.loops[len(fe.loops)-1]
		if st.Kind == ast.StmtBreak {
			fe.instr(vm.OpJmp, loop.end)
		} else {
			fe.instr(vm.OpJmp, loop.top)
		}
	case ast.StmtError:
		return fe.e.errorf(st.Span, "syntax error node in analysed tree")
	}
	return nil
}

func (fe *funcEmitter) ifStmt(is *ast.IfStmt) error {
	if err := fe.expr(is.Cond); err != nil {
		return err
	}
	elseLabel := fe.newLabel()
	fe.instr(vm.OpJz, elseLabel)
	if err := fe.stmt(is.Then); err != nil {
		return err
	}
	if !is.Else.IsValid() {
		fe.mark(elseLabel)
		return nil
	}
	end := fe.newLabel()
	fe.instr(vm.OpJmp, end)
	fe.mark(elseLabel)
	if err := fe.stmt(is.Else); err != nil {
		return err
	}
	fe.mark(end)
	return nil
}
