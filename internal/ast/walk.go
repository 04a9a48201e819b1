package ast

// Children returns the direct child expressions of e in source order.
func (e *Exprs) Children(id ExprID) []ExprID {
	expr := e.Get(id)
	if expr == nil {
		return nil
	}
	switch expr.Kind {
	case ExprBinary:
		data, _ := e.Binary(id)
		return []ExprID{data.Left, data.Right}
	case ExprUnary:
		data, _ := e.Unary(id)
		return []ExprID{data.Operand}
	case ExprGroup:
		data, _ := e.Group(id)
		return []ExprID{data.Inner}
	case ExprCall:
		data, _ := e.Call(id)
		out := make([]ExprID, 0, len(data.Args)+1)
		out = append(out, data.Target)
		return append(out, data.Args...)
	}
	return nil
}

// CountErrors counts error nodes reachable from file; used by tests and the
// parse dump to confirm recovery left a trace.
func (b *Builder) CountErrors(file FileID) int {
	f := b.Files.Get(file)
	if f == nil {
		return 0
	}
	n := 0
	var expr func(ExprID)
	expr = func(id ExprID) {
		if !id.IsValid() {
			return
		}
		if b.Exprs.Get(id).Kind == ExprError {
			n++
		}
		for _, ch := range b.Exprs.Children(id) {
			expr(ch)
		}
	}
	var stmt func(StmtID)
	stmt = func(id StmtID) {
		s := b.Stmts.Get(id)
		if s == nil {
			return
		}
		switch s.Kind {
		case StmtError:
			n++
		case StmtBlock:
			blk, _ := b.Stmts.Block(id)
			for _, ch := range blk.Stmts {
				stmt(ch)
			}
		case StmtLet:
			let, _ := b.Stmts.Let(id)
			expr(let.Value)
		case StmtExpr:
			es, _ := b.Stmts.Expr(id)
			expr(es.Expr)
		case StmtAssign:
			as, _ := b.Stmts.Assign(id)
			expr(as.Target)
			expr(as.Value)
		case StmtReturn:
			rs, _ := b.Stmts.Return(id)
			expr(rs.Expr)
		case StmtIf:
			is, _ := b.Stmts.If(id)
			expr(is.Cond)
			stmt(is.Then)
			stmt(is.Else)
		case StmtWhile:
			ws, _ := b.Stmts.While(id)
			expr(ws.Cond)
			stmt(ws.Body)
		}
	}
	for _, itemID := range f.Items {
		item := b.Items.Get(itemID)
		switch item.Kind {
		case ItemError:
			n++
		case ItemFn:
			fn, _ := b.Items.Fn(itemID)
			stmt(fn.Body)
		case ItemLet, ItemConst:
			let, _ := b.Items.Let(itemID)
			expr(let.Value)
		}
	}
	return n
}
