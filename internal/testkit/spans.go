// Package testkit holds tree checks shared by parser tests and fuzz harnesses.
package testkit

import (
	"fmt"

	"fortio.org/safecast"

	"amulet/internal/ast"
	"amulet/internal/source"
)

// CheckSpanInvariants verifies the span shape of a parsed file:
// 1) file.Span belongs to sf and stays within its content
// 2) every item span is non-empty (error items excepted) and inside file.Span
// 3) every statement, expression and parameter lies inside its parent's span
func CheckSpanInvariants(b *ast.Builder, fileID ast.FileID, sf *source.File) error {
	if b == nil || sf == nil {
		return fmt.Errorf("nil builder or file")
	}
	f := b.Files.Get(fileID)
	if f == nil {
		return fmt.Errorf("file node not found")
	}

	// 1) file span sanity
	if f.Span.File != sf.ID {
		return fmt.Errorf("file span points to different file id: got=%d want=%d", f.Span.File, sf.ID)
	}
	lenContent, err := safecast.Conv[uint32](len(sf.Content))
	if err != nil {
		return fmt.Errorf("len content overflow: %w", err)
	}
	if f.Span.End > lenContent || f.Span.Start > f.Span.End {
		return fmt.Errorf("file span %v outside content of %d bytes", f.Span, lenContent)
	}

	w := walker{b: b}
	for _, it := range f.Items {
		item := b.Items.Get(it)
		if item == nil {
			return fmt.Errorf("nil item for id=%d", it)
		}
		if item.Kind != ast.ItemError && item.Span.Empty() {
			return fmt.Errorf("empty %s item span: %v", item.Kind, item.Span)
		}
		w.contain(f.Span, item.Span, "item "+item.Kind.String())
		if fn, ok := b.Items.Fn(it); ok {
			for _, pid := range fn.Params {
				w.contain(item.Span, b.Items.FnParam(pid).Span, "param")
			}
			w.stmt(item.Span, fn.Body)
		}
		if let, ok := b.Items.Let(it); ok {
			w.expr(item.Span, let.Value)
		}
		if w.err != nil {
			return w.err
		}
	}
	return nil
}

// walker keeps the first violation found.
type walker struct {
	b   *ast.Builder
	err error
}

func (w *walker) contain(parent, child source.Span, what string) {
	if w.err == nil && !parent.Contains(child) {
		w.err = fmt.Errorf("%s: %v does not contain %v", what, parent, child)
	}
}

func (w *walker) expr(parent source.Span, id ast.ExprID) {
	if !id.IsValid() || w.err != nil {
		return
	}
	sp := w.b.Exprs.Get(id).Span
	w.contain(parent, sp, "expr")
	for _, ch := range w.b.Exprs.Children(id) {
		w.expr(sp, ch)
	}
}

func (w *walker) stmt(parent source.Span, id ast.StmtID) {
	if !id.IsValid() || w.err != nil {
		return
	}
	s := w.b.Stmts.Get(id)
	w.contain(parent, s.Span, "stmt "+s.Kind.String())
	switch s.Kind {
	case ast.StmtBlock:
		blk, _ := w.b.Stmts.Block(id)
		for _, ch := range blk.Stmts {
			w.stmt(s.Span, ch)
		}
	case ast.StmtLet:
		let, _ := w.b.Stmts.Let(id)
		w.expr(s.Span, let.Value)
	case ast.StmtExpr:
		es, _ := w.b.Stmts.Expr(id)
		w.expr(s.Span, es.Expr)
	case ast.StmtAssign:
		as, _ := w.b.Stmts.Assign(id)
		w.expr(s.Span, as.Target)
		w.expr(s.Span, as.Value)
	case ast.StmtReturn:
		rs, _ := w.b.Stmts.Return(id)
		w.expr(s.Span, rs.Expr)
	case ast.StmtIf:
		is, _ := w.b.Stmts.If(id)
		w.expr(s.Span, is.Cond)
		w.stmt(s.Span, is.Then)
		w.stmt(s.Span, is.Else)
	case ast.StmtWhile:
		ws, _ := w.b.Stmts.While(id)
		w.expr(s.Span, ws.Cond)
		w.stmt(s.Span, ws.Body)
	}
}
