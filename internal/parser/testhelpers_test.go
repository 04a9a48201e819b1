package parser

import (
	"fmt"
	"strings"
	"testing"

	"amulet/internal/ast"
	"amulet/internal/diag"
	"amulet/internal/lexer"
	"amulet/internal/source"
)

type parsed struct {
	builder *ast.Builder
	file    ast.FileID
	bag     *diag.Bag
}

func parseSource(t *testing.T, src string) parsed {
	t.Helper()
	fs := source.NewFileSet()
	file := fs.Get(fs.AddVirtual("test.am", []byte(src)))
	bag := diag.NewBag(0)
	rep := diag.BagReporter{Bag: bag}
	lx := lexer.New(file, lexer.Options{Reporter: rep})
	b := ast.NewBuilder(ast.Hints{}, nil)
	res := ParseFile(file, lx, b, Options{Reporter: rep})
	return parsed{builder: b, file: res.File, bag: bag}
}

func diagnosticsSummary(bag *diag.Bag) string {
	if bag == nil {
		return "<nil bag>"
	}
	diags := bag.Items()
	if len(diags) == 0 {
		return "<none>"
	}
	lines := make([]string, len(diags))
	for i, d := range diags {
		lines[i] = fmt.Sprintf("[%s] %s", d.Code.ID(), d.Message)
	}
	return strings.Join(lines, "; ")
}

func (p parsed) items() []ast.ItemID {
	return p.builder.Files.Get(p.file).Items
}

// sexpr renders an expression as an S-expression for shape assertions.
func (p parsed) sexpr(id ast.ExprID) string {
	b := p.builder
	e := b.Exprs.Get(id)
	switch e.Kind {
	case ast.ExprIdent:
		d, _ := b.Exprs.Ident(id)
		return b.Name(d.Name)
	case ast.ExprLit:
		d, _ := b.Exprs.Literal(id)
		if d.Kind == ast.ExprLitTrue || d.Kind == ast.ExprLitFalse {
			return d.Kind.String()
		}
		return b.Name(d.Value)
	case ast.ExprBinary:
		d, _ := b.Exprs.Binary(id)
		return "(" + d.Op.String() + " " + p.sexpr(d.Left) + " " + p.sexpr(d.Right) + ")"
	case ast.ExprUnary:
		d, _ := b.Exprs.Unary(id)
		return "(" + d.Op.String() + " " + p.sexpr(d.Operand) + ")"
	case ast.ExprGroup:
		d, _ := b.Exprs.Group(id)
		return p.sexpr(d.Inner)
	case ast.ExprCall:
		d, _ := b.Exprs.Call(id)
		parts := []string{"call", p.sexpr(d.Target)}
		for _, a := range d.Args {
			parts = append(parts, p.sexpr(a))
		}
		return "(" + strings.Join(parts, " ") + ")"
	}
	return "<error>"
}

// letValue returns the initializer of the top-level binding at index i.
func (p parsed) letValue(t *testing.T, i int) ast.ExprID {
	t.Helper()
	let, ok := p.builder.Items.Let(p.items()[i])
	if !ok {
		t.Fatalf("item %d is not a binding", i)
	}
	return let.Value
}
