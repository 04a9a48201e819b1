package ast

import "amulet/internal/source"

// TypeExpr is a syntactic type reference. amulet v1 only has named types;
// the name is resolved by sema.
type TypeExpr struct {
	Name source.StringID
	Span source.Span
}

type TypeExprs struct {
	Arena *Arena[TypeExpr]
}

func NewTypeExprs(capHint uint) *TypeExprs {
	if capHint == 0 {
		capHint = 1 << 6
	}
	return &TypeExprs{Arena: NewArena[TypeExpr](capHint)}
}

func (t *TypeExprs) New(name source.StringID, span source.Span) TypeID {
	return TypeID(t.Arena.Allocate(TypeExpr{Name: name, Span: span}))
}

func (t *TypeExprs) Get(id TypeID) *TypeExpr {
	return t.Arena.Get(uint32(id))
}
