package ast

import (
	"amulet/internal/source"
)

type ItemKind uint8

const (
	ItemFn ItemKind = iota
	ItemLet
	ItemConst
	// ItemError stands in for a top-level construct the parser skipped.
	ItemError
)

func (k ItemKind) String() string {
	switch k {
	case ItemFn:
		return "Fn"
	case ItemLet:
		return "Let"
	case ItemConst:
		return "Const"
	case ItemError:
		return "Error"
	}
	return "Item(?)"
}

type Item struct {
	Kind    ItemKind
	Span    source.Span
	Payload PayloadID
}

type Items struct {
	Arena    *Arena[Item]
	Fns      *Arena[FnItem]
	FnParams *Arena[FnParam]
	Lets     *Arena[LetItem]
}

// NewItems creates Items with per-kind arenas; zero capHint means 1<<6.
func NewItems(capHint uint) *Items {
	if capHint == 0 {
		capHint = 1 << 6
	}
	return &Items{
		Arena:    NewArena[Item](capHint),
		Fns:      NewArena[FnItem](capHint),
		FnParams: NewArena[FnParam](capHint),
		Lets:     NewArena[LetItem](capHint),
	}
}

func (i *Items) New(kind ItemKind, span source.Span, payload PayloadID) ItemID {
	return ItemID(i.Arena.Allocate(Item{
		Kind:    kind,
		Span:    span,
		Payload: payload,
	}))
}

func (i *Items) Get(id ItemID) *Item {
	return i.Arena.Get(uint32(id))
}

func (i *Items) NewError(span source.Span) ItemID {
	return i.New(ItemError, span, NoPayloadID)
}
