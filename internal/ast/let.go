package ast

import (
	"amulet/internal/source"
)

// LetItem is a `let` or `const` binding, used both at top level and
// as a statement payload.
type LetItem struct {
	Name     source.StringID
	NameSpan source.Span
	Type     TypeID // NoTypeID if type is inferred
	Value    ExprID
	IsMut    bool
	IsConst  bool
	Span     source.Span
}

func (i *Items) Let(id ItemID) (*LetItem, bool) {
	item := i.Arena.Get(uint32(id))
	if item == nil || (item.Kind != ItemLet && item.Kind != ItemConst) {
		return nil, false
	}
	return i.Lets.Get(uint32(item.Payload)), true
}

func (i *Items) NewLet(let LetItem) ItemID {
	kind := ItemLet
	if let.IsConst {
		kind = ItemConst
	}
	payload := i.Lets.Allocate(let)
	return i.New(kind, let.Span, PayloadID(payload))
}
