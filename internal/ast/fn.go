package ast

import "amulet/internal/source"

type FnItem struct {
	Name       source.StringID
	NameSpan   source.Span
	Params     []FnParamID
	ReturnType TypeID // NoTypeID means unit
	Body       StmtID // StmtBlock
	IsPub      bool
	Span       source.Span
}

type FnParam struct {
	Name source.StringID
	Type TypeID
	Span source.Span
}

func (i *Items) Fn(id ItemID) (*FnItem, bool) {
	item := i.Arena.Get(uint32(id))
	if item == nil || item.Kind != ItemFn {
		return nil, false
	}
	return i.Fns.Get(uint32(item.Payload)), true
}

func (i *Items) NewFn(
	name source.StringID,
	nameSpan source.Span,
	params []FnParamID,
	returnType TypeID,
	body StmtID,
	isPub bool,
	span source.Span,
) ItemID {
	payload := i.Fns.Allocate(FnItem{
		Name:       name,
		NameSpan:   nameSpan,
		Params:     append([]FnParamID(nil), params...),
		ReturnType: returnType,
		Body:       body,
		IsPub:      isPub,
		Span:       span,
	})
	return i.New(ItemFn, span, PayloadID(payload))
}

func (i *Items) NewFnParam(name source.StringID, typ TypeID, span source.Span) FnParamID {
	return FnParamID(i.FnParams.Allocate(FnParam{Name: name, Type: typ, Span: span}))
}

func (i *Items) FnParam(id FnParamID) *FnParam {
	return i.FnParams.Get(uint32(id))
}
