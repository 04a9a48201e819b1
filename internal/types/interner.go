package types

import (
	"fmt"
	"slices"
	"strings"

	"fortio.org/safecast"
)

// Builtins stores TypeIDs for primitive types.
type Builtins struct {
	Error  TypeID
	Unit   TypeID
	Bool   TypeID
	String TypeID
	Int    TypeID
	Float  TypeID
}

// FnInfo stores metadata for function types.
type FnInfo struct {
	Params []TypeID
	Result TypeID
}

// Interner provides stable TypeIDs; equal descriptors share an ID so type
// equality is ID equality.
type Interner struct {
	types    []Type
	index    map[Type]TypeID
	fns      []FnInfo
	builtins Builtins
}

// NewInterner constructs an interner seeded with built-in primitives.
func NewInterner() *Interner {
	in := &Interner{
		types: []Type{{Kind: KindInvalid}}, // 0 is NoTypeID
		index: make(map[Type]TypeID, 16),
	}
	in.builtins.Error = in.Intern(Type{Kind: KindError})
	in.builtins.Unit = in.Intern(Type{Kind: KindUnit})
	in.builtins.Bool = in.Intern(Type{Kind: KindBool})
	in.builtins.String = in.Intern(Type{Kind: KindString})
	in.builtins.Int = in.Intern(Type{Kind: KindInt})
	in.builtins.Float = in.Intern(Type{Kind: KindFloat})
	return in
}

// Builtins returns TypeIDs for primitive types.
func (in *Interner) Builtins() Builtins {
	return in.builtins
}

// Intern ensures the provided descriptor has a stable TypeID.
func (in *Interner) Intern(t Type) TypeID {
	if t.Kind == KindInvalid {
		return NoTypeID
	}
	if id, ok := in.index[t]; ok {
		return id
	}
	n, err := safecast.Conv[uint32](len(in.types))
	if err != nil {
		panic(fmt.Errorf("len(types) overflow: %w", err))
	}
	id := TypeID(n)
	in.types = append(in.types, t)
	in.index[t] = id
	return id
}

// Lookup returns the descriptor for a TypeID.
func (in *Interner) Lookup(id TypeID) (Type, bool) {
	if id == NoTypeID || int(id) >= len(in.types) {
		return Type{}, false
	}
	return in.types[id], true
}

// Kind is Lookup(id).Kind with KindInvalid for unknown IDs.
func (in *Interner) Kind(id TypeID) Kind {
	t, _ := in.Lookup(id)
	return t.Kind
}

// ByName maps a primitive type name to its ID.
func (in *Interner) ByName(name string) (TypeID, bool) {
	switch name {
	case "int":
		return in.builtins.Int, true
	case "float":
		return in.builtins.Float, true
	case "bool":
		return in.builtins.Bool, true
	case "string":
		return in.builtins.String, true
	case "unit":
		return in.builtins.Unit, true
	}
	return NoTypeID, false
}

// RegisterFn creates or finds a function type.
func (in *Interner) RegisterFn(params []TypeID, result TypeID) TypeID {
	for i, info := range in.fns {
		if info.Result == result && slices.Equal(info.Params, params) {
			slot, _ := safecast.Conv[uint32](i) // #nosec G115 -- bounded by len(fns)
			return in.index[Type{Kind: KindFn, Payload: slot}]
		}
	}
	slot, err := safecast.Conv[uint32](len(in.fns))
	if err != nil {
		panic(fmt.Errorf("fn info overflow: %w", err))
	}
	in.fns = append(in.fns, FnInfo{Params: slices.Clone(params), Result: result})
	return in.Intern(Type{Kind: KindFn, Payload: slot})
}

// FnInfo retrieves function type metadata by TypeID.
func (in *Interner) FnInfo(id TypeID) (*FnInfo, bool) {
	tt, ok := in.Lookup(id)
	if !ok || tt.Kind != KindFn || int(tt.Payload) >= len(in.fns) {
		return nil, false
	}
	return &in.fns[tt.Payload], true
}

// IsError reports the error type; NoTypeID counts as error as well.
func (in *Interner) IsError(id TypeID) bool {
	return id == NoTypeID || id == in.builtins.Error
}

// Format renders a type for diagnostics.
func (in *Interner) Format(id TypeID) string {
	t, ok := in.Lookup(id)
	if !ok {
		return "<invalid>"
	}
	if t.Kind != KindFn {
		return t.Kind.String()
	}
	info, _ := in.FnInfo(id)
	var sb strings.Builder
	sb.WriteString("fn(")
	for i, p := range info.Params {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(in.Format(p))
	}
	sb.WriteString(") -> ")
	sb.WriteString(in.Format(info.Result))
	return sb.String()
}
