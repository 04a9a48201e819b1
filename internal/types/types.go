package types

import "fmt"

// TypeID uniquely identifies a type inside the interner.
type TypeID uint32

// NoTypeID marks the absence of a type.
const NoTypeID TypeID = 0

func (id TypeID) IsValid() bool { return id != NoTypeID }

// Kind enumerates all supported kinds of types.
type Kind uint8

const (
	KindInvalid Kind = iota
	// KindError is given to expressions that already produced a diagnostic;
	// it is compatible with everything so errors do not cascade.
	KindError
	KindUnit
	KindBool
	KindString
	KindInt
	KindFloat
	KindFn
)

func (k Kind) String() string {
	switch k {
	case KindInvalid:
		return "invalid"
	case KindError:
		return "<error>"
	case KindUnit:
		return "unit"
	case KindBool:
		return "bool"
	case KindString:
		return "string"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindFn:
		return "fn"
	default:
		return fmt.Sprintf("Kind(%d)", k)
	}
}

// Type is a compact descriptor. Payload indexes FnInfo for KindFn.
type Type struct {
	Kind    Kind
	Payload uint32
}

// IsNumeric reports int and float.
func (k Kind) IsNumeric() bool {
	return k == KindInt || k == KindFloat
}
