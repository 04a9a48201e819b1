package vm

import (
	"fmt"
	"strconv"
	"strings"
)

// ValueKind identifies the runtime type of a Value.
type ValueKind uint8

const (
	VKInvalid ValueKind = iota
	VKUnit
	VKInt
	VKFloat
	VKBool
	VKString
)

func (k ValueKind) String() string {
	switch k {
	case VKUnit:
		return "unit"
	case VKInt:
		return "int"
	case VKFloat:
		return "float"
	case VKBool:
		return "bool"
	case VKString:
		return "string"
	default:
		return "invalid"
	}
}

// Value is a tagged runtime value.
type Value struct {
	Kind ValueKind
	Int  int64
	F    float64
	Bool bool
	Str  string
}

func MakeInt(v int64) Value     { return Value{Kind: VKInt, Int: v} }
func MakeFloat(v float64) Value { return Value{Kind: VKFloat, F: v} }
func MakeBool(v bool) Value     { return Value{Kind: VKBool, Bool: v} }
func MakeString(v string) Value { return Value{Kind: VKString, Str: v} }
func MakeUnit() Value           { return Value{Kind: VKUnit} }

// String renders the value the way print writes it.
func (v Value) String() string {
	switch v.Kind {
	case VKUnit:
		return "()"
	case VKInt:
		return strconv.FormatInt(v.Int, 10)
	case VKFloat:
		return FormatFloat(v.F)
	case VKBool:
		return strconv.FormatBool(v.Bool)
	case VKString:
		return v.Str
	default:
		return fmt.Sprintf("<%s>", v.Kind)
	}
}

// FormatFloat prints the shortest representation that still reads back as a
// float, so 1.0 prints as "1.0" rather than "1".
func FormatFloat(f float64) string {
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if strings.ContainsAny(s, ".eEnN") { // NaN, +Inf
		return s
	}
	return s + ".0"
}

// Equal compares two values of the same kind.
func (v Value) Equal(o Value) bool {
	if v.Kind != o.Kind {
		return false
	}
	switch v.Kind {
	case VKInt:
		return v.Int == o.Int
	case VKFloat:
		return v.F == o.F
	case VKBool:
		return v.Bool == o.Bool
	case VKString:
		return v.Str == o.Str
	case VKUnit:
		return true
	}
	return false
}
