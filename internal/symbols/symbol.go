package symbols

import (
	"amulet/internal/ast"
	"amulet/internal/source"
	"amulet/internal/types"
)

// SymbolKind classifies the semantic meaning of a symbol.
type SymbolKind uint8

const (
	SymbolInvalid SymbolKind = iota
	SymbolFunction
	SymbolLet
	SymbolConst
	SymbolParam
	SymbolBuiltin
)

func (k SymbolKind) String() string {
	switch k {
	case SymbolFunction:
		return "function"
	case SymbolLet:
		return "let"
	case SymbolConst:
		return "const"
	case SymbolParam:
		return "param"
	case SymbolBuiltin:
		return "builtin"
	default:
		return "invalid"
	}
}

// IsValue reports kinds that denote a stored value rather than a callable.
func (k SymbolKind) IsValue() bool {
	return k == SymbolLet || k == SymbolConst || k == SymbolParam
}

// SymbolFlags encode misc attributes for quick checks.
type SymbolFlags uint16

const (
	SymbolFlagPublic SymbolFlags = 1 << iota
	SymbolFlagMutable
	SymbolFlagBuiltin
	SymbolFlagGlobal
	SymbolFlagUsed
)

// Strings returns a slice of textual flag labels.
func (f SymbolFlags) Strings() []string {
	if f == 0 {
		return nil
	}
	labels := make([]string, 0, 5)
	if f&SymbolFlagPublic != 0 {
		labels = append(labels, "public")
	}
	if f&SymbolFlagMutable != 0 {
		labels = append(labels, "mutable")
	}
	if f&SymbolFlagBuiltin != 0 {
		labels = append(labels, "builtin")
	}
	if f&SymbolFlagGlobal != 0 {
		labels = append(labels, "global")
	}
	if f&SymbolFlagUsed != 0 {
		labels = append(labels, "used")
	}
	return labels
}

// SymbolDecl points back at the declaring AST node.
type SymbolDecl struct {
	Item  ast.ItemID
	Stmt  ast.StmtID
	Param ast.FnParamID
}

// Symbol describes a named entity available in a scope.
type Symbol struct {
	Name  source.StringID
	Kind  SymbolKind
	Scope ScopeID
	Span  source.Span
	Flags SymbolFlags
	Decl  SymbolDecl
	Type  types.TypeID
}

func (s *Symbol) Mutable() bool { return s.Flags&SymbolFlagMutable != 0 }
func (s *Symbol) Global() bool  { return s.Flags&SymbolFlagGlobal != 0 }
func (s *Symbol) Used() bool    { return s.Flags&SymbolFlagUsed != 0 }
