package symbols

import (
	"fmt"

	"amulet/internal/diag"
	"amulet/internal/source"
	"amulet/internal/types"
)

// ResolverOptions configures resolver construction.
type ResolverOptions struct {
	Reporter diag.Reporter
	Prelude  []PreludeEntry
}

// PreludeEntry describes a symbol injected before source traversal.
type PreludeEntry struct {
	Name string
	Kind SymbolKind
	Type types.TypeID
}

// Resolver drives scope management and declaration/lookup routines.
type Resolver struct {
	table    *Table
	reporter diag.Reporter
	stack    []ScopeID
}

// NewResolver wires a resolver to an existing scope stack. If root is valid it
// becomes the current scope and receives the prelude.
func NewResolver(table *Table, root ScopeID, opts ResolverOptions) *Resolver {
	r := &Resolver{
		table:    table,
		reporter: opts.Reporter,
		stack:    make([]ScopeID, 0, 8),
	}
	if root.IsValid() {
		r.stack = append(r.stack, root)
		for _, entry := range opts.Prelude {
			r.declareRaw(r.table.Strings.Intern(entry.Name), source.Span{}, entry.Kind, SymbolFlagBuiltin|SymbolFlagUsed, SymbolDecl{}, entry.Type)
		}
	}
	return r
}

// CurrentScope returns the scope at the top of the stack.
func (r *Resolver) CurrentScope() ScopeID {
	if len(r.stack) == 0 {
		return NoScopeID
	}
	return r.stack[len(r.stack)-1]
}

// Enter creates a child scope, pushes it onto the stack, and returns its ID.
func (r *Resolver) Enter(kind ScopeKind, owner ScopeOwner, span source.Span) ScopeID {
	scope := r.table.Scopes.New(kind, r.CurrentScope(), owner, span)
	r.stack = append(r.stack, scope)
	return scope
}

// Leave pops the current scope. A mismatch with expected is a programming
// error in the caller.
func (r *Resolver) Leave(expected ScopeID) {
	if len(r.stack) == 0 {
		return
	}
	top := r.stack[len(r.stack)-1]
	if expected.IsValid() && top != expected {
		panic(fmt.Sprintf("symbols: leaving scope %d while %d is current", expected, top))
	}
	r.stack = r.stack[:len(r.stack)-1]
}

// Declare installs a symbol into the current scope. A name already declared
// in the same scope is reported with a note at the first declaration and the
// existing symbol is returned with ok=false. Shadowing outer scopes is fine.
func (r *Resolver) Declare(name source.StringID, span source.Span, kind SymbolKind, flags SymbolFlags, decl SymbolDecl, typ types.TypeID) (SymbolID, bool) {
	scope := r.table.Scopes.Get(r.CurrentScope())
	if scope == nil {
		return NoSymbolID, false
	}
	if existing := scope.NameIndex[name]; len(existing) > 0 {
		prev := r.table.Symbols.Get(existing[0])
		r.reportDuplicateSymbol(name, span, prev)
		return existing[0], false
	}
	return r.declareRaw(name, span, kind, flags, decl, typ), true
}

func (r *Resolver) declareRaw(name source.StringID, span source.Span, kind SymbolKind, flags SymbolFlags, decl SymbolDecl, typ types.TypeID) SymbolID {
	scopeID := r.CurrentScope()
	id := r.table.Symbols.New(&Symbol{
		Name:  name,
		Kind:  kind,
		Scope: scopeID,
		Span:  span,
		Flags: flags,
		Decl:  decl,
		Type:  typ,
	})
	if scope := r.table.Scopes.Get(scopeID); scope != nil {
		scope.Symbols = append(scope.Symbols, id)
		scope.NameIndex[name] = append(scope.NameIndex[name], id)
	}
	return id
}

// Lookup walks the scope chain, innermost first.
func (r *Resolver) Lookup(name source.StringID) (SymbolID, bool) {
	for scopeID := r.CurrentScope(); scopeID.IsValid(); {
		scope := r.table.Scopes.Get(scopeID)
		if scope == nil {
			break
		}
		if ids := scope.NameIndex[name]; len(ids) > 0 {
			return ids[0], true
		}
		scopeID = scope.Parent
	}
	return NoSymbolID, false
}

// LookupLocal searches only the current scope.
func (r *Resolver) LookupLocal(name source.StringID) (SymbolID, bool) {
	scope := r.table.Scopes.Get(r.CurrentScope())
	if scope == nil {
		return NoSymbolID, false
	}
	if ids := scope.NameIndex[name]; len(ids) > 0 {
		return ids[0], true
	}
	return NoSymbolID, false
}

func (r *Resolver) reportDuplicateSymbol(name source.StringID, span source.Span, prev *Symbol) {
	if r.reporter == nil {
		return
	}
	nameStr, _ := r.table.Strings.Lookup(name)
	b := diag.ReportError(r.reporter, diag.SemaDuplicateSymbol, span, fmt.Sprintf("duplicate declaration of '%s'", nameStr))
	if prev != nil {
		if prev.Flags&SymbolFlagBuiltin != 0 {
			b.WithNote(span, "'"+nameStr+"' is a built-in")
		} else {
			b.WithNote(prev.Span, "previous declaration here")
		}
	}
	b.Emit()
}
