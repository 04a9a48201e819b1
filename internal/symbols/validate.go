package symbols

import (
	"errors"
	"fmt"
)

// Validate walks the arenas checking structural invariants: parent/child
// backlinks and that every symbol is indexed by name in its own scope.
func (t *Table) Validate() error {
	var errs []error
	for idx := 1; idx < len(t.Scopes.data); idx++ {
		id := ScopeID(idx) // #nosec G115 -- bounded by arena
		scope := &t.Scopes.data[idx]
		if scope.Kind == ScopeInvalid {
			errs = append(errs, fmt.Errorf("scope %d has invalid kind", id))
		}
		if scope.Parent.IsValid() {
			parent := t.Scopes.Get(scope.Parent)
			if parent == nil || scope.Parent == id {
				errs = append(errs, fmt.Errorf("scope %d has invalid parent %d", id, scope.Parent))
			} else if !containsScope(parent.Children, id) {
				errs = append(errs, fmt.Errorf("scope %d parent %d missing backlink", id, scope.Parent))
			}
		}
		for _, child := range scope.Children {
			if ch := t.Scopes.Get(child); ch == nil || ch.Parent != id {
				errs = append(errs, fmt.Errorf("scope %d child %d missing parent backlink", id, child))
			}
		}
		for _, symID := range scope.Symbols {
			sym := t.Symbols.Get(symID)
			if sym == nil {
				errs = append(errs, fmt.Errorf("scope %d lists unknown symbol %d", id, symID))
				continue
			}
			if sym.Scope != id {
				errs = append(errs, fmt.Errorf("symbol %d belongs to scope %d, listed in %d", symID, sym.Scope, id))
			}
			if !containsSymbol(scope.NameIndex[sym.Name], symID) {
				errs = append(errs, fmt.Errorf("symbol %d missing from name index of scope %d", symID, id))
			}
		}
	}
	return errors.Join(errs...)
}

func containsScope(list []ScopeID, id ScopeID) bool {
	for _, v := range list {
		if v == id {
			return true
		}
	}
	return false
}

func containsSymbol(list []SymbolID, id SymbolID) bool {
	for _, v := range list {
		if v == id {
			return true
		}
	}
	return false
}
