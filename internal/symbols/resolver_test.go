package symbols

import (
	"testing"

	"amulet/internal/diag"
	"amulet/internal/source"
	"amulet/internal/types"
)

func TestResolverLifecycle(t *testing.T) {
	table := NewTable(Hints{}, nil)
	root := table.Scopes.New(ScopeFile, NoScopeID, ScopeOwner{}, source.Span{File: 1})
	res := NewResolver(table, root, ResolverOptions{})

	fn := res.Enter(ScopeFunction, ScopeOwner{}, source.Span{File: 1, Start: 0, End: 10})
	name := table.Strings.Intern("value")
	if _, ok := res.Declare(name, source.Span{File: 1, Start: 2, End: 7}, SymbolLet, 0, SymbolDecl{}, types.NoTypeID); !ok {
		t.Fatalf("declare returned false")
	}
	if err := table.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
	res.Leave(fn)
	if _, ok := res.Lookup(name); ok {
		t.Fatalf("symbol visible after leaving its scope")
	}
	if res.CurrentScope() != root {
		t.Fatalf("current scope = %d, want root", res.CurrentScope())
	}
}

func TestShadowingAndDuplicates(t *testing.T) {
	bag := diag.NewBag(0)
	table := NewTable(Hints{}, nil)
	root := table.Scopes.New(ScopeFile, NoScopeID, ScopeOwner{}, source.Span{File: 1})
	res := NewResolver(table, root, ResolverOptions{
		Reporter: diag.BagReporter{Bag: bag},
		Prelude:  []PreludeEntry{{Name: "print", Kind: SymbolBuiltin}},
	})

	x := table.Strings.Intern("x")
	outer, _ := res.Declare(x, source.Span{File: 1, Start: 0, End: 1}, SymbolLet, SymbolFlagGlobal, SymbolDecl{}, types.NoTypeID)
	blk := res.Enter(ScopeBlock, ScopeOwner{}, source.Span{File: 1, Start: 2, End: 20})
	inner, ok := res.Declare(x, source.Span{File: 1, Start: 5, End: 6}, SymbolLet, 0, SymbolDecl{}, types.NoTypeID)
	if !ok {
		t.Fatalf("shadowing in a nested scope must be allowed")
	}
	if got, _ := res.Lookup(x); got != inner {
		t.Fatalf("lookup = %d, want inner %d", got, inner)
	}
	prev, ok := res.Declare(x, source.Span{File: 1, Start: 10, End: 11}, SymbolLet, 0, SymbolDecl{}, types.NoTypeID)
	if ok || prev != inner {
		t.Fatalf("duplicate accepted: %d %v", prev, ok)
	}
	res.Leave(blk)
	if got, _ := res.Lookup(x); got != outer {
		t.Fatalf("lookup after leave = %d, want %d", got, outer)
	}

	items := bag.Items()
	if len(items) != 1 || items[0].Code != diag.SemaDuplicateSymbol {
		t.Fatalf("diagnostics = %+v", items)
	}
	if len(items[0].Notes) != 1 || items[0].Notes[0].Span.Start != 5 {
		t.Fatalf("expected note at first declaration, got %+v", items[0].Notes)
	}

	if _, ok := res.Lookup(table.Strings.Intern("print")); !ok {
		t.Fatalf("prelude symbol missing")
	}
	if err := table.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
}
