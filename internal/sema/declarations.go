package sema

import (
	"amulet/internal/ast"
	"amulet/internal/diag"
	"amulet/internal/symbols"
	"amulet/internal/types"
)

// builtinPrint is the one builtin of amulet v1.
const builtinPrint = "print"

func (tc *typeChecker) prelude() []symbols.PreludeEntry {
	// print takes any non-unit value; the error type in its signature
	// stands for "anything" and the call is checked specially.
	printType := tc.types.RegisterFn([]types.TypeID{tc.builtins.Error}, tc.builtins.Unit)
	return []symbols.PreludeEntry{
		{Name: builtinPrint, Kind: symbols.SymbolBuiltin, Type: printType},
	}
}

// collectItems declares every top-level item before any body is looked at,
// so functions may reference each other and globals regardless of order.
func (tc *typeChecker) collectItems() {
	for _, itemID := range tc.file.Items {
		item := tc.builder.Items.Get(itemID)
		if item == nil {
			continue
		}
		switch item.Kind {
		case ast.ItemFn:
			fn, _ := tc.builder.Items.Fn(itemID)
			tc.declareFn(itemID, fn)
		case ast.ItemLet, ast.ItemConst:
			let, _ := tc.builder.Items.Let(itemID)
			tc.declareGlobal(itemID, let)
		}
	}
}

func (tc *typeChecker) declareFn(itemID ast.ItemID, fn *ast.FnItem) {
	params := make([]types.TypeID, 0, len(fn.Params))
	for _, pid := range fn.Params {
		param := tc.builder.Items.FnParam(pid)
		params = append(params, tc.resolveType(param.Type))
	}
	result := tc.builtins.Unit
	if fn.ReturnType.IsValid() {
		result = tc.resolveType(fn.ReturnType)
	}
	sig := tc.types.RegisterFn(params, result)

	var flags symbols.SymbolFlags
	if fn.IsPub {
		flags |= symbols.SymbolFlagPublic
	}
	id, ok := tc.resolver.Declare(fn.Name, fn.NameSpan, symbols.SymbolFunction, flags, symbols.SymbolDecl{Item: itemID}, sig)
	if ok {
		tc.result.ItemSymbols[itemID] = id
	}
}

func (tc *typeChecker) declareGlobal(itemID ast.ItemID, let *ast.LetItem) {
	kind := symbols.SymbolLet
	if let.IsConst {
		kind = symbols.SymbolConst
	}
	flags := symbols.SymbolFlagGlobal
	if let.IsMut {
		flags |= symbols.SymbolFlagMutable
	}
	// annotated globals are typed now; inferred ones once their
	// initializer has been checked
	typ := types.NoTypeID
	if let.Type.IsValid() {
		typ = tc.resolveType(let.Type)
		tc.globalAnnotations[itemID] = typ
	}
	id, ok := tc.resolver.Declare(let.Name, let.NameSpan, kind, flags, symbols.SymbolDecl{Item: itemID}, typ)
	if ok {
		tc.result.ItemSymbols[itemID] = id
		tc.result.Globals = append(tc.result.Globals, id)
	}
}

// resolveType maps a syntactic type to a TypeID; unknown names are reported
// and become the error type.
func (tc *typeChecker) resolveType(id ast.TypeID) types.TypeID {
	texpr := tc.builder.Types.Get(id)
	if texpr == nil {
		return tc.builtins.Error
	}
	name := tc.name(texpr.Name)
	if t, ok := tc.types.ByName(name); ok {
		return t
	}
	tc.report(diag.SemaUnknownType, texpr.Span, "unknown type '%s'", name)
	return tc.builtins.Error
}

// checkEntrypoint validates `main`: a function without parameters returning unit.
func (tc *typeChecker) checkEntrypoint() {
	id, ok := tc.resolver.LookupLocal(tc.builder.StringsInterner.Intern("main"))
	if !ok {
		return
	}
	sym := tc.result.Symbol(id)
	if sym.Kind != symbols.SymbolFunction {
		tc.report(diag.SemaBadEntrypoint, sym.Span, "'main' must be a function")
		return
	}
	info, ok := tc.types.FnInfo(sym.Type)
	if !ok {
		return
	}
	fn, _ := tc.builder.Items.Fn(sym.Decl.Item)
	if len(info.Params) != 0 {
		tc.report(diag.SemaBadEntrypoint, sym.Span, "'main' must not take parameters, found %d", len(info.Params))
	}
	if info.Result != tc.builtins.Unit && !tc.types.IsError(info.Result) {
		span := sym.Span
		if fn != nil {
			if texpr := tc.builder.Types.Get(fn.ReturnType); texpr != nil {
				span = texpr.Span
			}
		}
		tc.report(diag.SemaBadEntrypoint, span, "'main' must return unit, found %s", tc.typeLabel(info.Result))
	}
	tc.result.Main = id
}
