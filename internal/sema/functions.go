package sema

import (
	"strings"

	"amulet/internal/ast"
	"amulet/internal/diag"
	"amulet/internal/symbols"
	"amulet/internal/types"
)

func (tc *typeChecker) checkFunctions() {
	for _, itemID := range tc.file.Items {
		fn, ok := tc.builder.Items.Fn(itemID)
		if !ok {
			continue
		}
		tc.checkFn(itemID, fn)
	}
}

func (tc *typeChecker) checkFn(itemID ast.ItemID, fn *ast.FnItem) {
	result := tc.builtins.Unit
	var paramTypes []types.TypeID
	if symID, ok := tc.result.ItemSymbols[itemID]; ok {
		if info, ok := tc.types.FnInfo(tc.result.Symbol(symID).Type); ok {
			result = info.Result
			paramTypes = info.Params
		}
	} else {
		// duplicate declaration: the body is still checked, signature
		// types are re-resolved without reporting twice
		if fn.ReturnType.IsValid() {
			result = tc.resolveTypeQuiet(fn.ReturnType)
		}
	}

	tc.fn = &fnContext{item: itemID, result: result}
	defer func() { tc.fn = nil }()

	fnScope := tc.resolver.Enter(symbols.ScopeFunction, symbols.ScopeOwner{File: tc.fileID, Item: itemID}, fn.Span)
	for i, pid := range fn.Params {
		param := tc.builder.Items.FnParam(pid)
		var typ types.TypeID
		if i < len(paramTypes) {
			typ = paramTypes[i]
		} else {
			typ = tc.resolveTypeQuiet(param.Type)
		}
		if typ == tc.builtins.Unit {
			tc.report(diag.SemaUnitBinding, param.Span, "parameter '%s' cannot have type unit", tc.name(param.Name))
			typ = tc.builtins.Error
		}
		id, ok := tc.resolver.Declare(param.Name, param.Span, symbols.SymbolParam, 0, symbols.SymbolDecl{Item: itemID, Param: pid}, typ)
		if ok {
			tc.result.ParamSymbols[pid] = id
			tc.result.Locals[itemID] = append(tc.result.Locals[itemID], id)
		}
	}

	terminates := false
	if fn.Body.IsValid() {
		terminates = tc.checkBlock(fn.Body)
	}
	tc.resolver.Leave(fnScope)

	if !terminates && result != tc.builtins.Unit && !tc.types.IsError(result) {
		tc.report(diag.SemaMissingReturn, fn.NameSpan, "function '%s' must return a value of type %s on every path",
			tc.name(fn.Name), tc.typeLabel(result))
	}
	tc.reportUnused(itemID)
}

// reportUnused warns about parameters and locals of the function that are
// never read. Names starting with '_' are exempt.
func (tc *typeChecker) reportUnused(itemID ast.ItemID) {
	for _, id := range tc.result.Locals[itemID] {
		sym := tc.result.Symbol(id)
		if sym.Used() {
			continue
		}
		name := tc.name(sym.Name)
		if strings.HasPrefix(name, "_") {
			continue
		}
		what := "variable"
		if sym.Kind == symbols.SymbolParam {
			what = "parameter"
		}
		tc.warn(diag.SemaUnusedBinding, sym.Span, "unused %s '%s'", what, name)
	}
}

// resolveTypeQuiet resolves a syntactic type without reporting; used where
// the same annotation was already resolved (and reported) once.
func (tc *typeChecker) resolveTypeQuiet(id ast.TypeID) types.TypeID {
	texpr := tc.builder.Types.Get(id)
	if texpr == nil {
		return tc.builtins.Error
	}
	if t, ok := tc.types.ByName(tc.name(texpr.Name)); ok {
		return t
	}
	return tc.builtins.Error
}
