package sema

import (
	"amulet/internal/ast"
	"amulet/internal/diag"
	"amulet/internal/source"
	"amulet/internal/symbols"
	"amulet/internal/types"
)

// checkGlobals checks top-level initializers in source order. While an
// initializer is checked only the globals before it count as initialised.
func (tc *typeChecker) checkGlobals() {
	for _, itemID := range tc.file.Items {
		let, ok := tc.builder.Items.Let(itemID)
		if !ok {
			continue
		}
		tc.inGlobalInit = true
		valueType := tc.checkExpr(let.Value)
		tc.inGlobalInit = false

		typ := tc.bindingType(let, tc.globalAnnotations[itemID], valueType)
		symID, ok := tc.result.ItemSymbols[itemID]
		if !ok {
			continue
		}
		tc.result.Symbol(symID).Type = typ
		tc.globalReady[symID] = len(tc.globalReady)
	}
}

// bindingType validates an initializer against an optional, already
// resolved annotation and returns the type the binding takes.
func (tc *typeChecker) bindingType(let *ast.LetItem, declared, valueType types.TypeID) types.TypeID {
	valueSpan := tc.exprSpan(let.Value)
	if declared.IsValid() {
		if declared == tc.builtins.Unit {
			tc.report(diag.SemaUnitBinding, tc.builder.Types.Get(let.Type).Span, "binding '%s' cannot have type unit", tc.name(let.Name))
			return tc.builtins.Error
		}
		if !tc.compatible(declared, valueType) {
			tc.report(diag.SemaTypeMismatch, valueSpan, "cannot initialise '%s' of type %s with a value of type %s",
				tc.name(let.Name), tc.typeLabel(declared), tc.typeLabel(valueType))
		}
		return declared
	}
	if valueType == tc.builtins.Unit {
		tc.report(diag.SemaUnitBinding, valueSpan, "cannot bind '%s' to a value of type unit", tc.name(let.Name))
		return tc.builtins.Error
	}
	return valueType
}

// useGlobalBeforeInit reports a global read from an initializer that runs
// before the global itself is initialised.
func (tc *typeChecker) useGlobalBeforeInit(expr ast.ExprID, sym symbols.SymbolID) bool {
	if !tc.inGlobalInit {
		return false
	}
	s := tc.result.Symbol(sym)
	if !s.Global() {
		return false
	}
	if _, ready := tc.globalReady[sym]; ready {
		return false
	}
	tc.reportWithNote(diag.SemaUseBeforeDecl, tc.exprSpan(expr), s.Span, "declared here",
		"global '%s' is used before its declaration", tc.name(s.Name))
	return true
}

// initCall is a function call made while a global initializer runs.
type initCall struct {
	span   source.Span
	callee symbols.SymbolID
	// ready is how many globals were initialised when the call runs
	ready int
}

// noteGlobalRead records that the function being checked reads a global.
func (tc *typeChecker) noteGlobalRead(sym symbols.SymbolID) {
	if tc.fn == nil || !tc.result.Symbol(sym).Global() {
		return
	}
	reads := tc.fnReads[tc.fn.item]
	if reads == nil {
		reads = make(map[symbols.SymbolID]struct{})
		tc.fnReads[tc.fn.item] = reads
	}
	reads[sym] = struct{}{}
}

// noteCall records a call of a user function, either as an edge of the
// call graph or as a call site inside a global initializer.
func (tc *typeChecker) noteCall(span source.Span, callee symbols.SymbolID) {
	switch {
	case tc.fn != nil:
		tc.fnCalls[tc.fn.item] = append(tc.fnCalls[tc.fn.item], tc.result.Symbol(callee).Decl.Item)
	case tc.inGlobalInit:
		tc.initCalls = append(tc.initCalls, initCall{span: span, callee: callee, ready: len(tc.globalReady)})
	}
}

// checkInitCalls reports initializer calls whose callee, directly or through
// further calls, reads a global that is not initialised yet.
func (tc *typeChecker) checkInitCalls() {
	for _, call := range tc.initCalls {
		reads := tc.reachableReads(tc.result.Symbol(call.callee).Decl.Item)
		for _, g := range tc.result.Globals {
			if _, ok := reads[g]; !ok {
				continue
			}
			if rank, ready := tc.globalReady[g]; ready && rank < call.ready {
				continue
			}
			callee := tc.result.Symbol(call.callee)
			global := tc.result.Symbol(g)
			tc.reportWithNote(diag.SemaUseBeforeDecl, call.span, global.Span, "declared here",
				"call to '%s' reads global '%s' before its declaration", tc.name(callee.Name), tc.name(global.Name))
			// одного сообщения на вызов достаточно
			break
		}
	}
}

// reachableReads collects the globals read by fn and every function it
// can call.
func (tc *typeChecker) reachableReads(fn ast.ItemID) map[symbols.SymbolID]struct{} {
	out := make(map[symbols.SymbolID]struct{})
	seen := map[ast.ItemID]bool{fn: true}
	stack := []ast.ItemID{fn}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for g := range tc.fnReads[cur] {
			out[g] = struct{}{}
		}
		for _, next := range tc.fnCalls[cur] {
			if !seen[next] {
				seen[next] = true
				stack = append(stack, next)
			}
		}
	}
	return out
}
