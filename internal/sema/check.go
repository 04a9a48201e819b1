package sema

import (
	"fmt"

	"amulet/internal/ast"
	"amulet/internal/diag"
	"amulet/internal/source"
	"amulet/internal/symbols"
	"amulet/internal/types"
)

// Options configures a semantic pass.
type Options struct {
	Reporter diag.Reporter
	Types    *types.Interner
}

// Result stores semantic artefacts produced by the checker. Every expression
// gets an entry in ExprTypes; every identifier use an entry in ExprSymbols;
// every binding (global, local, parameter, function) a symbol.
type Result struct {
	TypeInterner *types.Interner
	Table        *symbols.Table
	FileScope    symbols.ScopeID

	ExprTypes    map[ast.ExprID]types.TypeID
	ExprSymbols  map[ast.ExprID]symbols.SymbolID
	ItemSymbols  map[ast.ItemID]symbols.SymbolID
	StmtSymbols  map[ast.StmtID]symbols.SymbolID
	ParamSymbols map[ast.FnParamID]symbols.SymbolID

	// Locals lists parameters then local bindings of each function in
	// declaration order.
	Locals map[ast.ItemID][]symbols.SymbolID
	// Globals lists top-level let/const symbols in source order.
	Globals []symbols.SymbolID
	// Main is the entry function symbol, if declared.
	Main symbols.SymbolID
}

// TypeOf returns the recorded type of an expression.
func (r *Result) TypeOf(id ast.ExprID) types.TypeID {
	return r.ExprTypes[id]
}

// SymbolOf returns the symbol an identifier expression resolved to.
func (r *Result) SymbolOf(id ast.ExprID) symbols.SymbolID {
	return r.ExprSymbols[id]
}

// Symbol is a shortcut for Table.Symbols.Get.
func (r *Result) Symbol(id symbols.SymbolID) *symbols.Symbol {
	return r.Table.Symbols.Get(id)
}

// Check resolves names and checks types of one parsed file. It never stops at
// the first problem: erroneous expressions are typed as the error type, which
// is compatible with everything, so each mistake is reported once.
func Check(builder *ast.Builder, fileID ast.FileID, opts Options) Result {
	res := Result{
		ExprTypes:    make(map[ast.ExprID]types.TypeID),
		ExprSymbols:  make(map[ast.ExprID]symbols.SymbolID),
		ItemSymbols:  make(map[ast.ItemID]symbols.SymbolID),
		StmtSymbols:  make(map[ast.StmtID]symbols.SymbolID),
		ParamSymbols: make(map[ast.FnParamID]symbols.SymbolID),
		Locals:       make(map[ast.ItemID][]symbols.SymbolID),
	}
	if opts.Types != nil {
		res.TypeInterner = opts.Types
	} else {
		res.TypeInterner = types.NewInterner()
	}
	if builder == nil {
		res.Table = symbols.NewTable(symbols.Hints{}, nil)
		return res
	}
	res.Table = symbols.NewTable(symbols.Hints{}, builder.StringsInterner)
	file := builder.Files.Get(fileID)
	if file == nil {
		return res
	}

	tc := typeChecker{
		builder:  builder,
		fileID:   fileID,
		file:     file,
		reporter: opts.Reporter,
		types:    res.TypeInterner,
		builtins: res.TypeInterner.Builtins(),
		result:   &res,
	}
	tc.run()
	return res
}

type typeChecker struct {
	builder  *ast.Builder
	fileID   ast.FileID
	file     *ast.File
	reporter diag.Reporter
	types    *types.Interner
	builtins types.Builtins
	result   *Result
	resolver *symbols.Resolver

	// global initializers may only see globals already initialised;
	// globalReady maps a global to the order in which it became ready
	inGlobalInit      bool
	globalReady       map[symbols.SymbolID]int
	globalAnnotations map[ast.ItemID]types.TypeID

	// functions read globals at run time, so a call made from an
	// initializer is checked once every body is known
	fnReads   map[ast.ItemID]map[symbols.SymbolID]struct{}
	fnCalls   map[ast.ItemID][]ast.ItemID
	initCalls []initCall

	fn *fnContext
}

// fnContext tracks the function whose body is being checked.
type fnContext struct {
	item   ast.ItemID
	result types.TypeID
	loops  []*loopContext
}

type loopContext struct {
	hasBreak bool
}

func (tc *typeChecker) run() {
	root := tc.result.Table.Scopes.New(symbols.ScopeFile, symbols.NoScopeID, symbols.ScopeOwner{File: tc.fileID}, tc.file.Span)
	tc.result.FileScope = root
	tc.resolver = symbols.NewResolver(tc.result.Table, root, symbols.ResolverOptions{
		Reporter: tc.reporter,
		Prelude:  tc.prelude(),
	})
	tc.globalReady = make(map[symbols.SymbolID]int)
	tc.globalAnnotations = make(map[ast.ItemID]types.TypeID)
	tc.fnReads = make(map[ast.ItemID]map[symbols.SymbolID]struct{})
	tc.fnCalls = make(map[ast.ItemID][]ast.ItemID)

	tc.collectItems()
	tc.checkGlobals()
	tc.checkFunctions()
	tc.checkInitCalls()
	tc.checkEntrypoint()
}

func (tc *typeChecker) report(code diag.Code, span source.Span, format string, args ...any) {
	if tc.reporter == nil {
		return
	}
	diag.ReportError(tc.reporter, code, span, fmt.Sprintf(format, args...)).Emit()
}

func (tc *typeChecker) warn(code diag.Code, span source.Span, format string, args ...any) {
	if tc.reporter == nil {
		return
	}
	diag.ReportWarning(tc.reporter, code, span, fmt.Sprintf(format, args...)).Emit()
}

// reportWithNote emits an error pointing back at a related declaration.
func (tc *typeChecker) reportWithNote(code diag.Code, span source.Span, noteSpan source.Span, note string, format string, args ...any) {
	if tc.reporter == nil {
		return
	}
	b := diag.ReportError(tc.reporter, code, span, fmt.Sprintf(format, args...))
	if noteSpan != (source.Span{}) {
		b.WithNote(noteSpan, note)
	}
	b.Emit()
}

func (tc *typeChecker) name(id source.StringID) string {
	return tc.builder.Name(id)
}

func (tc *typeChecker) typeLabel(id types.TypeID) string {
	return tc.types.Format(id)
}
