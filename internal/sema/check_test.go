package sema

import (
	"fmt"
	"strings"
	"testing"

	"amulet/internal/ast"
	"amulet/internal/diag"
	"amulet/internal/lexer"
	"amulet/internal/parser"
	"amulet/internal/source"
)

type checked struct {
	builder *ast.Builder
	file    ast.FileID
	bag     *diag.Bag
	res     Result
}

func checkSource(t *testing.T, src string) checked {
	t.Helper()
	fs := source.NewFileSet()
	file := fs.Get(fs.AddVirtual("test.am", []byte(src)))
	bag := diag.NewBag(0)
	rep := diag.BagReporter{Bag: bag}
	lx := lexer.New(file, lexer.Options{Reporter: rep})
	b := ast.NewBuilder(ast.Hints{}, nil)
	pr := parser.ParseFile(file, lx, b, parser.Options{Reporter: rep})
	if bag.HasErrors() {
		t.Fatalf("unexpected syntax errors: %s", summary(bag.Items()))
	}
	res := Check(b, pr.File, Options{Reporter: rep})
	return checked{builder: b, file: pr.File, bag: bag, res: res}
}

func summary(diags []diag.Diagnostic) string {
	if len(diags) == 0 {
		return "<none>"
	}
	parts := make([]string, len(diags))
	for i, d := range diags {
		parts[i] = fmt.Sprintf("[%s] %s", d.Code.ID(), d.Message)
	}
	return strings.Join(parts, "; ")
}

func errorCodes(bag *diag.Bag) []string {
	var out []string
	for _, d := range bag.Errors() {
		out = append(out, d.Code.ID())
	}
	return out
}

func TestCheckWellTypedProgramAnnotatesEverything(t *testing.T) {
	c := checkSource(t, `
let counter = 0;
fn add(a: int, b: int) -> int {
    return a + b;
}
fn main() {
    let s = add(1, 2);
    print(s + counter);
}
`)
	if c.bag.Len() != 0 {
		t.Fatalf("unexpected diagnostics: %s", summary(c.bag.Items()))
	}
	for i := uint32(1); i <= c.builder.Exprs.Arena.Len(); i++ {
		id := ast.ExprID(i)
		if _, ok := c.res.ExprTypes[id]; !ok {
			t.Fatalf("expression %d (%s) has no type", id, c.builder.Exprs.Get(id).Kind)
		}
		if c.builder.Exprs.Get(id).Kind == ast.ExprIdent && !c.res.SymbolOf(id).IsValid() {
			t.Fatalf("identifier %d has no symbol", id)
		}
	}
	if len(c.res.ParamSymbols) != 2 || len(c.res.StmtSymbols) != 1 || len(c.res.Globals) != 1 {
		t.Fatalf("bindings: params=%d locals=%d globals=%d", len(c.res.ParamSymbols), len(c.res.StmtSymbols), len(c.res.Globals))
	}
	if !c.res.Main.IsValid() {
		t.Fatalf("main not recorded")
	}
	if err := c.res.Table.Validate(); err != nil {
		t.Fatalf("symbol table: %v", err)
	}
}

func TestCheckErrors(t *testing.T) {
	cases := []struct {
		name string
		src  string
		want []string
	}{
		{"annotation mismatch", `fn main() { let x: int = "s"; print(x); }`, []string{"SEM3100"}},
		{"int plus bool", `fn main() { print(1 + true); }`, []string{"SEM3101"}},
		{"float modulo", `fn main() { print(5.0 % 2.0); }`, []string{"SEM3101"}},
		{"string concat", `fn main() { print("a" + "b"); }`, nil},
		{"mixed comparison", `fn main() { print(1 < 2.0); }`, []string{"SEM3101"}},
		{"negate bool", `fn main() { print(-true); }`, []string{"SEM3101"}},
		{"logic", `fn main() { print(1 == 1 && !false); }`, nil},
		{"condition", `fn main() { if 1 { } }`, []string{"SEM3111"}},
		{"immutable", `fn main() { let x = 1; x = 2; print(x); }`, []string{"SEM3104"}},
		{"param assign", `fn f(a: int) { a = 1; } fn main() { f(1); }`, []string{"SEM3104"}},
		{"assign mismatch", `fn main() { let mut s = "a"; s = 1; print(s); }`, []string{"SEM3100"}},
		{"arity", `fn f(a: int) -> int { return a; } fn main() { print(f(1, 2)); }`, []string{"SEM3103"}},
		{"argument type", `fn f(a: int) -> int { return a; } fn main() { print(f(true)); }`, []string{"SEM3100"}},
		{"not callable", `fn main() { let x = 1; print(x(2)); }`, []string{"SEM3102"}},
		{"return mismatch", `fn f() -> int { return true; } fn main() { print(f()); }`, []string{"SEM3105"}},
		{"bare return", `fn f() -> int { return; } fn main() { print(f()); }`, []string{"SEM3105"}},
		{"missing return", `fn f() -> int { } fn main() { print(f()); }`, []string{"SEM3106"}},
		{"break outside loop", `fn main() { break; }`, []string{"SEM3107"}},
		{"unit binding", `fn g() {} fn main() { let _u = g(); }`, []string{"SEM3108"}},
		{"main params", `fn main(x: int) { print(x); }`, []string{"SEM3109"}},
		{"main result", `fn main() -> int { return 0; }`, []string{"SEM3109"}},
		{"function as value", `fn main() { let _f = main; }`, []string{"SEM3110"}},
		{"unknown type", `fn main() { let _x: i32 = 1; }`, []string{"SEM3004"}},
		{"unresolved", `fn main() { print(y); }`, []string{"SEM3001"}},
		{"global order", "let a = b;\nlet b = 1;", []string{"SEM3003"}},
		{"print arity", `fn main() { print(); }`, []string{"SEM3103"}},
		{"print unit", `fn main() { print(print(1)); }`, []string{"SEM3100"}},
		{"function sees later global", "fn main() { print(g); }\nlet g = 1;", nil},
		{"global calls later function", "let x = f();\nfn f() -> int { return 1; }", nil},
		{"call reads later global", "let a: int = f();\nfn f() -> int { return b; }\nlet b = 1;", []string{"SEM3003"}},
		{"call reads later global transitively", "let a = f();\nfn f() -> int { return g(); }\nfn g() -> int { return b; }\nlet b = 1;", []string{"SEM3003"}},
		{"call reads own global", "let a: int = f();\nfn f() -> int { return a; }", []string{"SEM3003"}},
		{"call reads earlier global", "let b = 1;\nlet a = f();\nfn f() -> int { return b; }", nil},
		{"recursive call reads earlier global", "let b = 1;\nlet a = f(3);\nfn f(n: int) -> int { if n == 0 { return b; } return f(n - 1); }", nil},
		{"main reads later global", "let a = 1;\nfn main() { print(a + b); }\nlet b = 2;", nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := checkSource(t, tc.src)
			got := errorCodes(c.bag)
			if strings.Join(got, ",") != strings.Join(tc.want, ",") {
				t.Fatalf("errors = %v, want %v (%s)", got, tc.want, summary(c.bag.Items()))
			}
		})
	}
}

func TestUnresolvedNameDoesNotCascade(t *testing.T) {
	c := checkSource(t, `fn main() { let x: int = y + 1; print(x * 2); }`)
	if got := errorCodes(c.bag); len(got) != 1 || got[0] != "SEM3001" {
		t.Fatalf("errors = %v (%s)", got, summary(c.bag.Items()))
	}
}

func TestReturnPaths(t *testing.T) {
	cases := []struct {
		name    string
		src     string
		missing bool
	}{
		{"if else", `fn f(b: bool) -> int { if b { return 1; } else { return 2; } }`, false},
		{"if only", `fn f(b: bool) -> int { if b { return 1; } }`, true},
		{"else if chain", `fn f(n: int) -> int { if n < 0 { return -1; } else if n == 0 { return 0; } else { return 1; } }`, false},
		{"infinite loop", `fn f() -> int { while true { } }`, false},
		{"loop with break", `fn f() -> int { while true { break; } }`, true},
		{"nested block", `fn f() -> int { { return 1; } }`, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := checkSource(t, tc.src+"\nfn main() {}")
			got := errorCodes(c.bag)
			hasMissing := len(got) == 1 && got[0] == "SEM3106"
			if hasMissing != tc.missing || (!tc.missing && len(got) != 0) {
				t.Fatalf("errors = %v, missing return expected %v", got, tc.missing)
			}
		})
	}
}

func TestWarnings(t *testing.T) {
	c := checkSource(t, `fn f(a: int, _b: int) -> int {
    let unused = 1;
    let _skip = 2;
    return a;
    print(a);
}
fn main() { print(f(1, 2)); }`)
	if c.bag.HasErrors() {
		t.Fatalf("unexpected errors: %s", summary(c.bag.Errors()))
	}
	items := c.bag.Items()
	if len(items) != 2 {
		t.Fatalf("diagnostics = %s", summary(items))
	}
	if items[0].Code != diag.SemaUnreachableCode || items[0].Severity != diag.SevWarning {
		t.Fatalf("first = %s", summary(items[:1]))
	}
	if items[1].Code != diag.SemaUnusedBinding || !strings.Contains(items[1].Message, "'unused'") {
		t.Fatalf("second = %s", summary(items[1:]))
	}
}

func TestDuplicateNotesFirstDeclaration(t *testing.T) {
	c := checkSource(t, "fn f() {}\nfn f() {}\nfn main() {}")
	errs := c.bag.Errors()
	if len(errs) != 1 || errs[0].Code != diag.SemaDuplicateSymbol {
		t.Fatalf("errors = %s", summary(errs))
	}
	if len(errs[0].Notes) != 1 || errs[0].Notes[0].Span.Start != 3 {
		t.Fatalf("notes = %+v", errs[0].Notes)
	}
}

func TestUseBeforeDeclNote(t *testing.T) {
	c := checkSource(t, "let a = b;\nlet b = 1;")
	errs := c.bag.Errors()
	if len(errs) != 1 {
		t.Fatalf("errors = %s", summary(errs))
	}
	if errs[0].Primary.Start != 8 || len(errs[0].Notes) != 1 || errs[0].Notes[0].Span.Start != 15 {
		t.Fatalf("diagnostic = %+v", errs[0])
	}
}

func TestInitializerCallReadingLaterGlobal(t *testing.T) {
	c := checkSource(t, "let a: int = f();\nfn f() -> int { return b; }\nlet b = 1;")
	errs := c.bag.Errors()
	if len(errs) != 1 {
		t.Fatalf("errors = %s", summary(errs))
	}
	d := errs[0]
	if d.Code != diag.SemaUseBeforeDecl || d.Primary.Start != 13 {
		t.Fatalf("diagnostic = %+v", d)
	}
	if !strings.Contains(d.Message, "'f'") || !strings.Contains(d.Message, "'b'") {
		t.Fatalf("message = %q", d.Message)
	}
	if len(d.Notes) != 1 || d.Notes[0].Span.Start != 50 {
		t.Fatalf("notes = %+v", d.Notes)
	}
}

func TestShadowingAcrossScopes(t *testing.T) {
	c := checkSource(t, `fn main() {
    let x = 1;
    {
        let x = "inner";
        print(x);
    }
    print(x + 1);
}`)
	if c.bag.Len() != 0 {
		t.Fatalf("unexpected diagnostics: %s", summary(c.bag.Items()))
	}
}

func TestCheckIsDeterministic(t *testing.T) {
	src := `fn main() { let a = 1 + true; let b = z; print(q(1)); break; }`
	first := summary(checkSource(t, src).bag.Items())
	for i := 0; i < 5; i++ {
		if got := summary(checkSource(t, src).bag.Items()); got != first {
			t.Fatalf("run %d differs:\n%s\n%s", i, got, first)
		}
	}
}
