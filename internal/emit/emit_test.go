package emit_test

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"amulet/internal/ast"
	"amulet/internal/diag"
	"amulet/internal/emit"
	"amulet/internal/lexer"
	"amulet/internal/parser"
	"amulet/internal/sema"
	"amulet/internal/source"
	"amulet/internal/vm"
)

type analysed struct {
	builder *ast.Builder
	file    ast.FileID
	sem     sema.Result
}

func analyse(t *testing.T, src string) analysed {
	t.Helper()
	fs := source.NewFileSet()
	file := fs.Get(fs.AddVirtual("prog.am", []byte(src)))
	bag := diag.NewBag(0)
	rep := diag.BagReporter{Bag: bag}
	b := ast.NewBuilder(ast.Hints{}, nil)
	pr := parser.ParseFile(file, lexer.New(file, lexer.Options{Reporter: rep}), b, parser.Options{Reporter: rep})
	res := sema.Check(b, pr.File, sema.Options{Reporter: rep})
	require.False(t, bag.HasErrors(), "diagnostics: %v", bag.Items())
	return analysed{builder: b, file: pr.File, sem: res}
}

func compile(t *testing.T, src string) string {
	t.Helper()
	a := analyse(t, src)
	out, err := emit.EmitFile(a.builder, a.file, &a.sem, emit.Options{SourceName: "prog.am"})
	require.NoError(t, err)
	return out
}

func execute(t *testing.T, src string) string {
	t.Helper()
	var out bytes.Buffer
	require.NoError(t, vm.RunText(context.Background(), compile(t, src), &out, vm.Options{MaxSteps: 1_000_000}))
	return out.String()
}

func TestEmitGolden(t *testing.T) {
	got := compile(t, `let counter = 0;
fn add(a: int, b: int) -> int { return a + b; }
fn main() { print(add(counter, 2)); }
`)
	want := `; amulet assembly v1
.source "prog.am"
.global counter
.func add 2 2
  load.l 0
  load.l 1
  add.i
  ret
.end
.func main 0 0
  load.g counter
  const.i 2
  call add 2
  print
  pop
  ret.u
.end
.func __init 0 0
  const.i 0
  store.g counter
  call main 0
  pop
  ret.u
.end
.entry __init
`
	assert.Equal(t, want, got)
}

func TestEmitRoundTrip(t *testing.T) {
	cases := []struct {
		name string
		src  string
		want string
	}{
		{
			name: "recursion",
			src: `fn fib(n: int) -> int {
    if n < 2 { return n; }
    return fib(n - 1) + fib(n - 2);
}
fn main() { print(fib(15)); }`,
			want: "610\n",
		},
		{
			name: "loops",
			src: `fn main() {
    let mut i = 0;
    let mut sum = 0;
    while true {
        i = i + 1;
        if i > 10 { break; }
        if i % 2 == 0 { continue; }
        sum = sum + i;
    }
    print(sum);
}`,
			want: "25\n",
		},
		{
			name: "short circuit",
			src: `fn loud(v: bool) -> bool { print(v); return v; }
fn main() {
    print(false && loud(true));
    print(true || loud(false));
    print(true && loud(false));
}`,
			want: "false\ntrue\nfalse\nfalse\n",
		},
		{
			name: "values",
			src: `fn main() {
    let s = "amu" + "let";
    print(s);
    print(1.5 * 2.0);
    print(-(7 / 2));
    print(7 % 3 != 1);
    print("tab\there");
}`,
			want: "amulet\n3.0\n-3\nfalse\ntab\there\n",
		},
		{
			name: "globals and shadowing",
			src: `let mut total = 1;
let scale = total * 10;
fn bump(by: int) { total = total + by; }
fn main() {
    bump(scale);
    let total = "shadow";
    print(total);
    {
        let total = 3;
        print(total);
    }
    print(read());
}
fn read() -> int { return total; }`,
			want: "shadow\n3\n11\n",
		},
		{
			name: "else if",
			src: `fn sign(n: int) -> string {
    if n < 0 { return "neg"; } else if n == 0 { return "zero"; } else { return "pos"; }
}
fn main() { print(sign(-4)); print(sign(0)); print(sign(9)); }`,
			want: "neg\nzero\npos\n",
		},
		{
			name: "no main",
			src:  `let x = 1;`,
			want: "",
		},
		{
			name: "init name collision",
			src:  `fn __init() { print(1); } fn main() { __init(); }`,
			want: "1\n",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, execute(t, tc.src))
		})
	}
}

func TestEmitIsDeterministic(t *testing.T) {
	src := `let a = 1; let b = a + 1;
fn f(x: int) -> int { while x > 0 { x2(); return x; } return 0; }
fn x2() {}
fn main() { print(f(b)); }`
	first := compile(t, src)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, compile(t, src))
	}
}

func TestEmitRejectsUntypedExpression(t *testing.T) {
	a := analyse(t, `fn main() { print(1 + 2); }`)
	for id := range a.sem.ExprTypes {
		if a.builder.Exprs.Get(id).Kind == ast.ExprBinary {
			delete(a.sem.ExprTypes, id)
		}
	}
	_, err := emit.EmitFile(a.builder, a.file, &a.sem, emit.Options{})
	var emitErr *emit.Error
	require.True(t, errors.As(err, &emitErr), "got %v", err)
	assert.Contains(t, emitErr.Error(), "no valid type")
}
