package lexer_test

import (
	"testing"

	"amulet/internal/diag"
	"amulet/internal/lexer"
	"amulet/internal/source"
	"amulet/internal/token"
)

// testReporter собирает все диагностики, полученные от лексера
type testReporter struct {
	diagnostics []diag.Diagnostic
}

func (r *testReporter) Report(code diag.Code, sev diag.Severity, primary source.Span, msg string, notes []diag.Note) {
	r.diagnostics = append(r.diagnostics, diag.Diagnostic{
		Severity: sev,
		Code:     code,
		Message:  msg,
		Primary:  primary,
		Notes:    notes,
	})
}

func (r *testReporter) codes() []diag.Code {
	out := make([]diag.Code, 0, len(r.diagnostics))
	for _, d := range r.diagnostics {
		out = append(out, d.Code)
	}
	return out
}

func lexAll(t *testing.T, input string) ([]token.Token, *testReporter) {
	t.Helper()
	fs := source.NewFileSet()
	file := fs.Get(fs.AddVirtual("test.am", []byte(input)))
	rep := &testReporter{}
	toks, _ := lexer.Tokenize(file, lexer.Options{Reporter: rep})
	return toks, rep
}

func kinds(toks []token.Token) []token.Kind {
	out := make([]token.Kind, 0, len(toks))
	for _, tok := range toks {
		out = append(out, tok.Kind)
	}
	return out
}

func expectKinds(t *testing.T, toks []token.Token, want ...token.Kind) {
	t.Helper()
	got := kinds(toks)
	if len(got) != len(want) {
		t.Fatalf("want %d tokens %v, got %d %v", len(want), want, len(got), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("token %d: want %v, got %v (all: %v)", i, want[i], got[i], got)
		}
	}
}

func TestOperatorsAndPunctuation(t *testing.T) {
	toks, rep := lexAll(t, "+ - * / % ! = == != < <= > >= && || ( ) { } , ; : ->")
	expectKinds(t, toks,
		token.Plus, token.Minus, token.Star, token.Slash, token.Percent, token.Bang,
		token.Assign, token.EqEq, token.BangEq, token.Lt, token.LtEq, token.Gt, token.GtEq,
		token.AndAnd, token.OrOr, token.LParen, token.RParen, token.LBrace, token.RBrace,
		token.Comma, token.Semicolon, token.Colon, token.Arrow, token.EOF)
	if len(rep.diagnostics) != 0 {
		t.Fatalf("unexpected diagnostics: %v", rep.diagnostics)
	}
}

func TestKeywordsAndIdents(t *testing.T) {
	toks, _ := lexAll(t, "pub fn main() { let mut x_1 = true; } _unused имя")
	expectKinds(t, toks,
		token.KwPub, token.KwFn, token.Ident, token.LParen, token.RParen, token.LBrace,
		token.KwLet, token.KwMut, token.Ident, token.Assign, token.KwTrue, token.Semicolon,
		token.RBrace, token.Ident, token.Ident, token.EOF)
	if toks[8].Text != "x_1" || toks[14].Text != "имя" {
		t.Fatalf("unexpected idents %q %q", toks[8].Text, toks[14].Text)
	}
}

func TestSpansMatchText(t *testing.T) {
	input := "let s = \"a\\n\"; // done\n/* c /* nested */ */ 0x1F"
	toks, rep := lexAll(t, input)
	if len(rep.diagnostics) != 0 {
		t.Fatalf("unexpected diagnostics: %v", rep.diagnostics)
	}
	for _, tok := range toks {
		if got := input[tok.Span.Start:tok.Span.End]; got != tok.Text {
			t.Errorf("%v: span text %q != token text %q", tok.Kind, got, tok.Text)
		}
	}
	last := toks[len(toks)-2]
	if last.Kind != token.IntLit || len(last.Leading) == 0 {
		t.Fatalf("expected IntLit with leading trivia, got %+v", last)
	}
	eof := toks[len(toks)-1]
	if eof.Span.Start != uint32(len(input)) || !eof.Span.Empty() {
		t.Fatalf("EOF span must be empty at end, got %v", eof.Span)
	}
}

func TestNumbers(t *testing.T) {
	tests := []struct {
		in        string
		kind      token.Kind
		malformed bool
		code      diag.Code
	}{
		{"42", token.IntLit, false, 0},
		{"1_000_000", token.IntLit, false, 0},
		{"0xff", token.IntLit, false, 0},
		{"0b1010", token.IntLit, false, 0},
		{"1.5", token.FloatLit, false, 0},
		{"1e9", token.FloatLit, false, 0},
		{"2.5e-3", token.FloatLit, false, 0},
		{"9223372036854775807", token.IntLit, false, 0},
		{"9223372036854775808", token.IntLit, true, diag.LexNumberOverflow},
		{"0x", token.IntLit, true, diag.LexBadNumber},
		{"0b102", token.IntLit, true, diag.LexBadNumber},
		{"12abc", token.IntLit, true, diag.LexBadNumber},
		{"1__0", token.IntLit, true, diag.LexBadNumber},
		{"1e", token.IntLit, true, diag.LexBadNumber},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			toks, rep := lexAll(t, tt.in)
			expectKinds(t, toks, tt.kind, token.EOF)
			if toks[0].Malformed != tt.malformed {
				t.Fatalf("malformed = %v, want %v", toks[0].Malformed, tt.malformed)
			}
			if tt.code == 0 {
				if len(rep.diagnostics) != 0 {
					t.Fatalf("unexpected diagnostics %v", rep.codes())
				}
				return
			}
			if len(rep.diagnostics) != 1 || rep.diagnostics[0].Code != tt.code {
				t.Fatalf("want one %s, got %v", tt.code.ID(), rep.codes())
			}
		})
	}
}

func TestStringEscapes(t *testing.T) {
	toks, rep := lexAll(t, `"tab\t quote\" nul\0 snow\u{2603}"`)
	expectKinds(t, toks, token.StringLit, token.EOF)
	if len(rep.diagnostics) != 0 {
		t.Fatalf("unexpected diagnostics %v", rep.codes())
	}
	s, err := lexer.UnquoteString(toks[0].Text)
	if err != nil {
		t.Fatal(err)
	}
	if s != "tab\t quote\" nul\x00 snow☃" {
		t.Fatalf("unexpected value %q", s)
	}
}

func TestBadEscapeKeepsStringToken(t *testing.T) {
	toks, rep := lexAll(t, `"a\qb" ; "\u{D800}"`)
	expectKinds(t, toks, token.StringLit, token.Semicolon, token.StringLit, token.EOF)
	if !toks[0].Malformed || !toks[2].Malformed {
		t.Fatal("strings with bad escapes must be malformed")
	}
	if len(rep.diagnostics) != 2 {
		t.Fatalf("want 2 diagnostics, got %v", rep.codes())
	}
	for _, d := range rep.diagnostics {
		if d.Code != diag.LexBadEscape {
			t.Fatalf("want LexBadEscape, got %s", d.Code.ID())
		}
	}
	// span points at the escape itself
	if sp := rep.diagnostics[0].Primary; sp.Start != 2 || sp.End != 4 {
		t.Fatalf("unexpected escape span %v", sp)
	}
}

func TestUnterminatedStringReportsOnce(t *testing.T) {
	toks, rep := lexAll(t, "let s = \"abc\nlet t = 1;")
	if len(rep.diagnostics) != 1 || rep.diagnostics[0].Code != diag.LexUnterminatedString {
		t.Fatalf("want exactly one LexUnterminatedString, got %v", rep.codes())
	}
	expectKinds(t, toks,
		token.KwLet, token.Ident, token.Assign, token.StringLit,
		token.KwLet, token.Ident, token.Assign, token.IntLit, token.Semicolon, token.EOF)
	if !toks[3].Malformed || toks[3].Text != "\"abc" {
		t.Fatalf("unexpected string token %+v", toks[3])
	}
}

func TestUnknownCharactersCoalesce(t *testing.T) {
	toks, rep := lexAll(t, "a $#@ b & c")
	expectKinds(t, toks, token.Ident, token.Invalid, token.Ident, token.Invalid, token.Ident, token.EOF)
	if toks[1].Text != "$#@" {
		t.Fatalf("unexpected invalid run %q", toks[1].Text)
	}
	if len(rep.diagnostics) != 2 {
		t.Fatalf("want one diagnostic per run, got %v", rep.codes())
	}
}

func TestUnterminatedBlockComment(t *testing.T) {
	toks, rep := lexAll(t, "x /* open /* nested */")
	expectKinds(t, toks, token.Ident, token.EOF)
	if len(rep.diagnostics) != 1 || rep.diagnostics[0].Code != diag.LexUnterminatedBlockComment {
		t.Fatalf("unexpected diagnostics %v", rep.codes())
	}
}

func TestLazyLexerPeek(t *testing.T) {
	fs := source.NewFileSet()
	lx := lexer.New(fs.Get(fs.AddVirtual("p.am", []byte("a b"))), lexer.Options{})
	if lx.Peek().Text != "a" || lx.Peek().Text != "a" {
		t.Fatal("peek must not consume")
	}
	if lx.Next().Text != "a" || lx.Next().Text != "b" {
		t.Fatal("unexpected order")
	}
	if lx.Next().Kind != token.EOF || lx.Next().Kind != token.EOF {
		t.Fatal("EOF must repeat")
	}
}

func TestBufferReplaysTokens(t *testing.T) {
	toks, _ := lexAll(t, "f(1)")
	buf := lexer.NewBuffer(toks)
	var got []token.Kind
	for {
		tok := buf.Next()
		got = append(got, tok.Kind)
		if tok.Kind == token.EOF {
			break
		}
	}
	if len(got) != len(toks) {
		t.Fatalf("want %d tokens, got %d", len(toks), len(got))
	}
	if buf.Next().Kind != token.EOF {
		t.Fatal("buffer must keep returning EOF")
	}
}
