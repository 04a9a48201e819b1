package token

import (
	"testing"
)

func TestLookupKeyword_Positive(t *testing.T) {
	cases := map[string]Kind{
		"fn":       KwFn,
		"let":      KwLet,
		"mut":      KwMut,
		"return":   KwReturn,
		"continue": KwContinue,
		"pub":      KwPub,
		"true":     KwTrue,
		"false":    KwFalse,
	}

	for lexeme, want := range cases {
		got, ok := LookupKeyword(lexeme)
		if !ok {
			t.Fatalf("LookupKeyword(%q) = !ok, want %v", lexeme, want)
		}
		if got != want {
			t.Fatalf("LookupKeyword(%q) = %v, want %v", lexeme, got, want)
		}
	}
}

func TestLookupKeyword_Negative(t *testing.T) {
	// регистр важен
	notKw := []string{"Fn", "LET", "int", "string", "unit", "print", "main"}
	for _, s := range notKw {
		if k, ok := LookupKeyword(s); ok {
			t.Fatalf("LookupKeyword(%q) = %v, want !ok", s, k)
		}
	}
}

func TestKindPredicates(t *testing.T) {
	for kw, k := range keywords {
		tok := Token{Kind: k}
		if !tok.IsKeyword() {
			t.Errorf("%q must be a keyword", kw)
		}
		if tok.IsPunctOrOp() {
			t.Errorf("%q must not be punctuation", kw)
		}
	}
	for k := range kindLexemes {
		if !(Token{Kind: k}).IsPunctOrOp() {
			t.Errorf("%v must be punctuation", k)
		}
	}
	if Arrow.Describe() != "'->'" || KwFn.Describe() != "'fn'" || Ident.Describe() != "identifier" {
		t.Fatalf("unexpected descriptions: %s %s %s", Arrow.Describe(), KwFn.Describe(), Ident.Describe())
	}
}
