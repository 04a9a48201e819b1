package token

import "amulet/internal/source"

// Token is one lexeme with its kind and location.
// Malformed is set on literal tokens whose lexeme produced a LexError;
// they keep their kind so the parser can continue.
type Token struct {
	Kind      Kind
	Span      source.Span
	Text      string
	Malformed bool
	Leading   []Trivia
}

// IsKeyword reports whether the token is a language keyword.
func (t Token) IsKeyword() bool {
	return t.Kind >= KwFn && t.Kind <= KwPub
}

// IsPunctOrOp reports whether the token is a punctuation or operator.
func (t Token) IsPunctOrOp() bool {
	return t.Kind >= Plus && t.Kind <= Arrow
}

