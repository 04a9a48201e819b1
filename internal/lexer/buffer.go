package lexer

import (
	"amulet/internal/source"
	"amulet/internal/token"
)

// Tokenize scans the whole file eagerly. The result always ends with EOF.
// Lexical errors go to opts.Reporter; the returned count tells the caller
// whether any were found.
func Tokenize(file *source.File, opts Options) ([]token.Token, int) {
	lx := New(file, opts)
	tokens := make([]token.Token, 0, len(file.Content)/4+1)
	for {
		tok := lx.Next()
		tokens = append(tokens, tok)
		if tok.Kind == token.EOF {
			break
		}
	}
	return tokens, lx.Errors()
}

// Buffer replays materialised tokens as a Stream.
type Buffer struct {
	toks []token.Token
	pos  int
}

// NewBuffer wraps toks, which must end with an EOF token.
func NewBuffer(toks []token.Token) *Buffer {
	return &Buffer{toks: toks}
}

func (b *Buffer) Next() token.Token {
	tok := b.Peek()
	if b.pos < len(b.toks)-1 {
		b.pos++
	}
	return tok
}

// Peek returns the current token; past the end it keeps returning EOF.
func (b *Buffer) Peek() token.Token {
	if len(b.toks) == 0 {
		return token.Token{Kind: token.EOF}
	}
	return b.toks[b.pos]
}

func (b *Buffer) Len() int {
	return len(b.toks)
}
