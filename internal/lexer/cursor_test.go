package lexer

import (
	"testing"

	"amulet/internal/source"
)

func createFile(content string) *source.File {
	fs := source.NewFileSet()
	id := fs.AddVirtual("test.am", []byte(content))
	return fs.Get(id)
}

// TestSequentialReading: "a\nb" → a, \n, b, EOF
func TestSequentialReading(t *testing.T) {
	cursor := NewCursor(createFile("a\nb"))

	for _, want := range []byte{'a', '\n', 'b'} {
		if cursor.EOF() {
			t.Fatalf("unexpected EOF before %q", want)
		}
		if got := cursor.Bump(); got != want {
			t.Fatalf("want %q, got %q", want, got)
		}
	}
	if !cursor.EOF() {
		t.Fatal("expected EOF")
	}
	if cursor.Bump() != 0 || cursor.Peek() != 0 {
		t.Fatal("reading past EOF must yield 0")
	}
}

func TestMarkAndReset(t *testing.T) {
	cursor := NewCursor(createFile("abc"))
	cursor.Bump()
	m := cursor.Mark()
	cursor.Bump()
	cursor.Bump()
	sp := cursor.SpanFrom(m)
	if sp.Start != 1 || sp.End != 3 {
		t.Fatalf("unexpected span %v", sp)
	}
	cursor.Reset(m)
	if cursor.Peek() != 'b' {
		t.Fatalf("reset failed, at %q", cursor.Peek())
	}
	if _, _, ok := cursor.Peek2(); !ok {
		t.Fatal("Peek2 must see 'bc'")
	}
	if !cursor.Eat('b') || cursor.Eat('x') {
		t.Fatal("Eat mismatch")
	}
}
