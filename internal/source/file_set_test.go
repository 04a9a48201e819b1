package source

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestFileSetVersioning(t *testing.T) {
	fs := NewFileSet()

	id1 := fs.Add("test.am", []byte("hello world"), 0)
	id2 := fs.Add("test.am", []byte("hello universe"), 0)
	if id1 == id2 {
		t.Fatalf("expected distinct ids, got %d twice", id1)
	}

	latest, ok := fs.GetLatest("test.am")
	if !ok || latest != id2 {
		t.Fatalf("expected latest id %d, got %d (ok=%v)", id2, latest, ok)
	}
	if got := string(fs.Get(id1).Content); got != "hello world" {
		t.Errorf("old version lost, got %q", got)
	}
}

func TestResolveLineCol(t *testing.T) {
	fs := NewFileSet()
	id := fs.AddVirtual("pos.am", []byte("ab\ncde\n\nf"))

	tests := []struct {
		off  uint32
		want LineCol
	}{
		{0, LineCol{Line: 1, Col: 1}},
		{2, LineCol{Line: 1, Col: 3}}, // the '\n' itself
		{3, LineCol{Line: 2, Col: 1}},
		{5, LineCol{Line: 2, Col: 3}},
		{7, LineCol{Line: 3, Col: 1}},
		{8, LineCol{Line: 4, Col: 1}},
		{9, LineCol{Line: 4, Col: 2}}, // EOF
	}
	for _, tt := range tests {
		start, _ := fs.Resolve(Span{File: id, Start: tt.off, End: tt.off})
		if start != tt.want {
			t.Errorf("offset %d: want %+v, got %+v", tt.off, tt.want, start)
		}
	}
}

func TestGetLine(t *testing.T) {
	fs := NewFileSet()
	f := fs.Get(fs.AddVirtual("lines.am", []byte("first\nsecond\nthird")))

	for i, want := range []string{"first", "second", "third", ""} {
		if got := f.GetLine(uint32(i + 1)); got != want {
			t.Errorf("line %d: want %q, got %q", i+1, want, got)
		}
	}
	if got := f.GetLine(0); got != "" {
		t.Errorf("line 0 must be empty, got %q", got)
	}
}

func TestLoadNormalizesBOMAndCRLF(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "crlf.am")
	if err := os.WriteFile(path, []byte("\xEF\xBB\xBFlet a = 1;\r\nlet b = 2;\r\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	fs := NewFileSet()
	id, err := fs.Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	f := fs.Get(id)
	if string(f.Content) != "let a = 1;\nlet b = 2;\n" {
		t.Fatalf("unexpected content %q", f.Content)
	}
	if f.Flags&FileHadBOM == 0 || f.Flags&FileNormalizedCRLF == 0 {
		t.Fatalf("expected BOM and CRLF flags, got %b", f.Flags)
	}
}

func TestLoadRejectsInvalidUTF8(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.am")
	if err := os.WriteFile(path, []byte("let a = \"\xff\";"), 0o600); err != nil {
		t.Fatal(err)
	}

	_, err := NewFileSet().Load(path)
	var encErr *EncodingError
	if !errors.As(err, &encErr) {
		t.Fatalf("expected *EncodingError, got %v", err)
	}
	if encErr.Offset != 9 {
		t.Errorf("expected offset 9, got %d", encErr.Offset)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := NewFileSet().Load(filepath.Join(t.TempDir(), "nope.am"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected ErrNotExist, got %v", err)
	}
}

func TestPrepareOutputDoesNotCreateFile(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "out.amasm")

	abs, err := PrepareOutput(out)
	if err != nil {
		t.Fatalf("prepare: %v", err)
	}
	if !filepath.IsAbs(abs) {
		t.Errorf("expected absolute path, got %q", abs)
	}
	if _, err := os.Stat(out); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("output must not exist yet, stat err = %v", err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Fatalf("probe file left behind: %v", entries)
	}
}

func TestPrepareOutputMissingParent(t *testing.T) {
	_, err := PrepareOutput(filepath.Join(t.TempDir(), "missing", "out.amasm"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected ErrNotExist, got %v", err)
	}
}
