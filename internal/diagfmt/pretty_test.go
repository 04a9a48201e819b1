package diagfmt

import (
	"bytes"
	"strings"
	"testing"

	"amulet/internal/diag"
	"amulet/internal/source"
)

func unterminated(t *testing.T) ([]diag.Diagnostic, *source.FileSet) {
	t.Helper()
	fs := source.NewFileSet()
	content := []byte("let x = \"unterminated string\n")
	fileID := fs.AddVirtual("/home/user/project/src/test.am", content)
	fs.SetBaseDir("/home/user/project")
	d := diag.New(diag.SevError, diag.LexUnterminatedString,
		source.Span{File: fileID, Start: 8, End: 28}, "Unterminated string literal")
	return []diag.Diagnostic{d}, fs
}

// TestPathModes проверяет различные режимы форматирования путей
func TestPathModes(t *testing.T) {
	diags, fs := unterminated(t)
	tests := []struct {
		name     string
		mode     PathMode
		contains string
	}{
		{"absolute", PathModeAbsolute, "/home/user/project/src/test.am:1:9: "},
		{"relative", PathModeRelative, "src/test.am:1:9: "},
		{"basename", PathModeBasename, "test.am:1:9: "},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			Pretty(&buf, diags, fs, PrettyOpts{PathMode: tt.mode})
			output := buf.String()
			if !strings.Contains(output, tt.contains) {
				t.Errorf("expected %q in:\n%s", tt.contains, output)
			}
			if !strings.Contains(output, "ERROR LEX1002: Unterminated string literal") {
				t.Errorf("missing header line:\n%s", output)
			}
		})
	}
}

func TestPrettySnippet(t *testing.T) {
	diags, fs := unterminated(t)
	var buf bytes.Buffer
	Pretty(&buf, diags, fs, PrettyOpts{PathMode: PathModeBasename})
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("want 3 lines, got %d:\n%s", len(lines), buf.String())
	}
	if lines[1] != "  1 | let x = \"unterminated string" {
		t.Errorf("unexpected source line %q", lines[1])
	}
	want := "    |         ^" + strings.Repeat("~", 19)
	if lines[2] != want {
		t.Errorf("unexpected underline\n got %q\nwant %q", lines[2], want)
	}
	if strings.Contains(buf.String(), "\x1b[") {
		t.Error("colour codes emitted with Color=false")
	}
}

func TestPrettyColorAndNotes(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("a.am", []byte("let a = 1;\nlet a = 2;\n"))
	d := diag.New(diag.SevError, diag.SemaDuplicateSymbol, source.Span{File: id, Start: 15, End: 16}, "'a' is already declared").
		WithNote(source.Span{File: id, Start: 4, End: 5}, "previous declaration here")

	var plain bytes.Buffer
	Pretty(&plain, []diag.Diagnostic{d}, fs, PrettyOpts{ShowNotes: true})
	if !strings.Contains(plain.String(), "note: a.am:1:5: previous declaration here") {
		t.Fatalf("note missing:\n%s", plain.String())
	}

	var colored bytes.Buffer
	Pretty(&colored, []diag.Diagnostic{d}, fs, PrettyOpts{Color: true})
	if !strings.Contains(colored.String(), "\x1b[") {
		t.Fatal("expected ANSI colour codes")
	}
	if strings.Contains(colored.String(), "note:") {
		t.Fatal("notes printed without ShowNotes")
	}
}

func TestPrettyContextAndMax(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("m.am", []byte("fn main() {\n    print(y);\n}\n"))
	mk := func(start uint32) diag.Diagnostic {
		return diag.New(diag.SevWarning, diag.SemaUnusedBinding, source.Span{File: id, Start: start, End: start + 1}, "w")
	}
	diags := []diag.Diagnostic{mk(22), mk(0), mk(1)}

	var buf bytes.Buffer
	Pretty(&buf, diags, fs, PrettyOpts{Context: 1, Max: 1})
	out := buf.String()
	if !strings.Contains(out, "  1 | fn main() {\n  2 |     print(y);\n") {
		t.Fatalf("context line missing:\n%s", out)
	}
	if !strings.Contains(out, "... and 2 more diagnostic(s)") {
		t.Fatalf("truncation note missing:\n%s", out)
	}
}

func TestSummary(t *testing.T) {
	diags := []diag.Diagnostic{
		{Severity: diag.SevError}, {Severity: diag.SevError}, {Severity: diag.SevWarning},
	}
	var buf bytes.Buffer
	Summary(&buf, diags, false)
	if buf.String() != "2 error(s), 1 warning(s)\n" {
		t.Fatalf("unexpected summary %q", buf.String())
	}
	buf.Reset()
	Summary(&buf, nil, false)
	if buf.Len() != 0 {
		t.Fatalf("empty list must print nothing, got %q", buf.String())
	}
}
