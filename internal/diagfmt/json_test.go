package diagfmt

import (
	"bytes"
	"encoding/json"
	"testing"

	"amulet/internal/diag"
	"amulet/internal/source"
)

func TestJSONOutput(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("j.am", []byte("let a = 1;\nlet a = 2;\n"))
	diags := []diag.Diagnostic{
		diag.New(diag.SevError, diag.SemaDuplicateSymbol, source.Span{File: id, Start: 15, End: 16}, "dup").
			WithNote(source.Span{File: id, Start: 4, End: 5}, "previous declaration here"),
		diag.New(diag.SevWarning, diag.SemaUnusedBinding, source.Span{File: id, Start: 4, End: 5}, "unused"),
	}

	var buf bytes.Buffer
	if err := JSON(&buf, diags, fs, JSONOpts{IncludePositions: true, IncludeNotes: true, Max: 1}); err != nil {
		t.Fatal(err)
	}
	var out DiagnosticsOutput
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, buf.String())
	}
	if out.Count != 1 || out.Errors != 1 || out.Warnings != 1 {
		t.Fatalf("unexpected counters %+v", out)
	}
	d := out.Diagnostics[0]
	if d.Code != "SEM3002" || d.Category != "NameError" || d.Severity != "ERROR" {
		t.Fatalf("unexpected diagnostic %+v", d)
	}
	if d.Location.File != "j.am" || d.Location.StartLine != 2 || d.Location.StartCol != 5 {
		t.Fatalf("unexpected location %+v", d.Location)
	}
	if len(d.Notes) != 1 || d.Notes[0].Location.StartLine != 1 {
		t.Fatalf("unexpected notes %+v", d.Notes)
	}

	plain := BuildDiagnosticsOutput(diags, fs, JSONOpts{})
	if plain.Diagnostics[0].Location.StartLine != 0 || plain.Diagnostics[0].Notes != nil {
		t.Fatalf("positions and notes must be opt-in: %+v", plain.Diagnostics[0])
	}
}
