package diag

import (
	"testing"

	"amulet/internal/source"
)

func TestFormatGoldenDiagnostics(t *testing.T) {
	fs := source.NewFileSet()
	fs.SetBaseDir("/workspace")

	userFile := fs.Add("/workspace/testdata/golden/sample.am", []byte("a\nb\n"), 0)

	diags := []Diagnostic{
		{
			Severity: SevWarning,
			Code:     SemaUnusedBinding,
			Message:  "another",
			Primary:  source.Span{File: userFile, Start: 2, End: 3},
		},
		{
			Severity: SevError,
			Code:     SynUnexpectedToken,
			Message:  "first line\nsecond",
			Primary:  source.Span{File: userFile, Start: 0, End: 1},
			Notes: []Note{
				{Span: source.Span{File: userFile, Start: 2, End: 3}, Msg: "note line"},
			},
		},
	}

	expected := "error SYN2001 testdata/golden/sample.am:1:1 first line second\n" +
		"note SYN2001 testdata/golden/sample.am:2:1 note line\n" +
		"warning SEM3200 testdata/golden/sample.am:2:1 another"

	if got := FormatGoldenDiagnostics(diags, fs, true); got != expected {
		t.Fatalf("unexpected golden diagnostics:\nwant:\n%s\n\ngot:\n%s", expected, got)
	}
}

func TestFormatShortKeepsOrder(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("mem.am", []byte("x\ny\n"))
	diags := []Diagnostic{
		NewError(SemaTypeMismatch, source.Span{File: id, Start: 2, End: 3}, "late"),
		NewError(SemaTypeMismatch, source.Span{File: id, Start: 0, End: 1}, "early"),
	}

	expected := "error SEM3100 mem.am:2:1 late\n" +
		"error SEM3100 mem.am:1:1 early"
	if got := FormatShortDiagnostics(diags, fs, false); got != expected {
		t.Fatalf("want:\n%s\ngot:\n%s", expected, got)
	}
}
