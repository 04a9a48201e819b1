package types

import "testing"

func TestBuiltinsAreDistinct(t *testing.T) {
	in := NewInterner()
	b := in.Builtins()
	ids := []TypeID{b.Error, b.Unit, b.Bool, b.String, b.Int, b.Float}
	seen := map[TypeID]bool{}
	for _, id := range ids {
		if !id.IsValid() {
			t.Fatalf("builtin has no id")
		}
		if seen[id] {
			t.Fatalf("duplicate builtin id %d", id)
		}
		seen[id] = true
	}
	if got, ok := in.ByName("float"); !ok || got != b.Float {
		t.Fatalf("ByName(float) = %d, %v", got, ok)
	}
	if _, ok := in.ByName("i32"); ok {
		t.Fatalf("unexpected primitive i32")
	}
}

func TestRegisterFnDedup(t *testing.T) {
	in := NewInterner()
	b := in.Builtins()
	f1 := in.RegisterFn([]TypeID{b.Int, b.Int}, b.Int)
	f2 := in.RegisterFn([]TypeID{b.Int, b.Int}, b.Int)
	f3 := in.RegisterFn([]TypeID{b.Int}, b.Int)
	if f1 != f2 {
		t.Fatalf("same signature interned twice: %d vs %d", f1, f2)
	}
	if f1 == f3 {
		t.Fatalf("different signatures share an id")
	}
	if got := in.Format(f1); got != "fn(int, int) -> int" {
		t.Fatalf("Format = %q", got)
	}
	info, ok := in.FnInfo(f3)
	if !ok || len(info.Params) != 1 || info.Result != b.Int {
		t.Fatalf("FnInfo = %+v, %v", info, ok)
	}
}

func TestErrorType(t *testing.T) {
	in := NewInterner()
	if !in.IsError(NoTypeID) || !in.IsError(in.Builtins().Error) {
		t.Fatalf("error type not recognised")
	}
	if in.IsError(in.Builtins().Int) {
		t.Fatalf("int reported as error")
	}
}
