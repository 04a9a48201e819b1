package source

import "testing"

func TestSpanCover(t *testing.T) {
	tests := []struct {
		name     string
		a, b     Span
		expected Span
	}{
		{"disjoint", Span{File: 1, Start: 2, End: 4}, Span{File: 1, Start: 8, End: 9}, Span{File: 1, Start: 2, End: 9}},
		{"nested", Span{File: 1, Start: 2, End: 10}, Span{File: 1, Start: 4, End: 5}, Span{File: 1, Start: 2, End: 10}},
		{"other file ignored", Span{File: 1, Start: 2, End: 4}, Span{File: 2, Start: 0, End: 50}, Span{File: 1, Start: 2, End: 4}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Cover(tt.b); got != tt.expected {
				t.Errorf("Cover() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestSpanContains(t *testing.T) {
	outer := Span{File: 0, Start: 3, End: 10}
	if !outer.Contains(Span{File: 0, Start: 3, End: 10}) {
		t.Error("span must contain itself")
	}
	if outer.Contains(Span{File: 0, Start: 2, End: 5}) {
		t.Error("span starting earlier must not be contained")
	}
	if outer.Contains(Span{File: 1, Start: 4, End: 5}) {
		t.Error("span from another file must not be contained")
	}
}

func TestInterner(t *testing.T) {
	in := NewInterner()
	a := in.Intern("alpha")
	if a == NoStringID {
		t.Fatal("non-empty string got NoStringID")
	}
	if again := in.Intern("alpha"); again != a {
		t.Errorf("re-interning changed id: %d vs %d", again, a)
	}
	if s := in.MustLookup(a); s != "alpha" {
		t.Errorf("lookup mismatch: %q", s)
	}
	if _, ok := in.Lookup(StringID(99)); ok {
		t.Error("unknown id must not resolve")
	}
	if in.Len() != 2 {
		t.Errorf("expected 2 entries, got %d", in.Len())
	}
}
