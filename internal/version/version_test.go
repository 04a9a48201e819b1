package version

import (
	"testing"

	"github.com/fatih/color"
)

func TestVersion_DefaultValues(t *testing.T) {
	if Version == "" {
		t.Error("Version should have a default value")
	}
	if got := String(); got != Version {
		t.Errorf("String() = %q, want %q", got, Version)
	}
}

func TestVersion_EmptyFallsBackToDev(t *testing.T) {
	orig := Version
	defer func() { Version = orig }()

	Version = "  "
	if got := String(); got != "dev" {
		t.Errorf("String() = %q, want dev", got)
	}
	if got := Colored(); got != "dev" {
		t.Errorf("Colored() = %q, want dev", got)
	}
}

func TestVersion_ColoredKeepsText(t *testing.T) {
	orig, origNoColor := Version, color.NoColor
	defer func() { Version, color.NoColor = orig, origNoColor }()
	color.NoColor = true

	cases := map[string]string{
		"0.1.0-dev":            "0.1.0-dev",
		"1.2.3":                "1.2.3",
		"1.2.3-rc.1+build.123": "1.2.3-rc.1+build.123",
		"nightly":              "nightly",
	}
	for in, want := range cases {
		Version = in
		if got := Colored(); got != want {
			t.Errorf("Colored() for %q = %q, want %q", in, got, want)
		}
	}
}

func TestVersion_ColoredAddsEscapes(t *testing.T) {
	orig, origNoColor := Version, color.NoColor
	defer func() { Version, color.NoColor = orig, origNoColor }()
	color.NoColor = false

	Version = "1.2.3"
	if got := Colored(); got == "1.2.3" {
		t.Errorf("Colored() = %q, expected escape sequences", got)
	}
}

func BenchmarkVersionAccess(b *testing.B) {
	b.Run("String", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			_ = String()
		}
	})
	b.Run("Colored", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			_ = Colored()
		}
	})
}
