package project

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
}

func TestLoadDefaults(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, ManifestName), "[package]\nname = \"demo\"\n[build]\nsources = [\"src\"]\n")

	m, err := Load(filepath.Join(root, ManifestName))
	if err != nil {
		t.Fatal(err)
	}
	if m.Config.Package.Name != "demo" || m.Config.Build.OutDir != DefaultOutDir {
		t.Fatalf("unexpected config %+v", m.Config)
	}
	if !m.Config.Build.Cache || m.Config.Build.MaxDiagnostics != DefaultMaxDiagnostics {
		t.Fatalf("defaults not applied: %+v", m.Config.Build)
	}
	if m.Root != root {
		t.Fatalf("root = %q, want %q", m.Root, root)
	}
}

func TestLoadExplicitValues(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, ManifestName), `[package]
name = "demo"
[build]
sources = ["a.am"]
out_dir = "out"
jobs = 3
cache = false
max_diagnostics = 5
`)
	m, err := Load(filepath.Join(root, ManifestName))
	if err != nil {
		t.Fatal(err)
	}
	b := m.Config.Build
	if b.OutDir != "out" || b.Jobs != 3 || b.Cache || b.MaxDiagnostics != 5 {
		t.Fatalf("unexpected build config %+v", b)
	}
}

func TestLoadErrors(t *testing.T) {
	cases := []struct {
		name, content, want string
	}{
		{"no package", "[build]\nsources = [\"src\"]\n", "missing [package]"},
		{"no name", "[package]\nversion = \"1\"\n[build]\nsources = [\"src\"]\n", "missing [package].name"},
		{"blank name", "[package]\nname = \"  \"\n[build]\nsources = [\"src\"]\n", "missing [package].name"},
		{"no sources", "[package]\nname = \"x\"\n", "[build].sources"},
		{"empty sources", "[package]\nname = \"x\"\n[build]\nsources = []\n", "[build].sources"},
		{"negative jobs", "[package]\nname = \"x\"\n[build]\nsources = [\"s\"]\njobs = -1\n", "jobs"},
		{"unknown key", "[package]\nname = \"x\"\nauthor = \"y\"\n[build]\nsources = [\"s\"]\n", "unknown keys: package.author"},
		{"bad toml", "[package\n", "failed to parse TOML"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), ManifestName)
			writeFile(t, path, tc.content)
			_, err := Load(path)
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("want error containing %q, got %v", tc.want, err)
			}
		})
	}
}

func TestDiscoverWalksUp(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, ManifestName), "[package]\nname = \"demo\"\n[build]\nsources = [\"src\"]\n")
	deep := filepath.Join(root, "src", "nested")
	if err := os.MkdirAll(deep, 0o750); err != nil {
		t.Fatal(err)
	}
	m, err := Discover(deep)
	if err != nil {
		t.Fatal(err)
	}
	if m.Path != filepath.Join(root, ManifestName) {
		t.Fatalf("found %q", m.Path)
	}

	// t.TempDir() is never below a manifest in a clean environment
	if _, err := Discover(t.TempDir()); !errors.Is(err, ErrNoManifest) {
		t.Fatalf("want ErrNoManifest, got %v", err)
	}
}

func TestSourceFilesAndArtifacts(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "src", "b.am"), "")
	writeFile(t, filepath.Join(root, "src", "a.am"), "")
	writeFile(t, filepath.Join(root, "src", "sub", "c.am"), "")
	writeFile(t, filepath.Join(root, "src", "notes.txt"), "")
	writeFile(t, filepath.Join(root, "extra.am"), "")
	m := &Manifest{
		Path: filepath.Join(root, ManifestName),
		Root: root,
		Config: Config{Build: BuildConfig{
			Sources: []string{"src", "extra.am", "src/a.am"},
			OutDir:  "build",
		}},
	}

	files, err := m.SourceFiles()
	if err != nil {
		t.Fatal(err)
	}
	want := []string{
		filepath.Join(root, "extra.am"),
		filepath.Join(root, "src", "a.am"),
		filepath.Join(root, "src", "b.am"),
		filepath.Join(root, "src", "sub", "c.am"),
	}
	if strings.Join(files, "\n") != strings.Join(want, "\n") {
		t.Fatalf("got %v\nwant %v", files, want)
	}

	art := m.ArtifactPath(filepath.Join(root, "src", "sub", "c.am"))
	if art != filepath.Join(root, "build", "src", "sub", "c.amasm") {
		t.Fatalf("artifact path %q", art)
	}

	m.Config.Build.Sources = []string{"src/notes.txt"}
	if _, err := m.SourceFiles(); err == nil {
		t.Fatal("expected error for non-.am source")
	}
	m.Config.Build.Sources = []string{"missing"}
	if _, err := m.SourceFiles(); err == nil {
		t.Fatal("expected error for missing source")
	}
}

func TestInit(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "My Project")
	res, err := Init(dir)
	if err != nil {
		t.Fatal(err)
	}
	if res.Name != "My-Project" || !res.CreatedMain {
		t.Fatalf("unexpected result %+v", res)
	}
	m, err := Load(filepath.Join(dir, ManifestName))
	if err != nil {
		t.Fatalf("generated manifest does not load: %v", err)
	}
	files, err := m.SourceFiles()
	if err != nil || len(files) != 1 || filepath.Base(files[0]) != "main.am" {
		t.Fatalf("unexpected sources %v, %v", files, err)
	}
	if _, err := Init(dir); err == nil {
		t.Fatal("second Init must refuse to overwrite")
	}
}

func TestCacheKey(t *testing.T) {
	var content Digest
	content[0] = 1
	a := CacheKey(content, "a.am", "0.1.0")
	if a != CacheKey(content, "a.am", "0.1.0") {
		t.Fatal("cache key is not deterministic")
	}
	if a == CacheKey(content, "a.am", "0.2.0") {
		t.Fatal("version must change the key")
	}
	if a == CacheKey(content, "b.am", "0.1.0") {
		t.Fatal("source name must change the key")
	}
	// длины полей входят в хеш: перенос байтов между полями даёт другой ключ
	if CacheKey(content, "ab", "c") == CacheKey(content, "a", "bc") {
		t.Fatal("field boundaries must be part of the key")
	}
	if len(a.String()) != 64 {
		t.Fatalf("hex digest %q", a.String())
	}
}
