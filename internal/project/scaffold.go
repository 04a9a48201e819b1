package project

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"
)

// InitResult lists what Init wrote.
type InitResult struct {
	Root        string
	Name        string
	CreatedMain bool
}

// Init creates amulet.toml and src/main.am in dir, creating dir if needed.
// It refuses to overwrite an existing manifest; an existing main.am is kept.
func Init(dir string) (*InitResult, error) {
	target, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}
	if st, err := os.Stat(target); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
		if err := os.MkdirAll(target, 0o750); err != nil {
			return nil, fmt.Errorf("failed to create directory %q: %w", target, err)
		}
	} else if !st.IsDir() {
		return nil, fmt.Errorf("%q is not a directory", target)
	}

	manifestPath := filepath.Join(target, ManifestName)
	if _, err := os.Stat(manifestPath); err == nil {
		return nil, fmt.Errorf("project already initialized: %s exists", manifestPath)
	}

	name := PackageName(filepath.Base(target))
	if err := os.WriteFile(manifestPath, []byte(DefaultManifest(name)), 0o600); err != nil {
		return nil, fmt.Errorf("failed to write manifest: %w", err)
	}

	res := &InitResult{Root: target, Name: name}
	srcDir := filepath.Join(target, "src")
	if err := os.MkdirAll(srcDir, 0o750); err != nil {
		return nil, err
	}
	mainPath := filepath.Join(srcDir, "main"+SourceExt)
	if _, err := os.Stat(mainPath); errors.Is(err, os.ErrNotExist) {
		if err := os.WriteFile(mainPath, []byte(defaultMain), 0o600); err != nil {
			return nil, fmt.Errorf("failed to write %s: %w", mainPath, err)
		}
		res.CreatedMain = true
	}
	return res, nil
}

// PackageName derives a manifest name from a directory name.
func PackageName(base string) string {
	name := strings.Map(func(r rune) rune {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r), r == '_', r == '-':
			return r
		case r == ' ' || r == '.':
			return '-'
		}
		return -1
	}, strings.TrimSpace(base))
	name = strings.Trim(name, "-")
	if name == "" {
		return "amulet-project"
	}
	return name
}

// DefaultManifest returns the manifest written by Init.
func DefaultManifest(name string) string {
	return fmt.Sprintf(`# amulet project manifest
[package]
name = %q
version = "0.1.0"

[build]
sources = ["src"]
out_dir = %q
cache = true
`, name, DefaultOutDir)
}

const defaultMain = `// Entry point.
fn greet(name: string) -> string {
    return "Hello, " + name + "!";
}

fn main() {
    print(greet("amulet"));
}
`
