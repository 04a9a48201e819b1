// Package project reads the amulet.toml manifest that describes a
// multi-file build.
package project

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// ManifestName is the file searched for by FindManifest.
const ManifestName = "amulet.toml"

// ErrNoManifest is returned by Discover when no amulet.toml exists up the tree.
var ErrNoManifest = errors.New("no " + ManifestName + " found")

// Manifest is a decoded amulet.toml plus its location.
type Manifest struct {
	Path   string // absolute path of amulet.toml
	Root   string // directory containing it
	Config Config
}

// Config mirrors the TOML document.
type Config struct {
	Package PackageConfig `toml:"package"`
	Build   BuildConfig   `toml:"build"`
}

type PackageConfig struct {
	Name    string `toml:"name"`
	Version string `toml:"version"`
}

// BuildConfig controls `amuletc build`.
type BuildConfig struct {
	Sources        []string `toml:"sources"` // files or directories, relative to Root
	OutDir         string   `toml:"out_dir"`
	Jobs           int      `toml:"jobs"` // 0 = GOMAXPROCS
	Cache          bool     `toml:"cache"`
	MaxDiagnostics int      `toml:"max_diagnostics"`
}

// Defaults applied to keys the manifest leaves out.
const (
	DefaultOutDir         = "build"
	DefaultMaxDiagnostics = 100
)

// FindManifest walks up from startDir to locate amulet.toml.
func FindManifest(startDir string) (path string, ok bool, err error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, ManifestName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// Discover finds and loads the manifest governing startDir.
func Discover(startDir string) (*Manifest, error) {
	path, ok, err := FindManifest(startDir)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%s: %w", startDir, ErrNoManifest)
	}
	return Load(path)
}

// Load decodes and validates the manifest at path.
func Load(path string) (*Manifest, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	meta, err := toml.DecodeFile(abs, &cfg)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if err := validate(path, meta, &cfg); err != nil {
		return nil, err
	}
	return &Manifest{Path: abs, Root: filepath.Dir(abs), Config: cfg}, nil
}

func validate(path string, meta toml.MetaData, cfg *Config) error {
	if !meta.IsDefined("package") {
		return fmt.Errorf("%s: missing [package]", path)
	}
	if !meta.IsDefined("package", "name") || strings.TrimSpace(cfg.Package.Name) == "" {
		return fmt.Errorf("%s: missing [package].name", path)
	}
	if len(cfg.Build.Sources) == 0 {
		return fmt.Errorf("%s: [build].sources must list at least one file or directory", path)
	}
	for _, src := range cfg.Build.Sources {
		if strings.TrimSpace(src) == "" {
			return fmt.Errorf("%s: [build].sources contains an empty entry", path)
		}
	}
	if cfg.Build.Jobs < 0 {
		return fmt.Errorf("%s: [build].jobs must not be negative", path)
	}
	if undec := meta.Undecoded(); len(undec) > 0 {
		keys := make([]string, 0, len(undec))
		for _, k := range undec {
			keys = append(keys, k.String())
		}
		return fmt.Errorf("%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}

	if !meta.IsDefined("build", "out_dir") || strings.TrimSpace(cfg.Build.OutDir) == "" {
		cfg.Build.OutDir = DefaultOutDir
	}
	if !meta.IsDefined("build", "cache") {
		cfg.Build.Cache = true
	}
	if !meta.IsDefined("build", "max_diagnostics") {
		cfg.Build.MaxDiagnostics = DefaultMaxDiagnostics
	}
	return nil
}
