package source

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"unicode/utf8"
)

// EncodingError reports source bytes that are not valid UTF-8.
type EncodingError struct {
	Path   string
	Offset int // first invalid byte
}

func (e *EncodingError) Error() string {
	return fmt.Sprintf("%s: invalid UTF-8 at byte offset %d", e.Path, e.Offset)
}

// ErrNotDirectory is returned by PrepareOutput when the parent is a regular file.
var ErrNotDirectory = errors.New("parent is not a directory")

func validateEncoding(path string, content []byte) error {
	if utf8.Valid(content) {
		return nil
	}
	off := 0
	for off < len(content) {
		r, size := utf8.DecodeRune(content[off:])
		if r == utf8.RuneError && size <= 1 {
			break
		}
		off += size
	}
	return &EncodingError{Path: path, Offset: off}
}

// PrepareOutput checks that path can be written later: its parent directory
// must exist, be a directory and accept new files. Nothing is created at path.
func PrepareOutput(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	if info, statErr := os.Stat(abs); statErr == nil && info.IsDir() {
		return "", fmt.Errorf("%s: output path is a directory", path)
	}
	dir := filepath.Dir(abs)
	info, err := os.Stat(dir)
	if err != nil {
		return "", err
	}
	if !info.IsDir() {
		return "", fmt.Errorf("%s: %w", dir, ErrNotDirectory)
	}
	// probe writability with a temp file that is removed immediately;
	// the output path itself stays untouched
	probe, err := os.CreateTemp(dir, ".amuletc-probe-*")
	if err != nil {
		return "", err
	}
	name := probe.Name()
	if cerr := probe.Close(); cerr != nil {
		return "", cerr
	}
	if rerr := os.Remove(name); rerr != nil {
		return "", rerr
	}
	return abs, nil
}
