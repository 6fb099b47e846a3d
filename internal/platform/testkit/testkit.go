// Package testkit provides small assertion helpers for tests
package testkit

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func catch(fn func()) (v any, panicked bool) {
	defer func() {
		if r := recover(); r != nil {
			v, panicked = r, true
		}
	}()
	fn()
	return nil, false
}

// MustPanic asserts that fn panics
func MustPanic(t *testing.T, fn func()) {
	t.Helper()
	if _, panicked := catch(fn); !panicked {
		t.Fatalf("expected panic, got none")
	}
}

// MustNotPanic asserts that fn does not panic
func MustNotPanic(t *testing.T, fn func()) {
	t.Helper()
	if v, panicked := catch(fn); panicked {
		t.Fatalf("unexpected panic: %v", v)
	}
}

// MustContain asserts that haystack contains needle. On failure the full
// haystack is written to a temp file for inspection
func MustContain(t *testing.T, haystack, needle string) {
	t.Helper()
	if strings.Contains(haystack, needle) {
		return
	}
	tmpfile := filepath.Join(t.TempDir(), "test_output.txt")
	_ = os.WriteFile(tmpfile, []byte(haystack), 0o600)
	t.Fatalf("expected output to contain %q\n\nfull output written to %s", needle, tmpfile)
}
