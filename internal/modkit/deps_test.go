package modkit

import (
	"testing"

	"fieldops/internal/platform/config"
)

// Deps must be safe to use uninitialized so tests can construct modules bare
func TestDeps_ZeroOK(t *testing.T) {
	t.Parallel()

	var zero Deps
	if !zero.ZeroOK() {
		t.Fatal("zero-value Deps should report ZeroOK")
	}

	partial := Deps{Cfg: config.New()} // Log deliberately left zero
	if !partial.ZeroOK() {
		t.Fatal("partially filled Deps should report ZeroOK")
	}
}
