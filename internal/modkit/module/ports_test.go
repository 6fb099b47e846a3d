package module

import (
	"testing"

	pstrings "fieldops/internal/platform/strings"

	"fieldops/internal/modkit/httpkit"
)

// SlotPort is a tiny test interface that our Ports() payloads can implement
type SlotPort interface {
	Slots() int
}

type slotImpl struct{ v int }

func (s slotImpl) Slots() int { return s.v }

// fakeModule is a small module double for tests
type fakeModule struct {
	name  string
	ports any
}

func (m fakeModule) Name() string               { return m.name }
func (m fakeModule) Ports() PortSet             { return m.ports }
func (m fakeModule) MountRoutes(httpkit.Router) {} // no-op, satisfies Module

func TestPortsOf_NilPorts(t *testing.T) {
	t.Parallel()

	m := fakeModule{name: "nilPorts", ports: nil}
	if _, ok := PortsOf[SlotPort](m); ok {
		t.Fatalf("expected ok=false when Ports() is nil")
	}
}

func TestPortsOf_DirectInterfaceMatch(t *testing.T) {
	t.Parallel()

	want := slotImpl{v: 42}
	m := fakeModule{name: "direct", ports: SlotPort(want)}

	got, ok := PortsOf[SlotPort](m)
	if !ok {
		t.Fatalf("expected ok=true for direct interface match")
	}
	if got.Slots() != 42 {
		t.Fatalf("unexpected Slots value, got %d want 42", got.Slots())
	}
}

func TestPortsOf_StructBundle_ExportedField(t *testing.T) {
	t.Parallel()

	// Exported field should be discoverable
	type Ports struct {
		Slot SlotPort
		Bar  int
	}
	want := slotImpl{v: 7}
	m := fakeModule{
		name:  "bundle",
		ports: Ports{Slot: want, Bar: 1},
	}

	got, ok := PortsOf[SlotPort](m)
	if !ok {
		t.Fatalf("expected ok=true when bundle has exported Slot field")
	}
	if got.Slots() != 7 {
		t.Fatalf("unexpected Slots value, got %d want 7", got.Slots())
	}
}

func TestPortsOf_StructBundle_UnexportedField_Ignored(t *testing.T) {
	t.Parallel()

	// Unexported field should be ignored by PortsOf
	type ports struct {
		slot SlotPort // unexported
		bar  int
	}
	m := fakeModule{
		name:  "unexported",
		ports: ports{slot: slotImpl{v: 1}, bar: 2},
	}

	if _, ok := PortsOf[SlotPort](m); ok {
		t.Fatalf("expected ok=false when only unexported field implements T")
	}
}

func TestMustPortsOf_PanicsWithModuleName(t *testing.T) {
	t.Parallel()

	m := fakeModule{name: "schedule", ports: nil}

	defer func() {
		r := recover()
		if r == nil {
			t.Fatalf("expected panic from MustPortsOf when port missing")
		}
		msg, _ := r.(string)
		if msg == "" || !pstrings.Contains(msg, "schedule") || !pstrings.Contains(msg, "requested port not found") {
			t.Fatalf("panic message should include module name and hint, got %q", msg)
		}
	}()

	_ = MustPortsOf[SlotPort](m) // should panic
}

func TestMustPortsOf_ReturnsValue(t *testing.T) {
	t.Parallel()

	// fakeModule and SlotPort/slotImpl are already defined above in this file
	m := fakeModule{
		name:  "ok",
		ports: SlotPort(slotImpl{v: 99}), // direct match so PortsOf succeeds
	}

	defer func() {
		if r := recover(); r != nil {
			t.Fatalf("did not expect panic, got %v", r)
		}
	}()

	got := MustPortsOf[SlotPort](m) // should not panic; should return the value
	if got.Slots() != 99 {
		t.Fatalf("unexpected Slots value from MustPortsOf, got %d want 99", got.Slots())
	}
}
