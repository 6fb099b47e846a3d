package testkit

import "testing"

func TestMustPanic_SeesPanic(t *testing.T) {
	t.Parallel()
	MustPanic(t, func() { panic("boom") })
}

func TestMustNotPanic_QuietFunc(t *testing.T) {
	t.Parallel()
	MustNotPanic(t, func() {})
}

func TestMustContain_Substring(t *testing.T) {
	t.Parallel()
	MustContain(t, "staff jobs appointments", "jobs")
}
