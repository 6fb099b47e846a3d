package store

import (
	"context"
	"testing"
)

// TestRequestID_SetAndGet sets a request id and retrieves it
func TestRequestID_SetAndGet(t *testing.T) {
	t.Parallel()

	ctx := WithRequestID(context.Background(), "req-1")

	id, ok := RequestID(ctx)
	if !ok {
		t.Fatalf("RequestID not found")
	}
	if id != "req-1" {
		t.Fatalf("RequestID mismatch got=%q want=%q", id, "req-1")
	}
}

// TestRequestID_EmptyString reports false when empty string is stored
func TestRequestID_EmptyString(t *testing.T) {
	t.Parallel()

	ctx := WithRequestID(context.Background(), "")

	if _, ok := RequestID(ctx); ok {
		t.Fatalf("empty request id should report ok=false")
	}
}

// TestRequestID_Absent reports false on a bare context
func TestRequestID_Absent(t *testing.T) {
	t.Parallel()

	if _, ok := RequestID(context.Background()); ok {
		t.Fatalf("bare context should report ok=false")
	}
}
