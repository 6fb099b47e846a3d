package store

import "context"

type reqIDKey struct{}

// WithRequestID attaches a request id to the context
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, reqIDKey{}, id)
}

// RequestID retrieves a request id from context if present
func RequestID(ctx context.Context) (string, bool) {
	s, _ := ctx.Value(reqIDKey{}).(string)
	return s, s != ""
}
