package services

import "context"

// Distinct key types keep these values from colliding with other packages'
// context keys.
type (
	requestIDKey struct{}
	operationKey struct{}
)

// WithRequestID annotates ctx with the correlation id of one resolution or
// fetch. Empty ids leave ctx unchanged.
func WithRequestID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestIDFromContext extracts the correlation identifier if present.
func RequestIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(requestIDKey{}).(string)
	return id, ok && id != ""
}

// EnsureRequestID returns ctx unchanged when it already carries an id and
// otherwise attaches one from newID. Nested operations keep the outer id.
func EnsureRequestID(ctx context.Context, newID func() string) context.Context {
	if _, ok := RequestIDFromContext(ctx); ok {
		return ctx
	}
	return WithRequestID(ctx, newID())
}

// WithOperation annotates ctx with the resolver operation name
// (resolve, search, details, images, genres).
func WithOperation(ctx context.Context, operation string) context.Context {
	if operation == "" {
		return ctx
	}
	return context.WithValue(ctx, operationKey{}, operation)
}

// OperationFromContext returns the operation name if present.
func OperationFromContext(ctx context.Context) (string, bool) {
	op, ok := ctx.Value(operationKey{}).(string)
	return op, ok && op != ""
}
