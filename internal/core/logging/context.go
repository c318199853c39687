package logging

import "context"

type contextKey string

const (
	storeKey     contextKey = "store"
	operationKey contextKey = "operation"
)

// WithStore tags the context with the name of the store handling a call.
func WithStore(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, storeKey, name)
}

// WithOperation tags the context with the operation being performed.
func WithOperation(ctx context.Context, op string) context.Context {
	return context.WithValue(ctx, operationKey, op)
}

// GetStore retrieves the store name from the context.
// Returns empty string if not present.
func GetStore(ctx context.Context) string {
	if name, ok := ctx.Value(storeKey).(string); ok {
		return name
	}
	return ""
}

// GetOperation retrieves the operation from the context.
// Returns empty string if not present.
func GetOperation(ctx context.Context) string {
	if op, ok := ctx.Value(operationKey).(string); ok {
		return op
	}
	return ""
}
