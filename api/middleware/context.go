package middleware

import "context"

type contextKey string

const (
	ctxOperator contextKey = "operator"
	ctxAccessID contextKey = "access_id"
)

// OperatorFromContext returns the authenticated operator name, if any.
func OperatorFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxOperator).(string); ok {
		return v
	}
	return ""
}

// AccessIDFromContext returns the session identifier of the bearer token.
func AccessIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxAccessID).(string); ok {
		return v
	}
	return ""
}

// WithOperator injects the operator and session identifiers into the context.
func WithOperator(ctx context.Context, operator, accessID string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = context.WithValue(ctx, ctxOperator, operator)
	return context.WithValue(ctx, ctxAccessID, accessID)
}
