package middleware

import (
	"context"

	ruleset "github.com/restkit/ruleset"
)

// ctxKeyDocument is a typed context key for the validated document.
type ctxKeyDocument struct{}

// ContextWithDocument attaches a validated document to the context.
func ContextWithDocument(ctx context.Context, doc any) context.Context {
	return context.WithValue(ctx, ctxKeyDocument{}, doc)
}

// DocumentFromContext retrieves the validated document stored by a
// validation middleware.
func DocumentFromContext(ctx context.Context) (any, bool) {
	v := ctx.Value(ctxKeyDocument{})
	return v, v != nil
}

// ErrorPayload shapes field errors for JSON responses.
func ErrorPayload(errs []ruleset.FieldError) map[string]any {
	return map[string]any{"errors": errs}
}
