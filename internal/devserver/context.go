package devserver

import "context"

type requestorKey struct{}

// WithRequestor stores the authenticated identity id in the context.
func WithRequestor(ctx context.Context, identityID string) context.Context {
	return context.WithValue(ctx, requestorKey{}, identityID)
}

// GetRequestor returns the authenticated identity id stored by AuthenticationMiddleware.
func GetRequestor(ctx context.Context) (string, bool) {
	identityID, ok := ctx.Value(requestorKey{}).(string)
	return identityID, ok && identityID != ""
}
