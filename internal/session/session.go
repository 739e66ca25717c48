// Package session carries the authenticated user's identity through the
// request context. Handlers read it from here instead of trusting
// client-supplied fields.
package session

import "context"

type ctxKey struct{}

// Session is the verified identity extracted from a session token.
type Session struct {
	UserID string
	Email  string
}

// WithSession returns a copy of ctx with the session attached.
func WithSession(ctx context.Context, s Session) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

// FromContext extracts the session from ctx. ok is false for
// unauthenticated requests.
func FromContext(ctx context.Context) (Session, bool) {
	s, ok := ctx.Value(ctxKey{}).(Session)
	return s, ok
}
