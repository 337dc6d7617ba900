package composables

import (
	"context"

	"github.com/oneacrefund/fieldops-console/pkg/constants"
)

// Session is the authenticated caller of one request: the upstream bearer
// credential presented by the operator plus where they came from.
type Session struct {
	Token     string
	Subject   string
	IP        string
	UserAgent string
}

// WithSession returns a new context carrying the session.
func WithSession(ctx context.Context, session *Session) context.Context {
	return context.WithValue(ctx, constants.SessionKey, session)
}

// UseSession returns the session from the context.
// If the session is not found, the second return value will be false.
func UseSession(ctx context.Context) (*Session, bool) {
	session, ok := ctx.Value(constants.SessionKey).(*Session)
	return session, ok
}

// MustUseSession returns the session or an error for handlers mounted
// behind the authorization middleware.
func MustUseSession(ctx context.Context) (*Session, error) {
	session, ok := UseSession(ctx)
	if !ok {
		return nil, ErrNoSession
	}
	return session, nil
}
