package middleware

import (
	"context"

	"tutorgo-backend/internal/models"
)

type contextKey string

const userContextKey contextKey = "auth_user"

// WithUser returns a context carrying the authenticated user
func WithUser(ctx context.Context, user models.User) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

// UserFromContext extracts the authenticated user attached by the auth
// middleware. ok is false on routes where no identity was resolved.
func UserFromContext(ctx context.Context) (models.User, bool) {
	user, ok := ctx.Value(userContextKey).(models.User)
	return user, ok
}
