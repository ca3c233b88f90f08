// Package contexthelpers carries request-scoped values through context.
package contexthelpers

import (
	"context"
	"net/http"
)

type contextKey string

const userIDContextKey = contextKey("userID")
const currentPathContextKey = contextKey("currentPath")

// UserID returns the session user identifier from the context, or the empty
// string when no user has been associated with the request.
func UserID(ctx context.Context) string {
	userID, ok := ctx.Value(userIDContextKey).(string)
	if !ok {
		return ""
	}
	return userID
}

// CurrentPath returns the request path stored in the context.
func CurrentPath(ctx context.Context) string {
	currentPath, ok := ctx.Value(currentPathContextKey).(string)
	if !ok {
		return ""
	}
	return currentPath
}

// SetUserID associates the session user identifier with the request context.
func SetUserID(r *http.Request, userID string) *http.Request {
	ctx := context.WithValue(r.Context(), userIDContextKey, userID)
	return r.WithContext(ctx)
}

// SetCurrentPath stores the request path in the request context.
func SetCurrentPath(r *http.Request, currentPath string) *http.Request {
	ctx := context.WithValue(r.Context(), currentPathContextKey, currentPath)
	return r.WithContext(ctx)
}
