package middleware

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RequestIDHeader carries the request correlation id. Incoming values are
// kept only when they parse as a UUID; anything else is replaced.
const RequestIDHeader = "X-Request-ID"

type contextKey string

const (
	ctxKeyRequestID contextKey = "request_id"
	ctxKeyIdentity  contextKey = "identity"
)

// Identity is the authenticated principal attached to a request context.
// Anonymous requests (public reporting routes) carry no identity.
type Identity struct {
	UserID string
	Email  string
}

// RequestID assigns each request a correlation id and echoes it in the
// response header.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.GetHeader(RequestIDHeader)
		if _, err := uuid.Parse(rid); err != nil {
			id, _ := uuid.NewV7()
			rid = id.String()
		}
		c.Writer.Header().Set(RequestIDHeader, rid)
		c.Request = c.Request.WithContext(
			context.WithValue(c.Request.Context(), ctxKeyRequestID, rid),
		)
		c.Next()
	}
}

// GetRequestID extracts the correlation id from context.
func GetRequestID(ctx context.Context) string {
	if v, ok := ctx.Value(ctxKeyRequestID).(string); ok {
		return v
	}
	return ""
}

// WithIdentity attaches the authenticated principal to the context.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, ctxKeyIdentity, id)
}

// IdentityFrom returns the authenticated principal, if any.
func IdentityFrom(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(ctxKeyIdentity).(Identity)
	return id, ok
}

// GetUserID returns the authenticated user's id, or "" for anonymous
// requests.
func GetUserID(ctx context.Context) string {
	id, _ := IdentityFrom(ctx)
	return id.UserID
}
