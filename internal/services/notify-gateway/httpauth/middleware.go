// Package httpauth resolves request credentials for the gateway's HTTP routes.
package httpauth

import (
	"context"
	"crypto/subtle"
	"net/http"

	"github.com/NordCoder/Classbell/internal/auth"
	"github.com/gin-gonic/gin"
)

const (
	InternalTokenHeader = "X-Internal-Token"

	detailUnauthenticated = "Authentication credentials were not provided."
)

type Authenticator interface {
	Resolve(ctx context.Context, token string) auth.Identity
}

type ctxKey int

const userIDKey ctxKey = 1

func UserIDFromCtx(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(userIDKey).(int64)
	return id, ok && id > 0
}

func WithUserID(ctx context.Context, id int64) context.Context {
	return context.WithValue(ctx, userIDKey, id)
}

// RequireUser rejects requests whose bearer token does not resolve to an
// active user.
func RequireUser(a Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		ident := a.Resolve(c.Request.Context(), auth.BearerToken(c.GetHeader("Authorization")))
		if ident.IsAnonymous() {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": detailUnauthenticated})
			return
		}
		c.Request = c.Request.WithContext(WithUserID(c.Request.Context(), ident.UserID))
		c.Next()
	}
}

// RequireInternalToken guards routes called by other backend services. With
// an empty key the routes stay mounted and answer 401 to every call.
func RequireInternalToken(key string) gin.HandlerFunc {
	return func(c *gin.Context) {
		got := c.GetHeader(InternalTokenHeader)
		if key == "" || subtle.ConstantTimeCompare([]byte(got), []byte(key)) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": detailUnauthenticated})
			return
		}
		c.Next()
	}
}
