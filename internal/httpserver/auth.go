package httpserver

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"fempowered-storefront/internal/domain"
	accountsvc "fempowered-storefront/internal/service/account"
)

const userCtxKey = "httpserver.user"

// authMiddleware resolves the bearer token to a user. With required it
// rejects unauthenticated requests; otherwise the request continues as a
// guest and handlers see no user.
func authMiddleware(accounts *accountsvc.Service, required bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			if required {
				respondError(c, http.StatusUnauthorized, "authentication required")
				c.Abort()
				return
			}
			c.Next()
			return
		}

		// The key may already be set by an outer optional pass.
		if _, ok := c.Get(userCtxKey); ok {
			c.Next()
			return
		}

		u, err := accounts.LookupByToken(c.Request.Context(), token)
		if err != nil {
			if errors.Is(err, accountsvc.ErrInvalidToken) {
				if required {
					respondError(c, http.StatusUnauthorized, "invalid token")
					c.Abort()
					return
				}
				c.Next()
				return
			}
			respondError(c, http.StatusInternalServerError, "internal error")
			c.Abort()
			return
		}
		c.Set(userCtxKey, u)
		c.Next()
	}
}

func bearerToken(c *gin.Context) string {
	h := c.GetHeader("Authorization")
	const prefix = "Bearer "
	if !strings.HasPrefix(h, prefix) {
		return ""
	}
	return strings.TrimSpace(h[len(prefix):])
}

func currentUser(c *gin.Context) (*domain.User, bool) {
	v, ok := c.Get(userCtxKey)
	if !ok {
		return nil, false
	}
	u, ok := v.(*domain.User)
	return u, ok
}

// currentUserID is nil for guests.
func currentUserID(c *gin.Context) *int64 {
	u, ok := currentUser(c)
	if !ok {
		return nil
	}
	id := u.ID
	return &id
}
