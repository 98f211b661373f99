package middleware

import (
	"crypto/subtle"
	"strings"

	"github.com/gin-gonic/gin"

	"media-notes/internal/api/errors"
	"media-notes/internal/app/accounts"
)

// AccountIDKey is the gin context key holding the authenticated account id
const AccountIDKey = "account_id"

// BearerAuth accepts requests carrying a valid HS256 token and stores the
// account id from its subject in the context
func BearerAuth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, found := strings.CutPrefix(header, "Bearer ")
		if !found || strings.TrimSpace(token) == "" {
			HandleError(c, errors.NewUnauthorizedError("missing bearer token"))
			return
		}

		accountID, err := accounts.ParseToken(secret, strings.TrimSpace(token))
		if err != nil {
			_ = c.Error(err)
			HandleError(c, errors.NewUnauthorizedError("invalid or expired token"))
			return
		}

		c.Set(AccountIDKey, accountID)
		c.Next()
	}
}

// WebhookSecret guards payment callbacks with a shared secret sent in the
// X-Webhook-Secret header. An empty secret disables the route.
func WebhookSecret(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if secret == "" {
			HandleError(c, errors.NewServiceUnavailableError("payment webhook is not configured"))
			return
		}
		got := c.GetHeader("X-Webhook-Secret")
		if subtle.ConstantTimeCompare([]byte(got), []byte(secret)) != 1 {
			HandleError(c, errors.NewForbiddenError("invalid webhook secret"))
			return
		}
		c.Next()
	}
}

// AccountID returns the id set by BearerAuth
func AccountID(c *gin.Context) (int64, bool) {
	v, ok := c.Get(AccountIDKey)
	if !ok {
		return 0, false
	}
	id, ok := v.(int64)
	return id, ok
}
