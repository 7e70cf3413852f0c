package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/xtopay/checkout-backend/auth"
	apperrors "github.com/xtopay/checkout-backend/common/errors"
)

// CredentialsContextKey holds the parsed auth.Credentials on the gin context.
const CredentialsContextKey = "apiCredentials"

// BasicAuth requires merchant API credentials in the Authorization header.
// It only checks the header shape; matching against a business happens in
// the service layer.
func BasicAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		creds, ok := auth.ParseBasicAuth(c.GetHeader("Authorization"))
		if !ok {
			apperrors.Respond(c, apperrors.ErrAuthMissing)
			return
		}

		c.Set(CredentialsContextKey, creds)
		c.Next()
	}
}

// CredentialsFrom returns the credentials stored by BasicAuth.
func CredentialsFrom(c *gin.Context) (auth.Credentials, bool) {
	if val, ok := c.Get(CredentialsContextKey); ok {
		if creds, ok := val.(auth.Credentials); ok {
			return creds, true
		}
	}
	return auth.Credentials{}, false
}
