package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"numbersapi/internal/services"
)

const identityKey = "identity"

// IdentityDecoder is the part of the token service the middleware needs.
type IdentityDecoder interface {
	Decode(token string) (*services.Identity, bool)
}

// bearerToken returns "" unless the header is "Bearer <token>".
func bearerToken(c *gin.Context) string {
	authHeader := strings.TrimSpace(c.GetHeader("Authorization"))
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// Identity attaches the caller's identity when the request carries a valid
// bearer token. A missing or bad token is not an error here; routes that
// need an identity add RequireIdentity.
func Identity(tokens IdentityDecoder) gin.HandlerFunc {
	return func(c *gin.Context) {
		// preflight не трогаем
		if c.Request.Method == http.MethodOptions {
			c.Next()
			return
		}
		if tok := bearerToken(c); tok != "" {
			if id, ok := tokens.Decode(tok); ok {
				c.Set(identityKey, id)
			}
		}
		c.Next()
	}
}

// RequireIdentity rejects requests that Identity left anonymous.
func RequireIdentity() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := GetIdentity(c); !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		c.Next()
	}
}

func GetIdentity(c *gin.Context) (*services.Identity, bool) {
	v, ok := c.Get(identityKey)
	if !ok {
		return nil, false
	}
	id, ok := v.(*services.Identity)
	return id, ok && id != nil
}
