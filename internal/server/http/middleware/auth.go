package middleware

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	pkgAuth "github.com/polkiloo/routeshop/internal/pkg/auth"
)

// ClaimsContextKey is a gin context key for the authenticated actor.
const ClaimsContextKey = "claims"

// TokenParser resolves bearer tokens into actor claims.
type TokenParser interface {
	ParseToken(token string) (pkgAuth.Claims, error)
	IsOperator(claims pkgAuth.Claims) bool
}

// AuthRequired ensures the actor is authenticated before accessing handler.
func AuthRequired(parser TokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c)
		if token == "" {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}

		claims, err := parser.ParseToken(token)
		if err != nil {
			if errors.Is(err, pkgAuth.ErrInvalidToken) {
				c.AbortWithStatus(http.StatusUnauthorized)
				return
			}
			c.AbortWithStatus(http.StatusInternalServerError)
			return
		}

		c.Set(ClaimsContextKey, claims)
		c.Next()
	}
}

// OperatorOnly rejects actors other than the configured operator. Must run after AuthRequired.
func OperatorOnly(parser TokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := CurrentClaims(c)
		if !ok || !parser.IsOperator(claims) {
			c.AbortWithStatus(http.StatusForbidden)
			return
		}
		c.Next()
	}
}

// SharedSecret requires header to carry secret. An empty secret disables the check.
func SharedSecret(header, secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if secret == "" {
			c.Next()
			return
		}
		if subtle.ConstantTimeCompare([]byte(c.GetHeader(header)), []byte(secret)) != 1 {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}
		c.Next()
	}
}

// CurrentClaims returns the authenticated actor, if any.
func CurrentClaims(c *gin.Context) (pkgAuth.Claims, bool) {
	val, ok := c.Get(ClaimsContextKey)
	if !ok {
		return pkgAuth.Claims{}, false
	}
	claims, ok := val.(pkgAuth.Claims)
	return claims, ok
}

func extractToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if strings.HasPrefix(strings.ToLower(authHeader), "bearer ") {
		return strings.TrimSpace(authHeader[7:])
	}
	return ""
}
