package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const (
	ctxUserIDKey = "user_id"
	ctxEmailKey  = "email"
)

// JWTAuth validates a Bearer token and stores the caller's id and email in
// the gin context.
func JWTAuth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			abortUnauthorized(c, "missing bearer token")
			return
		}
		parts := strings.SplitN(header, " ", 2)
		raw := header
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			raw = parts[1]
		}

		token, err := jwt.Parse(raw, func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return []byte(secret), nil
		})
		if err != nil || !token.Valid {
			abortUnauthorized(c, "invalid token")
			return
		}
		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			abortUnauthorized(c, "invalid token")
			return
		}
		sub, ok := claims["sub"].(float64)
		if !ok || sub <= 0 {
			abortUnauthorized(c, "invalid token")
			return
		}
		email, _ := claims["email"].(string)

		c.Set(ctxUserIDKey, uint64(sub))
		c.Set(ctxEmailKey, email)
		c.Next()
	}
}

func abortUnauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"code":    http.StatusUnauthorized,
		"message": message,
	})
}

// UserID returns the authenticated caller's id from the gin context.
func UserID(c *gin.Context) (uint64, bool) {
	v, exists := c.Get(ctxUserIDKey)
	if !exists {
		return 0, false
	}
	id, ok := v.(uint64)
	return id, ok
}

// Email returns the authenticated caller's email from the gin context.
func Email(c *gin.Context) string {
	v, exists := c.Get(ctxEmailKey)
	if !exists {
		return ""
	}
	email, _ := v.(string)
	return email
}
