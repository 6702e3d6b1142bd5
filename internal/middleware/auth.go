// Package middleware holds the gin middleware of the storefront API.
package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/01moynul/vividen-storefront/internal/models"
	"github.com/01moynul/vividen-storefront/internal/store"
)

// Context keys set by the middleware in this package.
const (
	ContextUserID    = "userID"
	ContextIsAdmin   = "isAdmin"
	ContextRequestID = "requestID"
)

// TokenValidator resolves a bearer token to a user id.
type TokenValidator interface {
	ValidateToken(token string) (string, error)
}

// UserLookup loads the caller's record for role checks.
type UserLookup interface {
	GetUser(ctx context.Context, id string) (*models.User, error)
}

// UserID returns the id stored by AuthMiddleware, or "".
func UserID(c *gin.Context) string {
	return c.GetString(ContextUserID)
}

// AuthMiddleware is the "security guard" of the authenticated routes: it
// requires a valid Bearer token and stores its user id in the context.
func AuthMiddleware(tokens TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		// 1. --- Get Authorization Header ---
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
			return
		}

		parts := strings.Fields(authHeader)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token format (must be Bearer)"})
			return
		}

		// 2. --- Validate Token ---
		userID, err := tokens.ValidateToken(parts[1])
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}

		// 3. --- Success ---
		c.Set(ContextUserID, userID)
		c.Next()
	}
}

// isAdmin looks the caller up; the role lives in the store, not the token,
// so revoking admin takes effect on the next request.
func isAdmin(c *gin.Context, users UserLookup) (bool, bool) {
	userID := UserID(c)
	if userID == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "User ID not found in context (AuthMiddleware must run first)"})
		return false, false
	}

	if v, ok := c.Get(ContextIsAdmin); ok {
		return v.(bool), true
	}

	user, err := users.GetUser(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid user"})
			return false, false
		}
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Database error checking role"})
		return false, false
	}

	c.Set(ContextIsAdmin, user.IsAdmin)
	return user.IsAdmin, true
}

// AdminMiddleware must run after AuthMiddleware. It only lets administrators through.
func AdminMiddleware(users UserLookup) gin.HandlerFunc {
	return func(c *gin.Context) {
		admin, ok := isAdmin(c, users)
		if !ok {
			return
		}
		if !admin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Access denied: Admin role required"})
			return
		}
		c.Next()
	}
}

// SelfOrAdmin must run after AuthMiddleware. It lets the request through when
// the path parameter param names the caller, or the caller is an admin.
func SelfOrAdmin(users UserLookup, param string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Param(param) == UserID(c) {
			c.Next()
			return
		}

		admin, ok := isAdmin(c, users)
		if !ok {
			return
		}
		if !admin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Access denied: not your account"})
			return
		}
		c.Next()
	}
}

// CallerIsAdmin reports whether the authenticated caller is an administrator,
// aborting the request on lookup failure. Handlers use it for checks on
// ids that arrive in the body.
func CallerIsAdmin(c *gin.Context, users UserLookup) (admin bool, ok bool) {
	return isAdmin(c, users)
}
