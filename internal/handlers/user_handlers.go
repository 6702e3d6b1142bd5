package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/01moynul/vividen-storefront/internal/events"
	"github.com/01moynul/vividen-storefront/internal/models"
	"github.com/01moynul/vividen-storefront/internal/store"
)

// --- User Registration ---

// RegisterUserInput holds the *input* of POST /api/auth/register. It is
// separate from models.User because we never accept an id or role from the
// client.
type RegisterUserInput struct {
	Username  string  `json:"username" binding:"required,min=3,max=50"`
	Email     string  `json:"email" binding:"required,email,max=255"`
	Password  string  `json:"password" binding:"required,min=8,max=72"` // bcrypt reads at most 72 bytes
	FirstName *string `json:"firstName" binding:"omitempty,max=100"`
	LastName  *string `json:"lastName" binding:"omitempty,max=100"`
}

// LoginInput is the body of POST /api/auth/login.
type LoginInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Register creates an account and signs the caller in.
func (h *Handlers) Register(c *gin.Context) {
	ctx := c.Request.Context()

	// 1. --- Bind & Validate JSON ---
	var input RegisterUserInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBindError(c, err)
		return
	}

	// 2. --- Hash the Password ---
	var password models.Password
	if err := password.Set(input.Password); err != nil {
		h.Log.Error("hash password", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
		return
	}

	// 3. --- Save ---
	user := &models.User{
		Username:     strings.TrimSpace(input.Username),
		Email:        strings.ToLower(strings.TrimSpace(input.Email)),
		PasswordHash: password.Hash,
		FirstName:    input.FirstName,
		LastName:     input.LastName,
	}
	if err := h.Store.CreateUser(ctx, user); err != nil {
		if errors.Is(err, store.ErrConflict) {
			c.JSON(http.StatusConflict, gin.H{"error": "Username or email already registered"})
			return
		}
		h.respondError(c, err)
		return
	}

	// 4. --- Token & Event ---
	token, err := h.Tokens.GenerateToken(user.ID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.publish(ctx, events.UserRegistered, user.ID, gin.H{"userId": user.ID, "username": user.Username})

	c.JSON(http.StatusCreated, gin.H{"user": user, "token": token})
}

// Login exchanges email and password for a bearer token.
func (h *Handlers) Login(c *gin.Context) {
	var input LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBindError(c, err)
		return
	}

	user, err := h.Store.GetUserByEmail(c.Request.Context(), strings.ToLower(strings.TrimSpace(input.Email)))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
			return
		}
		h.respondError(c, err)
		return
	}

	password := models.Password{Hash: user.PasswordHash}
	ok, err := password.Matches(input.Password)
	if err != nil {
		h.respondError(c, err)
		return
	}
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
		return
	}

	token, err := h.Tokens.GenerateToken(user.ID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user, "token": token})
}
