package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mizuhara/project-management-api/internal/dto"
	apierrors "github.com/mizuhara/project-management-api/internal/errors"
	"github.com/mizuhara/project-management-api/internal/middleware"
	"github.com/mizuhara/project-management-api/internal/services"
)

// AuthHandler coordinates authentication-related HTTP handlers.
type AuthHandler struct {
	authService *services.AuthService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

// Register creates a new user and returns their first bearer token.
func (h *AuthHandler) Register(c *gin.Context) {
	type RegisterRequest struct {
		Name                 string `json:"name"`
		Email                string `json:"email"`
		Password             string `json:"password"`
		PasswordConfirmation string `json:"password_confirmation"`
	}

	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	user, token, err := h.authService.Register(services.RegisterInput{
		Name:                 req.Name,
		Email:                req.Email,
		Password:             req.Password,
		PasswordConfirmation: req.PasswordConfirmation,
	})
	if err != nil {
		respondAuthError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.AuthResponse{
		User:  dto.ToUserDTO(*user),
		Token: token,
	})
}

// Login verifies credentials and returns a fresh bearer token.
func (h *AuthHandler) Login(c *gin.Context) {
	type LoginRequest struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}

	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	user, token, err := h.authService.Login(services.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		respondAuthError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.AuthResponse{
		User:  dto.ToUserDTO(*user),
		Token: token,
	})
}

// Logout revokes the presented bearer token.
func (h *AuthHandler) Logout(c *gin.Context) {
	token := middleware.BearerToken(c)
	if err := h.authService.Logout(token); err != nil {
		log.Printf("Logout failed: %v", err)
		apierrors.InternalError(c, "Failed to logout")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Logged out successfully",
	})
}

// GetCurrentUser returns the authenticated user's profile.
func (h *AuthHandler) GetCurrentUser(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		apierrors.Unauthorized(c, "Authentication required")
		return
	}

	user, err := h.authService.GetUser(userID)
	if err != nil {
		log.Printf("Failed to load user %d: %v", userID, err)
		apierrors.InternalError(c, "Failed to load user")
		return
	}

	c.JSON(http.StatusOK, dto.ToUserDTO(*user))
}

func respondAuthError(c *gin.Context, err error) {
	var vErr *apierrors.ValidationError
	switch {
	case errors.As(err, &vErr):
		apierrors.UnprocessableEntity(c, vErr.Fields)
	case errors.Is(err, services.ErrInvalidCredentials):
		apierrors.RespondWithError(c, http.StatusUnauthorized,
			apierrors.NewAPIError(apierrors.ErrCodeInvalidCredentials, "The provided credentials are incorrect."))
	default:
		log.Printf("Auth operation failed: %v", err)
		apierrors.InternalError(c, "")
	}
}
