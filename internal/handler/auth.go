package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gumusqr/backend/internal/model"
	"github.com/gumusqr/backend/internal/service"
)

type AuthHandler struct {
	svc *service.AuthService
}

func NewAuthHandler(svc *service.AuthService) *AuthHandler {
	return &AuthHandler{svc: svc}
}

// Login godoc
// @Summary Login
// @Description Exchanges username/password for a bearer token valid for 7 days.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body model.LoginRequest true "Username and password"
// @Success 200 {object} model.LoginResponse
// @Failure 400 {object} model.ErrorResponse
// @Failure 401 {object} model.ErrorResponse
// @Failure 500 {object} model.ErrorResponse
// @Router /api/v1/auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req model.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	token, user, err := h.svc.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		writeAuthError(c, err)
		return
	}

	c.JSON(http.StatusOK, model.LoginResponse{
		Token: token,
		User:  user,
	})
}

// Verify godoc
// @Summary Verify bearer token
// @Description Validates the Authorization header and returns the current user.
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} model.VerifyResponse
// @Failure 401 {object} model.ErrorResponse
// @Router /api/v1/auth/verify [get]
func (h *AuthHandler) Verify(c *gin.Context) {
	token, ok := bearerToken(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "token required"})
		return
	}

	user, err := h.svc.Verify(c.Request.Context(), token)
	if err != nil {
		writeAuthError(c, err)
		return
	}

	c.JSON(http.StatusOK, model.VerifyResponse{User: user})
}

// ChangePassword godoc
// @Summary Change password
// @Description Rotates the stored password hash after re-verifying the current password.
// @Tags auth
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body model.ChangePasswordRequest true "Current and new password"
// @Success 200 {object} model.MessageResponse
// @Failure 400 {object} model.ErrorResponse
// @Failure 401 {object} model.ErrorResponse
// @Failure 500 {object} model.ErrorResponse
// @Router /api/v1/auth/change-password [post]
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	user := GetAuthUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req model.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	if err := h.svc.ChangePassword(c.Request.Context(), user.ID, req.CurrentPassword, req.NewPassword); err != nil {
		writeAuthError(c, err)
		return
	}

	c.JSON(http.StatusOK, model.MessageResponse{Message: "password changed"})
}

func writeAuthError(c *gin.Context, err error) {
	switch err {
	case service.ErrInvalidInput:
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input"})
	case service.ErrInvalidCredentials:
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid username or password"})
	case service.ErrUnauthorized:
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
	case service.ErrUserNotFound:
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "server error"})
	}
}
