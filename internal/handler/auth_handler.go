package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	apperrors "docvault/internal/errors"
	"docvault/internal/service"
)

// AuthHandler handles authentication endpoints.
type AuthHandler struct {
	authService service.AuthService
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(authService service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// LoginRequest represents a login request.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// bindCredentials reports any unreadable or incomplete payload as a failed
// login so callers cannot tell a missing field from a wrong one.
func bindCredentials(c echo.Context, req *LoginRequest) error {
	if err := bindAndValidate(c, req); err != nil {
		return apperrors.Wrap(err, apperrors.KindUnauthorized, "Invalid username or password")
	}
	return nil
}

// Login godoc
// @Summary Login user
// @Tags auth
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Login credentials"
// @Success 200 {object} UserResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Router /users/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req LoginRequest
	if err := bindCredentials(c, &req); err != nil {
		return respondError(c, err)
	}

	user, err := h.authService.Login(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, UserResponse{Message: "Login successful", User: user})
}

// AdminLogin godoc
// @Summary Login administrator
// @Tags auth
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Login credentials"
// @Success 200 {object} UserResponse
// @Failure 401 {object} errors.ErrorResponse
// @Router /users/admin/login [post]
func (h *AuthHandler) AdminLogin(c echo.Context) error {
	var req LoginRequest
	if err := bindCredentials(c, &req); err != nil {
		return respondError(c, err)
	}

	user, err := h.authService.AdminLogin(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, UserResponse{Message: "Admin login successful", User: user})
}
