package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"docvault/internal/model"
	"docvault/internal/service"
)

// UserHandler serves account management endpoints.
type UserHandler struct {
	svc service.UserService
}

// NewUserHandler creates a handler layer.
func NewUserHandler(svc service.UserService) *UserHandler {
	return &UserHandler{svc: svc}
}

// RegisterRequest is the registration payload. The admin sign-up page posts
// isAdmin and isActive, which are stored as given.
type RegisterRequest struct {
	Username string `json:"username" validate:"required"`
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
	FullName string `json:"fullName"`
	IsActive *bool  `json:"isActive"`
	IsAdmin  *bool  `json:"isAdmin"`
}

// RegisterResponse confirms a new account.
type RegisterResponse struct {
	Message  string `json:"message"`
	UserID   uint   `json:"userId"`
	Username string `json:"username"`
}

// UpdateUserRequest carries the fields to change; omitted fields are kept.
type UpdateUserRequest struct {
	Username *string `json:"username"`
	Email    *string `json:"email"`
	Password *string `json:"password"`
	FullName *string `json:"fullName"`
	IsActive *bool   `json:"isActive"`
	IsAdmin  *bool   `json:"isAdmin"`
}

// UserResponse wraps a user with a confirmation message.
type UserResponse struct {
	Message string      `json:"message"`
	User    *model.User `json:"user"`
}

// Register godoc
// @Summary Register a new user
// @Tags users
// @Accept json
// @Produce json
// @Param request body RegisterRequest true "Registration data"
// @Success 201 {object} RegisterResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Router /users/register [post]
func (h *UserHandler) Register(c echo.Context) error {
	var req RegisterRequest
	if err := bindAndValidate(c, &req); err != nil {
		return respondError(c, err)
	}

	user, err := h.svc.CreateUser(c.Request().Context(), service.NewUser{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		FullName: req.FullName,
		IsActive: req.IsActive,
		IsAdmin:  req.IsAdmin,
	})
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusCreated, RegisterResponse{
		Message:  "User registered successfully",
		UserID:   user.ID,
		Username: user.Username,
	})
}

// GetUser godoc
// @Summary Get user by id
// @Tags users
// @Produce json
// @Param id path int true "User ID"
// @Success 200 {object} model.User
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /users/{id} [get]
func (h *UserHandler) GetUser(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	user, err := h.svc.GetUserByID(c.Request().Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, user)
}

// GetUserByUsername godoc
// @Summary Get user by username
// @Tags users
// @Produce json
// @Param username path string true "Username"
// @Success 200 {object} model.User
// @Failure 404 {object} errors.ErrorResponse
// @Router /users/username/{username} [get]
func (h *UserHandler) GetUserByUsername(c echo.Context) error {
	user, err := h.svc.GetUserByUsername(c.Request().Context(), c.Param("username"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, user)
}

// ListUsers godoc
// @Summary List users
// @Tags users
// @Produce json
// @Success 200 {array} model.User
// @Failure 500 {object} errors.ErrorResponse
// @Router /users [get]
func (h *UserHandler) ListUsers(c echo.Context) error {
	users, err := h.svc.GetAllUsers(c.Request().Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, users)
}

// UpdateUser godoc
// @Summary Update user
// @Tags users
// @Accept json
// @Produce json
// @Param id path int true "User ID"
// @Param request body UpdateUserRequest true "Fields to change"
// @Success 200 {object} UserResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Router /users/{id} [put]
func (h *UserHandler) UpdateUser(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	var req UpdateUserRequest
	if err := bindAndValidate(c, &req); err != nil {
		return respondError(c, err)
	}

	user, err := h.svc.UpdateUser(c.Request().Context(), id, service.UserPatch{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		FullName: req.FullName,
		IsActive: req.IsActive,
		IsAdmin:  req.IsAdmin,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, UserResponse{Message: "User updated successfully", User: user})
}

// DeleteUser godoc
// @Summary Delete user and their documents
// @Tags users
// @Produce json
// @Param id path int true "User ID"
// @Success 200 {object} MessageResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /users/{id} [delete]
func (h *UserHandler) DeleteUser(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	if err := h.svc.DeleteUser(c.Request().Context(), id); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, MessageResponse{Message: "User deleted successfully"})
}

// ToggleStatus godoc
// @Summary Flip the active flag of a user
// @Tags admin
// @Produce json
// @Param id path int true "User ID"
// @Success 200 {object} UserResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /users/admin/toggle-status/{id} [put]
func (h *UserHandler) ToggleStatus(c echo.Context) error {
	return h.toggle(c, h.svc.ToggleStatus, "User status updated successfully")
}

// ToggleAdmin godoc
// @Summary Flip the admin flag of a user
// @Tags admin
// @Produce json
// @Param id path int true "User ID"
// @Success 200 {object} UserResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /users/admin/toggle-admin/{id} [put]
func (h *UserHandler) ToggleAdmin(c echo.Context) error {
	return h.toggle(c, h.svc.ToggleAdmin, "Admin status updated successfully")
}

func (h *UserHandler) toggle(c echo.Context, flip func(ctx context.Context, id uint) (*model.User, error), message string) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	user, err := flip(c.Request().Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, UserResponse{Message: message, User: user})
}

// Stats godoc
// @Summary User statistics
// @Tags admin
// @Produce json
// @Success 200 {object} model.UserStats
// @Failure 500 {object} errors.ErrorResponse
// @Router /users/admin/stats [get]
func (h *UserHandler) Stats(c echo.Context) error {
	stats, err := h.svc.Stats(c.Request().Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, stats)
}
