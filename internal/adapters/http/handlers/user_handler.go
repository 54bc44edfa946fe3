package handlers

import (
	"errors"
	"strconv"

	"lifelink-api/internal/adapters/persistence/models"
	"lifelink-api/internal/core/domain"
	"lifelink-api/internal/core/services"
	"lifelink-api/internal/pkg/pagination"
	"lifelink-api/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// UserHandler handles user profile and admin endpoints
type UserHandler struct {
	userService *services.UserService
}

// NewUserHandler creates a new user handler
func NewUserHandler(userService *services.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// SetActiveRequest represents activate/deactivate request body
type SetActiveRequest struct {
	Active bool `json:"active"`
}

func userError(c *fiber.Ctx, err error, fallback string) error {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return response.BadRequest(c, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		return response.NotFound(c, err.Error())
	case errors.Is(err, services.ErrWrongPassword):
		return response.BadRequest(c, "Current password is incorrect")
	default:
		return response.InternalServerError(c, fallback)
	}
}

func userResponses(users []*models.User) []*models.UserResponse {
	out := make([]*models.UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, u.ToResponse())
	}
	return out
}

// GetProfile handles fetching the authenticated user's profile
// @Summary Get profile
// @Description Get the authenticated user's profile
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /profile [get]
func (h *UserHandler) GetProfile(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	user, err := h.userService.GetProfile(c.Context(), userID)
	if err != nil {
		return userError(c, err, "Failed to get profile")
	}

	return response.Success(c, "Profile retrieved", user.ToResponse())
}

// UpdateProfile handles updating the authenticated user's profile
// @Summary Update profile
// @Description Update the authenticated user's profile fields
// @Tags Users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.UpdateProfileInput true "Profile fields"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /profile [put]
func (h *UserHandler) UpdateProfile(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	var input services.UpdateProfileInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	user, err := h.userService.UpdateProfile(c.Context(), userID, &input)
	if err != nil {
		return userError(c, err, "Failed to update profile")
	}

	return response.Success(c, "Profile updated", user.ToResponse())
}

// ChangePassword handles changing the authenticated user's password
// @Summary Change password
// @Description Change the authenticated user's password and revoke all sessions
// @Tags Users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.ChangePasswordInput true "Passwords"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /profile/password [put]
func (h *UserHandler) ChangePassword(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	var input services.ChangePasswordInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if input.CurrentPassword == "" || input.NewPassword == "" {
		return response.BadRequest(c, "Current and new passwords are required")
	}

	if err := h.userService.ChangePassword(c.Context(), userID, &input); err != nil {
		return userError(c, err, "Failed to change password")
	}

	return response.Success(c, "Password changed", nil)
}

// SearchDonors handles searching for donors
// @Summary Search donors
// @Description Search active donors by blood group and free text
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Param blood_group query string false "Blood group filter"
// @Param q query string false "Name or phone query"
// @Param limit query int false "Max results"
// @Success 200 {object} response.Response
// @Router /donors/search [get]
func (h *UserHandler) SearchDonors(c *fiber.Ctx) error {
	limit, _ := strconv.Atoi(c.Query("limit", "20"))

	donors, err := h.userService.SearchDonors(c.Context(), c.Query("blood_group"), c.Query("q"), limit)
	if err != nil {
		return userError(c, err, "Failed to search donors")
	}

	return response.Success(c, "Donors retrieved", userResponses(donors))
}

// List handles listing all users (admin)
// @Summary List users
// @Description List every user with pagination
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Response
// @Router /users [get]
func (h *UserHandler) List(c *fiber.Ctx) error {
	params := pagination.GetParams(c)

	users, total, err := h.userService.List(c.Context(), params.Offset, params.Limit)
	if err != nil {
		return userError(c, err, "Failed to list users")
	}

	return response.Success(c, "Users retrieved",
		pagination.NewResponse(userResponses(users), params, total))
}

// Get handles fetching one user (admin)
// @Summary Get user
// @Description Get a single user by ID
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /users/{id} [get]
func (h *UserHandler) Get(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid user ID")
	}

	user, err := h.userService.GetByID(c.Context(), uint(id))
	if err != nil {
		return userError(c, err, "Failed to get user")
	}

	return response.Success(c, "User retrieved", user.ToResponse())
}

// SetActive handles activating or deactivating a user (admin)
// @Summary Set user active state
// @Description Activate or deactivate a user account
// @Tags Users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Param body body SetActiveRequest true "Active state"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /users/{id}/active [put]
func (h *UserHandler) SetActive(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid user ID")
	}

	var req SetActiveRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	user, err := h.userService.SetActive(c.Context(), uint(id), req.Active)
	if err != nil {
		return userError(c, err, "Failed to update user")
	}

	return response.Success(c, "User updated", user.ToResponse())
}

// Delete handles soft-deleting a user (admin)
// @Summary Delete user
// @Description Soft-delete a user account
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /users/{id} [delete]
func (h *UserHandler) Delete(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid user ID")
	}

	if err := h.userService.Delete(c.Context(), uint(id)); err != nil {
		return userError(c, err, "Failed to delete user")
	}

	return response.Success(c, "User deleted", nil)
}
