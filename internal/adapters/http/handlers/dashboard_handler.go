package handlers

import (
	"lifelink-api/internal/core/domain"
	"lifelink-api/internal/core/services"
	"lifelink-api/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// DashboardHandler handles dashboard endpoints
type DashboardHandler struct {
	dashboardService *services.DashboardService
	userService      *services.UserService
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(dashboardService *services.DashboardService, userService *services.UserService) *DashboardHandler {
	return &DashboardHandler{
		dashboardService: dashboardService,
		userService:      userService,
	}
}

// Get returns the dashboard for the authenticated user's role
// @Summary Get dashboard
// @Description Get role-specific dashboard data for the authenticated user
// @Tags Dashboard
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /dashboard [get]
func (h *DashboardHandler) Get(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	role, _ := c.Locals("role").(string)

	switch domain.Role(role) {
	case domain.RoleAdmin:
		data, err := h.dashboardService.GetAdminDashboard(c.Context())
		if err != nil {
			return response.InternalServerError(c, "Failed to load dashboard")
		}
		return response.Success(c, "Dashboard retrieved", data)

	case domain.RoleHospital:
		data, err := h.dashboardService.GetHospitalDashboard(c.Context(), userID)
		if err != nil {
			return response.InternalServerError(c, "Failed to load dashboard")
		}
		return response.Success(c, "Dashboard retrieved", data)

	case domain.RoleDonor:
		user, err := h.userService.GetProfile(c.Context(), userID)
		if err != nil {
			return response.NotFound(c, "User not found")
		}
		data, err := h.dashboardService.GetDonorDashboard(c.Context(), userID, user.BloodGroup)
		if err != nil {
			return response.InternalServerError(c, "Failed to load dashboard")
		}
		return response.Success(c, "Dashboard retrieved", data)

	default:
		data, err := h.dashboardService.GetPatientDashboard(c.Context(), userID)
		if err != nil {
			return response.InternalServerError(c, "Failed to load dashboard")
		}
		return response.Success(c, "Dashboard retrieved", data)
	}
}
