package handlers

import (
	"errors"
	"strconv"

	"lifelink-api/internal/core/domain"
	"lifelink-api/internal/core/services"
	"lifelink-api/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// DonationHandler handles scheduled donation endpoints
type DonationHandler struct {
	donationService *services.DonationService
}

// NewDonationHandler creates a new donation handler
func NewDonationHandler(donationService *services.DonationService) *DonationHandler {
	return &DonationHandler{donationService: donationService}
}

func donationError(c *fiber.Ctx, err error, fallback string) error {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return response.BadRequest(c, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		return response.NotFound(c, err.Error())
	case errors.Is(err, domain.ErrInvalidTransition):
		return response.Conflict(c, err.Error())
	case errors.Is(err, domain.ErrForbidden):
		return response.Forbidden(c, "Not allowed")
	default:
		return response.InternalServerError(c, fallback)
	}
}

// Schedule handles booking a donation appointment
// @Summary Schedule donation
// @Description Book a donation appointment for the authenticated donor
// @Tags Donations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.ScheduleInput true "Appointment data"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /donations [post]
func (h *DonationHandler) Schedule(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	var input services.ScheduleInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if input.ScheduledDate == "" {
		return response.BadRequest(c, "Scheduled date is required")
	}

	donation, err := h.donationService.Schedule(c.Context(), userID, &input)
	if err != nil {
		return donationError(c, err, "Failed to schedule donation")
	}

	return response.Created(c, "Donation scheduled", donation)
}

// ListUpcoming handles listing the donor's upcoming donations
// @Summary List upcoming donations
// @Description List the authenticated donor's scheduled donations, soonest first
// @Tags Donations
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /donations/upcoming [get]
func (h *DonationHandler) ListUpcoming(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	donations, err := h.donationService.ListUpcoming(c.Context(), userID)
	if err != nil {
		return donationError(c, err, "Failed to list donations")
	}

	return response.Success(c, "Donations retrieved", donations)
}

// Complete handles marking a donation as done
// @Summary Complete donation
// @Description Mark the authenticated donor's scheduled donation as completed
// @Tags Donations
// @Produce json
// @Security BearerAuth
// @Param id path int true "Donation ID"
// @Success 200 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /donations/{id}/complete [post]
func (h *DonationHandler) Complete(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid donation ID")
	}

	donation, err := h.donationService.Complete(c.Context(), uint(id), userID)
	if err != nil {
		return donationError(c, err, "Failed to complete donation")
	}

	return response.Success(c, "Donation completed", donation)
}

// Cancel handles withdrawing a donation appointment
// @Summary Cancel donation
// @Description Cancel the authenticated donor's scheduled donation
// @Tags Donations
// @Produce json
// @Security BearerAuth
// @Param id path int true "Donation ID"
// @Success 200 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /donations/{id}/cancel [post]
func (h *DonationHandler) Cancel(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid donation ID")
	}

	donation, err := h.donationService.Cancel(c.Context(), uint(id), userID)
	if err != nil {
		return donationError(c, err, "Failed to cancel donation")
	}

	return response.Success(c, "Donation cancelled", donation)
}
