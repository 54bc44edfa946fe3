package handlers

import (
	"errors"
	"strconv"

	"lifelink-api/internal/core/domain"
	"lifelink-api/internal/core/services"
	"lifelink-api/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// InventoryHandler handles hospital inventory endpoints
type InventoryHandler struct {
	inventoryService *services.InventoryService
}

// NewInventoryHandler creates a new inventory handler
func NewInventoryHandler(inventoryService *services.InventoryService) *InventoryHandler {
	return &InventoryHandler{inventoryService: inventoryService}
}

func inventoryError(c *fiber.Ctx, err error, fallback string) error {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return response.BadRequest(c, err.Error())
	case errors.Is(err, domain.ErrInsufficientStock):
		return response.UnprocessableEntity(c, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		return response.NotFound(c, err.Error())
	default:
		return response.InternalServerError(c, fallback)
	}
}

// Adjust handles a relative stock adjustment
// @Summary Adjust stock
// @Description Apply a signed delta to the hospital's stock of one blood type
// @Tags Inventory
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.AdjustInput true "Adjustment"
// @Success 200 {object} response.Response
// @Failure 422 {object} response.Response
// @Router /inventory/adjust [post]
func (h *InventoryHandler) Adjust(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	var input services.AdjustInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if input.BloodType == "" {
		return response.BadRequest(c, "Blood type is required")
	}
	if input.Delta == 0 {
		return response.BadRequest(c, "Delta must be non-zero")
	}

	entry, err := h.inventoryService.Adjust(c.Context(), userID, &input)
	if err != nil {
		return inventoryError(c, err, "Failed to adjust stock")
	}

	return response.Success(c, "Stock adjusted", entry)
}

// Set handles an absolute stocktake correction
// @Summary Set stock
// @Description Overwrite the hospital's stock of one blood type with an absolute count
// @Tags Inventory
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.SetInput true "Stock count"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /inventory/set [put]
func (h *InventoryHandler) Set(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	var input services.SetInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if input.BloodType == "" {
		return response.BadRequest(c, "Blood type is required")
	}

	entry, err := h.inventoryService.Set(c.Context(), userID, &input)
	if err != nil {
		return inventoryError(c, err, "Failed to set stock")
	}

	return response.Success(c, "Stock updated", entry)
}

// List handles listing the hospital's own stock
// @Summary List stock
// @Description List every stock entry for the authenticated hospital
// @Tags Inventory
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /inventory [get]
func (h *InventoryHandler) List(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	entries, err := h.inventoryService.ListForHospital(c.Context(), userID)
	if err != nil {
		return inventoryError(c, err, "Failed to list stock")
	}

	return response.Success(c, "Stock retrieved", entries)
}

// Get handles fetching one stock entry
// @Summary Get stock entry
// @Description Get the hospital's stock of one blood type
// @Tags Inventory
// @Produce json
// @Security BearerAuth
// @Param bloodType path string true "Blood type"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /inventory/{bloodType} [get]
func (h *InventoryHandler) Get(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	entry, err := h.inventoryService.Get(c.Context(), userID, c.Params("bloodType"))
	if err != nil {
		return inventoryError(c, err, "Failed to get stock")
	}

	return response.Success(c, "Stock retrieved", entry)
}

// ListForHospital handles listing another hospital's stock (staff)
// @Summary List hospital stock
// @Description List every stock entry for a specific hospital
// @Tags Inventory
// @Produce json
// @Security BearerAuth
// @Param hospitalID path int true "Hospital ID"
// @Success 200 {object} response.Response
// @Router /inventory/hospitals/{hospitalID} [get]
func (h *InventoryHandler) ListForHospital(c *fiber.Ctx) error {
	hospitalID, err := strconv.ParseUint(c.Params("hospitalID"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid hospital ID")
	}

	entries, err := h.inventoryService.ListForHospital(c.Context(), uint(hospitalID))
	if err != nil {
		return inventoryError(c, err, "Failed to list stock")
	}

	return response.Success(c, "Stock retrieved", entries)
}
