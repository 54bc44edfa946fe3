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

// RequestHandler handles blood request endpoints
type RequestHandler struct {
	requestService *services.RequestService
}

// NewRequestHandler creates a new request handler
func NewRequestHandler(requestService *services.RequestService) *RequestHandler {
	return &RequestHandler{requestService: requestService}
}

// CancelRequest represents cancel request body
type CancelRequest struct {
	Reason string `json:"reason"`
}

// requestError maps service errors to HTTP responses
func requestError(c *fiber.Ctx, err error, fallback string) error {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return response.BadRequest(c, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		return response.NotFound(c, err.Error())
	case errors.Is(err, domain.ErrInvalidTransition):
		return response.Conflict(c, err.Error())
	case errors.Is(err, domain.ErrForbidden):
		return response.Forbidden(c, "Not allowed")
	case errors.Is(err, domain.ErrUnauthorized):
		return response.Unauthorized(c, err.Error())
	default:
		return response.InternalServerError(c, fallback)
	}
}

func requestResponses(requests []*models.BloodRequest) []*models.BloodRequestResponse {
	out := make([]*models.BloodRequestResponse, 0, len(requests))
	for _, r := range requests {
		out = append(out, r.ToResponse())
	}
	return out
}

// Create handles creating a new blood request
// @Summary Create blood request
// @Description Create a new pending blood request for the authenticated patient
// @Tags Requests
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.CreateRequestInput true "Request data"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /requests [post]
func (h *RequestHandler) Create(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	var input services.CreateRequestInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if input.BloodType == "" {
		return response.BadRequest(c, "Blood type is required")
	}

	request, err := h.requestService.Create(c.Context(), userID, &input)
	if err != nil {
		return requestError(c, err, "Failed to create request")
	}

	return response.Created(c, "Blood request created", request.ToResponse())
}

// ListMine handles listing the patient's own requests
// @Summary List my requests
// @Description List all blood requests created by the authenticated patient
// @Tags Requests
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /requests/mine [get]
func (h *RequestHandler) ListMine(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	requests, err := h.requestService.ListForPatient(c.Context(), userID)
	if err != nil {
		return requestError(c, err, "Failed to list requests")
	}

	return response.Success(c, "Requests retrieved", requestResponses(requests))
}

// ListMatching handles listing open requests matching the donor's blood group
// @Summary List matching requests
// @Description List open blood requests matching the authenticated donor's blood group
// @Tags Requests
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /requests/matching [get]
func (h *RequestHandler) ListMatching(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	requests, err := h.requestService.ListForDonor(c.Context(), userID)
	if err != nil {
		return requestError(c, err, "Failed to list requests")
	}

	return response.Success(c, "Requests retrieved", requestResponses(requests))
}

// ListAll handles listing all requests (staff)
// @Summary List all requests
// @Description List every blood request with pagination
// @Tags Requests
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Response
// @Router /requests [get]
func (h *RequestHandler) ListAll(c *fiber.Ctx) error {
	params := pagination.GetParams(c)

	requests, total, err := h.requestService.ListAll(c.Context(), params.Offset, params.Limit)
	if err != nil {
		return requestError(c, err, "Failed to list requests")
	}

	return response.Success(c, "Requests retrieved",
		pagination.NewResponse(requestResponses(requests), params, total))
}

// Get handles fetching one request
// @Summary Get request
// @Description Get a single blood request by ID
// @Tags Requests
// @Produce json
// @Security BearerAuth
// @Param id path int true "Request ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /requests/{id} [get]
func (h *RequestHandler) Get(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid request ID")
	}

	request, err := h.requestService.GetByID(c.Context(), uint(id))
	if err != nil {
		return requestError(c, err, "Failed to get request")
	}

	return response.Success(c, "Request retrieved", request.ToResponse())
}

// Accept handles a donor committing to a request
// @Summary Accept request
// @Description Commit the authenticated donor to a pending blood request
// @Tags Requests
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Request ID"
// @Param body body services.AcceptRequestInput true "Acceptance data"
// @Success 200 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /requests/{id}/accept [post]
func (h *RequestHandler) Accept(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid request ID")
	}

	var input services.AcceptRequestInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if input.ScheduledDate == "" {
		return response.BadRequest(c, "scheduled_date is required")
	}

	request, err := h.requestService.Accept(c.Context(), uint(id), userID, &input)
	if err != nil {
		return requestError(c, err, "Failed to accept request")
	}

	return response.Success(c, "Request accepted", request.ToResponse())
}

// Complete handles marking an accepted request as completed
// @Summary Complete request
// @Description Mark an accepted blood request as completed
// @Tags Requests
// @Produce json
// @Security BearerAuth
// @Param id path int true "Request ID"
// @Success 200 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /requests/{id}/complete [post]
func (h *RequestHandler) Complete(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid request ID")
	}

	request, err := h.requestService.Complete(c.Context(), uint(id), userID)
	if err != nil {
		return requestError(c, err, "Failed to complete request")
	}

	return response.Success(c, "Request completed", request.ToResponse())
}

// Cancel handles cancelling a request
// @Summary Cancel request
// @Description Cancel a pending or accepted blood request
// @Tags Requests
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Request ID"
// @Param body body CancelRequest false "Cancellation reason"
// @Success 200 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /requests/{id}/cancel [post]
func (h *RequestHandler) Cancel(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid request ID")
	}

	var req CancelRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return response.BadRequest(c, "Invalid request body")
		}
	}

	request, err := h.requestService.Cancel(c.Context(), uint(id), userID, req.Reason)
	if err != nil {
		return requestError(c, err, "Failed to cancel request")
	}

	return response.Success(c, "Request cancelled", request.ToResponse())
}

// History handles fetching a request's transition history
// @Summary Request history
// @Description Get the audit trail of status transitions for a request
// @Tags Requests
// @Produce json
// @Security BearerAuth
// @Param id path int true "Request ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /requests/{id}/history [get]
func (h *RequestHandler) History(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid request ID")
	}

	events, err := h.requestService.History(c.Context(), uint(id))
	if err != nil {
		return requestError(c, err, "Failed to get request history")
	}

	return response.Success(c, "History retrieved", events)
}
