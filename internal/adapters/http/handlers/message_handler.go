package handlers

import (
	"errors"
	"strconv"

	"lifelink-api/internal/core/domain"
	"lifelink-api/internal/core/services"
	"lifelink-api/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// MessageHandler handles messaging endpoints
type MessageHandler struct {
	messageService *services.MessageService
}

// NewMessageHandler creates a new message handler
func NewMessageHandler(messageService *services.MessageService) *MessageHandler {
	return &MessageHandler{messageService: messageService}
}

func messageError(c *fiber.Ctx, err error, fallback string) error {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return response.BadRequest(c, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		return response.NotFound(c, err.Error())
	default:
		return response.InternalServerError(c, fallback)
	}
}

// Send handles sending a message
// @Summary Send message
// @Description Send a message from the authenticated user to another user
// @Tags Messages
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.SendMessageInput true "Message data"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /messages [post]
func (h *MessageHandler) Send(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	var input services.SendMessageInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if input.ReceiverID == 0 {
		return response.BadRequest(c, "Receiver is required")
	}

	message, err := h.messageService.Send(c.Context(), userID, &input)
	if err != nil {
		return messageError(c, err, "Failed to send message")
	}

	return response.Created(c, "Message sent", message)
}

// Conversation handles fetching a conversation thread
// @Summary Get conversation
// @Description Get the full message thread with another user, oldest first
// @Tags Messages
// @Produce json
// @Security BearerAuth
// @Param partnerID path int true "Partner user ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /messages/{partnerID} [get]
func (h *MessageHandler) Conversation(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	partnerID, err := strconv.ParseUint(c.Params("partnerID"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid partner ID")
	}

	messages, err := h.messageService.Conversation(c.Context(), userID, uint(partnerID))
	if err != nil {
		return messageError(c, err, "Failed to get conversation")
	}

	return response.Success(c, "Conversation retrieved", messages)
}

// UnreadCount handles fetching the unread message count
// @Summary Unread count
// @Description Count unread messages for the authenticated user
// @Tags Messages
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /messages/unread-count [get]
func (h *MessageHandler) UnreadCount(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	count, err := h.messageService.CountUnread(c.Context(), userID)
	if err != nil {
		return messageError(c, err, "Failed to count unread messages")
	}

	return response.Success(c, "Unread count retrieved", fiber.Map{
		"unread": count,
	})
}
