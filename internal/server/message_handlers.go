package server

import (
	"sublet/internal/models"

	"github.com/gofiber/fiber/v2"
)

// SendMessageRequest is the body of POST /api/messages.
type SendMessageRequest struct {
	ReceiverID uint   `json:"receiver_id"`
	ListingID  uint   `json:"listing_id"`
	Content    string `json:"content"`
}

// SendMessage handles POST /api/messages
// @Summary Send a direct message
// @Tags messages
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body SendMessageRequest true "message"
// @Success 201 {object} models.Message
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /messages [post]
func (s *Server) SendMessage(c *fiber.Ctx) error {
	var req SendMessageRequest
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	msg, err := sessionFrom(c).SendMessage(c.UserContext(), req.ReceiverID, req.ListingID, req.Content)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(msg)
}

// GetMyConversations handles GET /api/me/conversations
// @Summary Conversations of the session user, most recent first
// @Tags messages
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.Conversation
// @Router /me/conversations [get]
func (s *Server) GetMyConversations(c *fiber.Ctx) error {
	userID := currentUserID(c)
	return c.JSON(s.store.ConversationsFor(userID))
}

// MarkConversationRead handles POST /api/me/conversations/:userId/read
func (s *Server) MarkConversationRead(c *fiber.Ctx) error {
	counterpartID, err := s.parseID(c, "userId")
	if err != nil {
		return nil
	}

	changed, err := sessionFrom(c).MarkConversationRead(c.UserContext(), counterpartID)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(fiber.Map{"marked_read": changed})
}
