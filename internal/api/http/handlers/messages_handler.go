package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/support-router/internal/api/dto"
	"github.com/spec-kit/support-router/internal/orchestrator"
	apperrors "github.com/spec-kit/support-router/pkg/util"
)

// MessagesHandler routes inbound customer messages.
type MessagesHandler struct {
	orchestrator *orchestrator.Orchestrator
	logger       *zap.Logger
}

// NewMessagesHandler constructs handler.
func NewMessagesHandler(o *orchestrator.Orchestrator, logger *zap.Logger) *MessagesHandler {
	return &MessagesHandler{orchestrator: o, logger: logger}
}

// Route POST /v1/messages.
func (h *MessagesHandler) Route(c *fiber.Ctx) error {
	var req dto.RouteMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if strings.TrimSpace(req.Text) == "" {
		return apperrors.NewValidationError("text required", nil)
	}

	result, err := h.orchestrator.Route(c.UserContext(), orchestrator.RouteInput{
		Text:         req.Text,
		CustomerName: req.CustomerName,
		TicketID:     req.TicketID,
	})
	if err != nil {
		// the reply is still customer-usable; the error is telemetry only
		h.logger.Warn("route completed with internal fault", zap.Error(err))
	}

	return c.JSON(fiber.Map{"data": dto.RouteMessageResponse{
		Reply:    result.Reply,
		Label:    string(result.Label),
		TicketID: result.TicketID,
	}})
}
