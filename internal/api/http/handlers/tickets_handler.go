package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/support-router/internal/api/dto"
	"github.com/spec-kit/support-router/internal/domain"
	"github.com/spec-kit/support-router/internal/store"
)

// TicketsHandler exposes read-only ticket endpoints for operators.
type TicketsHandler struct {
	store store.Store
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(s store.Store) *TicketsHandler {
	return &TicketsHandler{store: s}
}

// ListTickets GET /v1/tickets.
func (h *TicketsHandler) ListTickets(c *fiber.Ctx) error {
	limit := parseLimit(c.Query("limit"), 200)
	tickets, err := h.store.ListTickets(c.UserContext(), limit)
	if err != nil {
		return err
	}
	items := make([]dto.TicketSummary, 0, len(tickets))
	for i := range tickets {
		items = append(items, ticketSummary(&tickets[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// GetTicket GET /v1/tickets/:id.
func (h *TicketsHandler) GetTicket(c *fiber.Ctx) error {
	ticket, err := h.store.GetTicket(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	detail := dto.TicketDetail{
		TicketSummary: ticketSummary(ticket),
		Notes:         make([]dto.NoteResponse, 0, len(ticket.Notes)),
		ActionFlags:   append([]string{}, ticket.ActionFlags...),
	}
	for _, note := range ticket.Notes {
		detail.Notes = append(detail.Notes, dto.NoteResponse{
			ID:        note.ID,
			Author:    note.Author,
			Body:      note.Body,
			CreatedAt: note.CreatedAt,
		})
	}
	return c.JSON(fiber.Map{"data": detail})
}

// ListLogs GET /v1/logs.
func (h *TicketsHandler) ListLogs(c *fiber.Ctx) error {
	limit := parseLimit(c.Query("limit"), 200)
	logs, err := h.store.ListLogs(c.UserContext(), limit)
	if err != nil {
		return err
	}
	items := make([]dto.EventLogEntry, 0, len(logs))
	for _, rec := range logs {
		items = append(items, dto.EventLogEntry{
			ID:        rec.ID,
			Level:     rec.Level,
			Component: rec.Component,
			Event:     rec.Event,
			Details:   rec.Details,
			CreatedAt: rec.CreatedAt,
		})
	}
	return c.JSON(fiber.Map{"data": items})
}

func ticketSummary(t *domain.Ticket) dto.TicketSummary {
	return dto.TicketSummary{
		ID:           t.ID,
		CustomerName: t.CustomerName,
		Description:  t.Description,
		Status:       string(t.Status),
		CreatedAt:    t.CreatedAt,
	}
}

func parseLimit(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit <= 0 {
		return fallback
	}
	return limit
}
