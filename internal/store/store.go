// Package store defines the persistence surface consumed by the routing core.
// Tickets are keyed by an opaque id string; notes are append-only and action
// flags have set semantics.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/spec-kit/support-router/internal/domain"
)

var (
	// ErrTicketExists is returned when a ticket id is already taken.
	ErrTicketExists = errors.New("ticket already exists")
	// ErrTicketNotFound is returned when no ticket matches the lookup.
	ErrTicketNotFound = errors.New("ticket not found")
)

// TicketStore encapsulates ticket persistence.
type TicketStore interface {
	CreateTicket(ctx context.Context, ticket *domain.Ticket) error
	GetTicket(ctx context.Context, id string) (*domain.Ticket, error)
	UpdateStatus(ctx context.Context, id string, status domain.TicketStatus) error
	AppendNote(ctx context.Context, id, author, body string) error
	AddActionFlag(ctx context.Context, id, flag string) error
	// FindOpenTicketByCustomer returns the most recent Open/In-Progress ticket
	// for the customer name, or ErrTicketNotFound.
	FindOpenTicketByCustomer(ctx context.Context, customerName string) (string, domain.TicketStatus, error)
	ListTickets(ctx context.Context, limit int) ([]domain.Ticket, error)
}

// EventRecord is one persisted event-sink entry.
type EventRecord struct {
	ID        string
	Level     string
	Component string
	Event     string
	Details   map[string]any
	CreatedAt time.Time
}

// EventLogStore persists structured event-sink records.
type EventLogStore interface {
	InsertLog(ctx context.Context, level, component, event string, details map[string]any) error
	ListLogs(ctx context.Context, limit int) ([]EventRecord, error)
}

// Store combines ticket and event-log persistence behind one handle.
type Store interface {
	TicketStore
	EventLogStore
}
