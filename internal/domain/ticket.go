package domain

import (
	"strings"
	"time"
)

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusOpen       TicketStatus = "Open"
	TicketStatusInProgress TicketStatus = "In-Progress"
	TicketStatusResolved   TicketStatus = "Resolved"
)

// IsActive reports whether the ticket can still be picked up by customer-name routing.
func (s TicketStatus) IsActive() bool {
	return s == TicketStatusOpen || s == TicketStatusInProgress
}

// Note is a single append-only entry on a ticket thread. Notes are never deleted.
type Note struct {
	ID        string
	TicketID  string
	Author    string
	Body      string
	CreatedAt time.Time
}

// Ticket is the aggregate for support requests. The ID is an opaque string;
// by convention a zero-padded 6-digit number.
type Ticket struct {
	ID           string
	CustomerName string
	Description  string
	Status       TicketStatus
	Notes        []Note
	ActionFlags  []string
	CreatedAt    time.Time
}

// HasFlag reports whether the remediation flag is already recorded.
func (t *Ticket) HasFlag(flag string) bool {
	for _, f := range t.ActionFlags {
		if f == flag {
			return true
		}
	}
	return false
}

// NormalizeCustomerName maps blank names to the canonical placeholder.
func NormalizeCustomerName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return "Customer"
	}
	return name
}
