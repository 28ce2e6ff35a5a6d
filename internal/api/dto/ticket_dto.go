package dto

import "time"

// TicketSummary is the list representation of a ticket.
type TicketSummary struct {
	ID           string    `json:"id"`
	CustomerName string    `json:"customer_name"`
	Description  string    `json:"description"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
}

// NoteResponse is one note on a ticket thread.
type NoteResponse struct {
	ID        string    `json:"id"`
	Author    string    `json:"author"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

// TicketDetail is the full ticket representation.
type TicketDetail struct {
	TicketSummary
	Notes       []NoteResponse `json:"notes"`
	ActionFlags []string       `json:"action_flags"`
}

// EventLogEntry is one persisted event-sink record.
type EventLogEntry struct {
	ID        string         `json:"id"`
	Level     string         `json:"level"`
	Component string         `json:"component"`
	Event     string         `json:"event"`
	Details   map[string]any `json:"details,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}
