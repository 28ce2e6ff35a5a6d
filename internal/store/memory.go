package store

import (
	"context"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/spec-kit/support-router/internal/domain"
)

// MemoryStore is a process-local Store. It backs tests and is a drop-in stand-in
// for the database-backed stores.
type MemoryStore struct {
	mu      sync.RWMutex
	tickets map[string]*domain.Ticket
	order   []string
	logs    []EventRecord
	seq     int
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{tickets: make(map[string]*domain.Ticket)}
}

func (m *MemoryStore) CreateTicket(ctx context.Context, ticket *domain.Ticket) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.tickets[ticket.ID]; ok {
		return ErrTicketExists
	}
	stored := cloneTicket(ticket)
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = time.Now()
	}
	m.tickets[ticket.ID] = stored
	m.order = append(m.order, ticket.ID)
	return nil
}

func (m *MemoryStore) GetTicket(ctx context.Context, id string) (*domain.Ticket, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ticket, ok := m.tickets[id]
	if !ok {
		return nil, ErrTicketNotFound
	}
	return cloneTicket(ticket), nil
}

func (m *MemoryStore) UpdateStatus(ctx context.Context, id string, status domain.TicketStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	ticket, ok := m.tickets[id]
	if !ok {
		return ErrTicketNotFound
	}
	ticket.Status = status
	return nil
}

func (m *MemoryStore) AppendNote(ctx context.Context, id, author, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	ticket, ok := m.tickets[id]
	if !ok {
		return ErrTicketNotFound
	}
	m.seq++
	ticket.Notes = append(ticket.Notes, domain.Note{
		ID:        strconv.Itoa(m.seq),
		TicketID:  id,
		Author:    author,
		Body:      body,
		CreatedAt: time.Now(),
	})
	return nil
}

func (m *MemoryStore) AddActionFlag(ctx context.Context, id, flag string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	ticket, ok := m.tickets[id]
	if !ok {
		return ErrTicketNotFound
	}
	if !ticket.HasFlag(flag) {
		ticket.ActionFlags = append(ticket.ActionFlags, flag)
	}
	return nil
}

func (m *MemoryStore) FindOpenTicketByCustomer(ctx context.Context, customerName string) (string, domain.TicketStatus, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	// newest first
	for i := len(m.order) - 1; i >= 0; i-- {
		ticket := m.tickets[m.order[i]]
		if ticket.CustomerName == customerName && ticket.Status.IsActive() {
			return ticket.ID, ticket.Status, nil
		}
	}
	return "", "", ErrTicketNotFound
}

func (m *MemoryStore) ListTickets(ctx context.Context, limit int) ([]domain.Ticket, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]domain.Ticket, 0, len(m.order))
	for i := len(m.order) - 1; i >= 0; i-- {
		result = append(result, *cloneTicket(m.tickets[m.order[i]]))
	}
	sort.SliceStable(result, func(i, j int) bool { return result[i].CreatedAt.After(result[j].CreatedAt) })
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (m *MemoryStore) InsertLog(ctx context.Context, level, component, event string, details map[string]any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	copied := make(map[string]any, len(details))
	for k, v := range details {
		copied[k] = v
	}
	m.logs = append(m.logs, EventRecord{
		ID:        strconv.Itoa(m.seq),
		Level:     level,
		Component: component,
		Event:     event,
		Details:   copied,
		CreatedAt: time.Now(),
	})
	return nil
}

func (m *MemoryStore) ListLogs(ctx context.Context, limit int) ([]EventRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]EventRecord, 0, len(m.logs))
	for i := len(m.logs) - 1; i >= 0; i-- {
		result = append(result, m.logs[i])
	}
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func cloneTicket(t *domain.Ticket) *domain.Ticket {
	clone := *t
	clone.Notes = append([]domain.Note(nil), t.Notes...)
	clone.ActionFlags = append([]string(nil), t.ActionFlags...)
	return &clone
}
