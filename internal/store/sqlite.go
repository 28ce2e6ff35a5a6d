package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/support-router/internal/domain"
)

// SQLiteStore persists tickets and event logs in an embedded SQLite database.
// It serves deployments with no Postgres DSN configured.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore instantiates the store on an opened database handle.
func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

func (s *SQLiteStore) CreateTicket(ctx context.Context, ticket *domain.Ticket) error {
	if ticket.CreatedAt.IsZero() {
		ticket.CreatedAt = time.Now().UTC()
	}
	const query = `
        INSERT INTO support_tickets (ticket_id, customer_name, description, status, created_at)
        VALUES (?,?,?,?,?)`
	_, err := s.db.ExecContext(ctx, query,
		ticket.ID,
		ticket.CustomerName,
		ticket.Description,
		string(ticket.Status),
		ticket.CreatedAt,
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return ErrTicketExists
		}
		return err
	}
	return nil
}

func (s *SQLiteStore) GetTicket(ctx context.Context, id string) (*domain.Ticket, error) {
	const query = `
        SELECT ticket_id, customer_name, description, status, created_at
        FROM support_tickets WHERE ticket_id=?`
	var ticket domain.Ticket
	var status string
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&ticket.ID,
		&ticket.CustomerName,
		&ticket.Description,
		&status,
		&ticket.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTicketNotFound
		}
		return nil, err
	}
	ticket.Status = domain.TicketStatus(status)
	if ticket.Notes, err = s.listNotes(ctx, id); err != nil {
		return nil, err
	}
	if ticket.ActionFlags, err = s.listFlags(ctx, id); err != nil {
		return nil, err
	}
	return &ticket, nil
}

func (s *SQLiteStore) listNotes(ctx context.Context, ticketID string) ([]domain.Note, error) {
	const query = `
        SELECT id, ticket_id, author, body, created_at
        FROM ticket_notes WHERE ticket_id=? ORDER BY created_at, rowid`
	rows, err := s.db.QueryContext(ctx, query, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var notes []domain.Note
	for rows.Next() {
		var note domain.Note
		if err := rows.Scan(&note.ID, &note.TicketID, &note.Author, &note.Body, &note.CreatedAt); err != nil {
			return nil, err
		}
		notes = append(notes, note)
	}
	return notes, rows.Err()
}

func (s *SQLiteStore) listFlags(ctx context.Context, ticketID string) ([]string, error) {
	const query = `SELECT flag FROM ticket_action_flags WHERE ticket_id=? ORDER BY created_at, rowid`
	rows, err := s.db.QueryContext(ctx, query, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var flags []string
	for rows.Next() {
		var flag string
		if err := rows.Scan(&flag); err != nil {
			return nil, err
		}
		flags = append(flags, flag)
	}
	return flags, rows.Err()
}

func (s *SQLiteStore) UpdateStatus(ctx context.Context, id string, status domain.TicketStatus) error {
	res, err := s.db.ExecContext(ctx, `UPDATE support_tickets SET status=? WHERE ticket_id=?`, string(status), id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrTicketNotFound
	}
	return nil
}

func (s *SQLiteStore) AppendNote(ctx context.Context, id, author, body string) error {
	if err := s.ensureTicket(ctx, id); err != nil {
		return err
	}
	const query = `INSERT INTO ticket_notes (id, ticket_id, author, body, created_at) VALUES (?,?,?,?,?)`
	_, err := s.db.ExecContext(ctx, query, uuid.NewString(), id, author, body, time.Now().UTC())
	return err
}

func (s *SQLiteStore) AddActionFlag(ctx context.Context, id, flag string) error {
	if err := s.ensureTicket(ctx, id); err != nil {
		return err
	}
	const query = `
        INSERT INTO ticket_action_flags (ticket_id, flag, created_at) VALUES (?,?,?)
        ON CONFLICT (ticket_id, flag) DO NOTHING`
	_, err := s.db.ExecContext(ctx, query, id, flag, time.Now().UTC())
	return err
}

func (s *SQLiteStore) ensureTicket(ctx context.Context, id string) error {
	var one int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM support_tickets WHERE ticket_id=?`, id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrTicketNotFound
	}
	return err
}

func (s *SQLiteStore) FindOpenTicketByCustomer(ctx context.Context, customerName string) (string, domain.TicketStatus, error) {
	const query = `
        SELECT ticket_id, status
        FROM support_tickets
        WHERE customer_name=? AND status IN ('Open','In-Progress')
        ORDER BY created_at DESC, rowid DESC
        LIMIT 1`
	var id, status string
	if err := s.db.QueryRowContext(ctx, query, customerName).Scan(&id, &status); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", "", ErrTicketNotFound
		}
		return "", "", err
	}
	return id, domain.TicketStatus(status), nil
}

func (s *SQLiteStore) ListTickets(ctx context.Context, limit int) ([]domain.Ticket, error) {
	if limit <= 0 {
		limit = 200
	}
	const query = `
        SELECT ticket_id, customer_name, description, status, created_at
        FROM support_tickets ORDER BY created_at DESC, rowid DESC LIMIT ?`
	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Ticket
	for rows.Next() {
		var ticket domain.Ticket
		var status string
		if err := rows.Scan(&ticket.ID, &ticket.CustomerName, &ticket.Description, &status, &ticket.CreatedAt); err != nil {
			return nil, err
		}
		ticket.Status = domain.TicketStatus(status)
		result = append(result, ticket)
	}
	return result, rows.Err()
}

func (s *SQLiteStore) InsertLog(ctx context.Context, level, component, event string, details map[string]any) error {
	payload, err := json.Marshal(details)
	if err != nil {
		payload = []byte("{}")
	}
	const query = `INSERT INTO app_logs (level, component, event, details, ts) VALUES (?,?,?,?,?)`
	_, err = s.db.ExecContext(ctx, query, level, component, event, string(payload), time.Now().UTC())
	return err
}

func (s *SQLiteStore) ListLogs(ctx context.Context, limit int) ([]EventRecord, error) {
	if limit <= 0 {
		limit = 200
	}
	const query = `
        SELECT rowid, level, component, event, details, ts
        FROM app_logs ORDER BY ts DESC, rowid DESC LIMIT ?`
	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []EventRecord
	for rows.Next() {
		var rec EventRecord
		var id int64
		var payload string
		if err := rows.Scan(&id, &rec.Level, &rec.Component, &rec.Event, &payload, &rec.CreatedAt); err != nil {
			return nil, err
		}
		rec.ID = strconv.FormatInt(id, 10)
		if payload != "" {
			_ = json.Unmarshal([]byte(payload), &rec.Details)
		}
		result = append(result, rec)
	}
	return result, rows.Err()
}
