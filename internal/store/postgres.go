package store

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/support-router/internal/domain"
)

const pgUniqueViolation = "23505"

// PostgresStore persists tickets and event logs in Postgres.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore instantiates the store on an existing pool.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (s *PostgresStore) CreateTicket(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        INSERT INTO support_tickets (ticket_id, customer_name, description, status)
        VALUES ($1,$2,$3,$4)
        RETURNING created_at`
	err := s.pool.QueryRow(ctx, query,
		ticket.ID,
		ticket.CustomerName,
		ticket.Description,
		ticket.Status,
	).Scan(&ticket.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return ErrTicketExists
		}
		return err
	}
	return nil
}

func (s *PostgresStore) GetTicket(ctx context.Context, id string) (*domain.Ticket, error) {
	const query = `
        SELECT ticket_id, customer_name, description, status, created_at
        FROM support_tickets WHERE ticket_id=$1`
	var ticket domain.Ticket
	err := s.pool.QueryRow(ctx, query, id).Scan(
		&ticket.ID,
		&ticket.CustomerName,
		&ticket.Description,
		&ticket.Status,
		&ticket.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTicketNotFound
		}
		return nil, err
	}
	if ticket.Notes, err = s.listNotes(ctx, id); err != nil {
		return nil, err
	}
	if ticket.ActionFlags, err = s.listFlags(ctx, id); err != nil {
		return nil, err
	}
	return &ticket, nil
}

func (s *PostgresStore) listNotes(ctx context.Context, ticketID string) ([]domain.Note, error) {
	const query = `
        SELECT id, ticket_id, author, body, created_at
        FROM ticket_notes WHERE ticket_id=$1 ORDER BY created_at, id`
	rows, err := s.pool.Query(ctx, query, ticketID)
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

func (s *PostgresStore) listFlags(ctx context.Context, ticketID string) ([]string, error) {
	const query = `SELECT flag FROM ticket_action_flags WHERE ticket_id=$1 ORDER BY created_at`
	rows, err := s.pool.Query(ctx, query, ticketID)
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

func (s *PostgresStore) UpdateStatus(ctx context.Context, id string, status domain.TicketStatus) error {
	cmd, err := s.pool.Exec(ctx, `UPDATE support_tickets SET status=$1 WHERE ticket_id=$2`, status, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrTicketNotFound
	}
	return nil
}

func (s *PostgresStore) AppendNote(ctx context.Context, id, author, body string) error {
	if err := s.ensureTicket(ctx, id); err != nil {
		return err
	}
	const query = `INSERT INTO ticket_notes (id, ticket_id, author, body) VALUES ($1,$2,$3,$4)`
	_, err := s.pool.Exec(ctx, query, uuid.NewString(), id, author, body)
	return err
}

func (s *PostgresStore) AddActionFlag(ctx context.Context, id, flag string) error {
	if err := s.ensureTicket(ctx, id); err != nil {
		return err
	}
	const query = `
        INSERT INTO ticket_action_flags (ticket_id, flag) VALUES ($1,$2)
        ON CONFLICT (ticket_id, flag) DO NOTHING`
	_, err := s.pool.Exec(ctx, query, id, flag)
	return err
}

func (s *PostgresStore) ensureTicket(ctx context.Context, id string) error {
	var exists bool
	err := s.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM support_tickets WHERE ticket_id=$1)`, id).Scan(&exists)
	if err != nil {
		return err
	}
	if !exists {
		return ErrTicketNotFound
	}
	return nil
}

func (s *PostgresStore) FindOpenTicketByCustomer(ctx context.Context, customerName string) (string, domain.TicketStatus, error) {
	const query = `
        SELECT ticket_id, status
        FROM support_tickets
        WHERE customer_name=$1 AND status IN ('Open','In-Progress')
        ORDER BY created_at DESC
        LIMIT 1`
	var id string
	var status domain.TicketStatus
	if err := s.pool.QueryRow(ctx, query, customerName).Scan(&id, &status); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", "", ErrTicketNotFound
		}
		return "", "", err
	}
	return id, status, nil
}

func (s *PostgresStore) ListTickets(ctx context.Context, limit int) ([]domain.Ticket, error) {
	if limit <= 0 {
		limit = 200
	}
	const query = `
        SELECT ticket_id, customer_name, description, status, created_at
        FROM support_tickets ORDER BY created_at DESC LIMIT $1`
	rows, err := s.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Ticket
	for rows.Next() {
		var ticket domain.Ticket
		if err := rows.Scan(&ticket.ID, &ticket.CustomerName, &ticket.Description, &ticket.Status, &ticket.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, ticket)
	}
	return result, rows.Err()
}

func (s *PostgresStore) InsertLog(ctx context.Context, level, component, event string, details map[string]any) error {
	payload, err := json.Marshal(details)
	if err != nil {
		payload = []byte("{}")
	}
	const query = `INSERT INTO app_logs (level, component, event, details) VALUES ($1,$2,$3,$4)`
	_, err = s.pool.Exec(ctx, query, level, component, event, payload)
	return err
}

func (s *PostgresStore) ListLogs(ctx context.Context, limit int) ([]EventRecord, error) {
	if limit <= 0 {
		limit = 200
	}
	const query = `
        SELECT id, level, component, event, details, ts
        FROM app_logs ORDER BY ts DESC, id DESC LIMIT $1`
	rows, err := s.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []EventRecord
	for rows.Next() {
		var rec EventRecord
		var id int64
		var payload []byte
		if err := rows.Scan(&id, &rec.Level, &rec.Component, &rec.Event, &payload, &rec.CreatedAt); err != nil {
			return nil, err
		}
		rec.ID = strconv.FormatInt(id, 10)
		if len(payload) > 0 {
			_ = json.Unmarshal(payload, &rec.Details)
		}
		result = append(result, rec)
	}
	return result, rows.Err()
}
