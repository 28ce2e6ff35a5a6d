// Package lifecycle owns every mutation of a ticket: status transitions, note
// accumulation, and action-flag bookkeeping.
package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/support-router/internal/compose"
	"github.com/spec-kit/support-router/internal/domain"
	"github.com/spec-kit/support-router/internal/eventlog"
	"github.com/spec-kit/support-router/internal/intent"
	"github.com/spec-kit/support-router/internal/lock"
	"github.com/spec-kit/support-router/internal/store"
)

const maxIDAttempts = 10

// intentFlags maps a detected intent to the remediation flags it triggers.
// general_followup maps to none: the status does not advance for it.
var intentFlags = map[string][]string{
	"freeze_lost_stolen_card": {"freeze_card_now", "queue_replacement_card"},
	"replace_card":            {"queue_replacement_card"},
	"fraud_charge_dispute":    {"investigate_fraud"},
	"travel_notice":           {"add_travel_notice"},
	"address_update":          {"verify_address"},
	"app_access_issue":        {"reset_app_access"},
}

// FlagsForIntent returns the remediation flags for an intent name.
func FlagsForIntent(name string) []string {
	return intentFlags[name]
}

// Manager coordinates ticket mutations under the per-ticket lock.
type Manager struct {
	store    store.TicketStore
	locks    lock.KeyedLocker
	detector *intent.Detector
	sink     eventlog.Sink
	logger   *zap.Logger
}

// Dependencies bundles collaborators for the manager.
type Dependencies struct {
	Store    store.TicketStore
	Locks    lock.KeyedLocker
	Detector *intent.Detector
	Sink     eventlog.Sink
	Logger   *zap.Logger
}

// NewManager constructs the manager.
func NewManager(deps Dependencies) *Manager {
	if deps.Sink == nil {
		deps.Sink = eventlog.NopSink{}
	}
	if deps.Locks == nil {
		deps.Locks = lock.NewLocalLocker()
	}
	if deps.Detector == nil {
		deps.Detector = intent.NewDetector()
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	return &Manager{
		store:    deps.Store,
		locks:    deps.Locks,
		detector: deps.Detector,
		sink:     deps.Sink,
		logger:   deps.Logger,
	}
}

// ApplyFollowup processes a customer message against an existing ticket:
// detect intent, append the raw text as a note, record remediation flags, and
// advance Open tickets to In-Progress when a flag was added. Resolved is
// terminal and is never downgraded.
//
// The returned reply is always usable by the customer-facing path; a non-nil
// error is telemetry for the caller, never a hard failure.
func (m *Manager) ApplyFollowup(ctx context.Context, ticketID, authorName, text string) (string, error) {
	detected := m.detector.Detect(text)
	author := domain.NormalizeCustomerName(authorName)

	release, err := m.locks.Acquire(ctx, ticketID)
	if err != nil {
		return m.fault(ctx, ticketID, "lock_acquire_failed", err), err
	}
	defer release()

	ticket, err := m.store.GetTicket(ctx, ticketID)
	if err != nil {
		if errors.Is(err, store.ErrTicketNotFound) {
			m.sink.Log(ctx, eventlog.LevelWarn, "LifecycleManager", "followup_ticket_missing",
				map[string]any{"ticket_id": ticketID})
			return compose.TicketNotFound(ticketID), err
		}
		return m.fault(ctx, ticketID, "followup_load_failed", err), err
	}

	// The note records the raw customer input verbatim, regardless of intent.
	if err := m.store.AppendNote(ctx, ticketID, author, text); err != nil {
		return m.fault(ctx, ticketID, "followup_note_failed", err), err
	}

	added := make([]string, 0, 2)
	for _, flag := range intentFlags[detected.Name] {
		if ticket.HasFlag(flag) {
			continue
		}
		if err := m.store.AddActionFlag(ctx, ticketID, flag); err != nil {
			return m.fault(ctx, ticketID, "followup_flag_failed", err), err
		}
		added = append(added, flag)
	}

	if len(added) > 0 && ticket.Status == domain.TicketStatusOpen {
		if err := m.store.UpdateStatus(ctx, ticketID, domain.TicketStatusInProgress); err != nil {
			return m.fault(ctx, ticketID, "followup_status_failed", err), err
		}
	}

	m.sink.Log(ctx, eventlog.LevelInfo, "LifecycleManager", "followup_applied", map[string]any{
		"ticket_id":  ticketID,
		"intent":     detected.Name,
		"confidence": detected.Confidence,
		"flags":      added,
	})
	return compose.FollowupReply(detected.Name, author, ticketID), nil
}

// OpenTicket creates a new Open ticket with a fresh 6-digit id, retrying on id
// collisions.
func (m *Manager) OpenTicket(ctx context.Context, customerName, description string) (*domain.Ticket, error) {
	name := domain.NormalizeCustomerName(customerName)
	for attempt := 0; attempt < maxIDAttempts; attempt++ {
		ticket := &domain.Ticket{
			ID:           GenerateTicketNumber(),
			CustomerName: name,
			Description:  description,
			Status:       domain.TicketStatusOpen,
			CreatedAt:    time.Now().UTC(),
		}
		err := m.store.CreateTicket(ctx, ticket)
		if errors.Is(err, store.ErrTicketExists) {
			continue
		}
		if err != nil {
			return nil, err
		}
		m.sink.Log(ctx, eventlog.LevelInfo, "LifecycleManager", "ticket_created", map[string]any{
			"ticket_id":     ticket.ID,
			"customer_name": name,
		})
		return ticket, nil
	}
	return nil, fmt.Errorf("exhausted %d attempts generating a unique ticket id", maxIDAttempts)
}

func (m *Manager) fault(ctx context.Context, ticketID, event string, err error) string {
	m.logger.Warn("lifecycle fault", zap.String("event", event), zap.String("ticket_id", ticketID), zap.Error(err))
	m.sink.Log(ctx, eventlog.LevelWarn, "LifecycleManager", event, map[string]any{
		"ticket_id": ticketID,
		"error":     err.Error(),
	})
	return compose.GenericEscalation(ticketID)
}

// GenerateTicketNumber returns a zero-padded 6-digit ticket id.
func GenerateTicketNumber() string {
	return fmt.Sprintf("%06d", rand.Intn(1_000_000))
}
