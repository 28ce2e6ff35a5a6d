package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/spec-kit/support-router/internal/domain"
)

func newTicket(id, name, description string) *domain.Ticket {
	return &domain.Ticket{
		ID:           id,
		CustomerName: name,
		Description:  description,
		Status:       domain.TicketStatusOpen,
	}
}

func TestMemoryStoreCreateDuplicate(t *testing.T) {
	st := NewMemoryStore()
	ctx := context.Background()

	if err := st.CreateTicket(ctx, newTicket("650932", "Dana", "original")); err != nil {
		t.Fatal(err)
	}
	err := st.CreateTicket(ctx, newTicket("650932", "Eve", "imposter"))
	if !errors.Is(err, ErrTicketExists) {
		t.Fatalf("error = %v, want ErrTicketExists", err)
	}

	ticket, err := st.GetTicket(ctx, "650932")
	if err != nil {
		t.Fatal(err)
	}
	if ticket.CustomerName != "Dana" || ticket.Description != "original" {
		t.Errorf("stored ticket mutated by rejected create: %+v", ticket)
	}
}

func TestMemoryStoreGetMissing(t *testing.T) {
	st := NewMemoryStore()
	if _, err := st.GetTicket(context.Background(), "000000"); !errors.Is(err, ErrTicketNotFound) {
		t.Errorf("error = %v, want ErrTicketNotFound", err)
	}
}

func TestMemoryStoreGetReturnsCopy(t *testing.T) {
	st := NewMemoryStore()
	ctx := context.Background()
	if err := st.CreateTicket(ctx, newTicket("650932", "Dana", "x")); err != nil {
		t.Fatal(err)
	}
	if err := st.AddActionFlag(ctx, "650932", "freeze_card_now"); err != nil {
		t.Fatal(err)
	}

	first, _ := st.GetTicket(ctx, "650932")
	first.Status = domain.TicketStatusResolved
	first.ActionFlags[0] = "tampered"
	first.CustomerName = "Mallory"

	second, _ := st.GetTicket(ctx, "650932")
	if second.Status != domain.TicketStatusOpen || second.CustomerName != "Dana" || second.ActionFlags[0] != "freeze_card_now" {
		t.Errorf("mutating a read result leaked into the store: %+v", second)
	}
}

func TestMemoryStoreUpdateStatus(t *testing.T) {
	st := NewMemoryStore()
	ctx := context.Background()
	if err := st.CreateTicket(ctx, newTicket("650932", "Dana", "x")); err != nil {
		t.Fatal(err)
	}

	if err := st.UpdateStatus(ctx, "650932", domain.TicketStatusInProgress); err != nil {
		t.Fatal(err)
	}
	ticket, _ := st.GetTicket(ctx, "650932")
	if ticket.Status != domain.TicketStatusInProgress {
		t.Errorf("status = %q, want %q", ticket.Status, domain.TicketStatusInProgress)
	}

	if err := st.UpdateStatus(ctx, "000000", domain.TicketStatusResolved); !errors.Is(err, ErrTicketNotFound) {
		t.Errorf("error = %v, want ErrTicketNotFound", err)
	}
}

func TestMemoryStoreNotesAppendInOrder(t *testing.T) {
	st := NewMemoryStore()
	ctx := context.Background()
	if err := st.CreateTicket(ctx, newTicket("650932", "Dana", "x")); err != nil {
		t.Fatal(err)
	}

	for _, body := range []string{"first", "second", "third"} {
		if err := st.AppendNote(ctx, "650932", "Dana", body); err != nil {
			t.Fatal(err)
		}
	}

	ticket, _ := st.GetTicket(ctx, "650932")
	if len(ticket.Notes) != 3 {
		t.Fatalf("notes = %d, want 3", len(ticket.Notes))
	}
	for i, want := range []string{"first", "second", "third"} {
		if ticket.Notes[i].Body != want {
			t.Errorf("note[%d] = %q, want %q", i, ticket.Notes[i].Body, want)
		}
	}
}

func TestMemoryStoreActionFlagSetSemantics(t *testing.T) {
	st := NewMemoryStore()
	ctx := context.Background()
	if err := st.CreateTicket(ctx, newTicket("650932", "Dana", "x")); err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 3; i++ {
		if err := st.AddActionFlag(ctx, "650932", "freeze_card_now"); err != nil {
			t.Fatal(err)
		}
	}
	if err := st.AddActionFlag(ctx, "650932", "queue_replacement_card"); err != nil {
		t.Fatal(err)
	}

	ticket, _ := st.GetTicket(ctx, "650932")
	if len(ticket.ActionFlags) != 2 {
		t.Errorf("flags = %v, want 2 distinct entries", ticket.ActionFlags)
	}
}

func TestMemoryStoreFindOpenTicketByCustomer(t *testing.T) {
	st := NewMemoryStore()
	ctx := context.Background()

	if err := st.CreateTicket(ctx, newTicket("111111", "Sam", "older")); err != nil {
		t.Fatal(err)
	}
	if err := st.CreateTicket(ctx, newTicket("222222", "Sam", "newer")); err != nil {
		t.Fatal(err)
	}
	if err := st.CreateTicket(ctx, newTicket("333333", "Riya", "other customer")); err != nil {
		t.Fatal(err)
	}

	id, status, err := st.FindOpenTicketByCustomer(ctx, "Sam")
	if err != nil {
		t.Fatal(err)
	}
	if id != "222222" {
		t.Errorf("id = %q, want the newest active ticket 222222", id)
	}
	if !status.IsActive() {
		t.Errorf("status = %q, want an active status", status)
	}

	// resolving the newest ticket exposes the older one
	if err := st.UpdateStatus(ctx, "222222", domain.TicketStatusResolved); err != nil {
		t.Fatal(err)
	}
	id, _, err = st.FindOpenTicketByCustomer(ctx, "Sam")
	if err != nil {
		t.Fatal(err)
	}
	if id != "111111" {
		t.Errorf("id = %q, want 111111 after 222222 resolved", id)
	}

	if _, _, err := st.FindOpenTicketByCustomer(ctx, "Nobody"); !errors.Is(err, ErrTicketNotFound) {
		t.Errorf("error = %v, want ErrTicketNotFound", err)
	}
}

func TestMemoryStoreListTickets(t *testing.T) {
	st := NewMemoryStore()
	ctx := context.Background()

	base := time.Now()
	for i, id := range []string{"111111", "222222", "333333"} {
		ticket := newTicket(id, "Sam", "d")
		ticket.CreatedAt = base.Add(time.Duration(i) * time.Second)
		if err := st.CreateTicket(ctx, ticket); err != nil {
			t.Fatal(err)
		}
	}

	tickets, err := st.ListTickets(ctx, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(tickets) != 3 {
		t.Fatalf("tickets = %d, want 3", len(tickets))
	}
	if tickets[0].ID != "333333" {
		t.Errorf("tickets[0] = %q, want newest first", tickets[0].ID)
	}

	limited, err := st.ListTickets(ctx, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(limited) != 2 {
		t.Errorf("limited tickets = %d, want 2", len(limited))
	}
}

func TestMemoryStoreEventLogs(t *testing.T) {
	st := NewMemoryStore()
	ctx := context.Background()

	events := []string{"first", "second", "third"}
	for _, event := range events {
		if err := st.InsertLog(ctx, "INFO", "Orchestrator", event, map[string]any{"k": event}); err != nil {
			t.Fatal(err)
		}
	}

	logs, err := st.ListLogs(ctx, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(logs) != 3 {
		t.Fatalf("logs = %d, want 3", len(logs))
	}
	if logs[0].Event != "third" {
		t.Errorf("logs[0] = %q, want newest first", logs[0].Event)
	}
	if logs[0].Details["k"] != "third" {
		t.Errorf("details = %v, want preserved payload", logs[0].Details)
	}

	limited, err := st.ListLogs(ctx, 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(limited) != 1 || limited[0].Event != "third" {
		t.Errorf("limited logs = %+v, want just the newest", limited)
	}
}
