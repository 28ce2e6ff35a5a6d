package orchestrator

import (
	"context"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/spec-kit/support-router/internal/classify"
	"github.com/spec-kit/support-router/internal/domain"
	"github.com/spec-kit/support-router/internal/lifecycle"
	"github.com/spec-kit/support-router/internal/store"
)

func newTestOrchestrator(st *store.MemoryStore) *Orchestrator {
	classifier := classify.New(nil, 0, nil, zap.NewNop())
	manager := lifecycle.NewManager(lifecycle.Dependencies{Store: st})
	return New(Dependencies{
		Classifier: classifier,
		Lifecycle:  manager,
		Store:      st,
	})
}

func seedOpenTicket(t *testing.T, st *store.MemoryStore, id, name, description string) {
	t.Helper()
	err := st.CreateTicket(context.Background(), &domain.Ticket{
		ID:           id,
		CustomerName: name,
		Description:  description,
		Status:       domain.TicketStatusOpen,
	})
	if err != nil {
		t.Fatal(err)
	}
}

func ticketCount(t *testing.T, st *store.MemoryStore) int {
	t.Helper()
	tickets, err := st.ListTickets(context.Background(), 0)
	if err != nil {
		t.Fatal(err)
	}
	return len(tickets)
}

func TestExtractTicketNumber(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{"status of ticket 650932 please", "650932"},
		{"Ticket#650932", "650932"},
		{"TICKET # 650932", "650932"},
		{"status of 650932", "650932"},
		{"ticket 123 is short", ""},
		{"order 12345678 reference", ""},
		{"no reference at all", ""},
		{"", ""},
	}
	for _, tt := range tests {
		if got := ExtractTicketNumber(tt.text); got != tt.want {
			t.Errorf("ExtractTicketNumber(%q) = %q, want %q", tt.text, got, tt.want)
		}
	}
}

func TestRoutePositiveFeedback(t *testing.T) {
	st := store.NewMemoryStore()
	o := newTestOrchestrator(st)

	result, err := o.Route(context.Background(), RouteInput{
		Text:         "Thanks for resolving my credit card issue!",
		CustomerName: "Alex Chen",
	})
	if err != nil {
		t.Fatalf("Route() error = %v", err)
	}
	if result.Label != domain.LabelPositiveFeedback {
		t.Errorf("label = %q, want %q", result.Label, domain.LabelPositiveFeedback)
	}
	if !strings.Contains(result.Reply, "Alex Chen") {
		t.Errorf("reply %q missing the customer name", result.Reply)
	}
	if result.TicketID != "" {
		t.Errorf("ticket id = %q, positive feedback never references a ticket", result.TicketID)
	}
	if n := ticketCount(t, st); n != 0 {
		t.Errorf("tickets created = %d, want 0", n)
	}
}

func TestRouteNegativeFeedbackCreatesTicket(t *testing.T) {
	st := store.NewMemoryStore()
	o := newTestOrchestrator(st)

	text := "My debit card replacement still hasn't arrived."
	result, err := o.Route(context.Background(), RouteInput{Text: text, CustomerName: "Riya"})
	if err != nil {
		t.Fatalf("Route() error = %v", err)
	}
	if result.Label != domain.LabelNegativeFeedback {
		t.Errorf("label = %q, want %q", result.Label, domain.LabelNegativeFeedback)
	}
	if result.TicketID == "" {
		t.Fatal("expected a new ticket id")
	}
	if !strings.Contains(result.Reply, "#"+result.TicketID) {
		t.Errorf("reply %q missing ticket reference", result.Reply)
	}

	ticket, err := st.GetTicket(context.Background(), result.TicketID)
	if err != nil {
		t.Fatal(err)
	}
	if ticket.Status != domain.TicketStatusOpen {
		t.Errorf("status = %q, want %q", ticket.Status, domain.TicketStatusOpen)
	}
	if ticket.Description != text {
		t.Errorf("description = %q, want the raw message", ticket.Description)
	}
}

func TestRouteNegativeFeedbackReusesOpenTicket(t *testing.T) {
	st := store.NewMemoryStore()
	seedOpenTicket(t, st, "650932", "Sam", "card declined")
	o := newTestOrchestrator(st)

	result, err := o.Route(context.Background(), RouteInput{
		Text:         "This is still not fixed and I am unhappy.",
		CustomerName: "Sam",
	})
	if err != nil {
		t.Fatalf("Route() error = %v", err)
	}
	if result.TicketID != "650932" {
		t.Errorf("ticket id = %q, want the existing 650932", result.TicketID)
	}
	if !strings.Contains(result.Reply, "existing ticket #650932") {
		t.Errorf("reply %q should point at the active ticket", result.Reply)
	}
	if n := ticketCount(t, st); n != 1 {
		t.Errorf("tickets = %d, a duplicate must not be opened", n)
	}
}

func TestRouteQueryStatusLookup(t *testing.T) {
	st := store.NewMemoryStore()
	seedOpenTicket(t, st, "650932", "Dana", "Lost my debit card")
	o := newTestOrchestrator(st)

	result, err := o.Route(context.Background(), RouteInput{
		Text: "Could you check the status of ticket 650932?",
	})
	if err != nil {
		t.Fatalf("Route() error = %v", err)
	}
	if result.Label != domain.LabelQuery {
		t.Errorf("label = %q, want %q", result.Label, domain.LabelQuery)
	}
	if !strings.Contains(result.Reply, "#650932") {
		t.Errorf("reply %q missing ticket reference", result.Reply)
	}
	if !strings.Contains(result.Reply, "Open") {
		t.Errorf("reply %q missing the current status", result.Reply)
	}
	if n := ticketCount(t, st); n != 1 {
		t.Errorf("tickets = %d, a referenced query must not create one", n)
	}
}

func TestRouteQueryUnknownTicket(t *testing.T) {
	st := store.NewMemoryStore()
	o := newTestOrchestrator(st)

	result, err := o.Route(context.Background(), RouteInput{
		Text: "Could you check the status of ticket 999999?",
	})
	if err != nil {
		t.Fatalf("Route() error = %v", err)
	}
	if !strings.Contains(result.Reply, "couldn't find ticket #999999") {
		t.Errorf("reply %q should report the unknown reference", result.Reply)
	}
	if n := ticketCount(t, st); n != 0 {
		t.Errorf("tickets = %d, an unknown reference must not create one", n)
	}
}

func TestRouteQueryOpensTrackingTicket(t *testing.T) {
	st := store.NewMemoryStore()
	o := newTestOrchestrator(st)

	result, err := o.Route(context.Background(), RouteInput{
		Text:         "How long does a wire transfer take?",
		CustomerName: "Riya",
	})
	if err != nil {
		t.Fatalf("Route() error = %v", err)
	}
	if result.TicketID == "" {
		t.Fatal("expected a tracking ticket id")
	}
	if !strings.Contains(result.Reply, "now on file") {
		t.Errorf("reply %q should mention the tracking ticket", result.Reply)
	}
	if n := ticketCount(t, st); n != 1 {
		t.Errorf("tickets = %d, want exactly 1 tracking ticket", n)
	}
}

func TestRouteQueryReusesOpenTicketWithoutReference(t *testing.T) {
	st := store.NewMemoryStore()
	seedOpenTicket(t, st, "650932", "Sam", "card declined")
	o := newTestOrchestrator(st)

	result, err := o.Route(context.Background(), RouteInput{
		Text:         "Any update on my request?",
		CustomerName: "Sam",
	})
	if err != nil {
		t.Fatalf("Route() error = %v", err)
	}
	if result.TicketID != "650932" {
		t.Errorf("ticket id = %q, want the existing 650932", result.TicketID)
	}
	if !strings.Contains(result.Reply, "#650932") {
		t.Errorf("reply %q missing ticket reference", result.Reply)
	}
	if n := ticketCount(t, st); n != 1 {
		t.Errorf("tickets = %d, want the existing ticket reused", n)
	}
}

func TestRouteExplicitTicketFollowup(t *testing.T) {
	st := store.NewMemoryStore()
	seedOpenTicket(t, st, "650932", "Dana", "Lost my debit card")
	o := newTestOrchestrator(st)

	text := "my card was stolen, please block it"
	result, err := o.Route(context.Background(), RouteInput{
		Text:         text,
		CustomerName: "Dana",
		TicketID:     "650932",
	})
	if err != nil {
		t.Fatalf("Route() error = %v", err)
	}
	if result.TicketID != "650932" {
		t.Errorf("ticket id = %q, want 650932", result.TicketID)
	}
	if !strings.Contains(result.Reply, "#650932") {
		t.Errorf("reply %q missing ticket reference", result.Reply)
	}

	ticket, _ := st.GetTicket(context.Background(), "650932")
	if ticket.Status != domain.TicketStatusInProgress {
		t.Errorf("status = %q, want %q", ticket.Status, domain.TicketStatusInProgress)
	}
	if !ticket.HasFlag("freeze_card_now") || !ticket.HasFlag("queue_replacement_card") {
		t.Errorf("flags = %v, want the stolen-card remediation pair", ticket.ActionFlags)
	}
	if len(ticket.Notes) != 1 || ticket.Notes[0].Body != text {
		t.Errorf("notes = %+v, want the raw message recorded once", ticket.Notes)
	}
}

func TestRouteExplicitTicketUnknown(t *testing.T) {
	st := store.NewMemoryStore()
	o := newTestOrchestrator(st)

	result, err := o.Route(context.Background(), RouteInput{
		Text:         "any update?",
		CustomerName: "Dana",
		TicketID:     "999999",
	})
	if err == nil {
		t.Error("expected a telemetry error for the unknown ticket")
	}
	if !strings.Contains(result.Reply, "couldn't find ticket #999999") {
		t.Errorf("reply %q should stay customer-usable", result.Reply)
	}
}
