// Package orchestrator is the top-level decision function over inbound
// messages: new interaction, continuation of an open ticket, or follow-up
// under an explicit ticket reference.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/support-router/internal/classify"
	"github.com/spec-kit/support-router/internal/compose"
	"github.com/spec-kit/support-router/internal/domain"
	"github.com/spec-kit/support-router/internal/eventlog"
	"github.com/spec-kit/support-router/internal/lifecycle"
	"github.com/spec-kit/support-router/internal/store"
)

// Matches "ticket 123456", "ticket#123456", "Ticket # 123456".
var ticketRefPattern = regexp.MustCompile(`(?i)ticket\s*#?\s*(\d{6})`)

// Bare 6-digit fallback for texts like "status of 650932".
var bareRefPattern = regexp.MustCompile(`\b(\d{6})\b`)

// ExtractTicketNumber pulls a 6-digit ticket reference out of free text.
func ExtractTicketNumber(text string) string {
	if m := ticketRefPattern.FindStringSubmatch(text); m != nil {
		return m[1]
	}
	if m := bareRefPattern.FindStringSubmatch(text); m != nil {
		return m[1]
	}
	return ""
}

// RouteInput is one inbound customer message.
type RouteInput struct {
	Text         string
	CustomerName string
	// TicketID, when set, short-circuits label routing: the message is always
	// treated as a follow-up on that ticket.
	TicketID string
}

// RouteResult is the routing outcome. Reply is always non-empty.
type RouteResult struct {
	Reply    string
	TicketID string
	Label    domain.Label
}

// Orchestrator sequences classifier, lifecycle manager, store, and composer.
type Orchestrator struct {
	classifier       *classify.Classifier
	lifecycle        *lifecycle.Manager
	store            store.TicketStore
	sink             eventlog.Sink
	logger           *zap.Logger
	preferCapability bool
}

// Dependencies bundles collaborators for the orchestrator.
type Dependencies struct {
	Classifier       *classify.Classifier
	Lifecycle        *lifecycle.Manager
	Store            store.TicketStore
	Sink             eventlog.Sink
	Logger           *zap.Logger
	PreferCapability bool
}

// New constructs the orchestrator.
func New(deps Dependencies) *Orchestrator {
	if deps.Sink == nil {
		deps.Sink = eventlog.NopSink{}
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	return &Orchestrator{
		classifier:       deps.Classifier,
		lifecycle:        deps.Lifecycle,
		store:            deps.Store,
		sink:             deps.Sink,
		logger:           deps.Logger,
		preferCapability: deps.PreferCapability,
	}
}

// Route decides how to handle one message. The reply is always usable; a
// non-nil error is caller telemetry only.
func (o *Orchestrator) Route(ctx context.Context, in RouteInput) (RouteResult, error) {
	text := strings.TrimSpace(in.Text)
	rawName := strings.TrimSpace(in.CustomerName)
	name := domain.NormalizeCustomerName(in.CustomerName)

	label := o.classifier.Classify(ctx, text, o.preferCapability)
	result := RouteResult{Label: label}

	// A customer replying under a known ticket is continuing a conversation,
	// not starting a new classification.
	if explicit := strings.TrimSpace(in.TicketID); explicit != "" {
		reply, err := o.lifecycle.ApplyFollowup(ctx, explicit, name, text)
		result.Reply = reply
		result.TicketID = explicit
		o.decision(ctx, "explicit_followup", name, explicit, label)
		return result, err
	}

	workingID := o.findExistingTicket(ctx, rawName)

	switch label {
	case domain.LabelPositiveFeedback:
		// Positive feedback never creates a ticket; an existing id is ignored.
		result.Reply = compose.PositiveAck(name)
		o.decision(ctx, "positive_ack", name, "", label)
		return result, nil

	case domain.LabelNegativeFeedback:
		if workingID != "" {
			result.Reply = compose.ExistingTicketActive(name, workingID)
			result.TicketID = workingID
			o.decision(ctx, "negative_feedback_existing_ticket", name, workingID, label)
			return result, nil
		}
		ticket, err := o.lifecycle.OpenTicket(ctx, in.CustomerName, text)
		if err != nil {
			o.logger.Warn("complaint ticket creation failed", zap.Error(err))
			result.Reply = compose.GenericEscalation("")
			o.decision(ctx, "negative_feedback_escalated", name, "", label)
			return result, err
		}
		result.Reply = compose.TicketCreated(name, ticket.ID)
		result.TicketID = ticket.ID
		o.decision(ctx, "negative_feedback_new_ticket", name, ticket.ID, label)
		return result, nil

	default: // domain.LabelQuery
		return o.routeQuery(ctx, name, text, workingID, result)
	}
}

// routeQuery handles the status-lookup flow, opening a tracking ticket only
// when the text carries no ticket reference and no open ticket exists for the
// customer. A query referencing a ticket id never creates one as a side effect.
func (o *Orchestrator) routeQuery(ctx context.Context, name, text, workingID string, result RouteResult) (RouteResult, error) {
	ref := ExtractTicketNumber(text)
	queryText := text
	createdNow := false

	if ref == "" {
		if workingID == "" {
			ticket, err := o.lifecycle.OpenTicket(ctx, name, text)
			if err != nil {
				o.logger.Warn("tracking ticket creation failed", zap.Error(err))
				result.Reply = compose.GenericEscalation("")
				o.decision(ctx, "query_escalated", name, "", result.Label)
				return result, err
			}
			workingID = ticket.ID
			createdNow = true
		}
		ref = workingID
		queryText = fmt.Sprintf("%s (ticket %s)", text, workingID)
	}

	reply, err := o.statusLookup(ctx, name, ref, queryText)
	if createdNow {
		reply = reply + "\n\n" + compose.TrackingTicketOnFile(workingID)
	}
	result.Reply = reply
	result.TicketID = ref
	o.decision(ctx, "query_routed", name, ref, result.Label)
	return result, err
}

func (o *Orchestrator) statusLookup(ctx context.Context, name, ref, queryText string) (string, error) {
	if ref == "" {
		return compose.MissingTicketNumber(), nil
	}
	ticket, err := o.store.GetTicket(ctx, ref)
	if err != nil {
		if errors.Is(err, store.ErrTicketNotFound) {
			return compose.TicketNotFound(ref), nil
		}
		o.logger.Warn("status lookup failed", zap.String("ticket_id", ref), zap.Error(err))
		return compose.GenericEscalation(ref), err
	}
	return compose.StatusReply(name, ticket.ID, ticket.Status, queryText, ticket.Description), nil
}

func (o *Orchestrator) findExistingTicket(ctx context.Context, rawName string) string {
	if rawName == "" {
		return ""
	}
	id, _, err := o.store.FindOpenTicketByCustomer(ctx, rawName)
	if err != nil {
		if !errors.Is(err, store.ErrTicketNotFound) {
			o.logger.Warn("open ticket lookup failed", zap.String("customer", rawName), zap.Error(err))
		}
		return ""
	}
	return id
}

func (o *Orchestrator) decision(ctx context.Context, event, name, ticketID string, label domain.Label) {
	details := map[string]any{
		"customer_name": name,
		"label":         string(label),
	}
	if ticketID != "" {
		details["ticket_id"] = ticketID
	}
	o.sink.Log(ctx, eventlog.LevelInfo, "Orchestrator", event, details)
}
