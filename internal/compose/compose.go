// Package compose renders customer-facing reply text. Every function is a pure
// function of its inputs: deterministic, never empty, and a known ticket id is
// always included in the reply.
package compose

import (
	"fmt"
	"strings"

	"github.com/spec-kit/support-router/internal/domain"
)

// PositiveAck thanks the customer; no ticket is referenced because none is created.
func PositiveAck(customerName string) string {
	return fmt.Sprintf("Thank you for your kind words, %s! We're delighted to assist you.",
		domain.NormalizeCustomerName(customerName))
}

// TicketCreated apologizes and hands over the new ticket number.
func TicketCreated(customerName, ticketID string) string {
	return fmt.Sprintf("We apologize for the inconvenience, %s. A new ticket #%s has been generated, and our team will follow up shortly.",
		domain.NormalizeCustomerName(customerName), ticketID)
}

// ExistingTicketActive reports a complaint against an already-open ticket
// instead of opening a duplicate.
func ExistingTicketActive(customerName, ticketID string) string {
	return fmt.Sprintf("We apologize for the inconvenience, %s. Your existing ticket #%s is active - our team will follow up shortly.",
		domain.NormalizeCustomerName(customerName), ticketID)
}

// TicketNotFound asks the customer to double-check an unresolvable reference.
func TicketNotFound(ticketID string) string {
	return fmt.Sprintf("I couldn't find ticket #%s. Please double-check the number or reply without a ticket so I can create one for you.", ticketID)
}

// MissingTicketNumber guides the customer when no 6-digit reference was extractable.
func MissingTicketNumber() string {
	return "I couldn't find a 6-digit ticket number in your message. Please provide one, or send your message without a ticket reference so I can create or reuse one automatically."
}

// GenericEscalation is the non-blocking reply for internal faults. The
// customer-visible path never hard-fails.
func GenericEscalation(ticketID string) string {
	if ticketID != "" {
		return fmt.Sprintf("We've recorded your message on ticket #%s and escalated it to our support team. You'll hear from us shortly.", ticketID)
	}
	return "We've recorded your message and escalated it to our support team. You'll hear from us shortly."
}

// TrackingTicketOnFile is appended when a query opened a tracking ticket.
func TrackingTicketOnFile(ticketID string) string {
	return fmt.Sprintf("A ticket #%s is now on file for this request.", ticketID)
}

// StatusReply renders the status-lookup answer: greeting, current status, and
// a canned operational paragraph chosen by the inferred issue category. The
// query text is consulted first, then the stored ticket description.
func StatusReply(customerName, ticketID string, status domain.TicketStatus, queryText, description string) string {
	category := InferIssueCategory(queryText)
	if category == "" {
		category = InferIssueCategory(description)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Hi %s,\n\n", domain.NormalizeCustomerName(customerName))
	fmt.Fprintf(&sb, "Your ticket #%s is currently marked as: %s.\n\n", ticketID, status)
	sb.WriteString(statusDetail(category, status))
	return sb.String()
}

// Issue categories driving the canned status paragraphs.
const (
	CategoryLostCard       = "lost_debit_card"
	CategoryCardNotArrived = "debit_card_not_arrived"
	CategoryPinReset       = "pin_reset"
	CategoryLoginIssue     = "login_issue"
)

// InferIssueCategory derives an issue category from keyword heuristics over
// free text. Returns "" when nothing matches.
func InferIssueCategory(text string) string {
	t := strings.ToLower(text)
	switch {
	case t == "":
		return ""
	case (strings.Contains(t, "lost") || strings.Contains(t, "stolen")) && strings.Contains(t, "card"):
		return CategoryLostCard
	case strings.Contains(t, "card") && (strings.Contains(t, "arrive") || strings.Contains(t, "replacement") || strings.Contains(t, "shipping")):
		return CategoryCardNotArrived
	case strings.Contains(t, "pin"):
		return CategoryPinReset
	case strings.Contains(t, "login") || strings.Contains(t, "log in") || strings.Contains(t, "signin") || strings.Contains(t, "sign in") || strings.Contains(t, "locked out") || strings.Contains(t, "password"):
		return CategoryLoginIssue
	}
	return ""
}

func statusDetail(category string, status domain.TicketStatus) string {
	active := status.IsActive()
	switch category {
	case CategoryLostCard:
		if active {
			return "We've initiated a debit-card replacement workflow for you. " +
				"Typical processing takes 1 business day, with standard delivery in 3-5 business days. " +
				"If you need it faster, reply \"expedite\" and we'll check availability for 1-2 business day shipping. " +
				"If you haven't already, consider temporarily blocking your old card to prevent new charges."
		}
		return "This replacement request appears completed. " +
			"If you haven't received your new card yet, reply \"tracking\" and we'll share shipment details or reissue if needed."
	case CategoryCardNotArrived:
		return "Your replacement card is in progress. Standard shipping is 3-5 business days after processing. " +
			"If it's past that window, reply \"tracking\" so we can verify shipment status or reissue the card."
	case CategoryPinReset:
		return "For PIN resets, we'll text or email a secure verification link. " +
			"Once verified, you can set a new PIN immediately. If you don't receive a code within a few minutes, reply \"resend code\"."
	case CategoryLoginIssue:
		return "For login issues, we'll verify your identity and help you unlock the account or reset your password. " +
			"If you see an OTP/2FA problem, reply \"2FA help\" to get step-by-step instructions."
	}
	if active {
		return "We're actively working on this. Typical updates are provided within 1 business day. " +
			"If you can share any new details (e.g., dates, amounts, device used), reply with them here to help us resolve faster."
	}
	return "This ticket looks resolved. If anything is still outstanding, reply here and we'll reopen and continue assisting."
}

// FollowupReply renders the per-intent acknowledgement for a follow-up applied
// to an existing ticket.
func FollowupReply(intentName, customerName, ticketID string) string {
	name := domain.NormalizeCustomerName(customerName)
	switch intentName {
	case "freeze_lost_stolen_card":
		return fmt.Sprintf("%s, we've flagged your card to be blocked right away so no new charges can go through, and a replacement card has been queued. Everything is tracked on ticket #%s.", name, ticketID)
	case "replace_card":
		return fmt.Sprintf("%s, a replacement card has been queued for you on ticket #%s. Standard delivery is 3-5 business days after processing.", name, ticketID)
	case "fraud_charge_dispute":
		return fmt.Sprintf("%s, we've opened a fraud investigation for the charge you reported on ticket #%s. You won't be liable for confirmed unauthorized transactions.", name, ticketID)
	case "travel_notice":
		return fmt.Sprintf("%s, a travel notice has been added to your profile under ticket #%s. Your card should work normally while you're away.", name, ticketID)
	case "address_update":
		return fmt.Sprintf("%s, we've queued an address verification on ticket #%s. We'll confirm the change once your new address is verified.", name, ticketID)
	case "app_access_issue":
		return fmt.Sprintf("%s, we've triggered an app access reset on ticket #%s. You'll receive a secure link to restore your sign-in shortly.", name, ticketID)
	}
	return fmt.Sprintf("Thanks, %s - we've added your message to ticket #%s and our team is looking at it.", name, ticketID)
}
