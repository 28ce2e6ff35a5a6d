package dto

// RouteMessageRequest is an inbound customer message.
type RouteMessageRequest struct {
	Text         string `json:"text"`
	CustomerName string `json:"customer_name"`
	TicketID     string `json:"ticket_id,omitempty"`
}

// RouteMessageResponse carries the routing outcome.
type RouteMessageResponse struct {
	Reply    string `json:"reply"`
	Label    string `json:"label"`
	TicketID string `json:"ticket_id,omitempty"`
}
