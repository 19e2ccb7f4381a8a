package events

import "time"

// LeadCreatedV1 is published once a contact form lead has been stored.
type LeadCreatedV1 struct {
	LeadID     string    `json:"lead_id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Company    string    `json:"company,omitempty"`
	Phone      string    `json:"phone,omitempty"`
	Service    string    `json:"service,omitempty"`
	Message    string    `json:"message"`
	Source     string    `json:"source"`
	ReceivedAt time.Time `json:"received_at"`
}

func (LeadCreatedV1) EventType() string { return "lead.created.v1" }
