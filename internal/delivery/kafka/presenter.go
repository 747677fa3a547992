package kafka

import "time"

// Events published BY Check-in Service

type TicketIssuedEvent struct {
	RegistrationID string    `json:"registration_id"`
	TicketID       string    `json:"ticket_id"`
	EventID        string    `json:"event_id"`
	Email          string    `json:"email"`
	TimeSlot       string    `json:"time_slot,omitempty"`
	IssuedAt       time.Time `json:"issued_at"`
	Timestamp      time.Time `json:"timestamp"`
}

type TicketCheckedInEvent struct {
	TicketID    string    `json:"ticket_id"`
	EventID     string    `json:"event_id"`
	OperatorID  string    `json:"operator_id"`
	Method      string    `json:"method"`
	Location    string    `json:"location,omitempty"`
	CheckedInAt time.Time `json:"checked_in_at"`
	Timestamp   time.Time `json:"timestamp"`
}

// Events consumed BY Check-in Service (from the box-office importer)

type RegistrationImportedEvent struct {
	EventID   string    `json:"event_id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone,omitempty"`
	TimeSlot  string    `json:"time_slot,omitempty"`
	Source    string    `json:"source,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}
