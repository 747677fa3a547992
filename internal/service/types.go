package service

import (
	"time"

	"github.com/vogiaan1904/ticketbottle-checkin/internal/auth"
	"github.com/vogiaan1904/ticketbottle-checkin/internal/models"
)

// CheckInStatus discriminates every possible result of a check-in
// attempt. All of them are returned, never thrown: logical rejections
// and store failures alike come back as a classified output.
type CheckInStatus string

const (
	CheckInStatusApproved      CheckInStatus = "APPROVED"
	CheckInStatusInvalidFormat CheckInStatus = "INVALID_FORMAT"
	CheckInStatusWrongEvent    CheckInStatus = "WRONG_EVENT"
	CheckInStatusExpired       CheckInStatus = "EXPIRED"
	CheckInStatusNotFound      CheckInStatus = "NOT_FOUND"
	CheckInStatusAlreadyUsed   CheckInStatus = "ALREADY_USED"
	CheckInStatusStoreError    CheckInStatus = "STORE_ERROR"
)

type CheckInInput struct {
	TokenString string
	EventID     string
	Operator    auth.Operator
	Location    string
	Method      models.VerificationMethod
}

type CheckInOutput struct {
	Status       CheckInStatus `json:"status"`
	Approved     bool          `json:"approved"`
	Message      string        `json:"message"`
	TicketID     string        `json:"ticket_id,omitempty"`
	AttendeeName string        `json:"attendee_name,omitempty"`
	TimeSlot     string        `json:"time_slot,omitempty"`
	CheckedInAt  *time.Time    `json:"checked_in_at,omitempty"`
	EmailSent    bool          `json:"email_sent"`
}

type RegisterInput struct {
	EventID  string `json:"event_id" validate:"required"`
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Phone    string `json:"phone"`
	TimeSlot string `json:"time_slot"`
}

type RegisterOutput struct {
	RegistrationID string `json:"registration_id"`
	TicketID       string `json:"ticket_id"`
	Token          string `json:"token"`
	EventID        string `json:"event_id"`
	TimeSlot       string `json:"time_slot,omitempty"`
	EmailSent      bool   `json:"email_sent"`
}
