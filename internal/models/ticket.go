package models

import "time"

type VerificationMethod string

const (
	VerificationMethodQRScan VerificationMethod = "qr_scan"
	VerificationMethodManual VerificationMethod = "manual"
)

// TicketRecord is the persisted registration document. One record is
// created per successful registration and its checked-in fields are
// written exactly once, at the moment of a successful check-in.
type TicketRecord struct {
	ID                 string             `json:"id"`
	TicketID           string             `json:"ticket_id"`
	EventID            string             `json:"event_id"`
	Name               string             `json:"name"`
	Email              string             `json:"email"`
	Phone              string             `json:"phone,omitempty"`
	TimeSlot           string             `json:"time_slot,omitempty"`
	CheckedIn          bool               `json:"checked_in"`
	CheckedInAt        *time.Time         `json:"checked_in_at,omitempty"`
	CheckedInBy        string             `json:"checked_in_by,omitempty"`
	CheckedInLocation  string             `json:"checked_in_location,omitempty"`
	VerificationMethod VerificationMethod `json:"verification_method,omitempty"`
	TicketSent         bool               `json:"ticket_sent"`
	CreatedAt          time.Time          `json:"created_at"`
	UpdatedAt          time.Time          `json:"updated_at"`
}

// CheckInStamp carries the metadata written alongside the
// checked_in=false -> true transition.
type CheckInStamp struct {
	At       time.Time          `json:"at"`
	By       string             `json:"by"`
	Location string             `json:"location,omitempty"`
	Method   VerificationMethod `json:"method"`
}

func (r *TicketRecord) ApplyCheckIn(stamp CheckInStamp) {
	at := stamp.At
	r.CheckedIn = true
	r.CheckedInAt = &at
	r.CheckedInBy = stamp.By
	r.CheckedInLocation = stamp.Location
	r.VerificationMethod = stamp.Method
	r.UpdatedAt = at
}

// VerificationEntry is one row of the scanner's recent-verification
// history, kept per event.
type VerificationEntry struct {
	Approved     bool      `json:"approved"`
	Status       string    `json:"status"`
	Message      string    `json:"message"`
	TicketID     string    `json:"ticket_id,omitempty"`
	AttendeeName string    `json:"attendee_name,omitempty"`
	Operator     string    `json:"operator,omitempty"`
	At           time.Time `json:"at"`
}
