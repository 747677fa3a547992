package mailer

import "context"

// Mailer sends template emails. It is best-effort from the caller's
// point of view: a failure is reported but never rolls back the
// operation that triggered it.
type Mailer interface {
	SendTicket(ctx context.Context, email TicketEmail) error
	SendCheckInConfirmation(ctx context.Context, email ConfirmationEmail) error
}

// TicketEmail mirrors the registration ticket template: event display
// fields plus the encoded verification token rendered as a QR code.
type TicketEmail struct {
	ToEmail        string
	ToName         string
	EventTitle     string
	EventDate      string
	EventTime      string
	EventLocation  string
	EventImage     string
	TicketNumber   string
	TimeSlot       string
	VerificationQR string
}

type ConfirmationEmail struct {
	ToEmail      string
	ToName       string
	EventTitle   string
	TicketNumber string
	CheckedInAt  string
	Location     string
}
