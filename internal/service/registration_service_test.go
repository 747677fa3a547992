package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/vogiaan1904/ticketbottle-checkin/internal/models"
	"github.com/vogiaan1904/ticketbottle-checkin/internal/ticket"
	"github.com/vogiaan1904/ticketbottle-checkin/pkg/logger"
)

type registrationFixture struct {
	svc     *registrationService
	tickets *fakeTicketRepo
	events  *fakeEventRepo
	mailer  *fakeMailer
	prod    *fakeProducer
}

func newRegistrationFixture(ev *models.Event) *registrationFixture {
	f := &registrationFixture{
		tickets: newFakeTicketRepo(),
		events:  newFakeEventRepo(ev),
		mailer:  &fakeMailer{},
		prod:    &fakeProducer{},
	}
	f.svc = &registrationService{
		issuer:     ticket.NewIssuer("TKT"),
		ticketRepo: f.tickets,
		eventRepo:  f.events,
		mailer:     f.mailer,
		prod:       f.prod,
		l:          logger.InitializeTestZapLogger(),
		now:        time.Now,
	}
	return f
}

func sampleEvent() *models.Event {
	return &models.Event{
		ID:               "evt-1",
		Title:            "Summer Conf",
		Date:             "June 1, 2025",
		Time:             "10:00 AM",
		Location:         "Hall B",
		AvailableTickets: 2,
	}
}

func registerInput() RegisterInput {
	return RegisterInput{
		EventID: "evt-1",
		Name:    "Ada Lovelace",
		Email:   "ada@x.com",
		Phone:   "+84123456789",
	}
}

func TestRegisterSuccess(t *testing.T) {
	t.Parallel()

	f := newRegistrationFixture(sampleEvent())

	out, err := f.svc.Register(context.Background(), registerInput())
	if err != nil {
		t.Fatal(err)
	}

	if out.RegistrationID == "" {
		t.Error("missing registration id")
	}
	if out.TicketID == "" {
		t.Error("missing ticket id")
	}
	if !out.EmailSent {
		t.Error("ticket email not reported as sent")
	}

	tok, err := ticket.Decode(out.Token)
	if err != nil {
		t.Fatalf("issued token does not decode: %v", err)
	}
	if tok.TicketID != out.TicketID || tok.EventID != "evt-1" || tok.HolderEmail != "ada@x.com" {
		t.Errorf("token fields mismatch: %+v", tok)
	}

	rec, err := f.tickets.FindByTicketAndEvent(context.Background(), out.TicketID, "evt-1")
	if err != nil {
		t.Fatal(err)
	}
	if rec.Name != "Ada Lovelace" || rec.Email != "ada@x.com" {
		t.Errorf("record fields mismatch: %+v", rec)
	}
	if rec.CheckedIn {
		t.Error("fresh registration must not be checked in")
	}
	if !rec.TicketSent {
		t.Error("record not marked ticket_sent after successful email")
	}

	ev, _ := f.events.Get(context.Background(), "evt-1")
	if ev.AvailableTickets != 1 {
		t.Errorf("available tickets = %d, want 1", ev.AvailableTickets)
	}
	if ev.Registrations != 1 {
		t.Errorf("registrations = %d, want 1", ev.Registrations)
	}

	if len(f.mailer.tickets) != 1 {
		t.Fatalf("got %d ticket emails, want 1", len(f.mailer.tickets))
	}
	sent := f.mailer.tickets[0]
	if sent.VerificationQR != out.Token {
		t.Error("email QR payload differs from issued token")
	}
	if sent.EventTitle != "Summer Conf" || sent.EventLocation != "Hall B" {
		t.Errorf("email event fields mismatch: %+v", sent)
	}

	if len(f.prod.issued) != 1 {
		t.Fatalf("got %d issued events published, want 1", len(f.prod.issued))
	}
	if f.prod.issued[0].TicketID != out.TicketID {
		t.Errorf("published ticket id = %q", f.prod.issued[0].TicketID)
	}
}

func TestRegisterEventNotFound(t *testing.T) {
	t.Parallel()

	f := newRegistrationFixture(sampleEvent())

	in := registerInput()
	in.EventID = "evt-missing"

	if _, err := f.svc.Register(context.Background(), in); !errors.Is(err, ErrEventNotFound) {
		t.Errorf("got %v, want ErrEventNotFound", err)
	}
}

func TestRegisterSoldOut(t *testing.T) {
	t.Parallel()

	ev := sampleEvent()
	ev.AvailableTickets = 0
	f := newRegistrationFixture(ev)

	if _, err := f.svc.Register(context.Background(), registerInput()); !errors.Is(err, ErrSoldOut) {
		t.Errorf("got %v, want ErrSoldOut", err)
	}
	if calls := f.tickets.callCount(); calls != 0 {
		t.Errorf("ticket store accessed %d times for a sold-out event", calls)
	}
}

func TestRegisterLastTicketRace(t *testing.T) {
	t.Parallel()

	ev := sampleEvent()
	ev.AvailableTickets = 1
	f := newRegistrationFixture(ev)

	if _, err := f.svc.Register(context.Background(), registerInput()); err != nil {
		t.Fatal(err)
	}

	// The counter hit zero under the first caller; the second must be
	// rejected even though no pre-check has run since.
	in := registerInput()
	in.Email = "second@x.com"
	if _, err := f.svc.Register(context.Background(), in); !errors.Is(err, ErrSoldOut) {
		t.Errorf("got %v, want ErrSoldOut", err)
	}
}

func TestRegisterTimeSlots(t *testing.T) {
	t.Parallel()

	ev := sampleEvent()
	ev.TimeSlots = []string{"10:00 AM", "2:00 PM"}

	cases := []struct {
		name    string
		slot    string
		wantErr error
	}{
		{"missing slot", "", ErrTimeSlotRequired},
		{"unknown slot", "11:00 PM", ErrInvalidTimeSlot},
		{"valid slot", "2:00 PM", nil},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			f := newRegistrationFixture(ev)

			in := registerInput()
			in.TimeSlot = tc.slot

			out, err := f.svc.Register(context.Background(), in)
			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Errorf("got %v, want %v", err, tc.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if out.TimeSlot != tc.slot {
				t.Errorf("output time slot = %q, want %q", out.TimeSlot, tc.slot)
			}
		})
	}
}

// A record-persistence failure must return the reserved ticket to the
// pool: counters move by exactly one per successful registration only.
func TestRegisterCreateFailureReleasesTicket(t *testing.T) {
	t.Parallel()

	f := newRegistrationFixture(sampleEvent())
	f.tickets.createErr = errors.New("connection reset")

	if _, err := f.svc.Register(context.Background(), registerInput()); err == nil {
		t.Fatal("expected error when the record cannot be saved")
	}

	ev, err := f.events.Get(context.Background(), "evt-1")
	if err != nil {
		t.Fatal(err)
	}
	if ev.AvailableTickets != 2 {
		t.Errorf("available tickets = %d, want 2 after release", ev.AvailableTickets)
	}
	if ev.Registrations != 0 {
		t.Errorf("registrations = %d, want 0 after release", ev.Registrations)
	}

	if len(f.mailer.tickets) != 0 {
		t.Errorf("got %d ticket emails for a failed registration", len(f.mailer.tickets))
	}
	if len(f.prod.issued) != 0 {
		t.Errorf("got %d issued events published for a failed registration", len(f.prod.issued))
	}
}

func TestRegisterEmailFailure(t *testing.T) {
	t.Parallel()

	f := newRegistrationFixture(sampleEvent())
	f.mailer.fail = true

	out, err := f.svc.Register(context.Background(), registerInput())
	if err != nil {
		t.Fatal(err)
	}
	if out.EmailSent {
		t.Error("email_sent reported true for a failed send")
	}

	// Registration still went through; the ticket can be resent later.
	rec, err := f.tickets.FindByTicketAndEvent(context.Background(), out.TicketID, "evt-1")
	if err != nil {
		t.Fatal(err)
	}
	if rec.TicketSent {
		t.Error("record marked ticket_sent despite failed email")
	}
}

func TestRegisterWithoutMailerOrProducer(t *testing.T) {
	t.Parallel()

	f := newRegistrationFixture(sampleEvent())
	f.svc.mailer = nil
	f.svc.prod = nil

	out, err := f.svc.Register(context.Background(), registerInput())
	if err != nil {
		t.Fatal(err)
	}
	if out.EmailSent {
		t.Error("email_sent must be false with no mailer configured")
	}
}
