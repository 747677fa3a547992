package service

import (
	"context"
	"fmt"
	"sync"

	kafka "github.com/vogiaan1904/ticketbottle-checkin/internal/delivery/kafka"
	"github.com/vogiaan1904/ticketbottle-checkin/internal/mailer"
	"github.com/vogiaan1904/ticketbottle-checkin/internal/models"
	repo "github.com/vogiaan1904/ticketbottle-checkin/internal/repository/redis"
)

type fakeTicketRepo struct {
	mu         sync.Mutex
	records    map[string]*models.TicketRecord
	lookup     map[string]string
	calls      int
	createErr  error
	checkInErr error
}

func newFakeTicketRepo() *fakeTicketRepo {
	return &fakeTicketRepo{
		records: map[string]*models.TicketRecord{},
		lookup:  map[string]string{},
	}
}

func (f *fakeTicketRepo) lookupKey(eventID, ticketID string) string {
	return eventID + ":" + ticketID
}

func (f *fakeTicketRepo) Create(ctx context.Context, rec *models.TicketRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++

	if f.createErr != nil {
		return f.createErr
	}

	cp := *rec
	f.records[rec.ID] = &cp
	f.lookup[f.lookupKey(rec.EventID, rec.TicketID)] = rec.ID
	return nil
}

func (f *fakeTicketRepo) Get(ctx context.Context, recordID string) (*models.TicketRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++

	rec, ok := f.records[recordID]
	if !ok {
		return nil, repo.ErrNotFound
	}
	cp := *rec
	return &cp, nil
}

func (f *fakeTicketRepo) FindByTicketAndEvent(ctx context.Context, ticketID, eventID string) (*models.TicketRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++

	recordID, ok := f.lookup[f.lookupKey(eventID, ticketID)]
	if !ok {
		return nil, repo.ErrNotFound
	}
	cp := *f.records[recordID]
	return &cp, nil
}

func (f *fakeTicketRepo) MarkTicketSent(ctx context.Context, recordID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++

	rec, ok := f.records[recordID]
	if !ok {
		return repo.ErrNotFound
	}
	rec.TicketSent = true
	return nil
}

func (f *fakeTicketRepo) CheckIn(ctx context.Context, ticketID, eventID string, stamp models.CheckInStamp) (*models.TicketRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++

	if f.checkInErr != nil {
		return nil, f.checkInErr
	}

	recordID, ok := f.lookup[f.lookupKey(eventID, ticketID)]
	if !ok {
		return nil, repo.ErrNotFound
	}

	rec := f.records[recordID]
	if rec.CheckedIn {
		cp := *rec
		return &cp, repo.ErrAlreadyCheckedIn
	}

	rec.ApplyCheckIn(stamp)
	cp := *rec
	return &cp, nil
}

func (f *fakeTicketRepo) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeEventRepo struct {
	mu     sync.Mutex
	events map[string]*models.Event
	getErr error
}

func newFakeEventRepo(events ...*models.Event) *fakeEventRepo {
	f := &fakeEventRepo{events: map[string]*models.Event{}}
	for _, ev := range events {
		cp := *ev
		f.events[ev.ID] = &cp
	}
	return f
}

func (f *fakeEventRepo) Get(ctx context.Context, eventID string) (*models.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.getErr != nil {
		return nil, f.getErr
	}
	ev, ok := f.events[eventID]
	if !ok {
		return nil, repo.ErrNotFound
	}
	cp := *ev
	return &cp, nil
}

func (f *fakeEventRepo) Save(ctx context.Context, ev *models.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	cp := *ev
	f.events[ev.ID] = &cp
	return nil
}

func (f *fakeEventRepo) RegisterAttendee(ctx context.Context, eventID string) (*models.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	ev, ok := f.events[eventID]
	if !ok {
		return nil, repo.ErrNotFound
	}
	if ev.IsSoldOut() {
		return nil, repo.ErrSoldOut
	}

	ev.AvailableTickets--
	ev.Registrations++
	cp := *ev
	return &cp, nil
}

func (f *fakeEventRepo) ReleaseTicket(ctx context.Context, eventID string) (*models.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	ev, ok := f.events[eventID]
	if !ok {
		return nil, repo.ErrNotFound
	}

	ev.AvailableTickets++
	if ev.Registrations > 0 {
		ev.Registrations--
	}
	cp := *ev
	return &cp, nil
}

type fakeHistoryRepo struct {
	mu      sync.Mutex
	entries map[string][]models.VerificationEntry
}

func newFakeHistoryRepo() *fakeHistoryRepo {
	return &fakeHistoryRepo{entries: map[string][]models.VerificationEntry{}}
}

func (f *fakeHistoryRepo) Record(ctx context.Context, eventID string, entry models.VerificationEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.entries[eventID] = append([]models.VerificationEntry{entry}, f.entries[eventID]...)
	return nil
}

func (f *fakeHistoryRepo) List(ctx context.Context, eventID string, limit int) ([]models.VerificationEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	rows := f.entries[eventID]
	if limit > 0 && limit < len(rows) {
		rows = rows[:limit]
	}
	out := make([]models.VerificationEntry, len(rows))
	copy(out, rows)
	return out, nil
}

type fakeMailer struct {
	mu            sync.Mutex
	fail          bool
	tickets       []mailer.TicketEmail
	confirmations []mailer.ConfirmationEmail
}

func (f *fakeMailer) SendTicket(ctx context.Context, email mailer.TicketEmail) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.fail {
		return fmt.Errorf("smtp unavailable")
	}
	f.tickets = append(f.tickets, email)
	return nil
}

func (f *fakeMailer) SendCheckInConfirmation(ctx context.Context, email mailer.ConfirmationEmail) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.fail {
		return fmt.Errorf("smtp unavailable")
	}
	f.confirmations = append(f.confirmations, email)
	return nil
}

type fakeProducer struct {
	mu        sync.Mutex
	issued    []kafka.TicketIssuedEvent
	checkedIn []kafka.TicketCheckedInEvent
}

func (f *fakeProducer) PublishTicketIssued(ctx context.Context, event kafka.TicketIssuedEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.issued = append(f.issued, event)
	return nil
}

func (f *fakeProducer) PublishTicketCheckedIn(ctx context.Context, event kafka.TicketCheckedInEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.checkedIn = append(f.checkedIn, event)
	return nil
}

func (f *fakeProducer) Close() error { return nil }
