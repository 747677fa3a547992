package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	kafka "github.com/vogiaan1904/ticketbottle-checkin/internal/delivery/kafka"
	"github.com/vogiaan1904/ticketbottle-checkin/internal/delivery/kafka/producer"
	"github.com/vogiaan1904/ticketbottle-checkin/internal/mailer"
	"github.com/vogiaan1904/ticketbottle-checkin/internal/models"
	repo "github.com/vogiaan1904/ticketbottle-checkin/internal/repository/redis"
	"github.com/vogiaan1904/ticketbottle-checkin/internal/ticket"
	"github.com/vogiaan1904/ticketbottle-checkin/pkg/logger"
)

type RegistrationService interface {
	Register(ctx context.Context, in RegisterInput) (*RegisterOutput, error)
}

type registrationService struct {
	issuer     *ticket.Issuer
	ticketRepo repo.TicketRepository
	eventRepo  repo.EventRepository
	mailer     mailer.Mailer
	prod       producer.Producer
	l          logger.Logger
	now        func() time.Time
}

func NewRegistrationService(
	issuer *ticket.Issuer,
	ticketRepo repo.TicketRepository,
	eventRepo repo.EventRepository,
	m mailer.Mailer,
	prod producer.Producer,
	l logger.Logger,
) RegistrationService {
	return &registrationService{
		issuer:     issuer,
		ticketRepo: ticketRepo,
		eventRepo:  eventRepo,
		mailer:     m,
		prod:       prod,
		l:          l,
		now:        time.Now,
	}
}

// Register creates the ticket record and its verification token
// together. The event's counters move atomically: available_tickets
// down by one, registrations up by one, never past zero.
func (s *registrationService) Register(ctx context.Context, in RegisterInput) (*RegisterOutput, error) {
	ev, err := s.eventRepo.Get(ctx, in.EventID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			s.l.Warnf(ctx, "service.registrationService.Register: %v", ErrEventNotFound)
			return nil, ErrEventNotFound
		}
		return nil, fmt.Errorf("failed to load event: %w", err)
	}

	if ev.IsSoldOut() {
		return nil, ErrSoldOut
	}

	if ev.HasTimeSlots() {
		if in.TimeSlot == "" {
			return nil, ErrTimeSlotRequired
		}
		if !ev.HasTimeSlot(in.TimeSlot) {
			return nil, ErrInvalidTimeSlot
		}
	}

	issued, err := s.issuer.Issue(in.EventID, in.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to issue ticket: %w", err)
	}

	// The counter CAS is the sold-out arbiter; the pre-check above
	// only short-circuits the common case.
	updated, err := s.eventRepo.RegisterAttendee(ctx, in.EventID)
	if err != nil {
		if errors.Is(err, repo.ErrSoldOut) {
			return nil, ErrSoldOut
		}
		return nil, fmt.Errorf("failed to update event counters: %w", err)
	}

	now := s.now()
	rec := &models.TicketRecord{
		ID:        uuid.New().String(),
		TicketID:  issued.TicketID,
		EventID:   in.EventID,
		Name:      in.Name,
		Email:     in.Email,
		Phone:     in.Phone,
		TimeSlot:  in.TimeSlot,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.ticketRepo.Create(ctx, rec); err != nil {
		// Return the reserved ticket so the failed registration does
		// not leave the counters off by one.
		if _, rlErr := s.eventRepo.ReleaseTicket(ctx, in.EventID); rlErr != nil {
			s.l.Errorf(ctx, "service.registrationService.Register: %v", rlErr)
		}
		return nil, fmt.Errorf("failed to save ticket record: %w", err)
	}

	emailSent := s.sendTicket(ctx, updated, rec, issued.Encoded)
	if emailSent {
		if err := s.ticketRepo.MarkTicketSent(ctx, rec.ID); err != nil {
			s.l.Warnf(ctx, "service.registrationService.Register: %v", err)
		}
	}

	if s.prod != nil {
		if err := s.prod.PublishTicketIssued(ctx, kafka.TicketIssuedEvent{
			RegistrationID: rec.ID,
			TicketID:       rec.TicketID,
			EventID:        rec.EventID,
			Email:          rec.Email,
			TimeSlot:       rec.TimeSlot,
			IssuedAt:       issued.Token.IssuedAtTime(),
		}); err != nil {
			s.l.Errorf(ctx, "service.registrationService.Register: %v", err)
		}
	}

	s.l.Info(ctx, "Registration completed",
		"registration_id", rec.ID,
		"ticket_id", rec.TicketID,
		"event_id", rec.EventID,
	)

	return &RegisterOutput{
		RegistrationID: rec.ID,
		TicketID:       rec.TicketID,
		Token:          issued.Encoded,
		EventID:        rec.EventID,
		TimeSlot:       rec.TimeSlot,
		EmailSent:      emailSent,
	}, nil
}

func (s *registrationService) sendTicket(ctx context.Context, ev *models.Event, rec *models.TicketRecord, encodedToken string) bool {
	if s.mailer == nil {
		return false
	}

	err := s.mailer.SendTicket(ctx, mailer.TicketEmail{
		ToEmail:        rec.Email,
		ToName:         rec.Name,
		EventTitle:     ev.Title,
		EventDate:      ev.Date,
		EventTime:      ev.Time,
		EventLocation:  ev.Location,
		EventImage:     ev.ImageURL,
		TicketNumber:   rec.TicketID,
		TimeSlot:       rec.TimeSlot,
		VerificationQR: encodedToken,
	})
	if err != nil {
		s.l.Warnf(ctx, "Failed to send ticket email - ticket_id: %s, error: %v", rec.TicketID, err)
		return false
	}

	return true
}
