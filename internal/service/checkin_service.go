package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	kafka "github.com/vogiaan1904/ticketbottle-checkin/internal/delivery/kafka"
	"github.com/vogiaan1904/ticketbottle-checkin/internal/delivery/kafka/producer"
	"github.com/vogiaan1904/ticketbottle-checkin/internal/mailer"
	"github.com/vogiaan1904/ticketbottle-checkin/internal/models"
	repo "github.com/vogiaan1904/ticketbottle-checkin/internal/repository/redis"
	"github.com/vogiaan1904/ticketbottle-checkin/internal/ticket"
	"github.com/vogiaan1904/ticketbottle-checkin/pkg/logger"
	"github.com/vogiaan1904/ticketbottle-checkin/pkg/util"
)

type CheckInService interface {
	CheckIn(ctx context.Context, in CheckInInput) (*CheckInOutput, error)
	History(ctx context.Context, eventID string, limit int) ([]models.VerificationEntry, error)
}

type checkInService struct {
	ticketRepo  repo.TicketRepository
	eventRepo   repo.EventRepository
	historyRepo repo.HistoryRepository
	mailer      mailer.Mailer
	prod        producer.Producer
	l           logger.Logger
	now         func() time.Time
}

func NewCheckInService(
	ticketRepo repo.TicketRepository,
	eventRepo repo.EventRepository,
	historyRepo repo.HistoryRepository,
	m mailer.Mailer,
	prod producer.Producer,
	l logger.Logger,
) CheckInService {
	return &checkInService{
		ticketRepo:  ticketRepo,
		eventRepo:   eventRepo,
		historyRepo: historyRepo,
		mailer:      m,
		prod:        prod,
		l:           l,
		now:         time.Now,
	}
}

// CheckIn admits an attendee exactly once. Local token checks run
// first so malformed scans never reach the store; the checked-in
// transition itself is a single conditional store operation. The
// returned error is non-nil only for store transport failures, which
// surface as CheckInStatusStoreError so callers can decide to retry.
func (s *checkInService) CheckIn(ctx context.Context, in CheckInInput) (*CheckInOutput, error) {
	res := ticket.Verify(in.TokenString, in.EventID, s.now())
	if !res.Valid() {
		out := rejectionOutput(res)
		s.recordHistory(ctx, in.EventID, in.Operator.ID, out)
		return out, nil
	}

	stamp := models.CheckInStamp{
		At:       s.now(),
		By:       in.Operator.ID,
		Location: in.Location,
		Method:   in.Method,
	}

	rec, err := s.ticketRepo.CheckIn(ctx, res.Token.TicketID, in.EventID, stamp)
	if err != nil {
		switch {
		case errors.Is(err, repo.ErrNotFound):
			out := &CheckInOutput{
				Status:   CheckInStatusNotFound,
				Message:  "Ticket not found in database",
				TicketID: res.Token.TicketID,
			}
			s.recordHistory(ctx, in.EventID, in.Operator.ID, out)
			return out, nil

		case errors.Is(err, repo.ErrAlreadyCheckedIn):
			out := &CheckInOutput{
				Status:       CheckInStatusAlreadyUsed,
				Message:      alreadyUsedMessage(rec.CheckedInAt),
				TicketID:     rec.TicketID,
				AttendeeName: rec.Name,
				TimeSlot:     rec.TimeSlot,
				CheckedInAt:  rec.CheckedInAt,
			}
			s.recordHistory(ctx, in.EventID, in.Operator.ID, out)
			return out, nil

		default:
			s.l.Errorf(ctx, "service.checkInService.CheckIn: %v", err)
			return &CheckInOutput{
				Status:   CheckInStatusStoreError,
				Message:  "Verification failed, please retry",
				TicketID: res.Token.TicketID,
			}, err
		}
	}

	out := &CheckInOutput{
		Status:       CheckInStatusApproved,
		Approved:     true,
		Message:      "Valid ticket - Entry approved",
		TicketID:     rec.TicketID,
		AttendeeName: rec.Name,
		TimeSlot:     rec.TimeSlot,
		CheckedInAt:  rec.CheckedInAt,
	}

	// Confirmation email is best-effort: a failure is reported on the
	// result but never demotes an approved check-in.
	out.EmailSent = s.sendConfirmation(ctx, rec)

	if s.prod != nil {
		if err := s.prod.PublishTicketCheckedIn(ctx, kafka.TicketCheckedInEvent{
			TicketID:    rec.TicketID,
			EventID:     rec.EventID,
			OperatorID:  in.Operator.ID,
			Method:      string(in.Method),
			Location:    in.Location,
			CheckedInAt: *rec.CheckedInAt,
		}); err != nil {
			s.l.Errorf(ctx, "service.checkInService.CheckIn: %v", err)
		}
	}

	s.recordHistory(ctx, in.EventID, in.Operator.ID, out)

	s.l.Info(ctx, "Ticket checked in",
		"ticket_id", rec.TicketID,
		"event_id", rec.EventID,
		"operator_id", in.Operator.ID,
		"method", in.Method,
	)

	return out, nil
}

func (s *checkInService) History(ctx context.Context, eventID string, limit int) ([]models.VerificationEntry, error) {
	return s.historyRepo.List(ctx, eventID, limit)
}

func (s *checkInService) sendConfirmation(ctx context.Context, rec *models.TicketRecord) bool {
	if s.mailer == nil {
		return false
	}

	email := mailer.ConfirmationEmail{
		ToEmail:      rec.Email,
		ToName:       rec.Name,
		TicketNumber: rec.TicketID,
		CheckedInAt:  util.FormatDateTime(*rec.CheckedInAt),
		Location:     rec.CheckedInLocation,
	}

	// Event title is display-only; a lookup failure costs the email a
	// field, not the check-in.
	if ev, err := s.eventRepo.Get(ctx, rec.EventID); err == nil {
		email.EventTitle = ev.Title
	} else {
		s.l.Warnf(ctx, "service.checkInService.sendConfirmation: %v", err)
	}

	if err := s.mailer.SendCheckInConfirmation(ctx, email); err != nil {
		s.l.Warnf(ctx, "Failed to send check-in confirmation - ticket_id: %s, error: %v", rec.TicketID, err)
		return false
	}

	return true
}

func (s *checkInService) recordHistory(ctx context.Context, eventID, operatorID string, out *CheckInOutput) {
	if s.historyRepo == nil {
		return
	}

	entry := models.VerificationEntry{
		Approved:     out.Approved,
		Status:       string(out.Status),
		Message:      out.Message,
		TicketID:     out.TicketID,
		AttendeeName: out.AttendeeName,
		Operator:     operatorID,
		At:           s.now(),
	}

	if err := s.historyRepo.Record(ctx, eventID, entry); err != nil {
		s.l.Warnf(ctx, "service.checkInService.recordHistory: %v", err)
	}
}

func rejectionOutput(res ticket.Result) *CheckInOutput {
	out := &CheckInOutput{}
	if res.Token != nil {
		out.TicketID = res.Token.TicketID
	}

	switch res.Outcome {
	case ticket.OutcomeWrongEvent:
		out.Status = CheckInStatusWrongEvent
		out.Message = "QR code is for a different event"
	case ticket.OutcomeExpired:
		out.Status = CheckInStatusExpired
		out.Message = "QR code has expired"
	default:
		out.Status = CheckInStatusInvalidFormat
		out.Message = "Invalid QR code format"
	}

	return out
}

func alreadyUsedMessage(at *time.Time) string {
	if at == nil {
		return "Ticket already used"
	}
	return fmt.Sprintf("Ticket already used at %s", util.FormatDateTime(*at))
}
