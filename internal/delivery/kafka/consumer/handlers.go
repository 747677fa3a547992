package consumer

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/IBM/sarama"
	kafka "github.com/vogiaan1904/ticketbottle-checkin/internal/delivery/kafka"
	"github.com/vogiaan1904/ticketbottle-checkin/internal/service"
)

func (c *Consumer) HandleRegistrationImported(ctx context.Context, message *sarama.ConsumerMessage) error {
	c.l.Info(ctx, "HandleRegistrationImported consumed")

	var e kafka.RegistrationImportedEvent
	if err := json.Unmarshal(message.Value, &e); err != nil {
		c.l.Errorf(ctx, "delivery.kafka.consumer.handlers.HandleRegistrationImported: %v", err)
		return err
	}

	out, err := c.regSvc.Register(ctx, service.RegisterInput{
		EventID:  e.EventID,
		Name:     e.Name,
		Email:    e.Email,
		Phone:    e.Phone,
		TimeSlot: e.TimeSlot,
	})
	if err != nil {
		// A sold-out or vanished event makes the import permanently
		// undeliverable; retrying the message cannot fix it.
		if errors.Is(err, service.ErrSoldOut) || errors.Is(err, service.ErrEventNotFound) {
			c.l.Warnf(ctx, "Dropping undeliverable registration import - event_id: %s, reason: %v", e.EventID, err)
			return nil
		}

		c.l.Errorf(ctx, "delivery.kafka.consumer.handlers.HandleRegistrationImported: %v", err)
		return err
	}

	c.l.Info(ctx, "Imported registration processed",
		"registration_id", out.RegistrationID,
		"ticket_id", out.TicketID,
		"event_id", out.EventID,
		"source", e.Source,
	)

	return nil
}
