package consumer

import (
	"context"
	"errors"
	"sync"

	"github.com/IBM/sarama"
	kafka "github.com/vogiaan1904/ticketbottle-checkin/internal/delivery/kafka"
	"github.com/vogiaan1904/ticketbottle-checkin/internal/service"
	"github.com/vogiaan1904/ticketbottle-checkin/pkg/logger"
)

// Consumer ingests box-office registration imports so bulk-sold
// tickets get records and tokens like self-service ones.
type Consumer struct {
	consGr sarama.ConsumerGroup
	regSvc service.RegistrationService
	l      logger.Logger
	wg     sync.WaitGroup
}

func NewConsumer(
	consGr sarama.ConsumerGroup,
	regSvc service.RegistrationService,
	l logger.Logger,
) *Consumer {
	return &Consumer{
		consGr: consGr,
		regSvc: regSvc,
		l:      l,
	}
}

func (c *Consumer) processMessage(ctx context.Context, msg *sarama.ConsumerMessage) error {
	switch msg.Topic {
	case kafka.TopicRegistrationImported:
		return c.HandleRegistrationImported(ctx, msg)
	default:
		c.l.Warn(ctx, "Unknown topic", "topic", msg.Topic)
		return nil
	}
}

func (c *Consumer) Start(ctx context.Context) error {
	topics := []string{kafka.TopicRegistrationImported}
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		for {
			if err := c.consGr.Consume(ctx, topics, c); err != nil {
				// Close may run before the context is canceled; a closed
				// group can never consume again, so stop instead of
				// spinning on the same error.
				if errors.Is(err, sarama.ErrClosedConsumerGroup) {
					return
				}
				c.l.Errorf(ctx, "delivery.kafka.consumer.consumer.Start: %v", err)
			}

			if ctx.Err() != nil {
				c.l.Infof(ctx, "delivery.kafka.consumer.consumer.Start: %v", ctx.Err())
				return
			}
		}
	}()

	// Handle errors
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		for err := range c.consGr.Errors() {
			c.l.Errorf(ctx, "delivery.kafka.consumer.consumer.Start: %v", err)
		}
	}()

	c.l.Infof(ctx, "Consumer is consuming topics: %v", topics)
	return nil
}

func (c *Consumer) Close() error {
	if err := c.consGr.Close(); err != nil {
		return err
	}

	c.wg.Wait()
	return nil
}

// Setup implements sarama.ConsumerGroupHandler.
func (c *Consumer) Setup(sarama.ConsumerGroupSession) error {
	return nil
}

// Cleanup implements sarama.ConsumerGroupHandler.
func (c *Consumer) Cleanup(sarama.ConsumerGroupSession) error {
	return nil
}

// ConsumeClaim implements sarama.ConsumerGroupHandler.
func (c *Consumer) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for {
		select {
		case msg, ok := <-claim.Messages():
			if !ok {
				return nil
			}

			if err := c.processMessage(session.Context(), msg); err != nil {
				c.l.Errorf(session.Context(), "delivery.kafka.consumer.consumer.ConsumeClaim: %v", err)
			}

			session.MarkMessage(msg, "")

		case <-session.Context().Done():
			return nil
		}
	}
}
