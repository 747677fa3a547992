package producer

import (
	"context"
	"encoding/json"
	"time"

	"github.com/IBM/sarama"
	kafka "github.com/vogiaan1904/ticketbottle-checkin/internal/delivery/kafka"
	"github.com/vogiaan1904/ticketbottle-checkin/pkg/logger"
	"github.com/vogiaan1904/ticketbottle-checkin/pkg/util"
)

type Producer interface {
	PublishTicketIssued(ctx context.Context, event kafka.TicketIssuedEvent) error
	PublishTicketCheckedIn(ctx context.Context, event kafka.TicketCheckedInEvent) error
	Close() error
}

type implProducer struct {
	l    logger.Logger
	prod sarama.SyncProducer
}

func NewProducer(prod sarama.SyncProducer, l logger.Logger) Producer {
	return &implProducer{
		l:    l,
		prod: prod,
	}
}

func (p *implProducer) PublishTicketIssued(ctx context.Context, event kafka.TicketIssuedEvent) error {
	event.Timestamp = time.Now()
	val, err := json.Marshal(event)
	if err != nil {
		p.l.Errorf(ctx, "delivery.kafka.producer.PublishTicketIssued: %v", err)
		return err
	}

	msg := &sarama.ProducerMessage{
		Topic: kafka.TopicTicketIssued,
		Key:   sarama.StringEncoder(event.EventID), // Partition by event_id for ordering
		Value: sarama.ByteEncoder(val),
		Headers: []sarama.RecordHeader{
			{
				Key:   []byte("timestamp"),
				Value: []byte(util.TimeToISO8601Str(time.Now())),
			},
		},
	}

	_, _, err = p.prod.SendMessage(msg)
	return err
}

func (p *implProducer) PublishTicketCheckedIn(ctx context.Context, event kafka.TicketCheckedInEvent) error {
	event.Timestamp = time.Now()
	val, err := json.Marshal(event)
	if err != nil {
		p.l.Errorf(ctx, "delivery.kafka.producer.PublishTicketCheckedIn: %v", err)
		return err
	}

	msg := &sarama.ProducerMessage{
		Topic: kafka.TopicTicketCheckedIn,
		Key:   sarama.StringEncoder(event.EventID), // Partition by event_id for ordering
		Value: sarama.ByteEncoder(val),
		Headers: []sarama.RecordHeader{
			{
				Key:   []byte("timestamp"),
				Value: []byte(util.TimeToISO8601Str(time.Now())),
			},
		},
	}

	_, _, err = p.prod.SendMessage(msg)
	return err
}

func (p *implProducer) Close() error {
	if err := p.prod.Close(); err != nil {
		return err
	}

	return nil
}
