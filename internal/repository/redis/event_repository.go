package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/vogiaan1904/ticketbottle-checkin/internal/models"
	"github.com/vogiaan1904/ticketbottle-checkin/pkg/logger"
)

const registerMaxRetries = 5

type EventRepository interface {
	Get(ctx context.Context, eventID string) (*models.Event, error)
	Save(ctx context.Context, ev *models.Event) error

	// RegisterAttendee atomically decrements available_tickets and
	// increments registrations, rejecting with ErrSoldOut when no
	// tickets remain. Check-in never touches these counters.
	RegisterAttendee(ctx context.Context, eventID string) (*models.Event, error)

	// ReleaseTicket undoes RegisterAttendee for a registration that
	// failed after the counters moved.
	ReleaseTicket(ctx context.Context, eventID string) (*models.Event, error)
}

type redisEventRepository struct {
	cli *redis.Client
	l   logger.Logger
}

func NewRedisEventRepository(cli *redis.Client, l logger.Logger) EventRepository {
	return &redisEventRepository{
		cli: cli,
		l:   l,
	}
}

func (r *redisEventRepository) Get(ctx context.Context, eventID string) (*models.Event, error) {
	data, err := r.cli.Get(ctx, r.eventKey(eventID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		r.l.Errorf(ctx, "redisEventRepository.Get: %v", err)
		return nil, err
	}

	var ev models.Event
	if err := json.Unmarshal(data, &ev); err != nil {
		r.l.Errorf(ctx, "redisEventRepository.Get: %v", err)
		return nil, err
	}

	return &ev, nil
}

func (r *redisEventRepository) Save(ctx context.Context, ev *models.Event) error {
	ev.UpdatedAt = time.Now()

	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	if err := r.cli.Set(ctx, r.eventKey(ev.ID), data, 0).Err(); err != nil {
		r.l.Errorf(ctx, "redisEventRepository.Save: %v", err)
		return err
	}

	return nil
}

func (r *redisEventRepository) RegisterAttendee(ctx context.Context, eventID string) (*models.Event, error) {
	key := r.eventKey(eventID)

	var ev models.Event

	txn := func(tx *redis.Tx) error {
		data, err := tx.Get(ctx, key).Bytes()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				return ErrNotFound
			}
			return err
		}

		if err := json.Unmarshal(data, &ev); err != nil {
			return fmt.Errorf("failed to unmarshal event: %w", err)
		}

		if ev.IsSoldOut() {
			return ErrSoldOut
		}

		ev.AvailableTickets--
		ev.Registrations++
		ev.UpdatedAt = time.Now()

		updated, err := json.Marshal(&ev)
		if err != nil {
			return fmt.Errorf("failed to marshal event: %w", err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, updated, 0)
			return nil
		})
		return err
	}

	for attempt := 0; attempt < registerMaxRetries; attempt++ {
		err := r.cli.Watch(ctx, txn, key)
		if err == nil {
			return &ev, nil
		}

		if errors.Is(err, redis.TxFailedErr) {
			continue
		}

		if errors.Is(err, ErrSoldOut) || errors.Is(err, ErrNotFound) {
			return nil, err
		}

		r.l.Errorf(ctx, "redisEventRepository.RegisterAttendee: %v", err)
		return nil, err
	}

	return nil, fmt.Errorf("registration transaction for event %s did not settle after %d attempts", eventID, registerMaxRetries)
}

func (r *redisEventRepository) ReleaseTicket(ctx context.Context, eventID string) (*models.Event, error) {
	key := r.eventKey(eventID)

	var ev models.Event

	txn := func(tx *redis.Tx) error {
		data, err := tx.Get(ctx, key).Bytes()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				return ErrNotFound
			}
			return err
		}

		if err := json.Unmarshal(data, &ev); err != nil {
			return fmt.Errorf("failed to unmarshal event: %w", err)
		}

		ev.AvailableTickets++
		if ev.Registrations > 0 {
			ev.Registrations--
		}
		ev.UpdatedAt = time.Now()

		updated, err := json.Marshal(&ev)
		if err != nil {
			return fmt.Errorf("failed to marshal event: %w", err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, updated, 0)
			return nil
		})
		return err
	}

	for attempt := 0; attempt < registerMaxRetries; attempt++ {
		err := r.cli.Watch(ctx, txn, key)
		if err == nil {
			return &ev, nil
		}

		if errors.Is(err, redis.TxFailedErr) {
			continue
		}

		if errors.Is(err, ErrNotFound) {
			return nil, err
		}

		r.l.Errorf(ctx, "redisEventRepository.ReleaseTicket: %v", err)
		return nil, err
	}

	return nil, fmt.Errorf("release transaction for event %s did not settle after %d attempts", eventID, registerMaxRetries)
}

func (r *redisEventRepository) eventKey(eventID string) string {
	return fmt.Sprintf("checkin:event:%s", eventID)
}
