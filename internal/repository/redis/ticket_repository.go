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

// How many times the optimistic check-in transaction retries after a
// concurrent writer invalidates the watched key.
const checkInMaxRetries = 5

type TicketRepository interface {
	Create(ctx context.Context, rec *models.TicketRecord) error
	Get(ctx context.Context, recordID string) (*models.TicketRecord, error)
	FindByTicketAndEvent(ctx context.Context, ticketID, eventID string) (*models.TicketRecord, error)
	MarkTicketSent(ctx context.Context, recordID string) error

	// CheckIn performs the conditional checked_in=false -> true
	// transition. Exactly one concurrent caller per ticket observes
	// success; the rest get ErrAlreadyCheckedIn together with the
	// record as the winner left it.
	CheckIn(ctx context.Context, ticketID, eventID string, stamp models.CheckInStamp) (*models.TicketRecord, error)
}

type redisTicketRepository struct {
	cli *redis.Client
	l   logger.Logger
}

func NewRedisTicketRepository(cli *redis.Client, l logger.Logger) TicketRepository {
	return &redisTicketRepository{
		cli: cli,
		l:   l,
	}
}

func (r *redisTicketRepository) Create(ctx context.Context, rec *models.TicketRecord) error {
	key := r.recordKey(rec.ID)

	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal ticket record: %w", err)
	}

	// Record and lookup index are written together.
	pipe := r.cli.Pipeline()
	pipe.Set(ctx, key, data, 0)
	pipe.Set(ctx, r.lookupKey(rec.EventID, rec.TicketID), rec.ID, 0)

	if _, err := pipe.Exec(ctx); err != nil {
		r.l.Errorf(ctx, "redisTicketRepository.Create: %v", err)
		return err
	}

	r.l.Debugf(ctx, "Ticket record created - record_id: %s, ticket_id: %s, event_id: %s",
		rec.ID, rec.TicketID, rec.EventID)

	return nil
}

func (r *redisTicketRepository) Get(ctx context.Context, recordID string) (*models.TicketRecord, error) {
	return r.getByKey(ctx, r.recordKey(recordID))
}

func (r *redisTicketRepository) FindByTicketAndEvent(ctx context.Context, ticketID, eventID string) (*models.TicketRecord, error) {
	recordID, err := r.cli.Get(ctx, r.lookupKey(eventID, ticketID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		r.l.Errorf(ctx, "redisTicketRepository.FindByTicketAndEvent: %v", err)
		return nil, err
	}

	return r.Get(ctx, recordID)
}

func (r *redisTicketRepository) MarkTicketSent(ctx context.Context, recordID string) error {
	key := r.recordKey(recordID)

	rec, err := r.getByKey(ctx, key)
	if err != nil {
		return err
	}

	rec.TicketSent = true
	rec.UpdatedAt = time.Now()

	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal ticket record: %w", err)
	}

	if err := r.cli.Set(ctx, key, data, 0).Err(); err != nil {
		r.l.Errorf(ctx, "redisTicketRepository.MarkTicketSent: %v", err)
		return err
	}

	return nil
}

func (r *redisTicketRepository) CheckIn(ctx context.Context, ticketID, eventID string, stamp models.CheckInStamp) (*models.TicketRecord, error) {
	recordID, err := r.cli.Get(ctx, r.lookupKey(eventID, ticketID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		r.l.Errorf(ctx, "redisTicketRepository.CheckIn: %v", err)
		return nil, err
	}

	key := r.recordKey(recordID)

	var rec models.TicketRecord

	// WATCH/MULTI compare-and-set on the record key. The transaction
	// aborts with TxFailedErr when another scanner writes the record
	// between our read and the EXEC; on retry the loser reads
	// checked_in=true and resolves to ErrAlreadyCheckedIn.
	txn := func(tx *redis.Tx) error {
		data, err := tx.Get(ctx, key).Bytes()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				return ErrNotFound
			}
			return err
		}

		if err := json.Unmarshal(data, &rec); err != nil {
			return fmt.Errorf("failed to unmarshal ticket record: %w", err)
		}

		if rec.CheckedIn {
			return ErrAlreadyCheckedIn
		}

		rec.ApplyCheckIn(stamp)

		updated, err := json.Marshal(&rec)
		if err != nil {
			return fmt.Errorf("failed to marshal ticket record: %w", err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, updated, 0)
			return nil
		})
		return err
	}

	for attempt := 0; attempt < checkInMaxRetries; attempt++ {
		err := r.cli.Watch(ctx, txn, key)
		if err == nil {
			r.l.Infof(ctx, "Ticket checked in - ticket_id: %s, event_id: %s, by: %s",
				ticketID, eventID, stamp.By)
			return &rec, nil
		}

		if errors.Is(err, redis.TxFailedErr) {
			continue
		}

		if errors.Is(err, ErrAlreadyCheckedIn) {
			return &rec, ErrAlreadyCheckedIn
		}

		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}

		r.l.Errorf(ctx, "redisTicketRepository.CheckIn: %v", err)
		return nil, err
	}

	return nil, fmt.Errorf("check-in transaction for ticket %s did not settle after %d attempts", ticketID, checkInMaxRetries)
}

func (r *redisTicketRepository) getByKey(ctx context.Context, key string) (*models.TicketRecord, error) {
	data, err := r.cli.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		r.l.Errorf(ctx, "redisTicketRepository.getByKey: %v", err)
		return nil, err
	}

	var rec models.TicketRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		r.l.Errorf(ctx, "redisTicketRepository.getByKey: %v", err)
		return nil, err
	}

	return &rec, nil
}

func (r *redisTicketRepository) recordKey(recordID string) string {
	return fmt.Sprintf("checkin:ticket:%s", recordID)
}

func (r *redisTicketRepository) lookupKey(eventID, ticketID string) string {
	return fmt.Sprintf("checkin:ticket_lookup:%s:%s", eventID, ticketID)
}
