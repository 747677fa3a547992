package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/vogiaan1904/ticketbottle-checkin/internal/models"
	"github.com/vogiaan1904/ticketbottle-checkin/pkg/logger"
)

// HistoryRepository keeps the scanner dashboard's recent-verification
// feed, capped per event.
type HistoryRepository interface {
	Record(ctx context.Context, eventID string, entry models.VerificationEntry) error
	List(ctx context.Context, eventID string, limit int) ([]models.VerificationEntry, error)
}

type redisHistoryRepository struct {
	cli *redis.Client
	cap int
	l   logger.Logger
}

func NewRedisHistoryRepository(cli *redis.Client, cap int, l logger.Logger) HistoryRepository {
	return &redisHistoryRepository{
		cli: cli,
		cap: cap,
		l:   l,
	}
}

func (r *redisHistoryRepository) Record(ctx context.Context, eventID string, entry models.VerificationEntry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal verification entry: %w", err)
	}

	key := r.historyKey(eventID)

	pipe := r.cli.Pipeline()
	pipe.LPush(ctx, key, data)
	pipe.LTrim(ctx, key, 0, int64(r.cap-1))

	if _, err := pipe.Exec(ctx); err != nil {
		r.l.Errorf(ctx, "redisHistoryRepository.Record: %v", err)
		return err
	}

	return nil
}

func (r *redisHistoryRepository) List(ctx context.Context, eventID string, limit int) ([]models.VerificationEntry, error) {
	if limit <= 0 || limit > r.cap {
		limit = r.cap
	}

	rows, err := r.cli.LRange(ctx, r.historyKey(eventID), 0, int64(limit-1)).Result()
	if err != nil {
		r.l.Errorf(ctx, "redisHistoryRepository.List: %v", err)
		return nil, err
	}

	entries := make([]models.VerificationEntry, 0, len(rows))
	for _, row := range rows {
		var entry models.VerificationEntry
		if err := json.Unmarshal([]byte(row), &entry); err != nil {
			r.l.Warnf(ctx, "redisHistoryRepository.List: skipping bad entry: %v", err)
			continue
		}
		entries = append(entries, entry)
	}

	return entries, nil
}

func (r *redisHistoryRepository) historyKey(eventID string) string {
	return fmt.Sprintf("checkin:history:%s", eventID)
}
