package worker

// Register events that keep failing in the pool are parked on a dead
// letter list (dlq:{queue}) instead of being retried forever; a stuck
// consumer shows up as a growing depth on /health.

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const DLQPrefix = "dlq:"

// DLQEntry carries the failed event plus enough context to replay it by hand.
type DLQEntry struct {
	OriginalQueue string          `json:"original_queue"`
	EventType     string          `json:"event_type"`
	Payload       json.RawMessage `json:"payload"`
	Reason        string          `json:"reason"`
	FailedAt      string          `json:"failed_at"`
	Attempts      int             `json:"attempts"`
}

// SendToDLQ parks a failed event. Best-effort: if redis itself is the
// problem, the event is logged and lost, and the poll-based refresher
// covers the missed cache update.
func SendToDLQ(ctx context.Context, rdb *redis.Client, queue, eventType string, payload json.RawMessage, reason string, attempts int) {
	entry := DLQEntry{
		OriginalQueue: queue,
		EventType:     eventType,
		Payload:       payload,
		Reason:        reason,
		FailedAt:      time.Now().UTC().Format(time.RFC3339),
		Attempts:      attempts,
	}

	data, err := json.Marshal(entry)
	if err != nil {
		log.Error().Err(err).Str("queue", queue).Msg("dlq: marshal failed")
		return
	}

	dlqKey := DLQPrefix + queue
	if err := rdb.LPush(ctx, dlqKey, data).Err(); err != nil {
		log.Error().Err(err).Str("dlq_key", dlqKey).Msg("dlq: push failed")
		return
	}

	log.Warn().
		Str("queue", queue).
		Str("event_type", eventType).
		Str("reason", reason).
		Int("attempts", attempts).
		Msg("dlq: event parked")
}

// DLQLength reports the parked-event depth for a source queue.
func DLQLength(ctx context.Context, rdb *redis.Client, queue string) (int64, error) {
	return rdb.LLen(ctx, DLQPrefix+queue).Result()
}
