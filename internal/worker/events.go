package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/Afa-Tecnologia/alfa360-sub004/internal/cache"
	"github.com/Afa-Tecnologia/alfa360-sub004/internal/repository"
)

const QueueCaixaEvents = "jobs:caixa"

// Event types pushed by the register/order services after each state change.
const (
	EventRegisterOpened   = "register_opened"
	EventRegisterClosed   = "register_closed"
	EventMovementRecorded = "movement_recorded"
	EventOrderStatus      = "order_status_changed"
)

// Event is the envelope for all async state-change notifications.
type Event struct {
	Type       string `json:"type"`
	RegisterID string `json:"register_id,omitempty"`
	OrderID    string `json:"order_id,omitempty"`
	Status     string `json:"status,omitempty"`
}

// Dispatcher enqueues state-change events into a Redis list.
// The worker pool dequeues them via BRPOP. Enqueueing is best-effort:
// callers fire-and-forget, a lost event only delays a cache refresh
// until the next poll tick.
type Dispatcher struct {
	rdb *redis.Client
}

func NewDispatcher(rdb *redis.Client) *Dispatcher { return &Dispatcher{rdb: rdb} }

func (d *Dispatcher) Enqueue(ctx context.Context, ev Event) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return d.rdb.LPush(ctx, QueueCaixaEvents, data).Err()
}

// EventHandlers bundles the consumers wired at the composition root.
type EventHandlers struct {
	Status *StatusWorker
}

// StatusWorker keeps the cached register snapshot in sync with the store
// whenever an event lands, and writes the structured audit trail.
type StatusWorker struct {
	repo  repository.CaixaRepository
	cache *cache.StatusCache
}

func NewStatusWorker(repo repository.CaixaRepository, c *cache.StatusCache) *StatusWorker {
	return &StatusWorker{repo: repo, cache: c}
}

func (w *StatusWorker) Handle(ctx context.Context, ev Event) error {
	log.Info().
		Str("event", ev.Type).
		Str("register_id", ev.RegisterID).
		Str("order_id", ev.OrderID).
		Str("status", ev.Status).
		Msg("caixa event")

	// Order-status events don't touch the register snapshot.
	if ev.Type == EventOrderStatus {
		return nil
	}

	open, err := w.repo.FindOpen(ctx)
	if err != nil {
		return err
	}
	return w.cache.Set(ctx, open)
}

// StartWorkerPool launches numWorkers goroutines consuming the event queue.
// Each goroutine blocks on BRPOP — zero CPU when idle.
func StartWorkerPool(ctx context.Context, rdb *redis.Client, handlers *EventHandlers, numWorkers int) {
	for i := 0; i < numWorkers; i++ {
		go runWorker(ctx, rdb, handlers, i)
	}
	log.Info().Msgf("worker pool started with %d workers", numWorkers)
}

func runWorker(ctx context.Context, rdb *redis.Client, handlers *EventHandlers, id int) {
	for {
		select {
		case <-ctx.Done():
			log.Info().Msgf("worker %d shutting down", id)
			return
		default:
			// Blocking pop — waits up to 5s then loops to check ctx
			result, err := rdb.BRPop(ctx, 5*time.Second, QueueCaixaEvents).Result()
			if err != nil {
				continue // timeout or context cancelled
			}
			if len(result) < 2 {
				continue
			}
			processEvent(ctx, rdb, handlers, result[1])
		}
	}
}

func processEvent(ctx context.Context, rdb *redis.Client, handlers *EventHandlers, raw string) {
	var ev Event
	if err := json.Unmarshal([]byte(raw), &ev); err != nil {
		log.Error().Err(err).Msg("failed to unmarshal event")
		SendToDLQ(ctx, rdb, QueueCaixaEvents, "unknown", json.RawMessage(raw), "unmarshal: "+err.Error(), 1)
		return
	}
	if err := handlers.Status.Handle(ctx, ev); err != nil {
		log.Error().Err(err).Str("event", ev.Type).Msg("event handler failed")
		data, _ := json.Marshal(ev)
		SendToDLQ(ctx, rdb, QueueCaixaEvents, ev.Type, data, err.Error(), 1)
	}
}
