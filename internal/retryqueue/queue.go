package retryqueue

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/openfiscal/nfeingest/internal/clock"
	"github.com/openfiscal/nfeingest/internal/ingest"
	redis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Handler processes one dequeued file reference.
type Handler func(ctx context.Context, fileRef string)

// Queue is the retry channel: failed files go back through it, delayed by
// the backoff policy, until MaxAttempts is exhausted and they land on the
// dead list.
type Queue struct {
	client *redis.Client
	log    *zap.Logger
	clock  clock.Clock
	cfg    Config
}

func New(client *redis.Client, log *zap.Logger, clk clock.Clock, cfg Config) *Queue {
	return &Queue{
		client: client,
		log:    log.Named("retryqueue"),
		clock:  clk,
		cfg:    cfg.withDefaults(),
	}
}

// Send resubmits fileRef for a later attempt and reports what became of
// it. The attempt count is read from ctx so redelivered messages keep
// their history without the processor knowing about envelopes.
func (q *Queue) Send(ctx context.Context, fileRef string) ingest.Delivery {
	env := Envelope{
		ID:         uuid.NewString(),
		FileRef:    fileRef,
		Attempt:    nextAttempt(ctx),
		EnqueuedAt: q.clock.Now(),
	}
	payload, err := json.Marshal(env)
	if err != nil {
		q.log.Error("marshal retry envelope", zap.Error(err))
		return ingest.DeliveryFailed
	}

	due, dead := q.cfg.schedule(env.Attempt, env.EnqueuedAt)
	if dead {
		if err := q.client.LPush(ctx, q.cfg.DeadList, payload).Err(); err != nil {
			q.log.Error("push to dead list", zap.Error(err))
			return ingest.DeliveryFailed
		}
		q.log.Warn("retry budget exhausted, file dead-lettered",
			zap.String("envelope_id", env.ID),
			zap.Int("attempt", env.Attempt),
		)
		return ingest.DeliveryDead
	}

	err = q.client.ZAdd(ctx, q.cfg.DelayedSet, redis.Z{
		Score:  float64(due.UnixMilli()),
		Member: payload,
	}).Err()
	if err != nil {
		q.log.Error("schedule retry", zap.Error(err))
		return ingest.DeliveryFailed
	}
	q.log.Info("file scheduled for retry",
		zap.String("envelope_id", env.ID),
		zap.Int("attempt", env.Attempt),
		zap.Time("due", due),
	)
	return ingest.DeliveryScheduled
}

// Consume blocks on the work list and hands each file to fn until ctx is
// cancelled. The delivery attempt travels in the handler context.
func (q *Queue) Consume(ctx context.Context, fn Handler) {
	for {
		if ctx.Err() != nil {
			return
		}
		res, err := q.client.BRPop(ctx, 5*time.Second, q.cfg.WorkList).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) || ctx.Err() != nil {
				continue
			}
			q.log.Error("dequeue failed", zap.Error(err))
			select {
			case <-ctx.Done():
				return
			case <-time.After(time.Second):
			}
			continue
		}
		if len(res) < 2 {
			continue
		}
		env := decodeEnvelope([]byte(res[1]))
		fn(WithAttempt(ctx, env.Attempt), env.FileRef)
	}
}

// RunMover promotes due envelopes from the delayed set back onto the work
// list. One mover per deployment is enough but running several is safe:
// ZRem decides the winner for each envelope.
func (q *Queue) RunMover(ctx context.Context) {
	ticker := time.NewTicker(q.cfg.PollEvery)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			q.moveDue(ctx)
		}
	}
}

func (q *Queue) moveDue(ctx context.Context) {
	now := q.clock.Now().UnixMilli()
	payloads, err := q.client.ZRangeByScore(ctx, q.cfg.DelayedSet, &redis.ZRangeBy{
		Min:   "-inf",
		Max:   strconv.FormatInt(now, 10),
		Count: 100,
	}).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			q.log.Error("scan delayed set", zap.Error(err))
		}
		return
	}
	for _, payload := range payloads {
		removed, err := q.client.ZRem(ctx, q.cfg.DelayedSet, payload).Result()
		if err != nil || removed == 0 {
			continue
		}
		if err := q.client.LPush(ctx, q.cfg.WorkList, payload).Err(); err != nil {
			q.log.Error("promote delayed envelope", zap.Error(err))
		}
	}
}
