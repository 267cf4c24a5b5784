// Package retryqueue redelivers failed files through redis with bounded,
// backed-off retries.
package retryqueue

import (
	"encoding/json"
	"time"
)

// Envelope wraps one queued file reference. Attempt counts prior
// deliveries; the raw file payload may also be enqueued directly, in which
// case it is treated as attempt zero.
type Envelope struct {
	ID         string    `json:"id"`
	FileRef    string    `json:"file_ref"`
	Attempt    int       `json:"attempt"`
	EnqueuedAt time.Time `json:"enqueued_at"`
}

func decodeEnvelope(payload []byte) Envelope {
	var env Envelope
	if err := json.Unmarshal(payload, &env); err == nil && env.FileRef != "" {
		return env
	}
	// Producers may enqueue the bare file content.
	return Envelope{FileRef: string(payload)}
}

// Config tunes the retry policy and key names.
type Config struct {
	WorkList    string
	DelayedSet  string
	DeadList    string
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
	PollEvery   time.Duration
}

func (c Config) withDefaults() Config {
	if c.WorkList == "" {
		c.WorkList = "nfe:ingest"
	}
	if c.DelayedSet == "" {
		c.DelayedSet = "nfe:ingest:delayed"
	}
	if c.DeadList == "" {
		c.DeadList = "nfe:ingest:dead"
	}
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = 5
	}
	if c.BaseDelay <= 0 {
		c.BaseDelay = 30 * time.Second
	}
	if c.MaxDelay <= 0 {
		c.MaxDelay = 15 * time.Minute
	}
	if c.PollEvery <= 0 {
		c.PollEvery = time.Second
	}
	return c
}

// schedule decides the fate of a delivery attempt: past MaxAttempts the
// envelope is dead-lettered, otherwise it becomes due after the backoff
// delay for that attempt.
func (c Config) schedule(attempt int, now time.Time) (due time.Time, dead bool) {
	if attempt > c.MaxAttempts {
		return time.Time{}, true
	}
	return now.Add(c.backoff(attempt)), false
}

// backoff grows exponentially with the attempt number, capped at MaxDelay.
func (c Config) backoff(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	delay := c.BaseDelay
	for i := 1; i < attempt; i++ {
		delay *= 2
		if delay >= c.MaxDelay {
			return c.MaxDelay
		}
	}
	if delay > c.MaxDelay {
		return c.MaxDelay
	}
	return delay
}
