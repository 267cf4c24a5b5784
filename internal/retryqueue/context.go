package retryqueue

import "context"

type attemptKey struct{}

// WithAttempt records the delivery attempt of the message being processed.
func WithAttempt(ctx context.Context, attempt int) context.Context {
	return context.WithValue(ctx, attemptKey{}, attempt)
}

// nextAttempt is the delivery attempt a resend from ctx represents: one
// past the attempt the message arrived with.
func nextAttempt(ctx context.Context) int {
	return AttemptFromContext(ctx) + 1
}

// AttemptFromContext returns the current delivery attempt, zero when the
// message did not come through the queue.
func AttemptFromContext(ctx context.Context) int {
	if ctx == nil {
		return 0
	}
	if v, ok := ctx.Value(attemptKey{}).(int); ok {
		return v
	}
	return 0
}
