package probe

import (
	"context"
	"time"

	"github.com/hamed0406/pagemonitor/internal/domain"
)

// RetryChecker re-runs Inner until a healthy result or Attempts is reached.
// It is opt-in; the monitor only wraps its checker when more than one
// attempt is configured.
type RetryChecker struct {
	Inner    Checker
	Attempts int
	Backoff  time.Duration
}

func (r *RetryChecker) Check(ctx context.Context, ep domain.EndpointSpec) domain.CheckResult {
	attempts := r.Attempts
	if attempts < 1 {
		attempts = 1
	}

	var last domain.CheckResult
	for i := 0; i < attempts; i++ {
		last = r.Inner.Check(ctx, ep)
		if last.Healthy || i == attempts-1 {
			break
		}
		if !sleep(ctx, r.Backoff) {
			break
		}
	}
	if !last.Healthy && attempts > 1 && last.Error != "" {
		last.Error += " (after retries)"
	}
	return last
}

// sleep waits for d or until ctx is done. It reports whether the full
// duration elapsed.
func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
