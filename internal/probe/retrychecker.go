package probe

import (
	"context"
	"time"
)

// RetryChecker re-runs an inner checker until it succeeds or the attempt
// budget is spent. This is caller-side policy: the prober itself forwards its
// attempt count to ping's own repeat flag and never re-invokes the child.
type RetryChecker struct {
	Inner    Checker
	Attempts int
	Backoff  time.Duration
}

func (r *RetryChecker) Check(ctx context.Context, target string) CheckResult {
	attempts := r.Attempts
	if attempts < 1 {
		attempts = 1
	}
	var last CheckResult
	for i := 0; i < attempts; i++ {
		last = r.Inner.Check(ctx, target)
		if last.Success {
			return last
		}
		// A ProbeError means the tool malfunctioned; repeating it would
		// only repeat the malfunction.
		if last.Verdict == ProbeError {
			return last
		}
		if i < attempts-1 {
			select {
			case <-ctx.Done():
				return last
			case <-time.After(r.Backoff):
			}
		}
	}
	last.Message = last.Message + " (after retries)"
	return last
}
