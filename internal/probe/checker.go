package probe

import (
	"context"
	"time"
)

// CheckResult is the unified result of a single check.
//
// Success is true only for the Reachable verdict. An errored probe is never
// folded into a plain "down": callers must be able to tell "no answer" from
// "could not ask".
type CheckResult struct {
	Success   bool
	Verdict   Verdict
	LatencyMS float64
	Message   string
}

// Checker performs a single check for a given target host.
type Checker interface {
	Check(ctx context.Context, target string) CheckResult
}

// PingChecker adapts a Prober to the Checker interface with a fixed
// attempts/timeout budget per check.
type PingChecker struct {
	Prober   *Prober
	Attempts int
	Timeout  time.Duration
}

func NewPingChecker(p *Prober, attempts int, timeout time.Duration) *PingChecker {
	return &PingChecker{Prober: p, Attempts: attempts, Timeout: timeout}
}

func (c *PingChecker) Check(ctx context.Context, target string) CheckResult {
	res, err := c.Prober.Probe(ctx, ProbeRequest{
		Target:   target,
		Attempts: c.Attempts,
		Timeout:  c.Timeout,
	})
	if err != nil {
		return CheckResult{Verdict: ProbeError, Message: err.Error()}
	}
	return CheckResult{
		Success:   res.Verdict == Reachable,
		Verdict:   res.Verdict,
		LatencyMS: res.Duration.Seconds() * 1000,
		Message:   res.Message,
	}
}
