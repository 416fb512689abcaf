package domain

import "time"

type TargetID string

// Target is a host whose reachability is monitored.
type Target struct {
	ID        TargetID  `json:"id"`
	Host      string    `json:"host"`
	CreatedAt time.Time `json:"created_at"`
}

// Verdict mirrors the prober's tri-state outcome in its wire/storage form.
type Verdict string

const (
	VerdictReachable   Verdict = "reachable"
	VerdictUnreachable Verdict = "unreachable"
	VerdictError       Verdict = "error"
)

type CheckResult struct {
	TargetID  TargetID  `json:"target_id"`
	Verdict   Verdict   `json:"verdict"`
	LatencyMS float64   `json:"latency_ms"`
	Reason    string    `json:"reason,omitempty"`
	CheckedAt time.Time `json:"checked_at"`
}

// Up reports whether the result counts as "host answered". Errored probes are
// not up, but callers that care should look at Verdict directly.
func (r *CheckResult) Up() bool { return r.Verdict == VerdictReachable }
