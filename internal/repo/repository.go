package repo

import (
	"context"
	"time"

	"github.com/probeops/pingprobe/internal/domain"
)

// Ports (interfaces) — swap in any DB adapter later.
type TargetStore interface {
	Add(ctx context.Context, t *domain.Target) error
	List(ctx context.Context) ([]*domain.Target, error)
	GetByHost(ctx context.Context, host string) (*domain.Target, error)
}

type ResultStore interface {
	Append(ctx context.Context, r *domain.CheckResult) error
	Latest(ctx context.Context) ([]LatestRow, error)
}

// LatestRow is the newest result per target, joined with the host for
// display and alerting.
type LatestRow struct {
	TargetID  string         `json:"target_id"`
	Host      string         `json:"host"`
	Verdict   domain.Verdict `json:"verdict"`
	LatencyMS *float64       `json:"latency_ms,omitempty"`
	Reason    string         `json:"reason,omitempty"`
	CheckedAt time.Time      `json:"checked_at"`
}

// Up reports whether the latest result counts as "host answered".
func (r LatestRow) Up() bool { return r.Verdict == domain.VerdictReachable }
