package repo

import (
	"context"
	"time"

	"github.com/probeops/pingprobe/internal/domain"
)

// AlertRecord holds the last reachability state we alerted on for a target.
// LastState is up/down as the alerter sees it, LastVerdict keeps the full
// tri-state so a probe error is distinguishable from a silent host, and
// LastSentAt is when we last notified (used for cooldown).
type AlertRecord struct {
	TargetID    string
	LastState   bool
	LastVerdict domain.Verdict
	LastSentAt  *time.Time
}

// AlertStore is implemented by a persistence layer to store alert state.
type AlertStore interface {
	// Get returns nil, nil if there's no record yet.
	Get(ctx context.Context, targetID string) (*AlertRecord, error)
	// Set upserts the record. A nil LastSentAt preserves the previously
	// recorded send time.
	Set(ctx context.Context, rec AlertRecord) error
}
