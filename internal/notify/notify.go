package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/probeops/pingprobe/internal/domain"
)

// Alert kinds. A probe error is not a down host: the tool could not ask.
const (
	KindDown       = "down"
	KindRecovery   = "recovery"
	KindProbeError = "probe_error"
)

// Alert is one reachability state change worth telling a human about.
type Alert struct {
	Kind      string
	Host      string
	Verdict   domain.Verdict
	LatencyMS *float64
	Reason    string
	CheckedAt time.Time
}

func (a Alert) Title() string {
	switch a.Kind {
	case KindRecovery:
		return "🟢 Host RECOVERED"
	case KindProbeError:
		return "⚠️ Probe FAILED"
	default:
		return "🔴 Host DOWN"
	}
}

func (a Alert) Body() string {
	latency := "n/a"
	if a.LatencyMS != nil {
		latency = fmt.Sprintf("%.0f ms", *a.LatencyMS)
	}
	return fmt.Sprintf(
		"Host: %s\nVerdict: %s\nLatency: %s\nReason: %s\nChecked: %s",
		a.Host, a.Verdict, latency, a.Reason, a.CheckedAt.Format(time.RFC3339),
	)
}

type Notifier interface {
	Send(ctx context.Context, a Alert) error
}

type Multi []Notifier

func (m Multi) Send(ctx context.Context, a Alert) error {
	var firstErr error
	for _, n := range m {
		if n == nil {
			continue
		}
		if err := n.Send(ctx, a); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
