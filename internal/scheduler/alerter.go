package scheduler

import (
	"context"
	"time"

	"github.com/probeops/pingprobe/internal/domain"
	"github.com/probeops/pingprobe/internal/metrics"
	"github.com/probeops/pingprobe/internal/notify"
	"github.com/probeops/pingprobe/internal/repo"
)

type AlerterConfig struct {
	AlertOnRecovery bool
	Cooldown        time.Duration
	PollInterval    time.Duration
}

type Alerter struct {
	results  repo.ResultStore
	alertDB  repo.AlertStore
	notifier notify.Notifier
	metrics  *metrics.Collector
	cfg      AlerterConfig
}

func NewAlerter(
	results repo.ResultStore,
	alertDB repo.AlertStore,
	notifier notify.Notifier,
	m *metrics.Collector,
	cfg AlerterConfig,
) *Alerter {
	return &Alerter{
		results:  results,
		alertDB:  alertDB,
		notifier: notifier,
		metrics:  m,
		cfg:      cfg,
	}
}

func (a *Alerter) Run(ctx context.Context) error {
	t := time.NewTicker(a.cfg.PollInterval)
	defer t.Stop()

	// initial pass
	_ = a.scanOnce(ctx)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
			_ = a.scanOnce(ctx)
		}
	}
}

func (a *Alerter) scanOnce(ctx context.Context) error {
	rows, err := a.results.Latest(ctx)
	if err != nil {
		return err
	}

	now := time.Now()

	for _, r := range rows {
		rec, _ := a.alertDB.Get(ctx, r.TargetID)

		up := r.Up()

		// Has the up/down state changed compared to what we last recorded?
		stateChanged := rec == nil || rec.LastState != up

		// Cooldown only matters for DOWN alerts (suppresses noisy repeats).
		cooled := true
		if rec != nil && rec.LastSentAt != nil {
			cooled = now.Sub(*rec.LastSentAt) >= a.cfg.Cooldown
		}

		downAlert := stateChanged && !up && cooled
		recoveryAlert := stateChanged && up && a.cfg.AlertOnRecovery // bypass cooldown

		if downAlert || recoveryAlert {
			kind := notify.KindDown
			switch {
			case up:
				kind = notify.KindRecovery
			case r.Verdict == domain.VerdictError:
				// The tool could not ask; not a down host.
				kind = notify.KindProbeError
			}

			alert := notify.Alert{
				Kind:      kind,
				Host:      r.Host,
				Verdict:   r.Verdict,
				LatencyMS: r.LatencyMS,
				Reason:    r.Reason,
				CheckedAt: r.CheckedAt,
			}

			// Best-effort send and record the send time
			_ = a.notifier.Send(ctx, alert)
			if a.metrics != nil {
				a.metrics.AlertsSent.WithLabelValues(kind).Inc()
			}
			sent := now
			_ = a.alertDB.Set(ctx, repo.AlertRecord{
				TargetID:    r.TargetID,
				LastState:   up,
				LastVerdict: r.Verdict,
				LastSentAt:  &sent,
			})
			continue
		}

		// If state changed but we did not send (e.g., DOWN within cooldown or
		// recovery alerts disabled), still record the new state without a send time.
		if stateChanged {
			_ = a.alertDB.Set(ctx, repo.AlertRecord{
				TargetID:    r.TargetID,
				LastState:   up,
				LastVerdict: r.Verdict,
			})
		}
	}

	return nil
}
