package scheduler

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/probeops/pingprobe/internal/domain"
	"github.com/probeops/pingprobe/internal/metrics"
	"github.com/probeops/pingprobe/internal/probe"
	"github.com/probeops/pingprobe/internal/repo"
)

// Rechecker periodically re-probes every registered target. Concurrency is
// bounded; each probe still owns its own child process exclusively.
type Rechecker struct {
	Logger      *zap.Logger
	Targets     repo.TargetStore
	Results     repo.ResultStore
	Checker     probe.Checker
	Metrics     *metrics.Collector
	Interval    time.Duration
	Timeout     time.Duration
	Concurrency int
}

func NewRechecker(
	logger *zap.Logger,
	ts repo.TargetStore,
	rs repo.ResultStore,
	checker probe.Checker,
	m *metrics.Collector,
	interval time.Duration,
	timeout time.Duration,
	concurrency int,
) *Rechecker {
	if concurrency < 1 {
		concurrency = 1
	}
	if interval < 0 {
		interval = 0
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Rechecker{
		Logger:      logger,
		Targets:     ts,
		Results:     rs,
		Checker:     checker,
		Metrics:     m,
		Interval:    interval,
		Timeout:     timeout,
		Concurrency: concurrency,
	}
}

// Run starts the loop. It does an immediate pass, then runs each tick.
// Stops when ctx is cancelled.
func (r *Rechecker) Run(ctx context.Context) {
	if r.Interval == 0 {
		// disabled
		r.Logger.Info("rechecker_disabled")
		return
	}
	t := time.NewTicker(r.Interval)
	defer t.Stop()

	// immediate pass
	r.runOnce(ctx)

	for {
		select {
		case <-ctx.Done():
			r.Logger.Info("rechecker_stopped")
			return
		case <-t.C:
			r.runOnce(ctx)
		}
	}
}

func (r *Rechecker) runOnce(ctx context.Context) {
	ts, err := r.Targets.List(ctx)
	if err != nil {
		r.Logger.Warn("rechecker_list_error", zap.Error(err))
		return
	}
	if len(ts) == 0 {
		return
	}

	sem := make(chan struct{}, r.Concurrency)
	var wg sync.WaitGroup

	for _, tgt := range ts {
		t := tgt
		sem <- struct{}{}
		wg.Add(1)
		go func() {
			defer func() { <-sem }()
			defer wg.Done()

			cctx, cancel := context.WithTimeout(ctx, r.Timeout)
			defer cancel()

			start := time.Now()
			out := r.Checker.Check(cctx, t.Host)
			if r.Metrics != nil {
				r.Metrics.ObserveProbe(out.Verdict.String(), time.Since(start).Seconds())
			}

			cr := &domain.CheckResult{
				TargetID:  t.ID,
				Verdict:   domain.Verdict(out.Verdict.String()),
				LatencyMS: out.LatencyMS,
				Reason:    out.Message,
				CheckedAt: time.Now().UTC(),
			}
			if err := r.Results.Append(ctx, cr); err != nil {
				r.Logger.Warn("rechecker_append_error",
					zap.String("target_id", string(t.ID)),
					zap.String("host", t.Host),
					zap.Error(err),
				)
			} else {
				r.Logger.Debug("rechecker_checked",
					zap.String("target_id", string(t.ID)),
					zap.String("host", t.Host),
					zap.String("verdict", string(cr.Verdict)),
					zap.Float64("latency_ms", out.LatencyMS),
					zap.String("reason", out.Message),
				)
			}
		}()
	}

	wg.Wait()
}
