package memory

import (
	"context"
	"testing"
	"time"

	"github.com/probeops/pingprobe/internal/domain"
	"github.com/probeops/pingprobe/internal/repo"
)

func TestStore_AddAssignsIDAndLists(t *testing.T) {
	s := New()
	ctx := context.Background()

	tgt := &domain.Target{Host: "gw.example.net"}
	if err := s.Add(ctx, tgt); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if tgt.ID == "" || tgt.CreatedAt.IsZero() {
		t.Fatalf("Add should assign ID and CreatedAt: %+v", tgt)
	}

	ts, err := s.List(ctx)
	if err != nil || len(ts) != 1 {
		t.Fatalf("List: %v, n=%d", err, len(ts))
	}

	got, err := s.GetByHost(ctx, "gw.example.net")
	if err != nil || got == nil || got.ID != tgt.ID {
		t.Fatalf("GetByHost: %v, got=%+v", err, got)
	}
	if miss, _ := s.GetByHost(ctx, "other.example.net"); miss != nil {
		t.Fatalf("GetByHost miss should be nil, got %+v", miss)
	}
}

func TestStore_LatestPicksNewestPerTarget(t *testing.T) {
	s := New()
	ctx := context.Background()

	tgt := &domain.Target{ID: "T1", Host: "gw.example.net"}
	_ = s.Add(ctx, tgt)

	base := time.Date(2026, 8, 20, 10, 0, 0, 0, time.UTC)
	_ = s.Append(ctx, &domain.CheckResult{TargetID: "T1", Verdict: domain.VerdictUnreachable, CheckedAt: base})
	_ = s.Append(ctx, &domain.CheckResult{TargetID: "T1", Verdict: domain.VerdictReachable, LatencyMS: 4.2, CheckedAt: base.Add(time.Minute)})

	rows, err := s.Latest(ctx)
	if err != nil || len(rows) != 1 {
		t.Fatalf("Latest: %v, n=%d", err, len(rows))
	}
	r := rows[0]
	if r.Verdict != domain.VerdictReachable || !r.Up() || r.Host != "gw.example.net" {
		t.Fatalf("wrong latest row: %+v", r)
	}
	if r.LatencyMS == nil || *r.LatencyMS != 4.2 {
		t.Fatalf("latency not carried: %+v", r.LatencyMS)
	}
}

func TestStore_LatestKeepsZeroLatency(t *testing.T) {
	s := New()
	ctx := context.Background()

	_ = s.Add(ctx, &domain.Target{ID: "T1", Host: "lo.example.net"})
	_ = s.Append(ctx, &domain.CheckResult{
		TargetID: "T1", Verdict: domain.VerdictReachable, LatencyMS: 0, CheckedAt: time.Now().UTC(),
	})

	rows, err := s.Latest(ctx)
	if err != nil || len(rows) != 1 {
		t.Fatalf("Latest: %v, n=%d", err, len(rows))
	}
	if rows[0].LatencyMS == nil || *rows[0].LatencyMS != 0 {
		t.Fatalf("a measured 0 ms must not become nil: %+v", rows[0].LatencyMS)
	}
}

func TestStore_LatestDropsLatencyOnErrorVerdict(t *testing.T) {
	s := New()
	ctx := context.Background()

	_ = s.Add(ctx, &domain.Target{ID: "T1", Host: "gw.example.net"})
	_ = s.Append(ctx, &domain.CheckResult{
		TargetID: "T1", Verdict: domain.VerdictError, Reason: "ping binary missing", CheckedAt: time.Now().UTC(),
	})

	rows, err := s.Latest(ctx)
	if err != nil || len(rows) != 1 {
		t.Fatalf("Latest: %v, n=%d", err, len(rows))
	}
	if rows[0].LatencyMS != nil {
		t.Fatalf("errored probe has no measurement, got %v", *rows[0].LatencyMS)
	}
}

func TestStore_AlertRecords(t *testing.T) {
	s := New()
	ctx := context.Background()

	if rec, err := s.Get(ctx, "T1"); err != nil || rec != nil {
		t.Fatalf("want nil,nil for missing record, got %+v, %v", rec, err)
	}

	now := time.Now().UTC()
	err := s.Set(ctx, repo.AlertRecord{
		TargetID: "T1", LastState: false, LastVerdict: domain.VerdictUnreachable, LastSentAt: &now,
	})
	if err != nil {
		t.Fatalf("Set: %v", err)
	}
	rec, err := s.Get(ctx, "T1")
	if err != nil || rec == nil || rec.LastState || rec.LastSentAt == nil {
		t.Fatalf("bad record: %+v, %v", rec, err)
	}
	if rec.LastVerdict != domain.VerdictUnreachable {
		t.Fatalf("verdict not recorded: %+v", rec)
	}

	// nil LastSentAt keeps the previous send time
	err = s.Set(ctx, repo.AlertRecord{TargetID: "T1", LastState: true, LastVerdict: domain.VerdictReachable})
	if err != nil {
		t.Fatalf("Set: %v", err)
	}
	rec, _ = s.Get(ctx, "T1")
	if !rec.LastState || rec.LastSentAt == nil {
		t.Fatalf("state update lost send time: %+v", rec)
	}
}
