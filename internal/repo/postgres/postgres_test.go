package postgres

import (
	"context"
	"os"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/probeops/pingprobe/internal/domain"
	"github.com/probeops/pingprobe/internal/repo"
)

// Integration test; runs only when TEST_DATABASE_URL points at a disposable
// database.
func TestStore_Integration(t *testing.T) {
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	ctx := context.Background()

	s, err := New(ctx, dsn, zap.NewNop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer s.Close()

	if err := s.Migrate(ctx); err != nil {
		t.Fatalf("Migrate: %v", err)
	}

	host := "it-" + time.Now().UTC().Format("150405.000000000") + ".example.net"
	tgt := &domain.Target{Host: host}
	if err := s.Add(ctx, tgt); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if tgt.ID == "" {
		t.Fatalf("Add should assign an ID")
	}

	got, err := s.GetByHost(ctx, host)
	if err != nil || got == nil || got.ID != tgt.ID {
		t.Fatalf("GetByHost: %v, got=%+v", err, got)
	}
	if miss, err := s.GetByHost(ctx, "missing-"+host); err != nil || miss != nil {
		t.Fatalf("miss should be nil,nil: %+v, %v", miss, err)
	}

	err = s.Append(ctx, &domain.CheckResult{
		TargetID:  tgt.ID,
		Verdict:   domain.VerdictUnreachable,
		Reason:    "no echo reply",
		CheckedAt: time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("Append: %v", err)
	}
	err = s.Append(ctx, &domain.CheckResult{
		TargetID:  tgt.ID,
		Verdict:   domain.VerdictReachable,
		LatencyMS: 3.7,
		CheckedAt: time.Now().UTC().Add(time.Second),
	})
	if err != nil {
		t.Fatalf("Append: %v", err)
	}

	rows, err := s.Latest(ctx)
	if err != nil {
		t.Fatalf("Latest: %v", err)
	}
	found := false
	for _, r := range rows {
		if r.TargetID == string(tgt.ID) {
			found = true
			if r.Verdict != domain.VerdictReachable || r.LatencyMS == nil {
				t.Fatalf("latest row wrong: %+v", r)
			}
		}
	}
	if !found {
		t.Fatalf("target missing from Latest")
	}

	// alert state round-trip
	if rec, err := s.Get(ctx, string(tgt.ID)); err != nil || rec != nil {
		t.Fatalf("want nil,nil before Set: %+v, %v", rec, err)
	}
	now := time.Now().UTC()
	err = s.Set(ctx, repo.AlertRecord{
		TargetID: string(tgt.ID), LastState: false, LastVerdict: domain.VerdictUnreachable, LastSentAt: &now,
	})
	if err != nil {
		t.Fatalf("Set: %v", err)
	}
	rec, err := s.Get(ctx, string(tgt.ID))
	if err != nil || rec == nil || rec.LastState || rec.LastSentAt == nil {
		t.Fatalf("alert record wrong: %+v, %v", rec, err)
	}
	if rec.LastVerdict != domain.VerdictUnreachable {
		t.Fatalf("verdict not persisted: %+v", rec)
	}

	// nil LastSentAt preserves the recorded send time
	err = s.Set(ctx, repo.AlertRecord{
		TargetID: string(tgt.ID), LastState: true, LastVerdict: domain.VerdictReachable,
	})
	if err != nil {
		t.Fatalf("Set: %v", err)
	}
	rec, _ = s.Get(ctx, string(tgt.ID))
	if !rec.LastState || rec.LastSentAt == nil {
		t.Fatalf("state update lost send time: %+v", rec)
	}
}
