package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/probeops/pingprobe/internal/domain"
	"github.com/probeops/pingprobe/internal/repo"
)

func (s *Store) Get(ctx context.Context, targetID string) (*repo.AlertRecord, error) {
	const q = `SELECT last_state, last_verdict, last_sent_at FROM alerts WHERE target_id=$1`
	var r repo.AlertRecord
	r.TargetID = targetID
	var verdict string
	var lastSent *time.Time
	err := s.pool.QueryRow(ctx, q, targetID).Scan(&r.LastState, &verdict, &lastSent)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	r.LastVerdict = domain.Verdict(verdict)
	r.LastSentAt = lastSent
	return &r, nil
}

func (s *Store) Set(ctx context.Context, rec repo.AlertRecord) error {
	// COALESCE keeps the previous send time when the caller records a
	// state change without having notified.
	const q = `
		INSERT INTO alerts (target_id, last_state, last_verdict, last_sent_at)
		VALUES ($1,$2,$3,$4)
		ON CONFLICT (target_id)
		DO UPDATE SET last_state=EXCLUDED.last_state,
		              last_verdict=EXCLUDED.last_verdict,
		              last_sent_at=COALESCE(EXCLUDED.last_sent_at, alerts.last_sent_at)
	`
	_, err := s.pool.Exec(ctx, q, rec.TargetID, rec.LastState, string(rec.LastVerdict), rec.LastSentAt)
	return err
}
