package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/probeops/pingprobe/internal/domain"
	"github.com/probeops/pingprobe/internal/repo"
)

var (
	_ repo.TargetStore = (*Store)(nil)
	_ repo.ResultStore = (*Store)(nil)
	_ repo.AlertStore  = (*Store)(nil)
)

type Store struct {
	pool *pgxpool.Pool
	log  *zap.Logger
}

func New(ctx context.Context, dsn string, log *zap.Logger) (*Store, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("pgxpool.New: %w", err)
	}
	ctxPing, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(ctxPing); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}
	return &Store{pool: pool, log: log}, nil
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// Migrate creates the tables if they do not exist yet.
func (s *Store) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
CREATE TABLE IF NOT EXISTS targets (
    id         TEXT PRIMARY KEY,
    host       TEXT UNIQUE NOT NULL,
    created_at TIMESTAMPTZ NOT NULL
);
CREATE TABLE IF NOT EXISTS results (
    target_id  TEXT NOT NULL REFERENCES targets(id),
    verdict    TEXT NOT NULL,
    latency_ms DOUBLE PRECISION,
    reason     TEXT,
    checked_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS results_target_checked_idx ON results (target_id, checked_at DESC);
CREATE TABLE IF NOT EXISTS alerts (
    target_id    TEXT PRIMARY KEY,
    last_state   BOOLEAN NOT NULL,
    last_verdict TEXT NOT NULL DEFAULT '',
    last_sent_at TIMESTAMPTZ
);`)
	if err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

// ---- TargetStore ----

func (s *Store) Add(ctx context.Context, t *domain.Target) error {
	if t.ID == "" {
		t.ID = domain.TargetID(makeID())
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now().UTC()
	}
	_, err := s.pool.Exec(ctx,
		`INSERT INTO targets (id, host, created_at)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (host) DO NOTHING`,
		string(t.ID), t.Host, t.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert target: %w", err)
	}
	return nil
}

func (s *Store) List(ctx context.Context) ([]*domain.Target, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, host, created_at
		   FROM targets
		  ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list targets: %w", err)
	}
	defer rows.Close()

	var out []*domain.Target
	for rows.Next() {
		var (
			id        string
			host      string
			createdAt time.Time
		)
		if err := rows.Scan(&id, &host, &createdAt); err != nil {
			return nil, fmt.Errorf("scan target: %w", err)
		}
		out = append(out, &domain.Target{
			ID:        domain.TargetID(id),
			Host:      host,
			CreatedAt: createdAt,
		})
	}
	return out, rows.Err()
}

func (s *Store) GetByHost(ctx context.Context, host string) (*domain.Target, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, host, created_at FROM targets WHERE host = $1`, host)
	var t domain.Target
	if err := row.Scan(&t.ID, &t.Host, &t.CreatedAt); err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get target: %w", err)
	}
	return &t, nil
}

// ---- ResultStore ----

func (s *Store) Append(ctx context.Context, cr *domain.CheckResult) error {
	if cr.CheckedAt.IsZero() {
		cr.CheckedAt = time.Now().UTC()
	}
	// NULL latency means "no measurement", which only errored probes
	// produce; a real 0 ms is stored as 0.
	var latPtr *float64
	if cr.Verdict != domain.VerdictError {
		latPtr = &cr.LatencyMS
	}
	_, err := s.pool.Exec(ctx,
		`INSERT INTO results (target_id, verdict, latency_ms, reason, checked_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		string(cr.TargetID), string(cr.Verdict), latPtr, cr.Reason, cr.CheckedAt,
	)
	if err != nil {
		return fmt.Errorf("insert result: %w", err)
	}
	return nil
}

func (s *Store) Latest(ctx context.Context) ([]repo.LatestRow, error) {
	rows, err := s.pool.Query(ctx, `
SELECT DISTINCT ON (r.target_id)
       r.target_id,
       t.host,
       r.verdict,
       r.latency_ms,
       r.reason,
       r.checked_at
  FROM results r
  JOIN targets t ON t.id = r.target_id
 ORDER BY r.target_id, r.checked_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("latest: %w", err)
	}
	defer rows.Close()

	var out []repo.LatestRow
	for rows.Next() {
		var (
			targetID  string
			host      string
			verdict   string
			latency   *float64
			reason    *string
			checkedAt time.Time
		)
		if err := rows.Scan(&targetID, &host, &verdict, &latency, &reason, &checkedAt); err != nil {
			return nil, fmt.Errorf("scan latest: %w", err)
		}
		row := repo.LatestRow{
			TargetID:  targetID,
			Host:      host,
			Verdict:   domain.Verdict(verdict),
			LatencyMS: latency,
			CheckedAt: checkedAt,
		}
		if reason != nil {
			row.Reason = *reason
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// ID format matches the memory store: 20060102Thhmmss.nnnnnnnnn
func makeID() string {
	now := time.Now().UTC()
	return now.Format("20060102T150405.") + fmt.Sprintf("%09d", now.Nanosecond())
}
