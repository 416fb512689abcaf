package memory

import (
	"context"
	"sync"
	"time"

	"github.com/probeops/pingprobe/internal/domain"
	"github.com/probeops/pingprobe/internal/repo"
)

type Store struct {
	mu      sync.RWMutex
	targets map[domain.TargetID]*domain.Target
	results []*domain.CheckResult
	alerts  map[string]*repo.AlertRecord
}

func New() *Store {
	return &Store{
		targets: make(map[domain.TargetID]*domain.Target),
		results: make([]*domain.CheckResult, 0, 128),
		alerts:  make(map[string]*repo.AlertRecord),
	}
}

func (m *Store) Add(ctx context.Context, t *domain.Target) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if t.ID == "" {
		t.ID = domain.TargetID(time.Now().UTC().Format("20060102T150405.000000000"))
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now().UTC()
	}
	m.targets[t.ID] = t
	return nil
}

func (m *Store) List(ctx context.Context) ([]*domain.Target, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*domain.Target, 0, len(m.targets))
	for _, t := range m.targets {
		out = append(out, t)
	}
	return out, nil
}

func (m *Store) GetByHost(ctx context.Context, host string) (*domain.Target, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, t := range m.targets {
		if t.Host == host {
			return t, nil
		}
	}
	return nil, nil
}

func (m *Store) Append(ctx context.Context, r *domain.CheckResult) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.results = append(m.results, r)
	return nil
}

func (m *Store) Latest(ctx context.Context) ([]repo.LatestRow, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	latest := make(map[domain.TargetID]*domain.CheckResult)
	for _, r := range m.results {
		cur := latest[r.TargetID]
		if cur == nil || r.CheckedAt.After(cur.CheckedAt) {
			latest[r.TargetID] = r
		}
	}

	out := make([]repo.LatestRow, 0, len(latest))
	for tid, r := range latest {
		// Only errored probes lack a measurement; a genuine 0 ms is kept.
		var lat *float64
		if r.Verdict != domain.VerdictError {
			v := r.LatencyMS
			lat = &v
		}
		host := ""
		if t := m.targets[tid]; t != nil {
			host = t.Host
		}
		out = append(out, repo.LatestRow{
			TargetID:  string(tid),
			Host:      host,
			Verdict:   r.Verdict,
			LatencyMS: lat,
			Reason:    r.Reason,
			CheckedAt: r.CheckedAt,
		})
	}
	return out, nil
}

// ---- AlertStore ----

func (m *Store) Get(ctx context.Context, targetID string) (*repo.AlertRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec := m.alerts[targetID]
	if rec == nil {
		return nil, nil
	}
	cp := *rec
	return &cp, nil
}

func (m *Store) Set(ctx context.Context, rec repo.AlertRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := rec
	if cp.LastSentAt == nil {
		if old := m.alerts[rec.TargetID]; old != nil {
			cp.LastSentAt = old.LastSentAt
		}
	}
	m.alerts[rec.TargetID] = &cp
	return nil
}
