package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/probeops/pingprobe/internal/domain"
	"github.com/probeops/pingprobe/internal/httpapi/middleware"
	"github.com/probeops/pingprobe/internal/metrics"
	"github.com/probeops/pingprobe/internal/probe"
	"github.com/probeops/pingprobe/internal/repo"
)

type Server struct {
	Logger  *zap.Logger
	Targets repo.TargetStore
	Results repo.ResultStore
	Checker probe.Checker
	Metrics *metrics.Collector
	Keys    middleware.Keys
	RPM     int
	Burst   int
}

func NewServer(l *zap.Logger, ts repo.TargetStore, rs repo.ResultStore, c probe.Checker, m *metrics.Collector) *Server {
	return &Server{Logger: l, Targets: ts, Results: rs, Checker: c, Metrics: m}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(cors.AllowAll().Handler)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	if s.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.Metrics.Handler())
	}

	r.Group(func(r chi.Router) {
		r.Use(middleware.RateLimit(s.RPM, s.Burst))
		r.Use(middleware.RequireAny(s.Keys))

		r.Get("/api/targets", s.handleListTargets)
		r.Get("/api/results/latest", s.handleLatestResults)

		r.With(middleware.RequireAdmin(s.Keys)).Post("/api/targets", s.handleAddTarget)
	})

	return r
}

type addPayload struct {
	Host string `json:"host"`
}

// validHost rejects inputs the prober would refuse anyway, before a target
// record is created. URLs are not hosts.
func validHost(h string) bool {
	if h == "" || strings.ContainsAny(h, " \t") || strings.Contains(h, "://") {
		return false
	}
	return true
}

func (s *Server) handleAddTarget(w http.ResponseWriter, r *http.Request) {
	var p addPayload
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		http.Error(w, "bad payload", http.StatusBadRequest)
		return
	}
	p.Host = strings.TrimSpace(p.Host)
	if !validHost(p.Host) {
		http.Error(w, "invalid host", http.StatusUnprocessableEntity)
		return
	}

	t := &domain.Target{Host: p.Host, CreatedAt: time.Now().UTC()}
	if err := s.Targets.Add(r.Context(), t); err != nil {
		http.Error(w, "could not add", http.StatusInternalServerError)
		return
	}
	if s.Metrics != nil {
		s.Metrics.TargetsAdded.Inc()
	}

	// Run a single probe synchronously for immediate feedback
	cctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()
	start := time.Now()
	out := s.Checker.Check(cctx, p.Host)
	if s.Metrics != nil {
		s.Metrics.ObserveProbe(out.Verdict.String(), time.Since(start).Seconds())
	}

	// If the probe fails, classify DNS for the log line; the verdict is
	// already final.
	if !out.Success {
		dns := probe.CheckDNS(r.Context(), p.Host)
		s.Logger.Info("dns_check",
			zap.String("host", dns.Host),
			zap.String("class", dns.Class),
			zap.Bool("has_address", dns.HasAddress),
			zap.String("resolver_error", dns.ResolverError),
		)
	}

	cr := &domain.CheckResult{
		TargetID:  t.ID,
		Verdict:   domain.Verdict(out.Verdict.String()),
		LatencyMS: out.LatencyMS,
		Reason:    out.Message,
		CheckedAt: time.Now().UTC(),
	}
	if err := s.Results.Append(r.Context(), cr); err != nil {
		// The target was stored and probed; a lost history row is worth a
		// log line, not a failed request.
		s.Logger.Warn("append_result_error",
			zap.String("host", p.Host),
			zap.Error(err),
		)
	}

	s.Logger.Info("added_target",
		zap.String("host", p.Host),
		zap.String("verdict", string(cr.Verdict)),
		zap.Float64("latency_ms", out.LatencyMS),
	)

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"target": t, "result": cr,
	})
}

func (s *Server) handleListTargets(w http.ResponseWriter, r *http.Request) {
	ts, err := s.Targets.List(r.Context())
	if err != nil {
		http.Error(w, "list error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(ts)
}

func (s *Server) handleLatestResults(w http.ResponseWriter, r *http.Request) {
	rows, err := s.Results.Latest(r.Context())
	if err != nil {
		http.Error(w, "latest error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(rows)
}
