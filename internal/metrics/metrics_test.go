package metrics

import (
	"net/http/httptest"
	"strings"
	"testing"
)

func TestCollector_HandlerExposesCounters(t *testing.T) {
	c := New()
	c.ObserveProbe("reachable", 0.120)
	c.TargetsAdded.Inc()
	c.AlertsSent.WithLabelValues("down").Inc()

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	if rec.Code != 200 {
		t.Fatalf("want 200, got %d", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{
		`pingprobe_probes_total{verdict="reachable"} 1`,
		"pingprobe_targets_added_total 1",
		`pingprobe_alerts_sent_total{kind="down"} 1`,
	} {
		if !strings.Contains(body, want) {
			t.Fatalf("metrics output missing %q", want)
		}
	}
}
