package probe

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"
)

// writeFakePing drops an executable shell stub standing in for the ping
// binary, so tests control the exit status without touching the network.
func writeFakePing(t *testing.T, script string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake ping stubs are shell scripts")
	}
	path := filepath.Join(t.TempDir(), "fakeping")
	content := "#!/bin/sh\n" + script + "\n"
	if err := os.WriteFile(path, []byte(content), 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}
	return path
}

func newTestProber(t *testing.T, path string) *Prober {
	t.Helper()
	p, err := NewProber(path)
	if err != nil {
		t.Fatalf("NewProber: %v", err)
	}
	return p
}

func TestProbe_InvalidRequest_NoSpawn(t *testing.T) {
	marker := filepath.Join(t.TempDir(), "spawned")
	stub := writeFakePing(t, "touch "+marker+"; exit 0")
	p := newTestProber(t, stub)

	bad := []ProbeRequest{
		{Target: "localhost", Attempts: 0, Timeout: time.Second},
		{Target: "localhost", Attempts: 1, Timeout: 0},
		{Target: "localhost", Attempts: 1, Timeout: -time.Second},
		{Target: "  ", Attempts: 1, Timeout: time.Second},
	}
	for _, req := range bad {
		_, err := p.Probe(context.Background(), req)
		if !errors.Is(err, ErrBadRequest) {
			t.Fatalf("want ErrBadRequest for %+v, got %v", req, err)
		}
	}
	if _, err := os.Stat(marker); !os.IsNotExist(err) {
		t.Fatalf("a subprocess was spawned for an invalid request")
	}
}

func TestProbe_ExitZero_Reachable(t *testing.T) {
	stub := writeFakePing(t, "exit 0")
	p := newTestProber(t, stub)

	res, err := p.Probe(context.Background(), ProbeRequest{Target: "127.0.0.1", Attempts: 1, Timeout: time.Second})
	if err != nil {
		t.Fatalf("Probe: %v", err)
	}
	if res.Verdict != Reachable {
		t.Fatalf("want Reachable, got %v (%s)", res.Verdict, res.Message)
	}
}

func TestProbe_ExitOne_Unreachable(t *testing.T) {
	stub := writeFakePing(t, "exit 1")
	p := newTestProber(t, stub)

	res, err := p.Probe(context.Background(), ProbeRequest{Target: "192.0.2.1", Attempts: 1, Timeout: time.Second})
	if err != nil {
		t.Fatalf("Probe: %v", err)
	}
	if res.Verdict != Unreachable {
		t.Fatalf("want Unreachable, got %v (%s)", res.Verdict, res.Message)
	}
	if !strings.Contains(res.Message, "192.0.2.1") {
		t.Fatalf("message should name the target, got %q", res.Message)
	}
}

func TestProbe_UsageExit_ProbeErrorWithStderr(t *testing.T) {
	stub := writeFakePing(t, `echo "ping: nosuch.invalid: Name or service not known" >&2; exit 2`)
	p := newTestProber(t, stub)

	res, err := p.Probe(context.Background(), ProbeRequest{Target: "nosuch.invalid", Attempts: 1, Timeout: time.Second})
	if err != nil {
		t.Fatalf("Probe: %v", err)
	}
	if res.Verdict != ProbeError {
		t.Fatalf("want ProbeError, got %v", res.Verdict)
	}
	if !strings.Contains(res.Message, "DNS") {
		t.Fatalf("want DNS classification in message, got %q", res.Message)
	}
}

func TestProbe_MissingBinary_ProbeError(t *testing.T) {
	p := newTestProber(t, filepath.Join(t.TempDir(), "definitely-not-ping"))

	res, err := p.Probe(context.Background(), ProbeRequest{Target: "127.0.0.1", Attempts: 1, Timeout: time.Second})
	if err != nil {
		t.Fatalf("Probe: %v", err)
	}
	if res.Verdict != ProbeError {
		t.Fatalf("launch failure must be ProbeError, not %v", res.Verdict)
	}
	if res.Message == "" {
		t.Fatalf("want a launch diagnostic, got empty message")
	}
}

func TestProbe_HungBinary_KilledWithinCeiling(t *testing.T) {
	stub := writeFakePing(t, "sleep 30")
	p := newTestProber(t, stub)
	p.grace = 200 * time.Millisecond

	start := time.Now()
	res, err := p.Probe(context.Background(), ProbeRequest{Target: "127.0.0.1", Attempts: 1, Timeout: 100 * time.Millisecond})
	if err != nil {
		t.Fatalf("Probe: %v", err)
	}
	if res.Verdict != ProbeError {
		t.Fatalf("want ProbeError for killed child, got %v", res.Verdict)
	}
	if elapsed := time.Since(start); elapsed > 5*time.Second {
		t.Fatalf("child not killed within ceiling, took %v", elapsed)
	}
}

func TestProbe_HungGrandchild_DoesNotBlockWait(t *testing.T) {
	// The stub exits 0 immediately but leaves a background child holding
	// the inherited pipes open. Probe must still return promptly with the
	// exit-status verdict.
	stub := writeFakePing(t, "sleep 30 &\nexit 0")
	p := newTestProber(t, stub)
	p.grace = 200 * time.Millisecond

	start := time.Now()
	res, err := p.Probe(context.Background(), ProbeRequest{Target: "127.0.0.1", Attempts: 1, Timeout: time.Second})
	if err != nil {
		t.Fatalf("Probe: %v", err)
	}
	if res.Verdict != Reachable {
		t.Fatalf("exit 0 must stay Reachable, got %v (%s)", res.Verdict, res.Message)
	}
	if elapsed := time.Since(start); elapsed > 5*time.Second {
		t.Fatalf("wait not bounded while grandchild held the pipes, took %v", elapsed)
	}
}

func TestProbe_Cancel_KillsChild(t *testing.T) {
	stub := writeFakePing(t, "sleep 30")
	p := newTestProber(t, stub)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	start := time.Now()
	res, err := p.Probe(ctx, ProbeRequest{Target: "127.0.0.1", Attempts: 3, Timeout: 10 * time.Second})
	if err != nil {
		t.Fatalf("Probe: %v", err)
	}
	if res.Verdict != ProbeError {
		t.Fatalf("want ProbeError after cancel, got %v", res.Verdict)
	}
	if elapsed := time.Since(start); elapsed > 5*time.Second {
		t.Fatalf("cancel did not kill the child, took %v", elapsed)
	}
}

func TestProbe_ForwardsAttemptsToCountFlag(t *testing.T) {
	argvFile := filepath.Join(t.TempDir(), "argv")
	stub := writeFakePing(t, `echo "$@" > `+argvFile+`; exit 0`)
	p := newTestProber(t, stub)

	if _, err := p.Probe(context.Background(), ProbeRequest{Target: "example.com", Attempts: 4, Timeout: 2 * time.Second}); err != nil {
		t.Fatalf("Probe: %v", err)
	}
	b, err := os.ReadFile(argvFile)
	if err != nil {
		t.Fatalf("stub never ran: %v", err)
	}
	argv := strings.TrimSpace(string(b))
	if !strings.Contains(argv, "4") || !strings.Contains(argv, "example.com") {
		t.Fatalf("attempt count not forwarded: argv=%q", argv)
	}
}

func TestProbe_Idempotent(t *testing.T) {
	stub := writeFakePing(t, "exit 0")
	p := newTestProber(t, stub)

	req := ProbeRequest{Target: "127.0.0.1", Attempts: 1, Timeout: time.Second}
	for i := 0; i < 3; i++ {
		res, err := p.Probe(context.Background(), req)
		if err != nil {
			t.Fatalf("Probe #%d: %v", i, err)
		}
		if res.Verdict != Reachable {
			t.Fatalf("Probe #%d: want Reachable, got %v", i, res.Verdict)
		}
	}
}

func TestProbe_Loopback_RealPing(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping real ping in short mode")
	}
	if _, err := exec.LookPath("ping"); err != nil {
		t.Skip("no ping binary on this system")
	}
	p := newTestProber(t, "")
	res, err := p.Probe(context.Background(), ProbeRequest{Target: "127.0.0.1", Attempts: 1, Timeout: 2 * time.Second})
	if err != nil {
		t.Fatalf("Probe: %v", err)
	}
	if res.Verdict != Reachable {
		t.Fatalf("loopback should be reachable, got %v (%s)", res.Verdict, res.Message)
	}
}
