package probe

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os/exec"
	"runtime"
	"strings"
	"time"
)

// Verdict is the outcome of a single probe: the target answered, the target
// stayed silent, or we could not even ask.
type Verdict int

const (
	Reachable Verdict = iota
	Unreachable
	ProbeError
)

func (v Verdict) String() string {
	switch v {
	case Reachable:
		return "reachable"
	case Unreachable:
		return "unreachable"
	default:
		return "error"
	}
}

// ProbeRequest describes one reachability probe. Attempts is forwarded to the
// ping binary's own repeat-count flag; the prober never re-invokes the child.
type ProbeRequest struct {
	Target   string
	Attempts int
	Timeout  time.Duration // per echo request
}

// ProbeResult is produced exactly once per request. Message carries the
// diagnostic for Unreachable and ProbeError verdicts; it is informational
// only and never feeds back into the verdict.
type ProbeResult struct {
	Verdict  Verdict
	Message  string
	Duration time.Duration
}

// ErrBadRequest marks configuration errors caught before any subprocess is
// spawned.
var ErrBadRequest = errors.New("invalid probe request")

const defaultGrace = 2 * time.Second

// Prober shells out to the OS ping executable and translates its exit status
// into a Verdict. The zero value is not usable; construct with NewProber.
type Prober struct {
	path  string
	flags pingFlags
	grace time.Duration
}

// NewProber resolves the platform flag set once. path overrides the binary
// looked up on $PATH; empty means "ping".
func NewProber(path string) (*Prober, error) {
	flags, ok := platformFlags[runtime.GOOS]
	if !ok {
		return nil, fmt.Errorf("no ping flag set for platform %s", runtime.GOOS)
	}
	if path == "" {
		path = "ping"
	}
	return &Prober{path: path, flags: flags, grace: defaultGrace}, nil
}

func (p *Prober) validate(req ProbeRequest) error {
	if strings.TrimSpace(req.Target) == "" {
		return fmt.Errorf("%w: empty target", ErrBadRequest)
	}
	if req.Attempts < 1 {
		return fmt.Errorf("%w: attempts must be >= 1, got %d", ErrBadRequest, req.Attempts)
	}
	if req.Timeout <= 0 {
		return fmt.Errorf("%w: timeout must be positive, got %v", ErrBadRequest, req.Timeout)
	}
	return nil
}

// Probe runs one ping invocation. A non-nil error is returned only for
// configuration errors, before any child process exists; everything that
// happens after the spawn is expressed through the verdict. Cancelling ctx
// kills the child rather than detaching from it.
func (p *Prober) Probe(ctx context.Context, req ProbeRequest) (ProbeResult, error) {
	if err := p.validate(req); err != nil {
		return ProbeResult{}, err
	}

	// Overall wall-clock ceiling: the ping tool enforces its own per-packet
	// timeout, the ceiling guards against a hung or misbehaving binary.
	ceiling := time.Duration(req.Attempts)*req.Timeout + p.grace
	cctx, cancel := context.WithTimeout(ctx, ceiling)
	defer cancel()

	cmd := exec.CommandContext(cctx, p.path, p.flags.argv(req)...)
	setupProcessGroup(cmd)
	// Without a wait delay, Run blocks until the stdout/stderr pipes close,
	// which a grandchild of a misbehaving binary can postpone indefinitely.
	cmd.WaitDelay = p.grace
	var stdout, stderr strings.Builder
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()
	elapsed := time.Since(start)

	if err == nil {
		return ProbeResult{
			Verdict:  Reachable,
			Message:  fmt.Sprintf("host %q answered an ICMP echo", req.Target),
			Duration: elapsed,
		}, nil
	}

	if errors.Is(err, exec.ErrWaitDelay) {
		// The child exited 0 but something it spawned kept the pipes open
		// past the wait delay. The exit status is still the verdict.
		return ProbeResult{
			Verdict:  Reachable,
			Message:  fmt.Sprintf("host %q answered an ICMP echo (trailing output discarded)", req.Target),
			Duration: elapsed,
		}, nil
	}

	if cerr := cctx.Err(); cerr != nil {
		msg := fmt.Sprintf("ping of %q did not finish within %v; child killed", req.Target, ceiling)
		if errors.Is(cerr, context.Canceled) {
			msg = fmt.Sprintf("ping of %q canceled; child killed", req.Target)
		}
		return ProbeResult{Verdict: ProbeError, Message: msg, Duration: elapsed}, nil
	}

	var exit *exec.ExitError
	if errors.As(err, &exit) {
		// Ping implementations exit 0 on at least one reply, 1 when no
		// reply arrived, and something else (2 on Linux/BSD) for usage or
		// resolution errors. Only the first two are network verdicts.
		if exit.ExitCode() == 1 {
			return ProbeResult{
				Verdict:  Unreachable,
				Message:  fmt.Sprintf("host %q cannot be reached over an ICMP ping", req.Target),
				Duration: elapsed,
			}, nil
		}
		return ProbeResult{
			Verdict:  ProbeError,
			Message:  classifyExitFailure(req.Target, exit.ExitCode(), stderr.String()),
			Duration: elapsed,
		}, nil
	}

	return ProbeResult{
		Verdict:  ProbeError,
		Message:  classifyLaunchFailure(p.path, err),
		Duration: elapsed,
	}, nil
}

// classifyExitFailure shapes a diagnostic for usage/resolution exits. The
// stderr text is inspected for the two common DNS failure shapes; the
// classification affects only the message, never the verdict.
func classifyExitFailure(target string, code int, stderr string) string {
	stderr = strings.TrimSpace(stderr)
	switch {
	case strings.Contains(stderr, "not known"):
		return fmt.Sprintf("ping reported no DNS entry for %q: %s", target, stderr)
	case strings.Contains(stderr, "associated with hostname"):
		return fmt.Sprintf("ping reported the DNS entry for %q is not associated with an address: %s", target, stderr)
	case stderr != "":
		return fmt.Sprintf("ping exited with status %d: %s", code, stderr)
	default:
		return fmt.Sprintf("ping exited with unexpected status %d", code)
	}
}

func classifyLaunchFailure(path string, err error) string {
	switch {
	case errors.Is(err, exec.ErrNotFound):
		return fmt.Sprintf("unable to locate the %q executable; ensure it is installed and on PATH", path)
	case errors.Is(err, fs.ErrNotExist):
		return fmt.Sprintf("ping executable %q does not exist", path)
	case errors.Is(err, fs.ErrPermission):
		return fmt.Sprintf("not permitted to execute %q; check its permission bits", path)
	default:
		return fmt.Sprintf("unable to launch %q: %v", path, err)
	}
}
