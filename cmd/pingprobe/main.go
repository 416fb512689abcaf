package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/probeops/pingprobe/internal/logging"
	"github.com/probeops/pingprobe/internal/probe"
)

// Exit codes, chosen so scripts can tell "host down" from "tool malfunction".
const (
	exitReachable   = 0
	exitUnreachable = 1
	exitProbeError  = 2
)

func main() {
	count := flag.Int("count", 3, "number of echo requests to send")
	timeout := flag.Duration("timeout", 2*time.Second, "per-attempt timeout")
	pingPath := flag.String("ping-path", "", "path to the ping binary (default: resolve on PATH)")
	verbose := flag.Bool("v", false, "log probe diagnostics to stderr")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: %s [flags] <host>\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	logger := logging.NewCLILogger(*verbose)
	defer logger.Sync()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "error: exactly one target host must be provided")
		flag.Usage()
		os.Exit(exitProbeError)
	}
	host := flag.Arg(0)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	prober, err := probe.NewProber(*pingPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(exitProbeError)
	}

	logger.Debug("probe_start",
		zap.String("host", host),
		zap.Int("attempts", *count),
		zap.Duration("timeout", *timeout),
	)

	res, err := prober.Probe(ctx, probe.ProbeRequest{
		Target:   host,
		Attempts: *count,
		Timeout:  *timeout,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(exitProbeError)
	}

	logger.Debug("probe_done",
		zap.String("host", host),
		zap.String("verdict", res.Verdict.String()),
		zap.String("detail", res.Message),
		zap.Duration("elapsed", res.Duration.Round(time.Millisecond)),
	)

	switch res.Verdict {
	case probe.Reachable:
		fmt.Printf("ICMP ping successful for host %q\n", host)
		os.Exit(exitReachable)
	case probe.Unreachable:
		fmt.Fprintln(os.Stderr, res.Message)
		os.Exit(exitUnreachable)
	default:
		fmt.Fprintln(os.Stderr, "probe error:", res.Message)
		os.Exit(exitProbeError)
	}
}
