package main

import (
	"fmt"
	"os"
	"os/exec"
	"strings"
)

func main() {
	fail := func(msg string) {
		fmt.Fprintln(os.Stderr, "✖", msg)
		os.Exit(1)
	}
	warn := func(msg string) { fmt.Fprintln(os.Stderr, "⚠", msg) }
	ok := func(msg string) { fmt.Println("✔", msg) }

	pingPath := strings.TrimSpace(os.Getenv("PING_PATH"))
	apiAddr := strings.TrimSpace(os.Getenv("API_ADDR"))
	db := strings.TrimSpace(os.Getenv("DATABASE_URL"))
	slack := strings.TrimSpace(os.Getenv("SLACK_WEBHOOK"))
	admin := strings.TrimSpace(os.Getenv("ADMIN_API_KEYS"))

	// The whole tool delegates to the OS ping binary; minimal container
	// images sometimes omit it, so check before anything probes.
	if pingPath != "" {
		if info, err := os.Stat(pingPath); err != nil {
			fail("PING_PATH points at " + pingPath + " which does not exist.")
		} else if info.IsDir() {
			fail("PING_PATH points at a directory, not the ping binary.")
		} else {
			ok("PING_PATH: " + pingPath)
		}
	} else if resolved, err := exec.LookPath("ping"); err != nil {
		fail("no ping executable on PATH and PING_PATH is unset; install iputils or set PING_PATH.")
	} else {
		ok("ping resolves to " + resolved)
	}

	if apiAddr == "" {
		warn("API_ADDR is empty; the default bind address will be used.")
	} else {
		ok("API_ADDR: " + apiAddr)
	}

	if db == "" {
		warn("DATABASE_URL is empty; results will live in memory only.")
	} else if !strings.HasPrefix(db, "postgres://") && !strings.HasPrefix(db, "postgresql://") {
		fail("DATABASE_URL does not look like a postgres DSN.")
	} else {
		ok("DATABASE_URL looks sane.")
	}

	if slack != "" && !strings.HasPrefix(slack, "https://") {
		warn("SLACK_WEBHOOK is not https; notifications will likely fail.")
	}

	if admin == "" {
		warn("ADMIN_API_KEYS is empty (POST /api/targets is open unless public keys are set).")
	} else if strings.Contains(admin, " ") {
		warn("ADMIN_API_KEYS contains spaces; use comma-separated with no spaces, e.g. key1,key2")
	}
}
