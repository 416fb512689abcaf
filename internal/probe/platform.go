package probe

import (
	"strconv"
	"time"
)

// pingFlags captures how a platform's ping binary spells its repeat-count and
// per-attempt timeout flags, and which unit the timeout flag expects.
type pingFlags struct {
	countFlag   string
	timeoutFlag string
	timeoutUnit time.Duration
}

// Resolved once per process by GOOS. Windows ping can exit 0 even when every
// echo reported "destination host unreachable"; the verdict still trusts the
// exit code only, as that is the one structured signal the tool offers.
var platformFlags = map[string]pingFlags{
	"linux":   {countFlag: "-c", timeoutFlag: "-W", timeoutUnit: time.Second},
	"darwin":  {countFlag: "-c", timeoutFlag: "-W", timeoutUnit: time.Millisecond},
	"freebsd": {countFlag: "-c", timeoutFlag: "-W", timeoutUnit: time.Millisecond},
	"windows": {countFlag: "-n", timeoutFlag: "-w", timeoutUnit: time.Millisecond},
}

func (f pingFlags) argv(req ProbeRequest) []string {
	units := int64(req.Timeout / f.timeoutUnit)
	if req.Timeout%f.timeoutUnit != 0 {
		units++ // round up so a sub-unit timeout never becomes zero
	}
	return []string{
		f.countFlag, strconv.Itoa(req.Attempts),
		f.timeoutFlag, strconv.FormatInt(units, 10),
		req.Target,
	}
}
