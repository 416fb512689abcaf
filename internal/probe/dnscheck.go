package probe

import (
	"context"
	"errors"
	"net"
	"strings"
	"time"
)

// DNSStatus classifies why a hostname may not be probeable. It is used purely
// for diagnostics next to a failed ping; the reachability verdict never
// depends on it.
type DNSStatus struct {
	Host          string
	HasAddress    bool
	IPs           []net.IP
	Class         string // "NXDOMAIN" | "RESOLVES" | "SERVFAIL_or_TIMEOUT" | "INVALID_NAME"
	ResolverError string
}

var dnsTimeout = 3 * time.Second

// CheckDNS resolves host with the OS resolver and buckets the outcome.
func CheckDNS(ctx context.Context, host string) DNSStatus {
	s := DNSStatus{Host: strings.TrimSpace(host)}
	if s.Host == "" || strings.Contains(s.Host, "://") {
		s.Class = "INVALID_NAME"
		return s
	}
	if ip := net.ParseIP(s.Host); ip != nil {
		s.HasAddress = true
		s.IPs = []net.IP{ip}
		s.Class = "RESOLVES"
		return s
	}

	ctx, cancel := context.WithTimeout(ctx, dnsTimeout)
	defer cancel()
	r := &net.Resolver{}

	ips, err := r.LookupIP(ctx, "ip", s.Host)
	if err == nil && len(ips) > 0 {
		s.HasAddress = true
		s.IPs = ips
		s.Class = "RESOLVES"
		return s
	}
	if err != nil {
		s.ResolverError = err.Error()
		var de *net.DNSError
		if errors.As(err, &de) {
			if de.IsNotFound {
				s.Class = "NXDOMAIN"
				return s
			}
			if de.IsTemporary || de.Timeout() {
				s.Class = "SERVFAIL_or_TIMEOUT"
				return s
			}
		}
		s.Class = "SERVFAIL_or_TIMEOUT"
		return s
	}
	s.Class = "NXDOMAIN"
	return s
}
