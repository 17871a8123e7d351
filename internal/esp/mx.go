package esp

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sort"
	"strings"
	"time"
)

// MXLookupFunc resolves the mail exchangers of a domain.
type MXLookupFunc func(ctx context.Context, name string) ([]*net.MX, error)

// DNSMXChecker answers "does this domain resolve a mail exchanger".
type DNSMXChecker struct {
	lookup  MXLookupFunc
	timeout time.Duration
}

// NewDNSMXChecker creates a checker on the system resolver. A zero timeout
// defaults to 5 seconds.
func NewDNSMXChecker(timeout time.Duration) *DNSMXChecker {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	resolver := &net.Resolver{}
	return &DNSMXChecker{lookup: resolver.LookupMX, timeout: timeout}
}

// HasMX reports whether name has at least one MX record. A definitive
// "no such host" answer is (false, nil); resolver failures are errors.
func (c *DNSMXChecker) HasMX(ctx context.Context, name string) (bool, error) {
	hosts, err := lookupHosts(ctx, c.lookup, c.timeout, name)
	if err != nil {
		return false, err
	}
	return len(hosts) > 0, nil
}

// lookupHosts returns MX host names ordered by preference, without the
// trailing dot.
func lookupHosts(ctx context.Context, lookup MXLookupFunc, timeout time.Duration, name string) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	records, err := lookup(ctx, name)
	if err != nil {
		var dnsErr *net.DNSError
		if errors.As(err, &dnsErr) && dnsErr.IsNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("lookup mx %s: %w", name, err)
	}

	sort.SliceStable(records, func(i, j int) bool { return records[i].Pref < records[j].Pref })
	hosts := make([]string, 0, len(records))
	for _, r := range records {
		host := strings.TrimSuffix(r.Host, ".")
		// RFC 7505 null MX: the domain accepts no mail
		if host == "" {
			continue
		}
		hosts = append(hosts, host)
	}
	return hosts, nil
}
