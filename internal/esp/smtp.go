package esp

import (
	"context"
	"fmt"
	"net"
	"net/smtp"
	"time"

	"github.com/ignite/deliverability-engine/internal/pkg/logger"
)

// SMTPSessionChecker answers "can we open a transport session" by greeting
// the domain's preferred mail exchanger and quitting. No mail is sent.
type SMTPSessionChecker struct {
	lookup      MXLookupFunc
	port        string
	heloName    string
	dialTimeout time.Duration
}

// NewSMTPSessionChecker creates a checker on the system resolver.
func NewSMTPSessionChecker(port int, heloName string, dialTimeout time.Duration) *SMTPSessionChecker {
	resolver := &net.Resolver{}
	return newSMTPSessionChecker(resolver.LookupMX, port, heloName, dialTimeout)
}

func newSMTPSessionChecker(lookup MXLookupFunc, port int, heloName string, dialTimeout time.Duration) *SMTPSessionChecker {
	if port == 0 {
		port = 25
	}
	if heloName == "" {
		heloName = "localhost"
	}
	if dialTimeout <= 0 {
		dialTimeout = 10 * time.Second
	}
	return &SMTPSessionChecker{
		lookup:      lookup,
		port:        fmt.Sprint(port),
		heloName:    heloName,
		dialTimeout: dialTimeout,
	}
}

// CanConnect tries each exchanger in preference order and succeeds on the
// first completed EHLO/QUIT exchange. A domain with no exchangers is
// (false, nil); when every host fails the last error is returned.
func (c *SMTPSessionChecker) CanConnect(ctx context.Context, name string) (bool, error) {
	hosts, err := lookupHosts(ctx, c.lookup, c.dialTimeout, name)
	if err != nil {
		return false, err
	}
	if len(hosts) == 0 {
		return false, nil
	}

	var lastErr error
	for _, host := range hosts {
		if err := c.greet(ctx, host); err != nil {
			logger.Debug("smtp greeting failed", "host", host, "error", err)
			lastErr = err
			continue
		}
		return true, nil
	}
	return false, lastErr
}

func (c *SMTPSessionChecker) greet(ctx context.Context, host string) error {
	addr := net.JoinHostPort(host, c.port)
	dialer := &net.Dialer{Timeout: c.dialTimeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("SMTP connect to %s: %w", addr, err)
	}
	_ = conn.SetDeadline(time.Now().Add(c.dialTimeout))

	client, err := smtp.NewClient(conn, host)
	if err != nil {
		conn.Close()
		return fmt.Errorf("SMTP client: %w", err)
	}
	defer client.Close()

	if err := client.Hello(c.heloName); err != nil {
		return fmt.Errorf("EHLO: %w", err)
	}
	if err := client.Quit(); err != nil {
		return fmt.Errorf("QUIT: %w", err)
	}
	return nil
}
