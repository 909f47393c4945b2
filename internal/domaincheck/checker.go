package domaincheck

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/dsergienko/leadgate/pkg/logging"
)

var (
	// ErrNoMXRecords is returned when the email's domain resolves to no
	// mail exchanger. Any transport failure is folded into the same
	// outcome: the submission gate treats both as "domain invalid".
	ErrNoMXRecords = errors.New("domaincheck: domain has no MX records")

	// ErrMalformedEmail is returned when no domain can be extracted.
	ErrMalformedEmail = errors.New("domaincheck: malformed email address")
)

// Checker is the email-domain gate consumed by the submission flow.
type Checker interface {
	Check(ctx context.Context, email string) error
}

// MXChecker verifies that an email's domain has at least one MX record.
type MXChecker struct {
	resolver *net.Resolver
	timeout  time.Duration
	logger   *logging.Logger
}

// NewMXChecker creates a checker backed by the default DNS resolver.
func NewMXChecker(timeout time.Duration, logger *logging.Logger) *MXChecker {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &MXChecker{
		resolver: net.DefaultResolver,
		timeout:  timeout,
		logger:   logger,
	}
}

// Check returns nil when the domain accepts mail, ErrNoMXRecords otherwise.
func (c *MXChecker) Check(ctx context.Context, email string) error {
	at := strings.LastIndex(email, "@")
	if at < 0 || at == len(email)-1 {
		return ErrMalformedEmail
	}
	domain := email[at+1:]

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	records, err := c.resolver.LookupMX(ctx, domain)
	if err != nil {
		c.logger.Debug("mx lookup failed", "domain", domain, "error", err)
		return fmt.Errorf("%w: %s", ErrNoMXRecords, domain)
	}
	if len(records) == 0 {
		return fmt.Errorf("%w: %s", ErrNoMXRecords, domain)
	}
	return nil
}
