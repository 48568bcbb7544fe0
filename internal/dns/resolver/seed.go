// Package resolver implements the stub resolver: seeds, scoped socket
// ownership, the UDP query transaction loop, and the lookup API.
package resolver

import (
	"fmt"
	"net"
	"time"

	"github.com/haukened/rr-stub/internal/dns/resolvconf"
)

// Configuration defaults.
const (
	DefaultTimeout = 3 * time.Second
	DefaultRetries = 3 // total attempts, not additional attempts
	DefaultBufSize = 512
)

// SeedOptions configures a Seed.
type SeedOptions struct {
	// Source selects the upstream nameserver. The zero value reads the
	// first nameserver directive of /etc/resolv.conf.
	Source resolvconf.Source

	// Timeout bounds the wait for each receive attempt. Defaults to
	// DefaultTimeout.
	Timeout time.Duration

	// Retries is the total number of attempts per query. Defaults to
	// DefaultRetries.
	Retries int

	// BufSize is obsolete: it is validated and retained for compatibility
	// but never applied to the socket. Defaults to DefaultBufSize.
	BufSize int
}

// Seed is an immutable configuration snapshot: the resolved upstream
// endpoint plus the timeout and retry parameters. A Seed is safe to share
// and reuse across any number of resolver scopes.
type Seed struct {
	addr    *net.UDPAddr
	timeout time.Duration
	retries int
	bufSize int
}

// NewSeed resolves the configured nameserver source to a UDP endpoint and
// captures the transaction parameters.
func NewSeed(opts SeedOptions) (*Seed, error) {
	if opts.Timeout == 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.Retries == 0 {
		opts.Retries = DefaultRetries
	}
	if opts.BufSize == 0 {
		opts.BufSize = DefaultBufSize
	}
	if opts.Timeout < 0 {
		return nil, fmt.Errorf("timeout must be positive")
	}
	if opts.Retries < 1 {
		return nil, fmt.Errorf("retries must be at least 1")
	}
	if opts.BufSize < 1 {
		return nil, fmt.Errorf("bufsize must be at least 1")
	}

	addr, err := opts.Source.Endpoint()
	if err != nil {
		return nil, err
	}
	return &Seed{
		addr:    addr,
		timeout: opts.Timeout,
		retries: opts.Retries,
		bufSize: opts.BufSize,
	}, nil
}

// Addr returns the resolved upstream endpoint.
func (s *Seed) Addr() *net.UDPAddr { return s.addr }

// Timeout returns the per-attempt receive timeout.
func (s *Seed) Timeout() time.Duration { return s.timeout }

// Retries returns the total number of attempts per query.
func (s *Seed) Retries() int { return s.retries }

// BufSize returns the obsolete buffer size parameter.
func (s *Seed) BufSize() int { return s.bufSize }
