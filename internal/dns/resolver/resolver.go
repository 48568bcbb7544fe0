package resolver

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"io"
	"net"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/haukened/rr-stub/internal/dns/common/log"
	"github.com/haukened/rr-stub/internal/dns/domain"
	"github.com/haukened/rr-stub/internal/dns/wire"
)

// maxDatagram bounds a received DNS message; EDNS answers can exceed the
// traditional 512 bytes, so the receive buffer covers the UDP maximum.
const maxDatagram = 65535

// recentIDCap bounds the set of transaction ids considered recently used.
const recentIDCap = 1024

// DialFunc establishes a network connection. It matches the shape of
// net.Dialer's DialContext and exists so tests can substitute a fake
// connection.
type DialFunc func(ctx context.Context, network, address string) (net.Conn, error)

// Options configures a Resolver. Only Seed is required.
type Options struct {
	Seed   *Seed
	Dial   DialFunc
	Logger log.Logger
	Rand   io.Reader // transaction id entropy; defaults to crypto/rand
}

// Resolver owns a single connected UDP socket to the upstream nameserver.
//
// A Resolver is NOT safe for concurrent use: its operations share one
// socket and must be serialized by the caller. Hand a distinct Resolver to
// each goroutine that needs parallel resolution (see WithResolvers).
type Resolver struct {
	conn   net.Conn
	seed   *Seed
	codec  *wire.Codec
	logger log.Logger
	rng    io.Reader
	recent *lru.Cache[uint16, struct{}]
}

// New opens a connected UDP socket to the seed's endpoint and returns the
// Resolver owning it. Callers are responsible for Close; prefer
// WithResolver, which scopes the socket lifetime for you.
func New(opts Options) (*Resolver, error) {
	if opts.Seed == nil {
		return nil, fmt.Errorf("seed is required")
	}
	if opts.Dial == nil {
		opts.Dial = (&net.Dialer{}).DialContext
	}
	if opts.Logger == nil {
		opts.Logger = log.GetLogger()
	}
	if opts.Rand == nil {
		opts.Rand = rand.Reader
	}

	conn, err := opts.Dial(context.Background(), "udp", opts.Seed.Addr().String())
	if err != nil {
		return nil, fmt.Errorf("connecting to nameserver %s: %w", opts.Seed.Addr(), err)
	}

	recent, err := lru.New[uint16, struct{}](recentIDCap)
	if err != nil {
		conn.Close()
		return nil, err
	}

	return &Resolver{
		conn:   conn,
		seed:   opts.Seed,
		codec:  wire.NewCodec(opts.Logger),
		logger: opts.Logger,
		rng:    opts.Rand,
		recent: recent,
	}, nil
}

// Close releases the resolver's socket. In-flight datagrams arriving after
// close are discarded by the OS.
func (r *Resolver) Close() error {
	return r.conn.Close()
}

// transactionID draws a uniformly distributed 16-bit id, skipping ids the
// resolver issued recently so rapid consecutive queries on one socket do
// not share an id with a still-wandering reply.
func (r *Resolver) transactionID() (uint16, error) {
	var buf [2]byte
	var id uint16
	for attempt := 0; ; attempt++ {
		if _, err := io.ReadFull(r.rng, buf[:]); err != nil {
			return 0, fmt.Errorf("generating transaction id: %w", err)
		}
		id = binary.BigEndian.Uint16(buf[:])
		if !r.recent.Contains(id) || attempt >= 8 {
			break
		}
	}
	r.recent.Add(id, struct{}{})
	return id, nil
}

// exchange runs the query transaction: encode once, then send and await a
// matching reply up to the seed's retry budget. Timeouts and id-mismatched
// datagrams each consume one attempt; decode failures and socket errors
// surface immediately without retry.
func (r *Resolver) exchange(ctx context.Context, name string, qtype domain.RRType, authenticData bool) (domain.Message, error) {
	if err := domain.CheckName(name); err != nil {
		return domain.Message{}, err
	}

	id, err := r.transactionID()
	if err != nil {
		return domain.Message{}, err
	}
	query, err := r.codec.EncodeQuery(wire.Query{
		ID:            id,
		Name:          name,
		Type:          qtype,
		AuthenticData: authenticData,
	})
	if err != nil {
		return domain.Message{}, err
	}

	buf := make([]byte, maxDatagram)
	mismatched := false

	for attempt := 0; attempt < r.seed.Retries(); attempt++ {
		if err := ctx.Err(); err != nil {
			return domain.Message{}, err
		}

		if _, err := r.conn.Write(query); err != nil {
			return domain.Message{}, fmt.Errorf("sending query: %w", err)
		}

		deadline := time.Now().Add(r.seed.Timeout())
		if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
			deadline = d
		}
		if err := r.conn.SetReadDeadline(deadline); err != nil {
			return domain.Message{}, fmt.Errorf("arming receive timeout: %w", err)
		}

		n, err := r.conn.Read(buf)
		if err != nil {
			if netErr, ok := err.(net.Error); ok && netErr.Timeout() {
				if ctxErr := ctx.Err(); ctxErr != nil {
					return domain.Message{}, ctxErr
				}
				r.logger.Debug(map[string]any{
					"id":      id,
					"attempt": attempt + 1,
					"name":    name,
				}, "Receive attempt timed out")
				continue
			}
			return domain.Message{}, fmt.Errorf("receiving response: %w", err)
		}

		msg, err := r.codec.DecodeMessage(buf[:n])
		if err != nil {
			return domain.Message{}, err
		}
		if msg.Header.ID != id {
			mismatched = true
			r.logger.Debug(map[string]any{
				"want":    id,
				"got":     msg.Header.ID,
				"attempt": attempt + 1,
			}, "Discarding response with mismatched id")
			continue
		}
		return msg, nil
	}

	if mismatched {
		return domain.Message{}, domain.Errorf(domain.SequenceNumberMismatch,
			"no reply with id %d within %d attempts", id, r.seed.Retries())
	}
	return domain.Message{}, domain.Errorf(domain.TimeoutExpired,
		"no reply within %d attempts of %s", r.seed.Retries(), r.seed.Timeout())
}
