package resolver

import (
	"bytes"
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/haukened/rr-stub/internal/dns/common/log"
	"github.com/haukened/rr-stub/internal/dns/domain"
	"github.com/haukened/rr-stub/internal/dns/resolvconf"
)

// timeoutError satisfies net.Error with Timeout() true, standing in for a
// read deadline expiry.
type timeoutError struct{}

func (timeoutError) Error() string   { return "i/o timeout" }
func (timeoutError) Timeout() bool   { return true }
func (timeoutError) Temporary() bool { return true }

// scriptConn is a net.Conn that records writes and serves scripted replies;
// a nil reply simulates a receive timeout.
type scriptConn struct {
	writes  [][]byte
	replies [][]byte
	next    int
	closed  bool
}

func (c *scriptConn) Write(b []byte) (int, error) {
	c.writes = append(c.writes, append([]byte(nil), b...))
	return len(b), nil
}

func (c *scriptConn) Read(b []byte) (int, error) {
	if c.next >= len(c.replies) {
		return 0, timeoutError{}
	}
	reply := c.replies[c.next]
	c.next++
	if reply == nil {
		return 0, timeoutError{}
	}
	return copy(b, reply), nil
}

func (c *scriptConn) Close() error {
	c.closed = true
	return nil
}

func (c *scriptConn) LocalAddr() net.Addr              { return &net.UDPAddr{} }
func (c *scriptConn) RemoteAddr() net.Addr             { return &net.UDPAddr{} }
func (c *scriptConn) SetDeadline(time.Time) error      { return nil }
func (c *scriptConn) SetReadDeadline(time.Time) error  { return nil }
func (c *scriptConn) SetWriteDeadline(time.Time) error { return nil }

func testSeed(t *testing.T) *Seed {
	t.Helper()
	seed, err := NewSeed(SeedOptions{
		Source:  resolvconf.Source{Server: "127.0.0.1"},
		Timeout: 50 * time.Millisecond,
		Retries: 3,
	})
	require.NoError(t, err)
	return seed
}

// newTestResolver builds a resolver over a scripted connection with a
// deterministic id source, so the first transaction id is always 0x1234.
func newTestResolver(t *testing.T, replies [][]byte) (*Resolver, *scriptConn) {
	t.Helper()
	conn := &scriptConn{replies: replies}
	r, err := New(Options{
		Seed:   testSeed(t),
		Dial:   func(context.Context, string, string) (net.Conn, error) { return conn, nil },
		Logger: log.NewNoopLogger(),
		Rand:   bytes.NewReader(bytes.Repeat([]byte{0x12, 0x34}, 16)),
	})
	require.NoError(t, err)
	t.Cleanup(func() { r.Close() })
	return r, conn
}

// replyHeader builds a header-only response message.
func replyHeader(id uint16, flags uint16) []byte {
	return []byte{
		byte(id >> 8), byte(id),
		byte(flags >> 8), byte(flags),
		0, 0, 0, 0, 0, 0, 0, 0,
	}
}

func TestLookupRawIllegalDomain(t *testing.T) {
	tests := []struct {
		name   string
		domain string
	}{
		{"empty", ""},
		{"no dot", "foo"},
		{"colon", "example.com:53"},
		{"slash", "example.com/x"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, conn := newTestResolver(t, nil)
			_, err := r.LookupRaw(context.Background(), tt.domain, domain.RRTypeA)
			assert.True(t, errors.Is(err, domain.ErrIllegalDomain))
			assert.Empty(t, conn.writes, "an illegal domain must cause zero I/O")
		})
	}
}

func TestLookupRawTimeoutConsumesAllRetries(t *testing.T) {
	r, conn := newTestResolver(t, [][]byte{nil, nil, nil})

	_, err := r.LookupRaw(context.Background(), "www.example.com.", domain.RRTypeA)
	assert.True(t, errors.Is(err, domain.ErrTimeoutExpired))
	assert.Len(t, conn.writes, 3)
}

func TestLookupRawMismatchedIDs(t *testing.T) {
	wrong := replyHeader(0x1235, 0x8180)
	r, conn := newTestResolver(t, [][]byte{wrong, wrong, wrong})

	_, err := r.LookupRaw(context.Background(), "www.example.com.", domain.RRTypeA)
	assert.True(t, errors.Is(err, domain.ErrSequenceNumberMismatch))
	assert.Len(t, conn.writes, 3)
}

func TestLookupRawMismatchOutranksTimeout(t *testing.T) {
	// One mismatched reply among timeouts classifies the failure as a
	// sequence number mismatch.
	r, conn := newTestResolver(t, [][]byte{nil, replyHeader(0x4321, 0x8180), nil})

	_, err := r.LookupRaw(context.Background(), "www.example.com.", domain.RRTypeA)
	assert.True(t, errors.Is(err, domain.ErrSequenceNumberMismatch))
	assert.Len(t, conn.writes, 3)
}

func TestLookupRawMatchingReply(t *testing.T) {
	r, conn := newTestResolver(t, [][]byte{replyHeader(0x1234, 0x8180)})

	msg, err := r.LookupRaw(context.Background(), "www.example.com.", domain.RRTypeA)
	require.NoError(t, err)
	assert.Equal(t, uint16(0x1234), msg.Header.ID)
	assert.Len(t, conn.writes, 1)
}

func TestLookupRawRecoversAfterMismatch(t *testing.T) {
	r, conn := newTestResolver(t, [][]byte{
		replyHeader(0x9999, 0x8180),
		replyHeader(0x1234, 0x8180),
	})

	msg, err := r.LookupRaw(context.Background(), "www.example.com.", domain.RRTypeA)
	require.NoError(t, err)
	assert.Equal(t, uint16(0x1234), msg.Header.ID)
	assert.Len(t, conn.writes, 2)
}

func TestLookupRawMalformedReplyFailsWithoutRetry(t *testing.T) {
	r, conn := newTestResolver(t, [][]byte{{0x12, 0x34, 0x81}})

	_, err := r.LookupRaw(context.Background(), "www.example.com.", domain.RRTypeA)
	assert.True(t, errors.Is(err, domain.ErrFormatError))
	assert.Len(t, conn.writes, 1)
}

func TestLookupRawQueryWireFormat(t *testing.T) {
	r, conn := newTestResolver(t, [][]byte{replyHeader(0x1234, 0x8180)})

	_, err := r.LookupRaw(context.Background(), "www.example.com.", domain.RRTypeA)
	require.NoError(t, err)
	require.Len(t, conn.writes, 1)

	query := conn.writes[0]
	assert.Equal(t, []byte{0x12, 0x34}, query[0:2], "transaction id")
	assert.Equal(t, []byte{0x01, 0x00}, query[2:4], "RD set, AD clear")
	assert.Equal(t, []byte{0x00, 0x01}, query[4:6], "one question")
}

func TestLookupRawADSetsADBit(t *testing.T) {
	r, conn := newTestResolver(t, [][]byte{replyHeader(0x1234, 0x8180)})

	_, err := r.LookupRawAD(context.Background(), "www.example.com.", domain.RRTypeA)
	require.NoError(t, err)
	require.Len(t, conn.writes, 1)
	assert.Equal(t, []byte{0x01, 0x20}, conn.writes[0][2:4])
}

func TestLookupRawContextCanceled(t *testing.T) {
	r, conn := newTestResolver(t, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := r.LookupRaw(ctx, "www.example.com.", domain.RRTypeA)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, conn.writes)
}

func TestLookupEmptyAnswerSection(t *testing.T) {
	r, _ := newTestResolver(t, [][]byte{replyHeader(0x1234, 0x8180)})

	answers, err := r.Lookup(context.Background(), "www.example.com.", domain.RRTypeA)
	require.NoError(t, err)
	assert.NotNil(t, answers)
	assert.Empty(t, answers)
}

func TestLookupNameErrorNoRetry(t *testing.T) {
	r, conn := newTestResolver(t, [][]byte{replyHeader(0x1234, 0x8183)})

	_, err := r.Lookup(context.Background(), "no.such.example.com.", domain.RRTypeA)
	assert.True(t, errors.Is(err, domain.ErrNameError))
	assert.Len(t, conn.writes, 1, "an error rcode must not be retried")
}

func TestLookupRCodeMapping(t *testing.T) {
	tests := []struct {
		name  string
		flags uint16
		want  error
	}{
		{"FORMERR", 0x8181, domain.ErrFormatError},
		{"SERVFAIL", 0x8182, domain.ErrServerFailure},
		{"NXDOMAIN", 0x8183, domain.ErrNameError},
		{"NOTIMP", 0x8184, domain.ErrNotImplemented},
		{"REFUSED", 0x8185, domain.ErrOperationRefused},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, _ := newTestResolver(t, [][]byte{replyHeader(0x1234, tt.flags)})
			_, err := r.Lookup(context.Background(), "www.example.com.", domain.RRTypeA)
			assert.True(t, errors.Is(err, tt.want))
		})
	}
}

// answerRecord appends an uncompressed record to a response body.
func answerRecord(name []byte, typ uint16, rdata []byte) []byte {
	rr := append([]byte(nil), name...)
	rr = append(rr, byte(typ>>8), byte(typ))
	rr = append(rr, 0x00, 0x01) // class IN
	rr = append(rr, 0x00, 0x00, 0x00, 0x3C)
	rr = append(rr, byte(len(rdata)>>8), byte(len(rdata)))
	return append(rr, rdata...)
}

func TestLookupProjectsByTypeInWireOrder(t *testing.T) {
	fooCom := []byte{3, 'f', 'o', 'o', 3, 'c', 'o', 'm', 0}
	barCom := []byte{3, 'b', 'a', 'r', 3, 'c', 'o', 'm', 0}

	body := replyHeader(0x1234, 0x8180)
	body[7] = 3 // ANCOUNT
	body = append(body, answerRecord(fooCom, 1, []byte{192, 0, 2, 1})...)
	body = append(body, answerRecord(fooCom, 5, barCom)...)
	body = append(body, answerRecord(fooCom, 1, []byte{192, 0, 2, 2})...)

	r, _ := newTestResolver(t, [][]byte{body})
	answers, err := r.Lookup(context.Background(), "foo.com.", domain.RRTypeA)
	require.NoError(t, err)

	require.Len(t, answers, 2, "the CNAME must be filtered out")
	first, ok := answers[0].(domain.A)
	require.True(t, ok)
	second, ok := answers[1].(domain.A)
	require.True(t, ok)
	assert.Equal(t, "192.0.2.1", first.Addr.String())
	assert.Equal(t, "192.0.2.2", second.Addr.String())
}

func TestLookupAuthProjectsAuthority(t *testing.T) {
	fooCom := []byte{3, 'f', 'o', 'o', 3, 'c', 'o', 'm', 0}
	nsRec := []byte{3, 'n', 's', '1', 3, 'f', 'o', 'o', 3, 'c', 'o', 'm', 0}

	body := replyHeader(0x1234, 0x8180)
	body[9] = 1 // NSCOUNT
	body = append(body, answerRecord(fooCom, 2, nsRec)...)

	r, _ := newTestResolver(t, [][]byte{body})
	records, err := r.LookupAuth(context.Background(), "foo.com.", domain.RRTypeNS)
	require.NoError(t, err)

	require.Len(t, records, 1)
	ns, ok := records[0].(domain.NS)
	require.True(t, ok)
	assert.Equal(t, "ns1.foo.com.", ns.Target)
}

func TestTransactionIDSkipsRecentlyUsed(t *testing.T) {
	conn := &scriptConn{}
	r, err := New(Options{
		Seed:   testSeed(t),
		Dial:   func(context.Context, string, string) (net.Conn, error) { return conn, nil },
		Logger: log.NewNoopLogger(),
		Rand:   bytes.NewReader([]byte{0x12, 0x34, 0x12, 0x34, 0x56, 0x78}),
	})
	require.NoError(t, err)
	defer r.Close()

	first, err := r.transactionID()
	require.NoError(t, err)
	assert.Equal(t, uint16(0x1234), first)

	// The second draw collides with the first and is re-rolled.
	second, err := r.transactionID()
	require.NoError(t, err)
	assert.Equal(t, uint16(0x5678), second)
}

func TestNewRequiresSeed(t *testing.T) {
	_, err := New(Options{})
	assert.Error(t, err)
}
