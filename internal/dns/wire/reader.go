// Package wire implements the DNS wire format for the stub client: big-endian
// primitives over a flat byte slice, the domain name codec with compression
// pointer handling, and the full message codec (RFC 1035, OPT per RFC 6891).
package wire

import (
	"encoding/binary"

	"github.com/haukened/rr-stub/internal/dns/domain"
)

// reader is the decoder state: the full message bytes, an absolute cursor,
// and the pointer cache mapping absolute offsets to already-decoded name
// suffixes. UDP delivers the datagram whole, so decoding pulls from a flat
// slice rather than a stream.
type reader struct {
	data []byte
	off  int
	// names caches the decoded suffix starting at each offset, populated
	// left to right. Compression pointers must resolve through it, which
	// forces them to point strictly backward and bounds pointer chains.
	names map[int]string
}

func newReader(data []byte) *reader {
	return &reader{data: data, names: make(map[int]string)}
}

// pos returns the current absolute offset.
func (r *reader) pos() int {
	return r.off
}

// remaining reports how many bytes are left past the cursor.
func (r *reader) remaining() int {
	return len(r.data) - r.off
}

func (r *reader) uint8() (uint8, error) {
	if r.remaining() < 1 {
		return 0, domain.Errorf(domain.FormatError, "short read at offset %d", r.off)
	}
	v := r.data[r.off]
	r.off++
	return v, nil
}

func (r *reader) uint16() (uint16, error) {
	if r.remaining() < 2 {
		return 0, domain.Errorf(domain.FormatError, "short read at offset %d", r.off)
	}
	v := binary.BigEndian.Uint16(r.data[r.off:])
	r.off += 2
	return v, nil
}

func (r *reader) uint32() (uint32, error) {
	if r.remaining() < 4 {
		return 0, domain.Errorf(domain.FormatError, "short read at offset %d", r.off)
	}
	v := binary.BigEndian.Uint32(r.data[r.off:])
	r.off += 4
	return v, nil
}

// bytes returns a copy of the next n bytes and advances the cursor.
func (r *reader) bytes(n int) ([]byte, error) {
	if n < 0 || r.remaining() < n {
		return nil, domain.Errorf(domain.FormatError, "short read of %d bytes at offset %d", n, r.off)
	}
	out := make([]byte, n)
	copy(out, r.data[r.off:r.off+n])
	r.off += n
	return out, nil
}
