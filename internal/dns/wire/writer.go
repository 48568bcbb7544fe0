package wire

import (
	"bytes"
	"encoding/binary"
	"strings"

	"github.com/haukened/rr-stub/internal/dns/domain"
)

// builder accumulates an outgoing message. Queries are small, so the
// growable buffer is never a concern.
type builder struct {
	buf bytes.Buffer
}

func (b *builder) uint16(v uint16) {
	_ = binary.Write(&b.buf, binary.BigEndian, v)
}

// name writes a domain name as uncompressed length-prefixed labels ending
// in a zero byte. Compression is never emitted: the only name in a query
// is the question name, so there is no earlier suffix to share.
func (b *builder) name(name string) error {
	trimmed := strings.TrimSuffix(name, ".")
	if len(trimmed)+2 > 255 {
		return domain.Errorf(domain.IllegalDomain, "name %q exceeds 255 octets encoded", name)
	}
	if trimmed != "" {
		for _, label := range strings.Split(trimmed, ".") {
			if len(label) == 0 {
				return domain.Errorf(domain.IllegalDomain, "name %q has an empty label", name)
			}
			if len(label) > 63 {
				return domain.Errorf(domain.IllegalDomain, "label %q exceeds 63 octets", label)
			}
			b.buf.WriteByte(byte(len(label)))
			b.buf.WriteString(label)
		}
	}
	b.buf.WriteByte(0)
	return nil
}

func (b *builder) bytes() []byte {
	return b.buf.Bytes()
}
