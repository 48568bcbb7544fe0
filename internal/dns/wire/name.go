package wire

import (
	"github.com/haukened/rr-stub/internal/dns/domain"
)

// maxNameWire is the largest encoded name, length prefixes and terminator
// included (RFC 1035 §2.3.4).
const maxNameWire = 255

// name decodes a domain name at the cursor, following compression
// pointers, and returns it in canonical dotted form with a trailing dot
// (the root name is "."). Every starting offset seen along the way is
// recorded in the pointer cache so later references resolve in one step.
func (r *reader) name() (string, error) {
	suffix, err := r.nameSuffix()
	if err != nil {
		return "", err
	}
	if suffix == "" {
		return ".", nil
	}
	return suffix, nil
}

// nameSuffix reads the labels from the cursor to the end of the name and
// returns them dot-joined with a trailing dot, or "" for the root.
//
// A compression pointer must hit an offset already present in the cache.
// The cache only ever holds offsets of names decoded earlier in the
// message, so pointers are forced to point strictly backward and a
// pointer loop is impossible: the looping offset would have to be its own
// antecedent.
func (r *reader) nameSuffix() (string, error) {
	start := r.pos()
	c, err := r.uint8()
	if err != nil {
		return "", err
	}
	switch {
	case c == 0:
		return "", nil
	case c&0xC0 == 0xC0:
		d, err := r.uint8()
		if err != nil {
			return "", err
		}
		target := int(c&0x3F)<<8 | int(d)
		suffix, ok := r.names[target]
		if !ok {
			return "", domain.Errorf(domain.FormatError,
				"compression pointer at offset %d to unresolved offset %d", start, target)
		}
		r.names[start] = suffix
		return suffix, nil
	case c&0xC0 != 0:
		// Top bits 10 and 01 are reserved label kinds.
		return "", domain.Errorf(domain.FormatError,
			"reserved label length 0x%02x at offset %d", c, start)
	default:
		label, err := r.bytes(int(c))
		if err != nil {
			return "", err
		}
		rest, err := r.nameSuffix()
		if err != nil {
			return "", err
		}
		suffix := string(label) + "." + rest
		// Encoded length of a dotted suffix is its string length plus the
		// terminating zero.
		if len(suffix)+1 > maxNameWire {
			return "", domain.Errorf(domain.FormatError,
				"name at offset %d exceeds %d octets", start, maxNameWire)
		}
		r.names[start] = suffix
		return suffix, nil
	}
}
