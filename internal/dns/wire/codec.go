package wire

import (
	"encoding/binary"
	"net"

	"github.com/haukened/rr-stub/internal/dns/common/log"
	"github.com/haukened/rr-stub/internal/dns/domain"
)

// Query is the encoder's input: one question plus the transaction id and
// the optional AD request bit.
type Query struct {
	ID            uint16
	Name          string
	Type          domain.RRType
	AuthenticData bool
}

// Codec encodes queries and decodes full DNS messages.
type Codec struct {
	logger log.Logger
}

// NewCodec creates a Codec using the provided logger.
func NewCodec(logger log.Logger) *Codec {
	return &Codec{logger: logger}
}

// EncodeQuery serializes a query message: header with the caller's id,
// RD set (AD when requested), a single IN-class question, and empty
// record sections. No OPT record is appended.
func (c *Codec) EncodeQuery(q Query) ([]byte, error) {
	flags := domain.Flags{
		RecursionDesired: true,
		AuthenticData:    q.AuthenticData,
	}

	var b builder
	b.uint16(q.ID)
	b.uint16(flags.Encode())
	b.uint16(1) // QDCOUNT
	b.uint16(0) // ANCOUNT
	b.uint16(0) // NSCOUNT
	b.uint16(0) // ARCOUNT

	if err := b.name(q.Name); err != nil {
		return nil, err
	}
	b.uint16(uint16(q.Type))
	b.uint16(uint16(domain.RRClassIN))

	return b.bytes(), nil
}

// DecodeMessage parses a complete DNS message. The header counts drive
// the section lengths; question and record classes are consumed and
// discarded. If an OPT record is present, its extended RCODE bits are
// folded into the header flags so Message.RCode reports the effective
// code.
func (c *Codec) DecodeMessage(data []byte) (domain.Message, error) {
	r := newReader(data)

	id, err := r.uint16()
	if err != nil {
		return domain.Message{}, err
	}
	flagsWord, err := r.uint16()
	if err != nil {
		return domain.Message{}, err
	}
	var counts [4]uint16
	for i := range counts {
		if counts[i], err = r.uint16(); err != nil {
			return domain.Message{}, err
		}
	}

	msg := domain.Message{
		Header: domain.Header{ID: id, Flags: domain.DecodeFlags(flagsWord)},
	}

	for i := 0; i < int(counts[0]); i++ {
		q, err := decodeQuestion(r)
		if err != nil {
			return domain.Message{}, err
		}
		msg.Questions = append(msg.Questions, q)
	}

	sections := []*[]domain.ResourceRecord{&msg.Answers, &msg.Authority, &msg.Additional}
	for s, section := range sections {
		for i := 0; i < int(counts[s+1]); i++ {
			rr, err := decodeRecord(r)
			if err != nil {
				return domain.Message{}, err
			}
			*section = append(*section, rr)
		}
	}

	if opt := msg.OPT(); opt != nil {
		msg.Header.Flags.RCode |= domain.RCode(opt.ExtRCode) << 4
	}

	c.logger.Debug(map[string]any{
		"id":    msg.Header.ID,
		"rcode": msg.RCode().String(),
		"qd":    len(msg.Questions),
		"an":    len(msg.Answers),
		"ns":    len(msg.Authority),
		"ar":    len(msg.Additional),
	}, "Decoded DNS message")

	return msg, nil
}

func decodeQuestion(r *reader) (domain.Question, error) {
	name, err := r.name()
	if err != nil {
		return domain.Question{}, err
	}
	qtype, err := r.uint16()
	if err != nil {
		return domain.Question{}, err
	}
	// QCLASS is consumed but not exposed; IN is assumed.
	if _, err := r.uint16(); err != nil {
		return domain.Question{}, err
	}
	return domain.Question{Name: name, Type: domain.RRType(qtype)}, nil
}

func decodeRecord(r *reader) (domain.ResourceRecord, error) {
	name, err := r.name()
	if err != nil {
		return domain.ResourceRecord{}, err
	}
	typ, err := r.uint16()
	if err != nil {
		return domain.ResourceRecord{}, err
	}

	if domain.RRType(typ) == domain.RRTypeOPT {
		opt, err := decodeOPT(r)
		if err != nil {
			return domain.ResourceRecord{}, err
		}
		return domain.ResourceRecord{Name: name, Type: domain.RRTypeOPT, Data: opt}, nil
	}

	// RRCLASS is consumed but not exposed; IN is assumed.
	if _, err := r.uint16(); err != nil {
		return domain.ResourceRecord{}, err
	}
	ttl, err := r.uint32()
	if err != nil {
		return domain.ResourceRecord{}, err
	}
	rdlen, err := r.uint16()
	if err != nil {
		return domain.ResourceRecord{}, err
	}
	data, err := decodeRData(r, domain.RRType(typ), int(rdlen))
	if err != nil {
		return domain.ResourceRecord{}, err
	}
	return domain.ResourceRecord{Name: name, Type: domain.RRType(typ), TTL: ttl, Data: data}, nil
}

// decodeOPT reads the OPT pseudo-record fields that replace class and TTL
// (RFC 6891 §6.1.2), then its options.
func decodeOPT(r *reader) (domain.OPT, error) {
	udpSize, err := r.uint16()
	if err != nil {
		return domain.OPT{}, err
	}
	extRCode, err := r.uint8()
	if err != nil {
		return domain.OPT{}, err
	}
	version, err := r.uint8()
	if err != nil {
		return domain.OPT{}, err
	}
	flagsWord, err := r.uint16()
	if err != nil {
		return domain.OPT{}, err
	}
	rdlen, err := r.uint16()
	if err != nil {
		return domain.OPT{}, err
	}
	raw, err := r.bytes(int(rdlen))
	if err != nil {
		return domain.OPT{}, err
	}
	options, err := decodeOptions(raw)
	if err != nil {
		return domain.OPT{}, err
	}
	return domain.OPT{
		UDPSize:  udpSize,
		ExtRCode: extRCode,
		Version:  version,
		DNSSECOK: flagsWord&0x8000 != 0,
		Options:  options,
	}, nil
}

// decodeOptions parses OPT RDATA as a concatenation of
// (code, length, payload) items until exhausted. Option payloads never
// contain compressed names, so they parse from the raw slice directly.
func decodeOptions(raw []byte) ([]domain.EDNSOption, error) {
	var options []domain.EDNSOption
	for i := 0; i < len(raw); {
		if len(raw)-i < 4 {
			return nil, domain.Errorf(domain.FormatError, "truncated EDNS option header")
		}
		code := binary.BigEndian.Uint16(raw[i : i+2])
		length := int(binary.BigEndian.Uint16(raw[i+2 : i+4]))
		i += 4
		if length > len(raw)-i {
			return nil, domain.Errorf(domain.FormatError, "EDNS option %d overruns RDATA", code)
		}
		payload := raw[i : i+length]
		i += length

		opt, err := decodeOption(code, payload)
		if err != nil {
			return nil, err
		}
		options = append(options, opt)
	}
	return options, nil
}

func decodeOption(code uint16, payload []byte) (domain.EDNSOption, error) {
	if code != domain.OptionCodeClientSubnet {
		return domain.UnknownOption{Code: code, Data: append([]byte(nil), payload...)}, nil
	}
	if len(payload) < 4 {
		return nil, domain.Errorf(domain.FormatError, "client subnet option too short")
	}
	family := binary.BigEndian.Uint16(payload[0:2])
	var width int
	switch family {
	case domain.SubnetFamilyIPv4:
		width = net.IPv4len
	case domain.SubnetFamilyIPv6:
		width = net.IPv6len
	default:
		return domain.UnknownOption{Code: code, Data: append([]byte(nil), payload...)}, nil
	}
	addrBytes := payload[4:]
	if len(addrBytes) > width {
		return nil, domain.Errorf(domain.FormatError,
			"client subnet address of %d bytes exceeds family width %d", len(addrBytes), width)
	}
	// Left-aligned, right-zero-padded to the family's full width.
	addr := make(net.IP, width)
	copy(addr, addrBytes)
	return domain.ClientSubnet{
		Family:       family,
		SourcePrefix: payload[2],
		ScopePrefix:  payload[3],
		Address:      addr,
	}, nil
}

// decodeRData parses typed record payloads. Name-bearing types decode
// through the message-wide reader so compression pointers into earlier
// parts of the message resolve; each must consume exactly rdlen bytes.
func decodeRData(r *reader, typ domain.RRType, rdlen int) (domain.RData, error) {
	if rdlen > r.remaining() {
		return nil, domain.Errorf(domain.FormatError, "RDATA of %d bytes overruns message", rdlen)
	}
	end := r.pos() + rdlen

	switch typ {
	case domain.RRTypeA:
		if rdlen != net.IPv4len {
			return nil, domain.Errorf(domain.FormatError, "A RDATA of %d bytes", rdlen)
		}
		b, err := r.bytes(rdlen)
		if err != nil {
			return nil, err
		}
		return domain.A{Addr: net.IP(b)}, nil

	case domain.RRTypeAAAA:
		if rdlen != net.IPv6len {
			return nil, domain.Errorf(domain.FormatError, "AAAA RDATA of %d bytes", rdlen)
		}
		b, err := r.bytes(rdlen)
		if err != nil {
			return nil, err
		}
		return domain.AAAA{Addr: net.IP(b)}, nil

	case domain.RRTypeNS, domain.RRTypeCNAME, domain.RRTypePTR, domain.RRTypeDNAME:
		target, err := r.name()
		if err != nil {
			return nil, err
		}
		if err := checkConsumed(r, end, typ); err != nil {
			return nil, err
		}
		switch typ {
		case domain.RRTypeNS:
			return domain.NS{Target: target}, nil
		case domain.RRTypeCNAME:
			return domain.CNAME{Target: target}, nil
		case domain.RRTypePTR:
			return domain.PTR{Target: target}, nil
		default:
			return domain.DNAME{Target: target}, nil
		}

	case domain.RRTypeMX:
		pref, err := r.uint16()
		if err != nil {
			return nil, err
		}
		exchange, err := r.name()
		if err != nil {
			return nil, err
		}
		if err := checkConsumed(r, end, typ); err != nil {
			return nil, err
		}
		return domain.MX{Preference: pref, Exchange: exchange}, nil

	case domain.RRTypeSOA:
		mname, err := r.name()
		if err != nil {
			return nil, err
		}
		rname, err := r.name()
		if err != nil {
			return nil, err
		}
		var fields [5]uint32
		for i := range fields {
			if fields[i], err = r.uint32(); err != nil {
				return nil, err
			}
		}
		if err := checkConsumed(r, end, typ); err != nil {
			return nil, err
		}
		return domain.SOA{
			MName:   mname,
			RName:   rname,
			Serial:  fields[0],
			Refresh: fields[1],
			Retry:   fields[2],
			Expire:  fields[3],
			Minimum: fields[4],
		}, nil

	case domain.RRTypeSRV:
		var fields [3]uint16
		var err error
		for i := range fields {
			if fields[i], err = r.uint16(); err != nil {
				return nil, err
			}
		}
		target, err := r.name()
		if err != nil {
			return nil, err
		}
		if err := checkConsumed(r, end, typ); err != nil {
			return nil, err
		}
		return domain.SRV{
			Priority: fields[0],
			Weight:   fields[1],
			Port:     fields[2],
			Target:   target,
		}, nil

	case domain.RRTypeTXT:
		var texts []string
		for r.pos() < end {
			l, err := r.uint8()
			if err != nil {
				return nil, err
			}
			if r.pos()+int(l) > end {
				return nil, domain.Errorf(domain.FormatError, "TXT string overruns RDATA")
			}
			s, err := r.bytes(int(l))
			if err != nil {
				return nil, err
			}
			texts = append(texts, string(s))
		}
		return domain.TXT{Strings: texts}, nil

	default:
		raw, err := r.bytes(rdlen)
		if err != nil {
			return nil, err
		}
		return domain.Unknown{Code: typ, Raw: raw}, nil
	}
}

func checkConsumed(r *reader, end int, typ domain.RRType) error {
	if r.pos() != end {
		return domain.Errorf(domain.FormatError,
			"%s RDATA length disagrees with its content", typ)
	}
	return nil
}
