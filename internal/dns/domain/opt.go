package domain

import (
	"fmt"
	"net"
)

// OPT is the EDNS(0) pseudo-record payload (RFC 6891). It repurposes the
// class and TTL slots of a normal record: the class carries the sender's
// UDP payload size and the TTL carries the extended RCODE, version, and
// flags word.
type OPT struct {
	UDPSize  uint16
	ExtRCode uint8
	Version  uint8
	DNSSECOK bool // DO, bit 15 of the flags word
	Options  []EDNSOption
}

func (OPT) RRType() RRType { return RRTypeOPT }

func (d OPT) String() string {
	return fmt.Sprintf("udp=%d extrcode=%d version=%d do=%t options=%d",
		d.UDPSize, d.ExtRCode, d.Version, d.DNSSECOK, len(d.Options))
}

// EDNS option codes the codec models individually.
const (
	OptionCodeClientSubnet uint16 = 8 // RFC 7871
)

// EDNSOption is one option item inside an OPT record's RDATA.
type EDNSOption interface {
	// OptionCode reports the option's assigned code.
	OptionCode() uint16
	// String renders the option for diagnostics.
	String() string
}

// Address family values for the client subnet option (RFC 7871 §6).
const (
	SubnetFamilyIPv4 uint16 = 1
	SubnetFamilyIPv6 uint16 = 2
)

// ClientSubnet is the EDNS client subnet option (RFC 7871). The address is
// right-zero-padded to the full width of its family.
type ClientSubnet struct {
	Family       uint16
	SourcePrefix uint8
	ScopePrefix  uint8
	Address      net.IP
}

func (ClientSubnet) OptionCode() uint16 { return OptionCodeClientSubnet }

func (o ClientSubnet) String() string {
	return fmt.Sprintf("subnet %s/%d scope %d", o.Address, o.SourcePrefix, o.ScopePrefix)
}

// UnknownOption carries an EDNS option the codec does not model.
type UnknownOption struct {
	Code uint16
	Data []byte
}

func (o UnknownOption) OptionCode() uint16 { return o.Code }

func (o UnknownOption) String() string {
	return fmt.Sprintf("option %d (%d bytes)", o.Code, len(o.Data))
}
