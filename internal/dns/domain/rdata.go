package domain

import (
	"fmt"
	"net"
	"strings"
)

// RData is the typed payload of a resource record. Each known record type
// has its own variant; types the codec does not model individually are
// carried as Unknown with their raw bytes.
type RData interface {
	// RRType reports which record type the payload belongs to.
	RRType() RRType
	// String renders the payload in presentation form.
	String() string
}

// A is an IPv4 host address record payload.
type A struct {
	Addr net.IP
}

func (A) RRType() RRType   { return RRTypeA }
func (d A) String() string { return d.Addr.String() }

// AAAA is an IPv6 host address record payload.
type AAAA struct {
	Addr net.IP
}

func (AAAA) RRType() RRType   { return RRTypeAAAA }
func (d AAAA) String() string { return d.Addr.String() }

// NS names an authoritative name server.
type NS struct {
	Target string
}

func (NS) RRType() RRType   { return RRTypeNS }
func (d NS) String() string { return d.Target }

// CNAME names the canonical name of an alias.
type CNAME struct {
	Target string
}

func (CNAME) RRType() RRType   { return RRTypeCNAME }
func (d CNAME) String() string { return d.Target }

// PTR names the domain a reverse-mapping entry points at.
type PTR struct {
	Target string
}

func (PTR) RRType() RRType   { return RRTypePTR }
func (d PTR) String() string { return d.Target }

// DNAME names the target of a subtree redirection.
type DNAME struct {
	Target string
}

func (DNAME) RRType() RRType   { return RRTypeDNAME }
func (d DNAME) String() string { return d.Target }

// MX names a mail exchange and its preference.
type MX struct {
	Preference uint16
	Exchange   string
}

func (MX) RRType() RRType   { return RRTypeMX }
func (d MX) String() string { return fmt.Sprintf("%d %s", d.Preference, d.Exchange) }

// SOA carries the start-of-authority parameters of a zone.
type SOA struct {
	MName   string
	RName   string
	Serial  uint32
	Refresh uint32
	Retry   uint32
	Expire  uint32
	Minimum uint32
}

func (SOA) RRType() RRType { return RRTypeSOA }
func (d SOA) String() string {
	return fmt.Sprintf("%s %s %d %d %d %d %d",
		d.MName, d.RName, d.Serial, d.Refresh, d.Retry, d.Expire, d.Minimum)
}

// SRV locates a service endpoint.
type SRV struct {
	Priority uint16
	Weight   uint16
	Port     uint16
	Target   string
}

func (SRV) RRType() RRType { return RRTypeSRV }
func (d SRV) String() string {
	return fmt.Sprintf("%d %d %d %s", d.Priority, d.Weight, d.Port, d.Target)
}

// TXT carries one or more character strings. Wire boundaries between the
// strings are preserved, one element each.
type TXT struct {
	Strings []string
}

func (TXT) RRType() RRType { return RRTypeTXT }
func (d TXT) String() string {
	quoted := make([]string, len(d.Strings))
	for i, s := range d.Strings {
		quoted[i] = fmt.Sprintf("%q", s)
	}
	return strings.Join(quoted, " ")
}

// Unknown carries the raw payload of a record type the codec does not
// model. The numeric type code round-trips unchanged.
type Unknown struct {
	Code RRType
	Raw  []byte
}

func (d Unknown) RRType() RRType { return d.Code }
func (d Unknown) String() string { return fmt.Sprintf("\\# %d %x", len(d.Raw), d.Raw) }
