package domain

// Flags holds the unpacked header flag word of a DNS message.
// Wire layout (high bit first): QR, OPCODE (4 bits), AA, TC, RD, RA,
// Z, AD, CD, RCODE (4 bits).
type Flags struct {
	Response           bool  // QR
	Opcode             uint8 // 0 = standard query
	Authoritative      bool  // AA
	Truncated          bool  // TC
	RecursionDesired   bool  // RD
	RecursionAvailable bool  // RA
	AuthenticData      bool  // AD
	CheckingDisabled   bool  // CD
	RCode              RCode // low 4 bits; extended via OPT on decode
}

// Encode packs the flags into the 16-bit header word.
// Only the low 4 bits of RCode fit in the header; the rest belong to
// the OPT extended RCODE and are dropped here.
func (f Flags) Encode() uint16 {
	var v uint16
	if f.Response {
		v |= 1 << 15
	}
	v |= uint16(f.Opcode&0x0F) << 11
	if f.Authoritative {
		v |= 1 << 10
	}
	if f.Truncated {
		v |= 1 << 9
	}
	if f.RecursionDesired {
		v |= 1 << 8
	}
	if f.RecursionAvailable {
		v |= 1 << 7
	}
	if f.AuthenticData {
		v |= 1 << 5
	}
	if f.CheckingDisabled {
		v |= 1 << 4
	}
	v |= uint16(f.RCode) & 0x0F
	return v
}

// DecodeFlags unpacks a 16-bit header flag word.
func DecodeFlags(v uint16) Flags {
	return Flags{
		Response:           v&(1<<15) != 0,
		Opcode:             uint8(v >> 11 & 0x0F),
		Authoritative:      v&(1<<10) != 0,
		Truncated:          v&(1<<9) != 0,
		RecursionDesired:   v&(1<<8) != 0,
		RecursionAvailable: v&(1<<7) != 0,
		AuthenticData:      v&(1<<5) != 0,
		CheckingDisabled:   v&(1<<4) != 0,
		RCode:              RCode(v & 0x0F),
	}
}
