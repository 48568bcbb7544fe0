package domain

// Header is the fixed 12-byte DNS message header. Section counts are not
// stored: they are derived from section lengths on encode and only drive
// decoding on receive.
type Header struct {
	ID    uint16
	Flags Flags
}

// Message is a decoded DNS message. Messages are immutable values; the
// sections preserve wire order.
type Message struct {
	Header     Header
	Questions  []Question
	Answers    []ResourceRecord
	Authority  []ResourceRecord
	Additional []ResourceRecord
}

// RCode returns the effective response code of the message, including any
// EDNS extension bits folded in by the decoder.
func (m Message) RCode() RCode {
	return m.Header.Flags.RCode
}

// OPT returns the EDNS OPT pseudo-record from the additional section, or
// nil if the message carries none.
func (m Message) OPT() *OPT {
	for _, rr := range m.Additional {
		if opt, ok := rr.Data.(OPT); ok {
			return &opt
		}
	}
	return nil
}
