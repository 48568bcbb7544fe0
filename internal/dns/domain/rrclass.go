package domain

// RRClass represents a DNS class. The client is IN-only: queries always
// encode class IN, and decoded classes are consumed without inspection,
// so no other values are modeled.
type RRClass uint16

// RRClassIN is the Internet class.
const RRClassIN RRClass = 1

// String returns the textual representation of the RRClass.
func (c RRClass) String() string {
	if c == RRClassIN {
		return "IN"
	}
	return "UNKNOWN"
}
