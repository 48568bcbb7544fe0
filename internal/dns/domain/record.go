package domain

import "fmt"

// ResourceRecord represents a single decoded DNS resource record.
// The class is consumed and discarded on decode (IN is assumed), so it is
// not carried here. For the OPT pseudo-record, TTL is zero and the fields
// that normally occupy the class and TTL slots live inside the OPT RData.
type ResourceRecord struct {
	Name string
	Type RRType
	TTL  uint32
	Data RData
}

// String renders the record in a zone-file-like presentation form.
func (rr ResourceRecord) String() string {
	return fmt.Sprintf("%s\t%d\tIN\t%s\t%s", rr.Name, rr.TTL, rr.Type, rr.Data)
}
