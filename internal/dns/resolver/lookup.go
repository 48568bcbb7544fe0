package resolver

import (
	"context"

	"github.com/haukened/rr-stub/internal/dns/domain"
)

// LookupRaw performs one query transaction and returns the full decoded
// message, whatever its response code.
func (r *Resolver) LookupRaw(ctx context.Context, name string, qtype domain.RRType) (domain.Message, error) {
	return r.exchange(ctx, name, qtype, false)
}

// LookupRawAD is LookupRaw with the AD bit set in the query, asking the
// upstream to report whether the answer was authenticated. Signatures are
// not verified client-side.
func (r *Resolver) LookupRawAD(ctx context.Context, name string, qtype domain.RRType) (domain.Message, error) {
	return r.exchange(ctx, name, qtype, true)
}

// Lookup queries and projects the answer section: a non-zero response code
// maps to its DNSError, otherwise the payloads of the answer records whose
// type equals qtype are returned in wire order. Records are deliberately
// not filtered by name.
func (r *Resolver) Lookup(ctx context.Context, name string, qtype domain.RRType) ([]domain.RData, error) {
	msg, err := r.LookupRaw(ctx, name, qtype)
	if err != nil {
		return nil, err
	}
	if err := domain.RCodeError(msg.RCode()); err != nil {
		return nil, err
	}
	return project(msg.Answers, qtype), nil
}

// LookupAuth is Lookup over the authority section instead of the answers.
func (r *Resolver) LookupAuth(ctx context.Context, name string, qtype domain.RRType) ([]domain.RData, error) {
	msg, err := r.LookupRaw(ctx, name, qtype)
	if err != nil {
		return nil, err
	}
	if err := domain.RCodeError(msg.RCode()); err != nil {
		return nil, err
	}
	return project(msg.Authority, qtype), nil
}

// project keeps the payloads of records matching the queried type,
// preserving wire order.
func project(records []domain.ResourceRecord, qtype domain.RRType) []domain.RData {
	out := make([]domain.RData, 0, len(records))
	for _, rr := range records {
		if rr.Type == qtype {
			out = append(out, rr.Data)
		}
	}
	return out
}
