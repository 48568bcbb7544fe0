package resolver

// WithResolver opens a resolver for the seed, runs fn with it, and closes
// the socket on every exit path, including panics and early returns.
func WithResolver(seed *Seed, fn func(*Resolver) error) error {
	r, err := New(Options{Seed: seed})
	if err != nil {
		return err
	}
	defer r.Close()
	return fn(r)
}

// WithResolvers opens one resolver per seed, runs fn with all of them, and
// closes every socket on exit. If any open fails, the already-opened
// resolvers are closed before the failure is surfaced. The resolvers are
// independent; each may be used from its own goroutine.
func WithResolvers(seeds []*Seed, fn func([]*Resolver) error) error {
	resolvers := make([]*Resolver, 0, len(seeds))
	defer func() {
		for _, r := range resolvers {
			r.Close()
		}
	}()

	for _, seed := range seeds {
		r, err := New(Options{Seed: seed})
		if err != nil {
			return err
		}
		resolvers = append(resolvers, r)
	}
	return fn(resolvers)
}
