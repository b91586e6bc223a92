package repository

// Option applies a configuration option to the TreapRanking.
type Option func(*TreapRanking)

// WithPrioritySource replaces the random treap priority source, mostly for
// reproducible tests.
func WithPrioritySource(src func() uint64) Option {
	return func(r *TreapRanking) {
		if src != nil {
			r.prioSrc = src
		}
	}
}
