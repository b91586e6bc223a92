package sqlite

import "github.com/okian/mercwork/pkg/logger"

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the store's logger.
func WithLogger(l logger.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.log = l
		}
	}
}
