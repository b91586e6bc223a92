package narrative

import (
	"net/http"
	"time"

	"github.com/okian/mercwork/pkg/logger"
)

// Option configures an HTTPGenerator.
type Option func(*HTTPGenerator)

// WithTimeout bounds each generator call.
func WithTimeout(d time.Duration) Option {
	return func(g *HTTPGenerator) {
		if d > 0 {
			g.timeout = d
		}
	}
}

// WithHTTPClient replaces the default client.
func WithHTTPClient(c *http.Client) Option {
	return func(g *HTTPGenerator) {
		if c != nil {
			g.client = c
		}
	}
}

// WithLogger sets the generator's logger.
func WithLogger(l logger.Logger) Option {
	return func(g *HTTPGenerator) {
		if l != nil {
			g.log = l
		}
	}
}
