package narrative

import "errors"

var (
	ErrGeneratorUnavailable = errors.New("narrative generator unavailable")
	ErrMalformedResponse    = errors.New("malformed narrative response")
	ErrEmptyNarrative       = errors.New("empty narrative")
)
