package repository

import "errors"

// Sentinel kinds for ranking errors.
var (
	ErrNotFound     = errors.New("requester not ranked")
	ErrInvalidLimit = errors.New("invalid leaderboard limit")
)
