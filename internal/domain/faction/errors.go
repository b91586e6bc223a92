package faction

import "errors"

var (
	ErrInvalidFaction   = errors.New("invalid faction")
	ErrDuplicateFaction = errors.New("duplicate faction")
)
