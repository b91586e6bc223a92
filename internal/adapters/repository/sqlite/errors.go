package sqlite

import "errors"

var (
	ErrPathRequired = errors.New("storage path is required")
	ErrCorruptRow   = errors.New("corrupt row")
)
