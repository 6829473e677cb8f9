package service

import "errors"

// ErrNotFound is returned for unknown candidate ids.
var ErrNotFound = errors.New("candidate not found")
