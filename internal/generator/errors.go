package generator

import "errors"

// ErrInvalidCount is returned when asked for fewer than one candidate.
var ErrInvalidCount = errors.New("candidate count must be positive")
