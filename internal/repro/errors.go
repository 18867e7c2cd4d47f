package repro

import (
	"errors"
	"fmt"
)

// ErrUnseeded is matched by errors.Is for any draw attempted before SetSeed.
var ErrUnseeded = errors.New("random context has no seed")

// ReproducibilityError reports a draw that could not be made reproducible.
type ReproducibilityError struct {
	// Op names the draw that was refused.
	Op string
}

func (e *ReproducibilityError) Error() string {
	return fmt.Sprintf("%s: seed must be set before drawing random values", e.Op)
}

// Is reports ErrUnseeded as the matching sentinel.
func (e *ReproducibilityError) Is(target error) bool {
	return target == ErrUnseeded
}

// IsReproducibilityError returns true if err is, or wraps, a ReproducibilityError.
func IsReproducibilityError(err error) bool {
	var re *ReproducibilityError
	return errors.As(err, &re)
}
