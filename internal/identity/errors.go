package identity

import (
	"errors"
	"fmt"
)

// DecodeError reports a key that does not parse as an identity.
type DecodeError struct {
	Key     string
	Field   string
	Message string
}

func (e *DecodeError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("decode %q: %s: %s", e.Key, e.Field, e.Message)
	}
	return fmt.Sprintf("decode %q: %s", e.Key, e.Message)
}

// IsDecodeError returns true if err is, or wraps, a DecodeError.
func IsDecodeError(err error) bool {
	var de *DecodeError
	return errors.As(err, &de)
}

// InvalidError reports an identity that cannot be encoded.
type InvalidError struct {
	Field   string
	Message string
}

func (e *InvalidError) Error() string {
	return fmt.Sprintf("invalid identity: %s: %s", e.Field, e.Message)
}
