package corrupt

import (
	"errors"
	"fmt"
)

var (
	// ErrNotImplemented is returned for declared kinds with no strategy yet.
	ErrNotImplemented = errors.New("corruption kind not implemented")

	// ErrUnknownApplicability is returned when a strategy reports an
	// applicability outside the closed set.
	ErrUnknownApplicability = errors.New("unknown applicability")
)

// ConfigErrorCode categorizes configuration errors.
type ConfigErrorCode string

const (
	// ErrCodeRowFraction indicates a row fraction outside [0, 1].
	ErrCodeRowFraction ConfigErrorCode = "INVALID_ROW_FRACTION"

	// ErrCodeColumnFraction indicates a column fraction outside [0, 1].
	ErrCodeColumnFraction ConfigErrorCode = "INVALID_COLUMN_FRACTION"

	// ErrCodeOptions indicates inconsistent strategy options.
	ErrCodeOptions ConfigErrorCode = "INVALID_OPTIONS"

	// ErrCodeNoTarget indicates a label error on a table without a target column.
	ErrCodeNoTarget ConfigErrorCode = "NO_TARGET"
)

// ConfigError reports a corruption configuration that can never run.
type ConfigError struct {
	Code    ConfigErrorCode
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// IsConfigError returns true if err is, or wraps, a ConfigError.
func IsConfigError(err error) bool {
	var ce *ConfigError
	return errors.As(err, &ce)
}

func newConfigError(code ConfigErrorCode, format string, args ...any) *ConfigError {
	return &ConfigError{Code: code, Message: fmt.Sprintf(format, args...)}
}
