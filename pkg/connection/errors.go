package connection

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/pengdows/pengdows.crud-sub014/pkg/dbcapabilities"
)

// Standard connection errors
var (
	// ErrConnectionFailed is returned when the initial probe connection
	// cannot be opened for a recognized product.
	ErrConnectionFailed = errors.New("connection failed")

	// ErrAcquisitionFailed is returned when a GetConnection call cannot
	// obtain a connection.
	ErrAcquisitionFailed = errors.New("connection acquisition failed")

	// ErrAcquisitionTimeout is the timeout sub-kind of ErrAcquisitionFailed.
	ErrAcquisitionTimeout = errors.New("connection acquisition timed out")

	// ErrInvalidOperation is returned for contract violations such as
	// re-setting the connection string or using a closed manager.
	ErrInvalidOperation = errors.New("invalid operation")

	// ErrInvalidConfiguration is returned when the manager configuration
	// is invalid.
	ErrInvalidConfiguration = errors.New("invalid configuration")
)

// ConnectionFailedError wraps a fatal initialization open failure.
type ConnectionFailedError struct {
	Product dbcapabilities.Product
	DSN     string
	Cause   error
}

// Error implements the error interface.
func (e *ConnectionFailedError) Error() string {
	return fmt.Sprintf("failed to connect to %s at %s: %v", e.Product, e.DSN, e.Cause)
}

// Unwrap returns the underlying error.
func (e *ConnectionFailedError) Unwrap() error {
	return e.Cause
}

// Is checks if the error is ErrConnectionFailed.
func (e *ConnectionFailedError) Is(target error) bool {
	if errors.Is(target, ErrConnectionFailed) {
		return true
	}
	return errors.Is(e.Cause, target)
}

// NewConnectionFailedError creates a new ConnectionFailedError. The DSN is
// stored redacted by callers.
func NewConnectionFailedError(product dbcapabilities.Product, dsn string, cause error) *ConnectionFailedError {
	return &ConnectionFailedError{Product: product, DSN: dsn, Cause: cause}
}

// AcquisitionError wraps a GetConnection failure. Timeout distinguishes
// timeouts from generic failures so callers and counters can separate them.
type AcquisitionError struct {
	Purpose Purpose
	Timeout bool
	Cause   error
}

// Error implements the error interface.
func (e *AcquisitionError) Error() string {
	if e.Timeout {
		return fmt.Sprintf("timed out acquiring %s connection: %v", strings.ToLower(e.Purpose.String()), e.Cause)
	}
	return fmt.Sprintf("failed to acquire %s connection: %v", strings.ToLower(e.Purpose.String()), e.Cause)
}

// Unwrap returns the underlying error.
func (e *AcquisitionError) Unwrap() error {
	return e.Cause
}

// Is checks if the error is ErrAcquisitionFailed, or ErrAcquisitionTimeout
// for the timeout sub-kind.
func (e *AcquisitionError) Is(target error) bool {
	if errors.Is(target, ErrAcquisitionFailed) {
		return true
	}
	if e.Timeout && errors.Is(target, ErrAcquisitionTimeout) {
		return true
	}
	return errors.Is(e.Cause, target)
}

// NewAcquisitionError creates a new AcquisitionError, classifying the cause
// as a timeout or not.
func NewAcquisitionError(purpose Purpose, cause error) *AcquisitionError {
	return &AcquisitionError{Purpose: purpose, Timeout: IsTimeout(cause), Cause: cause}
}

// InvalidOperationError is returned for contract violations.
type InvalidOperationError struct {
	Operation string
	Reason    string
}

// Error implements the error interface.
func (e *InvalidOperationError) Error() string {
	return fmt.Sprintf("invalid operation %s: %s", e.Operation, e.Reason)
}

// Is checks if the error is ErrInvalidOperation.
func (e *InvalidOperationError) Is(target error) bool {
	return errors.Is(target, ErrInvalidOperation)
}

// NewInvalidOperationError creates a new InvalidOperationError.
func NewInvalidOperationError(operation, reason string) *InvalidOperationError {
	return &InvalidOperationError{Operation: operation, Reason: reason}
}

// ConfigurationError is returned when a Config field is unusable.
type ConfigurationError struct {
	Field  string
	Reason string
}

// Error implements the error interface.
func (e *ConfigurationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("invalid configuration: field '%s': %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("invalid configuration: %s", e.Reason)
}

// Is checks if the error is ErrInvalidConfiguration.
func (e *ConfigurationError) Is(target error) bool {
	return errors.Is(target, ErrInvalidConfiguration)
}

// NewConfigurationError creates a new ConfigurationError.
func NewConfigurationError(field, reason string) *ConfigurationError {
	return &ConfigurationError{Field: field, Reason: reason}
}

// WrapAcquisition wraps an error as an AcquisitionError.
// If the error is already an AcquisitionError, it returns it as-is.
func WrapAcquisition(purpose Purpose, err error) error {
	if err == nil {
		return nil
	}

	// Don't double-wrap
	var acqErr *AcquisitionError
	if errors.As(err, &acqErr) {
		return err
	}

	return NewAcquisitionError(purpose, err)
}

// IsTimeout classifies an error as a timeout. It recognizes context
// deadlines, net.Error timeouts, and the timeout spellings drivers put in
// their error strings.
func IsTimeout(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "timeout") || strings.Contains(msg, "timed out")
}

// IsAcquisitionError checks if an error came from a failed acquisition.
func IsAcquisitionError(err error) bool {
	return errors.Is(err, ErrAcquisitionFailed)
}

// IsInvalidOperation checks if an error is a contract violation.
func IsInvalidOperation(err error) bool {
	return errors.Is(err, ErrInvalidOperation)
}
