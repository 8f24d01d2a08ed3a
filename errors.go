package mockwire

import (
	"errors"
	"fmt"

	crdb "github.com/cockroachdb/errors"
)

// Sentinel errors for programmatic error handling.
// Use errors.Is() to check for these error types.
var (
	// ErrNotSerializable indicates the proxy's state could not be encoded.
	ErrNotSerializable = errors.New("mock not serializable")

	// ErrInvalidObject indicates a substitute envelope could not be
	// resolved back into a live proxy.
	ErrInvalidObject = errors.New("invalid serialized mock")

	// ErrPayload indicates the envelope's byte payload could not be read.
	// Carried as the reason of an InvalidObjectError.
	ErrPayload = errors.New("payload unreadable")

	// ErrTypeResolution indicates a recorded type could not be resolved or
	// the proxy type could not be regenerated. Carried as the reason of an
	// InvalidObjectError.
	ErrTypeResolution = errors.New("type resolution failed")

	// ErrUnknownTag indicates a stream position where a descriptor tag was
	// expected but an unrecognized byte was found.
	ErrUnknownTag = errors.New("unknown descriptor tag")

	// ErrNotRegistered indicates a recorded name with no registry entry.
	ErrNotRegistered = errors.New("type not registered")

	// ErrCannotGenerate indicates the generator rejected the base type.
	ErrCannotGenerate = errors.New("base type cannot be imposterized")
)

// NotSerializableError is raised when encoding a proxy's internal state
// fails. It identifies the proxy's declared type.
type NotSerializableError struct {
	Err      error  // ErrNotSerializable
	TypeName string // declared type of the proxy that failed to encode
	Cause    error  // original error from the encoder or codec
}

func (e *NotSerializableError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Err.Error(), e.TypeName, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Err.Error(), e.TypeName)
}

func (e *NotSerializableError) Unwrap() error {
	return e.Err
}

// InvalidObjectError is raised when resolving an envelope fails, either
// because the payload cannot be read or because the regenerated type cannot
// be produced. Cause carries a captured stack trace; render it with %+v.
type InvalidObjectError struct {
	Err    error // ErrInvalidObject
	Reason error // ErrPayload or ErrTypeResolution
	Cause  error // original error, stack attached
}

func (e *InvalidObjectError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Err.Error(), e.Reason.Error(), e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Err.Error(), e.Reason.Error())
}

func (e *InvalidObjectError) Unwrap() error {
	return e.Err
}

// Is reports a match for either the top-level sentinel or the reason, so
// errors.Is(err, ErrPayload) distinguishes the two failure causes.
func (e *InvalidObjectError) Is(target error) bool {
	return errors.Is(e.Err, target) || errors.Is(e.Reason, target)
}

// newNotSerializableError wraps an encode failure with the proxy's type name.
func newNotSerializableError(typeName string, cause error) error {
	return &NotSerializableError{
		Err:      ErrNotSerializable,
		TypeName: typeName,
		Cause:    cause,
	}
}

// newInvalidObjectError wraps a resolve failure, attaching a stack trace to
// the cause for diagnostics.
func newInvalidObjectError(reason error, cause error) error {
	if cause != nil {
		cause = crdb.WithStackDepth(cause, 1)
	}
	return &InvalidObjectError{
		Err:    ErrInvalidObject,
		Reason: reason,
		Cause:  cause,
	}
}
