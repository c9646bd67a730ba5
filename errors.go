package stash

import (
	"errors"
	"fmt"
)

// Sentinel errors identifying the taxonomy of failures this package can
// produce. Callers should compare against these with errors.Is rather
// than inspecting the wrapping struct types directly.
var (
	ErrNotFound  = errors.New("blob not found")
	ErrCollision = errors.New("hash collision")
	ErrIO        = errors.New("storage i/o failure")
	ErrDecode    = errors.New("malformed blob")
	ErrType      = errors.New("value cannot be encoded")
	ErrRecursion = errors.New("cycle detected")
)

// MappingError reports a failure from a Mapping implementation, with the
// Key involved when one is known.
type MappingError struct {
	Err error
	Key Key
}

func (e *MappingError) Error() string {
	if e.Key.IsZero() {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: key %s", e.Err.Error(), e.Key)
}

// Unwrap lets errors.Is/errors.As see through to the sentinel error.
func (e *MappingError) Unwrap() error { return e.Err }

func newNotFound(k Key) error {
	return &MappingError{Err: ErrNotFound, Key: k}
}

func newCollision(k Key) error {
	return &MappingError{Err: ErrCollision, Key: k}
}

func newIOError(k Key, cause error) error {
	return &MappingError{Err: fmt.Errorf("%w: %w", ErrIO, cause), Key: k}
}

// DecodeError reports a Deserializer failure to interpret a blob or
// chunk, with a human-readable Reason.
type DecodeError struct {
	Err    error
	Reason string
}

func (e *DecodeError) Error() string {
	if e.Reason == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %s", e.Err.Error(), e.Reason)
}

// Unwrap lets errors.Is/errors.As see through to the sentinel error.
func (e *DecodeError) Unwrap() error { return e.Err }

func newDecodeError(reason string) error {
	return &DecodeError{Err: ErrDecode, Reason: reason}
}

// TypeError reports a Serializer failure to encode a value of a given Go
// type.
type TypeError struct {
	Err  error
	Type string
}

func (e *TypeError) Error() string {
	return fmt.Sprintf("%s: %s", e.Err.Error(), e.Type)
}

// Unwrap lets errors.Is/errors.As see through to the sentinel error.
func (e *TypeError) Unwrap() error { return e.Err }

func newTypeError(typ string) error {
	return &TypeError{Err: ErrType, Type: typ}
}

// wrapMappingErr normalizes an error returned by a Mapping implementation
// into stash's error taxonomy, leaving already-typed errors untouched.
func wrapMappingErr(err error) error {
	if err == nil {
		return nil
	}
	var me *MappingError
	if errors.As(err, &me) {
		return err
	}
	if errors.Is(err, ErrNotFound) || errors.Is(err, ErrCollision) || errors.Is(err, ErrIO) {
		return err
	}
	return newIOError(Key{}, err)
}
