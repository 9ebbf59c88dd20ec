// Package rxxerr defines the error kinds shared across the registry,
// hole-punch, and transfer packages.
package rxxerr

import "errors"

// Kind identifies the class of failure, independent of the wrapped detail.
type Kind string

const (
	ConfigMissing       Kind = "ConfigMissing"
	InvalidIdentifier   Kind = "InvalidIdentifier"
	RegistryUnreachable Kind = "RegistryUnreachable"
	RegistryConflict    Kind = "RegistryConflict"
	RegistryAuth        Kind = "RegistryAuth"
	PeerNotFound        Kind = "PeerNotFound"
	NoSuitableAddress   Kind = "NoSuitableAddress"
	PunchTimeout        Kind = "PunchTimeout"
	TlsSetup            Kind = "TlsSetup"
	QuicHandshake       Kind = "QuicHandshake"
	StreamProtocol      Kind = "StreamProtocol"
	IntegrityMismatch   Kind = "IntegrityMismatch"
	SizeMismatch        Kind = "SizeMismatch"
	IoError             Kind = "IoError"
)

// Error pairs a Kind with the underlying cause so callers can branch on
// kind while %w-chains still reach the real error.
type Error struct {
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return string(e.Kind)
	}
	return string(e.Kind) + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error { return e.Err }

// New returns an error of the given kind carrying msg as its text.
func New(kind Kind, msg string) error {
	return &Error{Kind: kind, Err: errors.New(msg)}
}

// Wrap attaches a kind to an existing error.
func Wrap(kind Kind, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Err: err}
}

// Is reports whether err (or anything it wraps) carries the given Kind.
func Is(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}
