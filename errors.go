package main

import (
	"errors"
	"fmt"
)

// ErrPatientNotFound is returned by FindPatient when the exchange search
// comes back with total == 0. Not an error worth aborting a run over; the
// load stage skips the row.
var ErrPatientNotFound = errors.New("no matching patient in the exchange")

// AuthError reports a failed token exchange against one of the external
// services. Fatal to the operation that needed the token, never to the run.
type AuthError struct {
	Service    string
	StatusCode int
	Detail     string
}

func (e *AuthError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("%s token exchange failed (%d)", e.Service, e.StatusCode)
	}
	return fmt.Sprintf("%s token exchange failed (%d): %s", e.Service, e.StatusCode, e.Detail)
}

// RegistrationError carries the status code from a rejected patient
// registration so callers can assert on it.
type RegistrationError struct {
	StatusCode int
	Body       string
}

func (e *RegistrationError) Error() string {
	return fmt.Sprintf("patient registration failed (%d): %s", e.StatusCode, e.Body)
}

// TransportError wraps a network or HTTP-level failure.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// MappingError reports a source resource missing a field the mapping
// requires.
type MappingError struct {
	Field  string
	Detail string
}

func (e *MappingError) Error() string {
	return fmt.Sprintf("cannot map %s: %s", e.Field, e.Detail)
}
