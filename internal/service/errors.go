package service

import (
	"errors"
	"fmt"
)

// ErrAuthentication is the single failure returned for any credential or
// token problem. It stays opaque on purpose: distinguishing "no such
// user" from "wrong password" would let callers probe for accounts.
var ErrAuthentication = errors.New("unable to authenticate with the provided credentials")

const (
	ReasonRequired      = "required"
	ReasonInvalid       = "invalid"
	ReasonTooShort      = "too_short"
	ReasonAlreadyExists = "already_exists"
)

// ValidationError reports a caller-fixable problem with a named field.
type ValidationError struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %s %s", e.Field, e.Reason)
}
