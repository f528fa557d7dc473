package api

import (
	"errors"
	"fmt"

	"github.com/vitashop/vitashop/internal/models"
)

var (
	// ErrUnauthorized means the bearer token is missing, expired or rejected.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrNotFound means the profile has not been provisioned yet.
	ErrNotFound = errors.New("profile not found")
)

// TransportError covers network failures, undecodable bodies and any
// response status the client has no specific meaning for.
type TransportError struct {
	Op      string
	Status  int
	Message string
	Err     error
}

func (e *TransportError) Error() string {
	switch {
	case e.Message != "":
		return e.Message
	case e.Status != 0:
		return fmt.Sprintf("%s: unexpected status %d", e.Op, e.Status)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	default:
		return e.Op + " failed"
	}
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// ValidationRejectedError carries the field errors the backend reported for
// a profile save.
type ValidationRejectedError struct {
	Fields models.ErrorSet
}

func (e *ValidationRejectedError) Error() string {
	if msg := e.Fields.Get(models.FieldGeneral); msg != "" && len(e.Fields) == 1 {
		return "profile rejected: " + msg
	}
	return fmt.Sprintf("profile rejected: %d field error(s)", len(e.Fields))
}
