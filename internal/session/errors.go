package session

import (
	"errors"
	"fmt"

	"github.com/vitashop/vitashop/internal/api"
)

// User-facing messages.
const (
	MsgProfileUpdated  = "Profile updated successfully"
	MsgPictureUpdated  = "Profile picture updated successfully"
	MsgLoadFailed      = "Failed to load profile"
	MsgSaveFailed      = "Failed to update profile"
	MsgUploadFailed    = "Failed to upload profile picture"
	MsgDeleteFailed    = "Failed to delete account"
	MsgSessionExpired  = "Your session has expired. Please sign in again."
	MsgUnsupportedType = "Please select a JPEG, PNG or WebP image"
	MsgFileTooLarge    = "Image must be 5 MB or smaller"
)

var (
	// ErrNotProvisioned is reported when the profile is still missing after
	// the provisioning retries ran out.
	ErrNotProvisioned = errors.New("profile is not provisioned yet")

	// ErrPolicyRejected matches every PolicyError.
	ErrPolicyRejected = errors.New("picture rejected by upload policy")
)

// PolicyError is a picture refused before any network call.
type PolicyError struct {
	Reason string
}

func (e *PolicyError) Error() string {
	return e.Reason
}

func (e *PolicyError) Is(target error) bool {
	return target == ErrPolicyRejected
}

// ErrorKind classifies an engine failure.
type ErrorKind int

const (
	KindNone ErrorKind = iota
	KindUnauthorized
	KindNotFound
	KindValidationRejected
	KindTransport
	KindPolicyRejected
)

func (k ErrorKind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindUnauthorized:
		return "unauthorized"
	case KindNotFound:
		return "not_found"
	case KindValidationRejected:
		return "validation_rejected"
	case KindTransport:
		return "transport"
	case KindPolicyRejected:
		return "policy_rejected"
	default:
		return fmt.Sprintf("ErrorKind(%d)", int(k))
	}
}

// KindOf classifies err. Anything unrecognised is a transport failure.
func KindOf(err error) ErrorKind {
	var rejected *api.ValidationRejectedError

	switch {
	case err == nil:
		return KindNone
	case errors.Is(err, api.ErrUnauthorized):
		return KindUnauthorized
	case errors.Is(err, api.ErrNotFound), errors.Is(err, ErrNotProvisioned):
		return KindNotFound
	case errors.As(err, &rejected):
		return KindValidationRejected
	case errors.Is(err, ErrPolicyRejected):
		return KindPolicyRejected
	default:
		return KindTransport
	}
}

// message picks the text for the general error slot.
func message(err error, fallback string) string {
	var te *api.TransportError

	switch KindOf(err) {
	case KindUnauthorized:
		return MsgSessionExpired
	case KindNotFound, KindPolicyRejected:
		return err.Error()
	}

	if errors.As(err, &te) && te.Message != "" {
		return te.Message
	}
	return fallback
}
