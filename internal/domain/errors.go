package domain

import "errors"

var (
	ErrListingNotFound       = errors.New("listing not found")
	ErrChangeRequestNotFound = errors.New("change request not found")
	ErrUserNotFound          = errors.New("user not found")
	ErrAttachmentNotFound    = errors.New("attachment not found")
	ErrInquiryNotFound       = errors.New("inquiry not found")
	ErrNotificationNotFound  = errors.New("notification not found")

	// ErrForbidden covers both missing admin capability and ownership
	// violations.
	ErrForbidden = errors.New("insufficient permissions")

	// ErrInvalidTransition is returned when an operation does not apply to
	// the entity's current status, e.g. approving a listing that is not
	// pending or deciding a request that was already decided.
	ErrInvalidTransition = errors.New("operation not allowed in current status")

	// ErrValidation marks malformed input, including a requested_changes
	// payload that is not a JSON object.
	ErrValidation = errors.New("validation failed")

	// ErrVersionConflict is returned when a listing write loses the
	// optimistic concurrency check (the row changed since it was read).
	ErrVersionConflict = errors.New("listing was modified concurrently")

	// ErrOperationInFlight is returned by the advisory guard when the same
	// session already has the same operation outstanding on the entity.
	ErrOperationInFlight = errors.New("operation already in progress")
)
