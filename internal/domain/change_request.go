package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type ChangeRequestType string

const (
	RequestChange   ChangeRequestType = "CHANGE"
	RequestDeletion ChangeRequestType = "DELETION"
)

func (t ChangeRequestType) IsValid() bool {
	return t == RequestChange || t == RequestDeletion
}

type ChangeRequestStatus string

const (
	RequestPending  ChangeRequestStatus = "PENDING"
	RequestApproved ChangeRequestStatus = "APPROVED"
	RequestRejected ChangeRequestStatus = "REJECTED"
)

// ChangeRequest is an owner's proposal to mutate or delete a listing,
// decided exactly once by an admin. Rows are never deleted; they are the
// audit record of the proposal.
type ChangeRequest struct {
	ID                uuid.UUID           `json:"id" db:"id"`
	ListingID         uuid.UUID           `json:"listing_id" db:"listing_id"`
	RequesterID       uuid.UUID           `json:"requester_id" db:"requester_id"`
	RequestType       ChangeRequestType   `json:"request_type" db:"request_type"`
	RequestedChanges  json.RawMessage     `json:"requested_changes,omitempty" db:"requested_changes"`
	Reason            *string             `json:"reason,omitempty" db:"reason"`
	Status            ChangeRequestStatus `json:"status" db:"status"`
	AdminNotes        *string             `json:"admin_notes,omitempty" db:"admin_notes"`
	AdminNotesForUser *string             `json:"admin_notes_for_user,omitempty" db:"admin_notes_for_user"`
	ProcessedBy       *uuid.UUID          `json:"processed_by,omitempty" db:"processed_by"`
	ProcessedAt       *time.Time          `json:"processed_at,omitempty" db:"processed_at"`

	// ApplyError records a listing mutation that failed after the request
	// was already marked approved. The approved-but-unapplied state is
	// deliberate: the two writes are independent network calls and the gap
	// must stay detectable rather than masked.
	ApplyError *string `json:"apply_error,omitempty" db:"apply_error"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`

	Requester *User    `json:"requester,omitempty" db:"-"`
	Processor *User    `json:"processor,omitempty" db:"-"`
	Listing   *Listing `json:"listing,omitempty" db:"-"`
}

type CreateChangeRequestInput struct {
	ListingID        uuid.UUID         `json:"listing_id" validate:"required"`
	RequestType      ChangeRequestType `json:"request_type" validate:"required"`
	RequestedChanges json.RawMessage   `json:"requested_changes,omitempty"`
	Reason           *string           `json:"reason,omitempty" validate:"omitempty,max=1000"`
}

type Decision string

const (
	DecisionApproved Decision = "APPROVED"
	DecisionRejected Decision = "REJECTED"
)

type DecideChangeRequestInput struct {
	Decision          Decision `json:"decision" validate:"required,oneof=APPROVED REJECTED"`
	AdminNotes        *string  `json:"admin_notes,omitempty" validate:"omitempty,max=1000"`
	AdminNotesForUser *string  `json:"admin_notes_for_user,omitempty" validate:"omitempty,max=1000"`
}
